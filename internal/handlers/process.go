package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PlayOffP/ytdlp-service/internal/extractor"
	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/pipeline"
	"github.com/PlayOffP/ytdlp-service/internal/streaming"
	"github.com/PlayOffP/ytdlp-service/internal/transcoder"
)

// Process runs the full pipeline for a video URL and streams back an
// audio artifact sized for transfer.
func (h *Handlers) Process(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, "url parameter is required", http.StatusBadRequest)
		return
	}
	if !extractor.IsAllowedSourceURL(rawURL) {
		writeError(w, "invalid or unsupported url", http.StatusBadRequest)
		return
	}

	if !h.slots.TryAcquire(1) {
		writeError(w, "server is processing too many requests, try again later", http.StatusServiceUnavailable)
		return
	}
	defer h.slots.Release(1)

	result, err := h.processor.Process(r.Context(), rawURL)
	if err != nil {
		h.writeProcessError(w, rawURL, err)
		return
	}
	defer result.Workspace.Remove()

	h.streamArtifact(w, r, rawURL, result)
}

// writeProcessError maps pipeline failures to the documented status
// codes, attaching sizing hints where they help the caller.
func (h *Handlers) writeProcessError(w http.ResponseWriter, rawURL string, err error) {
	logging.Error("Pipeline failed for %s: %v", rawURL, err)

	var ceilingErr *pipeline.SizeCeilingError
	if errors.As(err, &ceilingErr) {
		writeSizeError(w,
			"source audio exceeds the maximum input size",
			http.StatusRequestEntityTooLarge,
			ceilingErr.SizeBytes,
			"try a shorter video")
		return
	}

	var outputErr *transcoder.OutputSizeError
	if errors.As(err, &outputErr) {
		writeSizeError(w,
			"audio could not be compressed under the delivery size limit",
			http.StatusRequestEntityTooLarge,
			outputErr.AchievedBytes,
			"try a shorter video or a clip of this one")
		return
	}

	if errors.Is(err, transcoder.ErrTimeout) {
		writeSizeError(w,
			"audio compression timed out",
			http.StatusRequestTimeout,
			0,
			"try a shorter video")
		return
	}

	// Extraction exhaustion and everything else surface as 500 with the
	// aggregated message.
	writeError(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handlers) streamArtifact(w http.ResponseWriter, r *http.Request, rawURL string, result *pipeline.Result) {
	f, err := os.Open(result.ArtifactPath)
	if err != nil {
		logging.Error("Artifact missing for %s: %v", rawURL, err)
		writeError(w, "processed audio could not be read", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Debug("Failed to close artifact: %v", err)
		}
	}()

	container := strings.TrimPrefix(filepath.Ext(result.ArtifactPath), ".")
	tier := result.Tier.Name
	if tier == "" {
		tier = "none"
	}

	w.Header().Set("Content-Type", contentTypeFor(container))
	w.Header().Set("Content-Length", strconv.FormatInt(result.ArtifactSize, 10))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachmentName(result.Title, container)))
	w.Header().Set("X-Video-Title", headerSafe(result.Title))
	w.Header().Set("X-Original-Size-MB", fmt.Sprintf("%.1f", float64(result.OriginalSize)/transcoder.MiB))
	w.Header().Set("X-Final-Size-MB", fmt.Sprintf("%.1f", float64(result.ArtifactSize)/transcoder.MiB))
	w.Header().Set("X-Compression-Tier", tier)
	w.Header().Set("X-Partial-Content", strconv.FormatBool(result.Partial))
	if result.SegmentCount > 0 {
		w.Header().Set("X-Segment-Count", strconv.Itoa(result.SegmentCount))
	}

	sent, err := streaming.Stream(r.Context(), w, f, streaming.DefaultOptions())
	if err != nil {
		if errors.Is(err, streaming.ErrClientGone) {
			logging.Debug("Client disconnected after %d of %d bytes for %s", sent, result.ArtifactSize, rawURL)
		} else {
			logging.Warn("Artifact delivery for %s failed after %d bytes: %v", rawURL, sent, err)
		}
		return
	}

	logging.Info("Delivered %s artifact for %s (%.1f MB, tier %s)",
		result.Branch, rawURL, float64(result.ArtifactSize)/transcoder.MiB, tier)
}
