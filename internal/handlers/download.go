package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/streaming"
)

// Download resolves a video URL and relays the raw source stream to the
// client without recompression.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	rawURL, format, ok := h.sourceParams(w, r)
	if !ok {
		return
	}

	res, err := h.resolve(r, rawURL, format)
	if err != nil {
		if errors.Is(err, errResolverBusy) {
			writeError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		logging.Error("Extraction failed for %s: %v", rawURL, err)
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, res.AudioURL, nil)
	if err != nil {
		writeError(w, "failed to fetch resolved stream", http.StatusInternalServerError)
		return
	}

	upstream, err := h.client.Do(req)
	if err != nil {
		logging.Error("Upstream fetch failed for %s: %v", rawURL, err)
		writeError(w, "failed to fetch resolved stream", http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := upstream.Body.Close(); err != nil {
			logging.Debug("Failed to close upstream body: %v", err)
		}
	}()

	if upstream.StatusCode != http.StatusOK && upstream.StatusCode != http.StatusPartialContent {
		logging.Error("Upstream returned %s for %s", upstream.Status, rawURL)
		writeError(w, "resolved stream is no longer available", http.StatusInternalServerError)
		return
	}

	container := res.Container
	if container == "" {
		container = format
	}

	w.Header().Set("Content-Type", contentTypeFor(container))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", attachmentName(res.Title, container)))
	if upstream.ContentLength > 0 {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", upstream.ContentLength))
	}
	w.Header().Set("X-Video-Title", headerSafe(res.Title))

	sent, err := streaming.Stream(r.Context(), w, upstream.Body, streaming.DefaultOptions())
	if err != nil {
		// Headers are gone; all we can do is log why the relay stopped.
		if errors.Is(err, streaming.ErrClientGone) {
			logging.Debug("Client disconnected after %d bytes of %s", sent, rawURL)
		} else {
			logging.Warn("Relay of %s failed after %d bytes: %v", rawURL, sent, err)
		}
	}
}
