package handlers

import (
	"errors"
	"net/http"

	"github.com/PlayOffP/ytdlp-service/internal/extractor"
	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// errResolverBusy reports that every extraction slot is occupied.
var errResolverBusy = errors.New("resolver is handling too many requests, try again later")

// ExtractResponse is the JSON body for a successful resolution.
type ExtractResponse struct {
	AudioURL         string  `json:"audioUrl"`
	Title            string  `json:"title"`
	DurationSeconds  float64 `json:"durationSeconds"`
	Success          bool    `json:"success"`
	ExtractionMethod string  `json:"extractionMethod"`
}

// Extract resolves a video URL to a direct audio stream URL without
// downloading anything.
func (h *Handlers) Extract(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ExtractResponse{
		AudioURL:         res.AudioURL,
		Title:            res.Title,
		DurationSeconds:  res.DurationSeconds,
		Success:          true,
		ExtractionMethod: res.Persona,
	})
}

// sourceParams validates the url and format query parameters, writing
// the 400 response itself when invalid.
func (h *Handlers) sourceParams(w http.ResponseWriter, r *http.Request) (rawURL, format string, ok bool) {
	rawURL = r.URL.Query().Get("url")
	if rawURL == "" {
		writeError(w, "url parameter is required", http.StatusBadRequest)
		return "", "", false
	}
	if !extractor.IsAllowedSourceURL(rawURL) {
		writeError(w, "invalid or unsupported url", http.StatusBadRequest)
		return "", "", false
	}

	format = r.URL.Query().Get("format")
	if format == "" {
		format = "m4a"
	}
	return rawURL, format, true
}

// resolve consults the cache before going to the extractor, and fills
// the cache on a miss.
func (h *Handlers) resolve(r *http.Request, rawURL, format string) (*extractor.Resolution, error) {
	ctx := r.Context()

	if res, ok := h.cache.Get(ctx, rawURL, format); ok {
		logging.Debug("Resolution cache hit for %s", rawURL)
		return res, nil
	}

	// Cache hits cost nothing; only actual resolver runs take a slot.
	if !h.extractSlots.TryAcquire(1) {
		return nil, errResolverBusy
	}
	defer h.extractSlots.Release(1)

	res, err := h.resolver.Resolve(ctx, rawURL, format)
	if err != nil {
		return nil, err
	}

	if err := h.cache.Put(ctx, rawURL, format, res); err != nil {
		logging.Warn("Failed to cache resolution for %s: %v", rawURL, err)
	}
	return res, nil
}
