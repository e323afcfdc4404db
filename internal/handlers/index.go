package handlers

import (
	"net/http"

	"github.com/PlayOffP/ytdlp-service/internal/startup"
)

// IndexResponse is the discovery document served at the root.
type IndexResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
	Features  []string          `json:"features"`
}

// Index serves a liveness and discovery document for the root path.
func (h *Handlers) Index(w http.ResponseWriter, _ *http.Request) {
	response := IndexResponse{
		Status:  "ok",
		Service: "ytdlp-service",
		Version: startup.Version,
		Endpoints: map[string]string{
			"/":         "this document",
			"/health":   "health status",
			"/version":  "build information",
			"/extract":  "resolve a video URL to a direct audio stream (params: url, format)",
			"/download": "relay the raw resolved audio stream (params: url, format)",
			"/process":  "download, compress, and deliver audio sized for transfer (params: url)",
		},
		Features: []string{
			"multi-client extraction fallback",
			"adaptive tiered audio compression",
			"segmentation for large sources",
			"resolution caching",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}
