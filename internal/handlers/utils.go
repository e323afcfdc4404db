package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/transcoder"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Error          string  `json:"error"`
	Success        bool    `json:"success"`
	OriginalSizeMb float64 `json:"originalSizeMb,omitempty"`
	Suggestion     string  `json:"suggestion,omitempty"`
}

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeError writes an error response as JSON with the given status code.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, errorResponse{Error: message, Success: false})
}

// writeSizeError writes an error response carrying sizing hints so the
// caller can pick a viable input next time.
func writeSizeError(w http.ResponseWriter, message string, statusCode int, originalBytes int64, suggestion string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, errorResponse{
		Error:          message,
		Success:        false,
		OriginalSizeMb: roundMb(originalBytes),
		Suggestion:     suggestion,
	})
}

func roundMb(bytes int64) float64 {
	mb := float64(bytes) / transcoder.MiB
	return float64(int(mb*10+0.5)) / 10
}

// contentTypeFor maps an audio container to its MIME type.
func contentTypeFor(container string) string {
	switch strings.ToLower(container) {
	case "m4a", "mp4":
		return "audio/mp4"
	case "mp3":
		return "audio/mpeg"
	case "webm":
		return "audio/webm"
	case "opus", "ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}

// attachmentName builds a Content-Disposition filename from a video
// title. Header values must stay within printable ASCII, so anything
// else is dropped.
func attachmentName(title, container string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		name = "audio"
	}
	if len(name) > 120 {
		name = name[:120]
	}
	return fmt.Sprintf("%s.%s", name, container)
}

// headerSafe strips characters that cannot appear in an HTTP header value.
func headerSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 0x20 && r < 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}
