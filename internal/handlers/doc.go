// Package handlers implements the HTTP API: URL resolution, raw stream
// relay, and the full download-and-compress pipeline, plus the usual
// health, version, and discovery endpoints.
//
// All endpoints are GET and synchronous. Failures return a JSON body
// with an error string, success:false, and, where known, sizing hints
// (originalSizeMb, suggestion) so the caller can pick a viable input.
package handlers
