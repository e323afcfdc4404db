// Package middleware provides HTTP middleware for the audio service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics
//   - CORS headers for browser clients
//   - Per-client-IP rate limiting
package middleware
