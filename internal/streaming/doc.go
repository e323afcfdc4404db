// Package streaming delivers finished audio artifacts to HTTP clients
// with per-write and idle timeouts. A pipeline workspace stays on disk
// until its artifact has been streamed, so a stalled or vanished client
// must be detected promptly rather than waited on.
package streaming
