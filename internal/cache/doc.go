// Package cache provides a SQLite-backed store for recent URL
// resolutions keyed by source URL and requested format. Signed stream
// URLs go stale, so entries carry a TTL and a periodic sweep removes the
// expired ones.
package cache
