// Package pipeline orchestrates a full audio delivery run: resolve a
// platform URL to a direct audio stream, download it into a throwaway
// workspace, route on downloaded size, and compress or segment as needed.
//
// Size routing:
//
//	under 25 MiB   ship the source as-is
//	under 100 MiB  compress in place
//	under 500 MiB  split into chunks, ship the first one compressed
//	500 MiB and up rejected before download completes
//
// Every run owns a uuid-named workspace directory. Failed runs clean it up
// before returning; successful runs hand it to the caller inside Result so
// the artifact can be streamed before removal.
package pipeline
