// Package extractor resolves playable audio stream URLs for remote videos.
//
// It drives the yt-dlp binary through an ordered list of client personas,
// scoring each attempt's reported formats to find a genuine audio stream
// and rejecting decoy thumbnail/storyboard URLs by shape. The persona loop
// is strictly sequential; the first success wins, and exhaustion of all
// personas collapses into a single aggregated error.
package extractor
