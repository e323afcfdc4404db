// Package transcoder adapts audio sources to a fixed downstream contract
// (mono AAC in MP4, at most 25 MB) using FFmpeg.
//
// It supports:
//   - Size-bracket tier planning with a one-shot emergency escalation
//   - Lossless time segmentation of large sources by container copy
//   - Duration probing via ffprobe
//
// FFmpeg and ffprobe are invoked as external processes and must be
// installed; paths are configurable, defaulting to PATH lookup.
package transcoder
