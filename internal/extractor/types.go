package extractor

// StreamCandidate is one fetchable media stream reported by yt-dlp for a
// single resolution attempt. Candidates are transient and never persisted.
type StreamCandidate struct {
	FormatID    string  `json:"format_id"`
	AudioCodec  string  `json:"acodec"`
	VideoCodec  string  `json:"vcodec"`
	BitrateKbps float64 `json:"abr"`
	Container   string  `json:"ext"`
	URL         string  `json:"url"`
}

// hasAudio reports whether the candidate carries an audio track. yt-dlp
// reports codec "none" for absent tracks; an empty string means the field
// was missing entirely and is treated the same way.
func (c StreamCandidate) hasAudio() bool {
	return c.AudioCodec != "" && c.AudioCodec != "none"
}

// hasVideo reports whether the candidate carries a video track.
func (c StreamCandidate) hasVideo() bool {
	return c.VideoCodec != "" && c.VideoCodec != "none"
}

// Resolution is the result of a successful extraction: a directly fetchable
// audio URL plus the metadata a caller needs to label and route it.
type Resolution struct {
	AudioURL        string  `json:"audioUrl"`
	Title           string  `json:"title"`
	DurationSeconds float64 `json:"durationSeconds"`
	Container       string  `json:"container,omitempty"`
	Persona         string  `json:"extractionMethod"`
}

// videoInfo mirrors the subset of yt-dlp's -J output this service consumes.
type videoInfo struct {
	Title    string            `json:"title"`
	Duration float64           `json:"duration"`
	URL      string            `json:"url"`
	Ext      string            `json:"ext"`
	Formats  []StreamCandidate `json:"formats"`
}
