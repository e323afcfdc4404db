package extractor

import (
	"net/url"
	"strings"
)

// allowedHosts is the exact-match set of accepted video-platform hosts.
// Exact matching, not substring matching: "youtube.com.evil.example" must
// not pass.
var allowedHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"youtu.be":        true,
	"m.youtube.com":   true,
}

// IsAllowedSourceURL reports whether raw parses as an http(s) URL whose host
// is on the platform allow-list.
func IsAllowedSourceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return allowedHosts[strings.ToLower(u.Host)]
}
