package extractor

import (
	"sort"
	"strings"
)

// decoyMarkers identify fetch URLs that point at thumbnail or storyboard
// assets rather than media. YouTube sometimes returns these as the
// "best" format, so URL shape is checked instead of trusting the selection.
var decoyMarkers = []string{"storyboard", ".jpg", ".png"}

// isDecoyURL reports whether a candidate URL matches a known decoy pattern.
func isDecoyURL(url string) bool {
	for _, marker := range decoyMarkers {
		if strings.Contains(url, marker) {
			return true
		}
	}
	return false
}

// selection is the scorer's pick: the stream URL and, when known, the
// container it is served in.
type selection struct {
	URL       string
	Container string
}

// pickBestAudio ranks the candidates from one extraction attempt and returns
// a genuine audio stream, or ok=false when the attempt yielded none.
//
// Three fallback tiers, in order:
//
//  1. Audio-only candidates, highest bitrate first, ties broken in favor of
//     the preferred container.
//  2. The extractor's own top-level recommended URL, if it is not a decoy.
//  3. The first mixed (audio+video) candidate with an audio track.
//
// Decoy URLs are discarded at every tier.
func pickBestAudio(candidates []StreamCandidate, topURL, topContainer, preferredContainer string) (selection, bool) {
	if preferredContainer == "" {
		preferredContainer = "m4a"
	}

	var audioOnly, mixed []StreamCandidate
	for _, c := range candidates {
		if c.URL == "" || isDecoyURL(c.URL) || !c.hasAudio() {
			continue
		}
		if c.hasVideo() {
			mixed = append(mixed, c)
		} else {
			audioOnly = append(audioOnly, c)
		}
	}

	if len(audioOnly) > 0 {
		sort.SliceStable(audioOnly, func(i, j int) bool {
			if audioOnly[i].BitrateKbps != audioOnly[j].BitrateKbps {
				return audioOnly[i].BitrateKbps > audioOnly[j].BitrateKbps
			}
			return audioOnly[i].Container == preferredContainer && audioOnly[j].Container != preferredContainer
		})

		// An exact container match at equal quality beats the list head.
		best := audioOnly[0]
		for _, c := range audioOnly {
			if c.Container == preferredContainer && c.BitrateKbps == best.BitrateKbps {
				best = c
				break
			}
		}
		return selection{URL: best.URL, Container: best.Container}, true
	}

	if topURL != "" && !isDecoyURL(topURL) {
		return selection{URL: topURL, Container: topContainer}, true
	}

	if len(mixed) > 0 {
		return selection{URL: mixed[0].URL, Container: mixed[0].Container}, true
	}

	return selection{}, false
}
