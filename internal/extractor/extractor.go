package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/metrics"
	"github.com/PlayOffP/ytdlp-service/internal/runner"
)

// ErrExtractionExhausted indicates every persona failed to produce a usable
// audio stream. Individual persona errors are collapsed into the message;
// they are not independently actionable upstream.
var ErrExtractionExhausted = errors.New("all extraction strategies exhausted")

// attemptTimeout bounds a single yt-dlp invocation. The socket timeout and
// retry counts passed to yt-dlp keep one attempt well under this; the hard
// cap is there for hung processes.
const attemptTimeout = 120 * time.Second

// runFunc matches runner.Run and exists so tests can substitute a fake
// process invocation.
type runFunc func(ctx context.Context, timeout time.Duration, name string, args ...string) (runner.Result, error)

// Extractor resolves a playable audio stream URL for a remote video by
// driving yt-dlp through an ordered list of client personas.
type Extractor struct {
	binary   string
	personas []Persona
	run      runFunc
}

// New creates an Extractor using the given yt-dlp binary and the default
// persona order.
func New(binary string) *Extractor {
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Extractor{
		binary:   binary,
		personas: DefaultPersonas,
		run:      runner.Run,
	}
}

// Resolve tries each persona in order until one yields a non-decoy audio
// stream. The caller must have validated rawURL against the platform
// allow-list already.
//
// An unmet format preference is best-effort, not an error: the preference
// biases yt-dlp's selector and the scorer's tie-breaks, and resolution falls
// back to whatever audio stream is available.
func (e *Extractor) Resolve(ctx context.Context, rawURL, formatPreference string) (*Resolution, error) {
	var failures []string

	for _, persona := range e.personas {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logging.Info("Attempting %s for %s", persona.Description, rawURL)
		start := time.Now()

		res, err := e.attempt(ctx, persona, rawURL, formatPreference)
		metrics.ObserveExtraction(persona.Client, err == nil, time.Since(start))

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logging.Warn("%s failed: %v", persona.Description, err)
			failures = append(failures, fmt.Sprintf("%s: %v", persona.Client, err))
			continue
		}

		logging.Info("Resolved %q with %s client (%.0fs, %s)", res.Title, persona.Client, res.DurationSeconds, res.Container)
		return res, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrExtractionExhausted, strings.Join(failures, "; "))
}

// attempt runs yt-dlp once with a single persona and scores its output.
func (e *Extractor) attempt(ctx context.Context, persona Persona, rawURL, formatPreference string) (*Resolution, error) {
	args := e.args(persona, rawURL, formatPreference)

	res, err := e.run(ctx, attemptTimeout, e.binary, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("yt-dlp exited %d: %s", res.ExitCode, firstLine(res.Stderr))
	}

	var info videoInfo
	if err := json.Unmarshal(res.Stdout, &info); err != nil {
		return nil, fmt.Errorf("yt-dlp metadata parse: %w", err)
	}

	logging.Debug("%s client returned %d formats", persona.Client, len(info.Formats))

	sel, ok := pickBestAudio(info.Formats, info.URL, info.Ext, formatPreference)
	if !ok {
		return nil, errors.New("no usable audio stream (storyboard/image URLs only)")
	}

	title := info.Title
	if title == "" {
		title = "Unknown"
	}

	return &Resolution{
		AudioURL:        sel.URL,
		Title:           title,
		DurationSeconds: info.Duration,
		Container:       sel.Container,
		Persona:         persona.Client,
	}, nil
}

// args builds the yt-dlp command line for one persona attempt.
func (e *Extractor) args(persona Persona, rawURL, formatPreference string) []string {
	selector := "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio/best"
	if formatPreference != "" && formatPreference != "m4a" {
		selector = fmt.Sprintf("bestaudio[ext=%s]/%s", formatPreference, selector)
	}

	args := []string{
		"-J",
		"--no-playlist",
		"--no-warnings",
		"--socket-timeout", "30",
		"--retries", "3",
		"--fragment-retries", "3",
		"--format", selector,
		"--extractor-args", "youtube:player_client=" + persona.Client + ";skip=dash,hls",
		"--user-agent", browserUserAgent,
	}
	for _, h := range extraHeaders {
		args = append(args, "--add-headers", h)
	}
	return append(args, rawURL)
}

// firstLine trims diagnostic output down to its first line for error text.
func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
