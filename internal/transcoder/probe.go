package transcoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrProbeFailed indicates ffprobe could not produce duration metadata for
// a downloaded source.
var ErrProbeFailed = errors.New("media probe failed")

// probeTimeout bounds a single ffprobe run. Probing only reads container
// headers, so this is generous.
const probeTimeout = 30 * time.Second

// probeResult mirrors the subset of ffprobe's JSON output we consume.
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
}

// ProbeDuration returns the total duration of a media file in seconds.
func (t *Transcoder) ProbeDuration(ctx context.Context, path string) (float64, error) {
	res, err := t.run(ctx, probeTimeout, t.ffprobe,
		"-v", "error",
		"-show_format",
		"-of", "json",
		"--", path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("%w: ffprobe exited %d: %s", ErrProbeFailed, res.ExitCode, trimStderr(res.Stderr))
	}

	var parsed probeResult
	if err := json.Unmarshal(res.Stdout, &parsed); err != nil {
		return 0, fmt.Errorf("%w: parse: %v", ErrProbeFailed, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("%w: no usable duration in probe output", ErrProbeFailed)
	}
	return duration, nil
}
