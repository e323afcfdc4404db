package transcoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/metrics"
	"github.com/PlayOffP/ytdlp-service/internal/runner"
)

// Sentinel errors for compression outcomes.
var (
	// ErrCompressionFailed indicates the encoder exited non-zero on both the
	// primary and the emergency attempt.
	ErrCompressionFailed = errors.New("compression failed")

	// ErrTimeout indicates the encoder exceeded its tier's wall-clock budget.
	ErrTimeout = runner.ErrTimeout
)

// OutputSizeError reports a compressed artifact that still exceeds the
// output ceiling. AchievedBytes is the best size compression reached.
type OutputSizeError struct {
	AchievedBytes int64
}

func (e *OutputSizeError) Error() string {
	return fmt.Sprintf("compressed output is %.1f MB, exceeds the %d MB ceiling",
		float64(e.AchievedBytes)/MiB, OutputCeiling/MiB)
}

// runFunc matches runner.Run; swapped out in tests.
type runFunc func(ctx context.Context, timeout time.Duration, name string, args ...string) (runner.Result, error)

// Transcoder adapts audio sources to the downstream consumer's constraints
// (mono, 16 kHz-class, AAC in an MP4 container, at most 25 MB) by invoking
// the external ffmpeg and ffprobe binaries.
type Transcoder struct {
	ffmpeg  string
	ffprobe string
	run     runFunc
}

// New creates a Transcoder using the given binary paths. Empty paths fall
// back to looking the tools up on PATH.
func New(ffmpeg, ffprobe string) *Transcoder {
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return &Transcoder{ffmpeg: ffmpeg, ffprobe: ffprobe, run: runner.Run}
}

// Compress re-encodes inputPath to outputPath using the tier selected by
// inputSize. A failed or oversized primary attempt escalates once to the
// emergency tier; there are never more than two attempts. On success it
// returns the output size and the tier that produced it.
func (t *Transcoder) Compress(ctx context.Context, inputPath, outputPath string, inputSize int64) (int64, Tier, error) {
	tier := PlanFor(inputSize)
	return t.compressWithEscalation(ctx, tier, inputPath, outputPath)
}

// CompressSegment compresses a single cut segment using the segment tier
// table. When the segment is already under the output ceiling it returns
// encoded=false and leaves the input untouched.
func (t *Transcoder) CompressSegment(ctx context.Context, inputPath, outputPath string, segmentSize int64) (int64, Tier, bool, error) {
	tier, needsEncode := SegmentPlanFor(segmentSize)
	if !needsEncode {
		return segmentSize, tier, false, nil
	}
	size, used, err := t.compressWithEscalation(ctx, tier, inputPath, outputPath)
	return size, used, true, err
}

func (t *Transcoder) compressWithEscalation(ctx context.Context, tier Tier, inputPath, outputPath string) (int64, Tier, error) {
	size, err := t.encode(ctx, tier, inputPath, outputPath)
	if err == nil && size <= OutputCeiling {
		return size, tier, nil
	}

	if err != nil {
		// A dead request context means nobody is waiting for the artifact;
		// spawning the emergency encoder would only start a doomed process.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, tier, err
		}
		logging.Warn("%s tier failed (%v), escalating to emergency settings", tier.Name, err)
	} else {
		logging.Warn("%s tier produced %.1f MB, above ceiling; escalating to emergency settings",
			tier.Name, float64(size)/MiB)
	}

	size, eerr := t.encode(ctx, emergencyTier, inputPath, outputPath)
	if eerr != nil {
		if errors.Is(eerr, ErrTimeout) || errors.Is(eerr, context.Canceled) || errors.Is(eerr, context.DeadlineExceeded) {
			return 0, emergencyTier, eerr
		}
		return 0, emergencyTier, fmt.Errorf("%w: %v", ErrCompressionFailed, eerr)
	}
	if size > OutputCeiling {
		return size, emergencyTier, &OutputSizeError{AchievedBytes: size}
	}
	return size, emergencyTier, nil
}

// encode performs one encoder run and verifies the output exists.
func (t *Transcoder) encode(ctx context.Context, tier Tier, inputPath, outputPath string) (int64, error) {
	args := encodeArgs(tier, inputPath, outputPath)

	logging.Debug("Running encoder: %s tier, %dk/%dHz, timeout %v", tier.Name, tier.BitrateKbps, tier.SampleRate, tier.Timeout)

	start := time.Now()
	res, err := t.run(ctx, tier.Timeout, t.ffmpeg, args...)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, ErrTimeout):
		metrics.ObserveEncoderRun(tier.Name, "timeout", elapsed)
		return 0, err
	case err != nil:
		metrics.ObserveEncoderRun(tier.Name, "error", elapsed)
		return 0, err
	case res.ExitCode != 0:
		metrics.ObserveEncoderRun(tier.Name, "error", elapsed)
		return 0, fmt.Errorf("encoder exited %d: %s", res.ExitCode, trimStderr(res.Stderr))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		metrics.ObserveEncoderRun(tier.Name, "error", elapsed)
		return 0, fmt.Errorf("encoder produced no output: %w", err)
	}

	metrics.ObserveEncoderRun(tier.Name, "success", elapsed)
	logging.Info("Encoded %s tier: %.1f MB in %v", tier.Name, float64(info.Size())/MiB, elapsed.Round(time.Millisecond))
	return info.Size(), nil
}

// encodeArgs builds the ffmpeg argument list for a tier. Every tier forces
// mono, strips metadata, and writes a faststart MP4 so the artifact is
// playable while still downloading.
func encodeArgs(tier Tier, inputPath, outputPath string) []string {
	args := []string{
		"-y",
		"-nostdin",
		"-loglevel", "error",
		"-i", inputPath,
		"-vn",
		"-ac", strconv.Itoa(tier.Channels),
		"-ar", strconv.Itoa(tier.SampleRate),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%dk", tier.BitrateKbps),
		"-map_metadata", "-1",
		"-movflags", "+faststart",
	}
	if tier.Threads > 0 {
		args = append(args, "-threads", strconv.Itoa(tier.Threads))
	}
	if tier.TrimSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(tier.TrimSeconds))
	}
	return append(args, "-f", "mp4", outputPath)
}

func trimStderr(b []byte) string {
	const max = 300
	s := string(b)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
