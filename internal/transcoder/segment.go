package transcoder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// ErrSegmentationFailed indicates no usable segment could be cut from the
// source.
var ErrSegmentationFailed = errors.New("segmentation failed")

// DefaultChunkSeconds is the fixed segment length for large sources.
const DefaultChunkSeconds = 600

// segmentCutTimeout bounds a single container-copy cut. Copies do not
// re-encode, so even long chunks finish in seconds.
const segmentCutTimeout = 30 * time.Second

// minSegmentBytes rejects cuts that landed on a bad boundary and produced
// a near-empty file.
const minSegmentBytes = 1024

// Segment is one time-bounded, losslessly-cut slice of a large source.
// Segments live in the request workspace and die with it.
type Segment struct {
	Index           int
	StartSeconds    float64
	DurationSeconds float64
	SizeBytes       int64
	Path            string
}

// Segment cuts inputPath into chunkSeconds-long pieces by container copy,
// without re-encoding. A chunk that fails to cut, or that comes out
// implausibly small, is dropped rather than failing the whole operation:
// one bad boundary must not sacrifice the rest of the source.
func (t *Transcoder) Segment(ctx context.Context, inputPath, workDir string, chunkSeconds int) ([]Segment, error) {
	if chunkSeconds <= 0 {
		chunkSeconds = DefaultChunkSeconds
	}

	duration, err := t.ProbeDuration(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	chunkCount := int(math.Ceil(duration / float64(chunkSeconds)))
	if chunkCount < 1 {
		chunkCount = 1
	}
	logging.Info("Segmenting %.0fs source into %d chunks of %ds", duration, chunkCount, chunkSeconds)

	ext := filepath.Ext(inputPath)
	if ext == "" {
		ext = ".mp4"
	}

	var segments []Segment
	for i := 0; i < chunkCount; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		start := float64(i * chunkSeconds)
		segDuration := math.Min(float64(chunkSeconds), duration-start)
		outPath := filepath.Join(workDir, fmt.Sprintf("segment_%03d%s", i, ext))

		res, err := t.run(ctx, segmentCutTimeout, t.ffmpeg,
			"-y",
			"-nostdin",
			"-loglevel", "error",
			"-ss", strconv.FormatFloat(start, 'f', 2, 64),
			"-i", inputPath,
			"-t", strconv.Itoa(chunkSeconds),
			"-c", "copy",
			outPath,
		)
		if err != nil || res.ExitCode != 0 {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				_ = os.Remove(outPath)
				return nil, err
			}
			logging.Warn("Dropping segment %d: cut failed (err=%v, exit=%d)", i, err, res.ExitCode)
			_ = os.Remove(outPath)
			continue
		}

		info, statErr := os.Stat(outPath)
		if statErr != nil || info.Size() < minSegmentBytes {
			logging.Warn("Dropping segment %d: implausibly small output", i)
			_ = os.Remove(outPath)
			continue
		}

		segments = append(segments, Segment{
			Index:           i,
			StartSeconds:    start,
			DurationSeconds: segDuration,
			SizeBytes:       info.Size(),
			Path:            outPath,
		})
	}

	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: every chunk was dropped", ErrSegmentationFailed)
	}
	return segments, nil
}
