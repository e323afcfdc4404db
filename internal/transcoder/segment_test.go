package transcoder

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/runner"
)

func writeBytes(path string, n int64) error {
	return os.WriteFile(path, make([]byte, n), 0o644)
}

// probeJSON fabricates an ffprobe -of json payload.
func probeJSON(duration string) []byte {
	return []byte(`{"format":{"duration":"` + duration + `","size":"157286400"}}`)
}

// segmentFakeRun answers the first call as ffprobe and subsequent calls as
// ffmpeg cuts.
type segmentFakeRun struct {
	probeOut  []byte
	probeExit int
	cuts      []fakeResult
	cutCalls  int
}

func (f *segmentFakeRun) run(_ context.Context, _ time.Duration, name string, args ...string) (runner.Result, error) {
	if name == "ffprobe" {
		return runner.Result{ExitCode: f.probeExit, Stdout: f.probeOut}, nil
	}

	idx := f.cutCalls
	f.cutCalls++
	if idx >= len(f.cuts) {
		return runner.Result{ExitCode: 1}, nil
	}
	res := f.cuts[idx]
	if res.outputSize > 0 {
		out := args[len(args)-1]
		if err := writeBytes(out, res.outputSize); err != nil {
			panic(err)
		}
	}
	return runner.Result{ExitCode: res.exitCode}, res.err
}

func TestSegmentCutsExpectedChunkCount(t *testing.T) {
	t.Parallel()

	// 1500s at 600s per chunk: ceil(1500/600) = 3 chunks.
	f := &segmentFakeRun{
		probeOut: probeJSON("1500.25"),
		cuts: []fakeResult{
			{outputSize: 40 * MiB},
			{outputSize: 40 * MiB},
			{outputSize: 20 * MiB},
		},
	}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	segments, err := tr.Segment(context.Background(), "source.mp4", t.TempDir(), 600)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}

	for i, seg := range segments {
		if seg.Index != i {
			t.Errorf("segment %d has index %d", i, seg.Index)
		}
		if seg.StartSeconds != float64(i*600) {
			t.Errorf("segment %d starts at %.0fs, want %d", i, seg.StartSeconds, i*600)
		}
	}
	// The final chunk covers only the remainder.
	if got := segments[2].DurationSeconds; got > 600 || got < 300 {
		t.Errorf("last segment duration = %.2f, want ~300.25", got)
	}
}

func TestSegmentDropsFailedChunks(t *testing.T) {
	t.Parallel()

	f := &segmentFakeRun{
		probeOut: probeJSON("1200"),
		cuts: []fakeResult{
			{outputSize: 40 * MiB},
			{exitCode: 1}, // bad boundary, dropped
		},
	}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	segments, err := tr.Segment(context.Background(), "source.mp4", t.TempDir(), 600)
	if err != nil {
		t.Fatalf("Segment() error = %v, a single bad chunk must not abort", err)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1 surviving", len(segments))
	}
}

func TestSegmentCanceledMidLoopReturnsImmediately(t *testing.T) {
	t.Parallel()

	f := &segmentFakeRun{
		probeOut: probeJSON("1800"),
		cuts: []fakeResult{
			{outputSize: 40 * MiB},
			{err: context.Canceled}, // client gone mid-cut
		},
	}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	_, err := tr.Segment(context.Background(), "source.mp4", t.TempDir(), 600)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Segment() error = %v, want context.Canceled", err)
	}
	if f.cutCalls != 2 {
		t.Fatalf("cut ran %d times, want 2 (no cuts after cancellation)", f.cutCalls)
	}
}

func TestSegmentDropsNearZeroChunks(t *testing.T) {
	t.Parallel()

	f := &segmentFakeRun{
		probeOut: probeJSON("1200"),
		cuts: []fakeResult{
			{outputSize: 100}, // implausibly small
			{outputSize: 40 * MiB},
		},
	}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	segments, err := tr.Segment(context.Background(), "source.mp4", t.TempDir(), 600)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(segments) != 1 || segments[0].Index != 1 {
		t.Fatalf("expected only segment index 1 to survive, got %+v", segments)
	}
}

func TestSegmentAllChunksDroppedFails(t *testing.T) {
	t.Parallel()

	f := &segmentFakeRun{
		probeOut: probeJSON("900"),
		cuts:     []fakeResult{{exitCode: 1}, {exitCode: 1}},
	}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	_, err := tr.Segment(context.Background(), "source.mp4", t.TempDir(), 600)
	if !errors.Is(err, ErrSegmentationFailed) {
		t.Fatalf("Segment() error = %v, want ErrSegmentationFailed", err)
	}
}

func TestSegmentProbeFailure(t *testing.T) {
	t.Parallel()

	f := &segmentFakeRun{probeOut: []byte("{}"), probeExit: 0}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	_, err := tr.Segment(context.Background(), "source.mp4", t.TempDir(), 600)
	if !errors.Is(err, ErrProbeFailed) {
		t.Fatalf("Segment() error = %v, want ErrProbeFailed", err)
	}
}

func TestProbeDuration(t *testing.T) {
	t.Parallel()

	f := &segmentFakeRun{probeOut: probeJSON("93.47")}
	tr := New("ffmpeg", "ffprobe")
	tr.run = f.run

	d, err := tr.ProbeDuration(context.Background(), "source.mp4")
	if err != nil {
		t.Fatalf("ProbeDuration() error = %v", err)
	}
	if d != 93.47 {
		t.Errorf("duration = %v, want 93.47", d)
	}
}
