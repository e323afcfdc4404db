package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/extractor"
	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/metrics"
	"github.com/PlayOffP/ytdlp-service/internal/transcoder"
)

// Branch names for the size-routing decision.
const (
	BranchPassThrough = "pass-through"
	BranchCompressed  = "compressed"
	BranchSegmented   = "segmented"
)

// resolver yields a fetchable audio URL for a platform video URL.
type resolver interface {
	Resolve(ctx context.Context, rawURL, formatPreference string) (*extractor.Resolution, error)
}

// compressor is the transcoding surface the pipeline drives. Satisfied by
// *transcoder.Transcoder; faked in tests.
type compressor interface {
	Compress(ctx context.Context, inputPath, outputPath string, inputSize int64) (int64, transcoder.Tier, error)
	CompressSegment(ctx context.Context, inputPath, outputPath string, segmentSize int64) (int64, transcoder.Tier, bool, error)
	Segment(ctx context.Context, inputPath, workDir string, chunkSeconds int) ([]transcoder.Segment, error)
}

// Pipeline sequences resolution, download, size routing, and compression
// for one request at a time. It holds no per-request state and is shared
// across requests; every run gets its own Workspace.
type Pipeline struct {
	resolver        resolver
	compressor      compressor
	client          *http.Client
	baseDir         string
	downloadTimeout time.Duration
}

// New creates a Pipeline writing workspaces under baseDir.
func New(res *extractor.Extractor, tc *transcoder.Transcoder, baseDir string, downloadTimeout time.Duration) *Pipeline {
	return &Pipeline{
		resolver:        res,
		compressor:      tc,
		client:          &http.Client{},
		baseDir:         baseDir,
		downloadTimeout: downloadTimeout,
	}
}

// Result describes a finished pipeline run. The Workspace is still live:
// the caller streams ArtifactPath to the client and then must call
// Workspace.Remove exactly once, disconnect or not.
type Result struct {
	ArtifactPath string
	ArtifactSize int64
	OriginalSize int64
	Branch       string
	Tier         transcoder.Tier
	Partial      bool
	SegmentCount int
	Title        string
	Duration     float64
	Persona      string
	Workspace    *Workspace
}

// Process runs the full resolution-and-transcode pipeline for one URL.
//
// On any error the workspace is already removed when Process returns; on
// success ownership of the workspace transfers to the caller via Result.
func (p *Pipeline) Process(ctx context.Context, rawURL string) (*Result, error) {
	metrics.PipelinesActive.Inc()
	defer metrics.PipelinesActive.Dec()

	start := time.Now()
	res, err := p.resolver.Resolve(ctx, rawURL, "m4a")
	metrics.ObserveStage("resolve", time.Since(start))
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("none", "error").Inc()
		return nil, err
	}

	ws, err := NewWorkspace(p.baseDir)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("none", "error").Inc()
		return nil, err
	}

	result, err := p.run(ctx, ws, res)
	if err != nil {
		branch := "none"
		if result != nil {
			branch = result.Branch
		}
		metrics.PipelineRunsTotal.WithLabelValues(branch, "error").Inc()
		ws.Remove()
		return nil, err
	}

	metrics.PipelineRunsTotal.WithLabelValues(result.Branch, "success").Inc()
	return result, nil
}

// run executes download and the size-routed branch inside an existing
// workspace. The caller owns workspace cleanup.
func (p *Pipeline) run(ctx context.Context, ws *Workspace, res *extractor.Resolution) (*Result, error) {
	srcPath := ws.Path("source" + containerExt(res.Container))

	start := time.Now()
	size, err := p.download(ctx, res.AudioURL, srcPath)
	metrics.ObserveStage("download", time.Since(start))
	if err != nil {
		return nil, err
	}

	result := &Result{
		ArtifactPath: srcPath,
		ArtifactSize: size,
		OriginalSize: size,
		Branch:       BranchPassThrough,
		Title:        res.Title,
		Duration:     res.DurationSeconds,
		Persona:      res.Persona,
		Workspace:    ws,
	}

	switch {
	case size < transcoder.PassThroughLimit:
		logging.Info("Source is %.1f MB, under the ceiling; no compression needed", float64(size)/transcoder.MiB)
		return result, nil

	case size < transcoder.SegmentThreshold:
		return p.directCompress(ctx, ws, srcPath, size, result)

	default:
		return p.segmentAndCompress(ctx, ws, srcPath, size, result)
	}
}

func (p *Pipeline) directCompress(ctx context.Context, ws *Workspace, srcPath string, size int64, result *Result) (*Result, error) {
	result.Branch = BranchCompressed

	start := time.Now()
	outPath := ws.Path("compressed.m4a")
	outSize, tier, err := p.compressor.Compress(ctx, srcPath, outPath, size)
	metrics.ObserveStage("compress", time.Since(start))
	if err != nil {
		return result, err
	}

	result.ArtifactPath = outPath
	result.ArtifactSize = outSize
	result.Tier = tier
	return result, nil
}

func (p *Pipeline) segmentAndCompress(ctx context.Context, ws *Workspace, srcPath string, size int64, result *Result) (*Result, error) {
	result.Branch = BranchSegmented

	start := time.Now()
	segments, err := p.compressor.Segment(ctx, srcPath, ws.Dir, transcoder.DefaultChunkSeconds)
	metrics.ObserveStage("segment", time.Since(start))
	if err != nil {
		return result, err
	}

	// Only the first segment ships. A prompt, bounded response beats a
	// complete transcript here; Partial tells the caller what it got.
	first := segments[0]
	result.SegmentCount = len(segments)
	result.Partial = len(segments) > 1

	start = time.Now()
	outPath := ws.Path("compressed.m4a")
	outSize, tier, encoded, err := p.compressor.CompressSegment(ctx, first.Path, outPath, first.SizeBytes)
	metrics.ObserveStage("compress", time.Since(start))
	if err != nil {
		return result, err
	}

	if encoded {
		result.ArtifactPath = outPath
	} else {
		result.ArtifactPath = first.Path
	}
	result.ArtifactSize = outSize
	result.Tier = tier
	return result, nil
}

// containerExt maps a resolved container name to a file extension the
// segmenter's container-copy step can key its muxer on.
func containerExt(container string) string {
	switch container {
	case "m4a":
		return ".m4a"
	case "webm":
		return ".webm"
	case "mp3":
		return ".mp3"
	case "opus", "ogg":
		return ".ogg"
	case "":
		return ".mp4"
	default:
		return "." + container
	}
}
