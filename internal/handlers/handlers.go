package handlers

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/PlayOffP/ytdlp-service/internal/extractor"
	"github.com/PlayOffP/ytdlp-service/internal/pipeline"
)

// urlResolver resolves a platform URL to a direct audio stream.
type urlResolver interface {
	Resolve(ctx context.Context, rawURL, formatPreference string) (*extractor.Resolution, error)
}

// audioProcessor runs the full download-and-compress pipeline.
type audioProcessor interface {
	Process(ctx context.Context, rawURL string) (*pipeline.Result, error)
}

// resolutionCache is the read-through cache in front of the resolver.
// Nil-safe via the cacheDisabled sentinel below.
type resolutionCache interface {
	Get(ctx context.Context, sourceURL, format string) (*extractor.Resolution, bool)
	Put(ctx context.Context, sourceURL, format string, res *extractor.Resolution) error
}

type Handlers struct {
	resolver     urlResolver
	processor    audioProcessor
	cache        resolutionCache
	slots        *semaphore.Weighted
	extractSlots *semaphore.Weighted
	client       *http.Client
	started      time.Time
}

// New creates the handler set. maxPipelines bounds concurrent /process
// runs and maxExtractions bounds concurrent resolver invocations; cache
// may be nil to disable resolution caching.
func New(resolver urlResolver, processor audioProcessor, cache resolutionCache, maxPipelines, maxExtractions int) *Handlers {
	if maxPipelines < 1 {
		maxPipelines = 1
	}
	if maxExtractions < 1 {
		maxExtractions = 1
	}
	h := &Handlers{
		resolver:     resolver,
		processor:    processor,
		cache:        cache,
		slots:        semaphore.NewWeighted(int64(maxPipelines)),
		extractSlots: semaphore.NewWeighted(int64(maxExtractions)),
		client:       &http.Client{},
		started:      time.Now(),
	}
	if cache == nil {
		h.cache = cacheDisabled{}
	}
	return h
}

// cacheDisabled satisfies resolutionCache with permanent misses.
type cacheDisabled struct{}

func (cacheDisabled) Get(context.Context, string, string) (*extractor.Resolution, bool) {
	return nil, false
}

func (cacheDisabled) Put(context.Context, string, string, *extractor.Resolution) error {
	return nil
}
