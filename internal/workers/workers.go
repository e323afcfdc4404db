package workers

import (
	"os"
	"runtime"
	"strconv"
)

// PipelineSlots returns how many transcode pipelines may run concurrently.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+); the commonly
// used runtime.NumCPU() still reports the host's CPU count under cgroup
// limits, which would oversubscribe a small pod badly.
//
// Each pipeline drives an ffmpeg process that is itself multithreaded, so
// the default is one slot per two CPUs. The limit parameter caps the count;
// use 0 for no cap. Can be overridden with the PIPELINE_WORKERS environment
// variable.
func PipelineSlots(limit int) int {
	if override := os.Getenv("PIPELINE_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return capped(count, limit)
		}
	}

	slots := runtime.GOMAXPROCS(0) / 2
	if slots < 1 {
		slots = 1
	}
	return capped(slots, limit)
}

// ExtractionSlots returns how many concurrent extractions are reasonable.
// Extraction is network-bound, so two per CPU.
func ExtractionSlots(limit int) int {
	slots := runtime.GOMAXPROCS(0) * 2
	return capped(slots, limit)
}

func capped(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
