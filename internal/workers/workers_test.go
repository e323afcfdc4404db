package workers

import (
	"runtime"
	"testing"
)

func TestPipelineSlots(t *testing.T) {
	slots := PipelineSlots(0)
	if slots < 1 {
		t.Errorf("PipelineSlots(0) = %d, want at least 1", slots)
	}
	if max := runtime.GOMAXPROCS(0); slots > max {
		t.Errorf("PipelineSlots(0) = %d, exceeds GOMAXPROCS %d", slots, max)
	}
}

func TestPipelineSlotsCapped(t *testing.T) {
	if got := PipelineSlots(1); got != 1 {
		t.Errorf("PipelineSlots(1) = %d, want 1", got)
	}
}

func TestPipelineSlotsOverride(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "7")
	if got := PipelineSlots(0); got != 7 {
		t.Errorf("PipelineSlots with override = %d, want 7", got)
	}
	if got := PipelineSlots(3); got != 3 {
		t.Errorf("PipelineSlots override with cap = %d, want 3", got)
	}
}

func TestPipelineSlotsIgnoresBadOverride(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "not-a-number")
	if got := PipelineSlots(0); got < 1 {
		t.Errorf("PipelineSlots with bad override = %d, want at least 1", got)
	}
}

func TestExtractionSlots(t *testing.T) {
	want := runtime.GOMAXPROCS(0) * 2
	if got := ExtractionSlots(0); got != want {
		t.Errorf("ExtractionSlots(0) = %d, want %d", got, want)
	}
	if got := ExtractionSlots(4); got > 4 {
		t.Errorf("ExtractionSlots(4) = %d, want at most 4", got)
	}
}

func TestCapped(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		limit int
		want  int
	}{
		{"no limit", 8, 0, 8},
		{"under limit", 2, 4, 2},
		{"at limit", 4, 4, 4},
		{"over limit", 8, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := capped(tt.n, tt.limit); got != tt.want {
				t.Errorf("capped(%d, %d) = %d, want %d", tt.n, tt.limit, got, tt.want)
			}
		})
	}
}
