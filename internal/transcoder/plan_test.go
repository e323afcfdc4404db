package transcoder

import (
	"testing"
	"time"
)

func TestPlanForBrackets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		inputSize int64
		wantName  string
		wantKbps  int
		wantRate  int
		wantLimit time.Duration
	}{
		{"lower edge of standard", 25 * MiB, "standard", 32, 16000, 120 * time.Second},
		{"40 MB source", 40 * MiB, "standard", 32, 16000, 120 * time.Second},
		{"just under 100 MB", 100*MiB - 1, "standard", 32, 16000, 120 * time.Second},
		{"exactly 100 MB", 100 * MiB, "aggressive", 24, 11025, 150 * time.Second},
		{"150 MB source", 150 * MiB, "aggressive", 24, 11025, 150 * time.Second},
		{"exactly 200 MB", 200 * MiB, "heavy", 16, 8000, 120 * time.Second},
		{"exactly 300 MB", 300 * MiB, "extreme", 12, 8000, 90 * time.Second},
		{"450 MB source", 450 * MiB, "extreme", 12, 8000, 90 * time.Second},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tier := PlanFor(tt.inputSize)
			if tier.Name != tt.wantName {
				t.Errorf("PlanFor(%d).Name = %q, want %q", tt.inputSize, tier.Name, tt.wantName)
			}
			if tier.BitrateKbps != tt.wantKbps {
				t.Errorf("BitrateKbps = %d, want %d", tier.BitrateKbps, tt.wantKbps)
			}
			if tier.SampleRate != tt.wantRate {
				t.Errorf("SampleRate = %d, want %d", tier.SampleRate, tt.wantRate)
			}
			if tier.Timeout != tt.wantLimit {
				t.Errorf("Timeout = %v, want %v", tier.Timeout, tt.wantLimit)
			}
			if tier.Channels != 1 {
				t.Errorf("Channels = %d, every tier must force mono", tier.Channels)
			}
		})
	}
}

func TestPlanForIsPure(t *testing.T) {
	t.Parallel()

	a := PlanFor(150 * MiB)
	b := PlanFor(150 * MiB)
	if a != b {
		t.Errorf("PlanFor is not deterministic: %+v != %+v", a, b)
	}
}

func TestSegmentPlanFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		size       int64
		wantEncode bool
		wantName   string
	}{
		{"tiny segment passes through", 5 * MiB, false, "pass-through"},
		{"just under ceiling passes through", 25*MiB - 1, false, "pass-through"},
		{"at ceiling needs encoding", 25 * MiB, true, "segment-standard"},
		{"mid-size segment", 60 * MiB, true, "segment-aggressive"},
		{"huge segment", 150 * MiB, true, "segment-heavy"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tier, needsEncode := SegmentPlanFor(tt.size)
			if needsEncode != tt.wantEncode {
				t.Errorf("SegmentPlanFor(%d) needsEncode = %v, want %v", tt.size, needsEncode, tt.wantEncode)
			}
			if tier.Name != tt.wantName {
				t.Errorf("tier.Name = %q, want %q", tier.Name, tt.wantName)
			}
		})
	}
}

func TestEmergencyTierBoundsWorstCase(t *testing.T) {
	t.Parallel()

	if emergencyTier.Timeout != 45*time.Second {
		t.Errorf("emergency timeout = %v, want 45s", emergencyTier.Timeout)
	}
	if emergencyTier.TrimSeconds != 600 {
		t.Errorf("emergency trim = %d, want 600", emergencyTier.TrimSeconds)
	}
	if emergencyTier.Threads != 1 {
		t.Errorf("emergency threads = %d, want 1", emergencyTier.Threads)
	}
}
