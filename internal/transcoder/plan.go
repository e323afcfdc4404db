package transcoder

import "time"

// MiB in bytes.
const MiB = 1 << 20

// Size boundaries for routing and planning. Input size, not output size,
// selects the tier: larger inputs need more aggressive settings to finish
// inside the wall-clock budget, not just to shrink.
const (
	// PassThroughLimit is the downstream consumer's hard input ceiling.
	// Anything below it ships as-is without re-encoding.
	PassThroughLimit = 25 * MiB

	// SegmentThreshold is the "large file" boundary above which sources are
	// cut into time segments instead of compressed whole.
	SegmentThreshold = 100 * MiB

	// InputCeiling is the absolute per-request size limit. Larger sources
	// are rejected before the download completes.
	InputCeiling = 500 * MiB

	// OutputCeiling is the maximum acceptable artifact size after
	// compression, identical to PassThroughLimit.
	OutputCeiling = 25 * MiB
)

// Tier is a fixed bundle of encoding parameters selected by input-size
// bracket. Tiers are stateless and shared read-only across requests.
type Tier struct {
	Name        string
	BitrateKbps int
	SampleRate  int
	Channels    int
	Threads     int // 0 = encoder default
	TrimSeconds int // 0 = full length
	Timeout     time.Duration
}

// tiers is the main compression table. Timeouts shrink as input grows:
// per-attempt budget is what must stay bounded, and the lower
// bitrate/sample-rate settings at the big end encode faster per second of
// audio.
var tiers = []struct {
	maxSize int64
	tier    Tier
}{
	{100 * MiB, Tier{Name: "standard", BitrateKbps: 32, SampleRate: 16000, Channels: 1, Timeout: 120 * time.Second}},
	{200 * MiB, Tier{Name: "aggressive", BitrateKbps: 24, SampleRate: 11025, Channels: 1, Timeout: 150 * time.Second}},
	{300 * MiB, Tier{Name: "heavy", BitrateKbps: 16, SampleRate: 8000, Channels: 1, Timeout: 120 * time.Second}},
	{0, Tier{Name: "extreme", BitrateKbps: 12, SampleRate: 8000, Channels: 1, Timeout: 90 * time.Second}},
}

// emergencyTier is the one-shot escalation after a failed primary attempt:
// minimal quality, single thread, output truncated to the first ten minutes.
// Its 45s budget bounds worst-case compression time to primary timeout + 45s.
var emergencyTier = Tier{
	Name:        "emergency",
	BitrateKbps: 8,
	SampleRate:  8000,
	Channels:    1,
	Threads:     1,
	TrimSeconds: 600,
	Timeout:     45 * time.Second,
}

// segmentTiers keys on a segment's own size. Segments are bounded-duration
// cuts and much smaller than whole sources, so they get their own table
// with shorter budgets.
var segmentTiers = []struct {
	maxSize int64
	tier    Tier
}{
	{50 * MiB, Tier{Name: "segment-standard", BitrateKbps: 32, SampleRate: 16000, Channels: 1, Timeout: 90 * time.Second}},
	{100 * MiB, Tier{Name: "segment-aggressive", BitrateKbps: 24, SampleRate: 11025, Channels: 1, Timeout: 90 * time.Second}},
	{0, Tier{Name: "segment-heavy", BitrateKbps: 16, SampleRate: 8000, Channels: 1, Timeout: 60 * time.Second}},
}

// PlanFor selects the compression tier for a whole-source input. Pure
// function of input size; inputs under PassThroughLimit never reach the
// planner.
func PlanFor(inputSize int64) Tier {
	for _, entry := range tiers {
		if entry.maxSize > 0 && inputSize < entry.maxSize {
			return entry.tier
		}
	}
	return tiers[len(tiers)-1].tier
}

// SegmentPlanFor selects the compression tier for a single segment keyed by
// the segment's own size. ok is false when the segment is already under the
// output ceiling and should ship without re-encoding.
func SegmentPlanFor(segmentSize int64) (Tier, bool) {
	if segmentSize < PassThroughLimit {
		return Tier{Name: "pass-through"}, false
	}
	for _, entry := range segmentTiers {
		if entry.maxSize > 0 && segmentSize < entry.maxSize {
			return entry.tier, true
		}
	}
	return segmentTiers[len(segmentTiers)-1].tier, true
}
