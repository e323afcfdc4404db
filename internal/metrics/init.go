package metrics

// InitializeMetrics pre-populates expected label combinations so every metric
// is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, persona := range []string{"ios", "android", "web"} {
		for _, outcome := range []string{"success", "error"} {
			ExtractionAttemptsTotal.WithLabelValues(persona, outcome)
		}
		ExtractionDuration.WithLabelValues(persona)
	}

	for _, result := range []string{"hit", "miss"} {
		ResolutionCacheLookups.WithLabelValues(result)
	}

	for _, branch := range []string{"none", "pass-through", "compressed", "segmented"} {
		for _, outcome := range []string{"success", "error"} {
			PipelineRunsTotal.WithLabelValues(branch, outcome)
		}
	}

	for _, stage := range []string{"resolve", "download", "compress", "segment"} {
		PipelineStageDuration.WithLabelValues(stage)
	}

	tiers := []string{"pass-through", "standard", "aggressive", "heavy", "extreme", "emergency",
		"segment-standard", "segment-aggressive", "segment-heavy"}
	for _, tier := range tiers {
		for _, outcome := range []string{"success", "error", "timeout"} {
			EncoderRunsTotal.WithLabelValues(tier, outcome)
		}
		EncoderRunDuration.WithLabelValues(tier)
	}
}
