package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytdlp_service_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytdlp_service_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytdlp_service_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Extraction metrics
var (
	ExtractionAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytdlp_service_extraction_attempts_total",
			Help: "Extraction attempts by persona and outcome",
		},
		[]string{"persona", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytdlp_service_extraction_duration_seconds",
			Help:    "Duration of a single persona extraction attempt",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"persona"},
	)

	ResolutionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytdlp_service_resolution_cache_lookups_total",
			Help: "Resolution cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)
)

// Pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytdlp_service_pipeline_runs_total",
			Help: "Pipeline runs by branch and outcome",
		},
		[]string{"branch", "outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytdlp_service_pipeline_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 180, 300},
		},
		[]string{"stage"}, // "resolve", "download", "compress", "segment"
	)

	PipelinesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ytdlp_service_pipelines_active",
			Help: "Number of pipeline runs currently executing",
		},
	)

	DownloadedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ytdlp_service_downloaded_bytes_total",
			Help: "Total bytes fetched from resolved source URLs",
		},
	)
)

// Encoder metrics
var (
	EncoderRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ytdlp_service_encoder_runs_total",
			Help: "External encoder runs by tier and outcome",
		},
		[]string{"tier", "outcome"}, // outcome: "success", "error", "timeout"
	)

	EncoderRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ytdlp_service_encoder_run_duration_seconds",
			Help:    "External encoder run duration by tier",
			Buckets: []float64{1, 5, 15, 30, 45, 60, 90, 120, 150},
		},
		[]string{"tier"},
	)
)

// ObserveExtraction records one persona attempt.
func ObserveExtraction(persona string, success bool, d time.Duration) {
	outcome := "error"
	if success {
		outcome = "success"
	}
	ExtractionAttemptsTotal.WithLabelValues(persona, outcome).Inc()
	ExtractionDuration.WithLabelValues(persona).Observe(d.Seconds())
}

// ObserveEncoderRun records one external encoder invocation.
func ObserveEncoderRun(tier, outcome string, d time.Duration) {
	EncoderRunsTotal.WithLabelValues(tier, outcome).Inc()
	EncoderRunDuration.WithLabelValues(tier).Observe(d.Seconds())
}

// ObserveStage records the duration of one pipeline stage.
func ObserveStage(stage string, d time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
