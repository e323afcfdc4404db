package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PlayOffP/ytdlp-service/internal/cache"
	"github.com/PlayOffP/ytdlp-service/internal/extractor"
	"github.com/PlayOffP/ytdlp-service/internal/handlers"
	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/metrics"
	"github.com/PlayOffP/ytdlp-service/internal/middleware"
	"github.com/PlayOffP/ytdlp-service/internal/pipeline"
	"github.com/PlayOffP/ytdlp-service/internal/startup"
	"github.com/PlayOffP/ytdlp-service/internal/transcoder"
	"github.com/PlayOffP/ytdlp-service/internal/workers"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Verify external binaries before accepting traffic
	if err := startup.CheckTools(config); err != nil {
		logging.Fatal("External tool error: %v", err)
	}

	// Initialize resolution cache
	cacheStart := time.Now()
	resolutionCache, err := cache.New(context.Background(), config.CachePath, config.CacheTTL)
	if err != nil {
		logging.Fatal("Failed to initialize resolution cache: %v", err)
	}
	defer func() {
		if err := resolutionCache.Close(); err != nil {
			logging.Warn("Failed to close resolution cache: %v", err)
		}
	}()
	startup.LogCacheInit(time.Since(cacheStart))

	// Sweep expired cache entries periodically
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if _, err := resolutionCache.Sweep(context.Background()); err != nil {
				logging.Warn("Cache sweep failed: %v", err)
			}
		}
	}()

	// Wire the pipeline
	resolver := extractor.New(config.YtdlpPath)
	encoder := transcoder.New(config.FFmpegPath, config.FFprobePath)
	pipe := pipeline.New(resolver, encoder, config.WorkDir, config.DownloadTimeout)

	slots := config.MaxConcurrentPipelines
	if slots == 0 {
		slots = workers.PipelineSlots(0)
	}
	extractSlots := workers.ExtractionSlots(0)
	startup.LogPipelineInit(slots, extractSlots)

	// Initialize handlers and router
	h := handlers.New(resolver, pipe, resolutionCache, slots, extractSlots)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Middleware chain: rate limit innermost, logging outermost
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerMinute: config.RateLimitPerMinute,
		Burst:             config.RateLimitBurst,
		SkipPaths:         middleware.DefaultRateLimitConfig().SkipPaths,
	})
	var handler http.Handler = rateLimiter.Middleware()(router)
	handler = middleware.CORS()(handler)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Metrics server on its own port
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	// WriteTimeout stays 0: artifact delivery can legitimately take
	// minutes and the streaming layer enforces its own pacing.
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, metricsSrv)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	r.HandleFunc("/extract", h.Extract).Methods("GET")
	r.HandleFunc("/download", h.Download).Methods("GET")
	r.HandleFunc("/process", h.Process).Methods("GET")

	return r
}

func handleShutdown(srv, metricsSrv *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
