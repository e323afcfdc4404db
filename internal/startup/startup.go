package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	Port           string
	MetricsPort    string
	MetricsEnabled bool

	WorkDir     string
	DatabaseDir string

	YtdlpPath   string
	FFmpegPath  string
	FFprobePath string

	CacheTTL        time.Duration
	DownloadTimeout time.Duration

	MaxConcurrentPipelines int
	RateLimitPerMinute     int
	RateLimitBurst         int

	LogHealthChecks bool

	// Derived paths
	CachePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	workDir := getEnv("WORK_DIR", os.TempDir())
	databaseDir := getEnv("DATABASE_DIR", "/database")
	ytdlpPath := getEnv("YTDLP_PATH", "yt-dlp")
	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	ffprobePath := getEnv("FFPROBE_PATH", "ffprobe")
	cacheTTLStr := getEnv("CACHE_TTL", "15m")
	downloadTimeoutStr := getEnv("DOWNLOAD_TIMEOUT", "10m")
	maxPipelines := getEnvInt("MAX_CONCURRENT_PIPELINES", 0)
	rateLimitPerMinute := getEnvInt("RATE_LIMIT_PER_MINUTE", 30)
	rateLimitBurst := getEnvInt("RATE_LIMIT_BURST", 10)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)

	logging.Info("  PORT:                      %s", port)
	logging.Info("  METRICS_PORT:              %s", metricsPort)
	logging.Info("  METRICS_ENABLED:           %v", metricsEnabled)
	logging.Info("  WORK_DIR:                  %s", workDir)
	logging.Info("  DATABASE_DIR:              %s", databaseDir)
	logging.Info("  YTDLP_PATH:                %s", ytdlpPath)
	logging.Info("  FFMPEG_PATH:               %s", ffmpegPath)
	logging.Info("  FFPROBE_PATH:              %s", ffprobePath)
	logging.Info("  CACHE_TTL:                 %s", cacheTTLStr)
	logging.Info("  DOWNLOAD_TIMEOUT:          %s", downloadTimeoutStr)
	logging.Info("  MAX_CONCURRENT_PIPELINES:  %d (0 = auto)", maxPipelines)
	logging.Info("  RATE_LIMIT_PER_MINUTE:     %d", rateLimitPerMinute)
	logging.Info("  RATE_LIMIT_BURST:          %d", rateLimitBurst)
	logging.Info("  LOG_HEALTH_CHECKS:         %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:                 %s", logging.GetLevel())

	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		logging.Warn("  Invalid CACHE_TTL, using default: 15m")
		cacheTTL = 15 * time.Minute
	}

	downloadTimeout, err := time.ParseDuration(downloadTimeoutStr)
	if err != nil {
		logging.Warn("  Invalid DOWNLOAD_TIMEOUT, using default: 10m")
		downloadTimeout = 10 * time.Minute
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	workDir, err = filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory path: %w", err)
	}
	logging.Info("  Work directory (absolute): %s", workDir)

	databaseDir, err = filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	// Work directory is required: every pipeline run stages files there.
	if err := ensureDirectory(workDir, "work"); err != nil {
		return nil, fmt.Errorf("work directory error: %w", err)
	}
	logging.Debug("  Testing work directory write access...")
	if err := testWriteAccess(workDir); err != nil {
		return nil, fmt.Errorf("work directory is not writable: %w", err)
	}
	logging.Info("  [OK] Work directory is writable")

	if err := ensureDirectory(databaseDir, "database"); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}
	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable (required for resolution cache): %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	config := &Config{
		Port:                   port,
		MetricsPort:            metricsPort,
		MetricsEnabled:         metricsEnabled,
		WorkDir:                workDir,
		DatabaseDir:            databaseDir,
		YtdlpPath:              ytdlpPath,
		FFmpegPath:             ffmpegPath,
		FFprobePath:            ffprobePath,
		CacheTTL:               cacheTTL,
		DownloadTimeout:        downloadTimeout,
		MaxConcurrentPipelines: maxPipelines,
		RateLimitPerMinute:     rateLimitPerMinute,
		RateLimitBurst:         rateLimitBurst,
		LogHealthChecks:        logHealthChecks,
		CachePath:              filepath.Join(databaseDir, "resolutions.db"),
	}

	return config, nil
}

// CheckTools verifies the external binaries the service shells out to.
// yt-dlp and ffmpeg are required; a broken ffprobe only degrades
// segmentation, so it warns.
func CheckTools(config *Config) error {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("EXTERNAL TOOLS")
	logging.Info("------------------------------------------------------------")

	if err := checkBinary(config.YtdlpPath, "--version"); err != nil {
		return fmt.Errorf("yt-dlp check failed: %w", err)
	}
	logging.Info("  [OK] yt-dlp is available")

	if err := checkBinary(config.FFmpegPath, "-version"); err != nil {
		return fmt.Errorf("ffmpeg check failed: %w", err)
	}
	logging.Info("  [OK] ffmpeg is available")

	if err := checkBinary(config.FFprobePath, "-version"); err != nil {
		logging.Warn("  ffprobe check failed: %v", err)
		logging.Warn("  Large-source segmentation may not work correctly")
	} else {
		logging.Info("  [OK] ffprobe is available")
	}

	return nil
}

func checkBinary(path, versionFlag string) error {
	resolved, err := exec.LookPath(path)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", path)
	}
	logging.Debug("  %s path: %s", path, resolved)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, resolved, versionFlag).Output()
	if err != nil {
		return fmt.Errorf("failed to get %s version: %w", path, err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  %s version: %s", path, strings.TrimSpace(lines[0]))
	}

	return nil
}

// LogCacheInit logs resolution cache initialization
func LogCacheInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("RESOLUTION CACHE")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Cache initialized in %v", duration)
}

// LogPipelineInit logs pipeline setup
func LogPipelineInit(pipelineSlots, extractionSlots int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PIPELINE SETUP")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Concurrent pipeline slots:   %d", pipelineSlots)
	logging.Info("  Concurrent extraction slots: %d", extractionSlots)
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		count := 0
		err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			pathTemplate, err := route.GetPathTemplate()
			if err != nil {
				return err
			}
			methods, err := route.GetMethods()
			if err != nil {
				methods = []string{"*"}
			}
			for _, method := range methods {
				logging.Debug("    %-6s %s", method, pathTemplate)
				count++
			}
			return nil
		})
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}
		logging.Debug("  Registered routes: %d", count)
	}

	logging.Info("  HTTP logging enabled")
	if logHealthChecks {
		logging.Info("    Health check logging: ON")
	} else {
		logging.Info("    Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
            __      ____                            __
  __  __ __/ /_____/ / /___        ________  ______/ /
 / / / / __/ __  / / __ \ \  ____ / ___/ _ \/ ___/ _ \
/ /_/ / /_/ /_/ / / /_/ /  /____/(__  )  __/ /  | |/ /
\__, /\__/\__,_/_/ .___/        /____/\___/_/   |___/
/____/          /_/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
