// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - WORK_DIR: Directory for per-request workspaces (default: system temp dir)
//   - DATABASE_DIR: Directory for the resolution cache database (default: /database)
//   - YTDLP_PATH: Path to the yt-dlp binary (default: yt-dlp)
//   - FFMPEG_PATH: Path to the ffmpeg binary (default: ffmpeg)
//   - FFPROBE_PATH: Path to the ffprobe binary (default: ffprobe)
//   - CACHE_TTL: Resolution cache entry lifetime as Go duration (default: 15m)
//   - DOWNLOAD_TIMEOUT: Ceiling on one source download as Go duration (default: 10m)
//   - MAX_CONCURRENT_PIPELINES: Pipeline concurrency cap, 0 = derive from CPUs (default: 0)
//   - RATE_LIMIT_PER_MINUTE: Sustained request allowance per client IP (default: 30)
//   - RATE_LIMIT_BURST: Burst allowance per client IP (default: 10)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - PIPELINE_WORKERS: Override for derived pipeline slot count
//
// # Directory Setup
//
// Both the work directory and the database directory are required and must
// be writable; LoadConfig creates them when missing.
//
// # External Tools
//
// [CheckTools] verifies yt-dlp, ffmpeg, and ffprobe before the server
// accepts traffic. A missing ffprobe only degrades segmentation and is
// reported as a warning.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo]:
//   - Version: Application version
//   - Commit: Git commit hash
//   - BuildTime: Build timestamp
//   - GoVersion: Go compiler version
package startup
