package startup

import (
	"os"
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"true value", "true", false, true},
		{"false value", "false", true, false},
		{"numeric true", "1", false, true},
		{"invalid falls back to default", "banana", true, true},
		{"empty falls back to default", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VAR"
			if tt.envValue != "" {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvBool(key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q) = %v, want %v", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
	}{
		{"valid value", "42", 10, 42},
		{"zero allowed", "0", 10, 0},
		{"negative falls back to default", "-5", 10, 10},
		{"invalid falls back to default", "banana", 10, 10},
		{"empty falls back to default", "", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_INT_VAR"
			if tt.envValue != "" {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvInt(key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvInt(%q) = %d, want %d", tt.envValue, got, tt.want)
			}
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	workDir := t.TempDir()
	dbDir := t.TempDir()
	t.Setenv("WORK_DIR", workDir)
	t.Setenv("DATABASE_DIR", dbDir)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %q, want 8080", config.Port)
	}
	if config.MetricsPort != "9090" {
		t.Errorf("MetricsPort = %q, want 9090", config.MetricsPort)
	}
	if !config.MetricsEnabled {
		t.Error("MetricsEnabled should default to true")
	}
	if config.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL = %v, want 15m", config.CacheTTL)
	}
	if config.DownloadTimeout != 10*time.Minute {
		t.Errorf("DownloadTimeout = %v, want 10m", config.DownloadTimeout)
	}
	if config.YtdlpPath != "yt-dlp" {
		t.Errorf("YtdlpPath = %q, want yt-dlp", config.YtdlpPath)
	}
	if config.CachePath == "" {
		t.Error("CachePath should be derived from DATABASE_DIR")
	}
}

func TestLoadConfigInvalidDurations(t *testing.T) {
	t.Setenv("WORK_DIR", t.TempDir())
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("CACHE_TTL", "not-a-duration")
	t.Setenv("DOWNLOAD_TIMEOUT", "also-bad")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if config.CacheTTL != 15*time.Minute {
		t.Errorf("CacheTTL = %v, want 15m fallback", config.CacheTTL)
	}
	if config.DownloadTimeout != 10*time.Minute {
		t.Errorf("DownloadTimeout = %v, want 10m fallback", config.DownloadTimeout)
	}
}
