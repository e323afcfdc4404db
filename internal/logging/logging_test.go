package logging

import "testing"

func TestLogLevelString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(42), "unknown(42)"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestGetLevelDefaultsToInfo(t *testing.T) {
	// The level is latched on first use; with no DEBUG or LOG_LEVEL set in the
	// test environment it must come back as info.
	if lvl := GetLevel(); lvl > LevelInfo {
		t.Errorf("GetLevel() = %v, want at most info", lvl)
	}
}
