package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/PlayOffP/ytdlp-service/internal/extractor"
)

// setupTestCache creates a cache backed by a real SQLite file in a temp dir.
func setupTestCache(t testing.TB, ttl time.Duration) *Cache {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := New(context.Background(), dbPath, ttl)
	if err != nil {
		t.Fatalf("Failed to create test cache: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return c
}

func sampleResolution() *extractor.Resolution {
	return &extractor.Resolution{
		AudioURL:        "https://rr1.example.net/audio?sig=abc",
		Title:           "sample video",
		DurationSeconds: 245.5,
		Container:       "m4a",
		Persona:         "ios",
	}
}

func TestCachePutGet(t *testing.T) {
	t.Parallel()

	c := setupTestCache(t, time.Hour)
	ctx := context.Background()

	src := "https://www.youtube.com/watch?v=abc123"
	want := sampleResolution()

	if err := c.Put(ctx, src, "m4a", want); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get(ctx, src, "m4a")
	if !ok {
		t.Fatal("Get returned miss for freshly stored entry")
	}
	if got.AudioURL != want.AudioURL {
		t.Errorf("AudioURL = %q, want %q", got.AudioURL, want.AudioURL)
	}
	if got.Title != want.Title {
		t.Errorf("Title = %q, want %q", got.Title, want.Title)
	}
	if got.DurationSeconds != want.DurationSeconds {
		t.Errorf("DurationSeconds = %v, want %v", got.DurationSeconds, want.DurationSeconds)
	}
	if got.Persona != want.Persona {
		t.Errorf("Persona = %q, want %q", got.Persona, want.Persona)
	}
}

func TestCacheMissForUnknownURL(t *testing.T) {
	t.Parallel()

	c := setupTestCache(t, time.Hour)

	if _, ok := c.Get(context.Background(), "https://www.youtube.com/watch?v=unknown", "m4a"); ok {
		t.Error("Get returned hit for URL never stored")
	}
}

func TestCacheKeyedByFormat(t *testing.T) {
	t.Parallel()

	c := setupTestCache(t, time.Hour)
	ctx := context.Background()

	src := "https://www.youtube.com/watch?v=abc123"
	if err := c.Put(ctx, src, "m4a", sampleResolution()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if _, ok := c.Get(ctx, src, "mp3"); ok {
		t.Error("Get for different format should miss")
	}
}

func TestCachePutReplaces(t *testing.T) {
	t.Parallel()

	c := setupTestCache(t, time.Hour)
	ctx := context.Background()

	src := "https://www.youtube.com/watch?v=abc123"
	if err := c.Put(ctx, src, "m4a", sampleResolution()); err != nil {
		t.Fatalf("first Put: %v", err)
	}

	updated := sampleResolution()
	updated.AudioURL = "https://rr2.example.net/audio?sig=def"
	updated.Persona = "android"
	if err := c.Put(ctx, src, "m4a", updated); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, ok := c.Get(ctx, src, "m4a")
	if !ok {
		t.Fatal("Get returned miss after replacement")
	}
	if got.AudioURL != updated.AudioURL {
		t.Errorf("AudioURL = %q, want replacement %q", got.AudioURL, updated.AudioURL)
	}
	if got.Persona != "android" {
		t.Errorf("Persona = %q, want android", got.Persona)
	}
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	c := setupTestCache(t, time.Hour)
	ctx := context.Background()

	src := "https://www.youtube.com/watch?v=old"
	if err := c.Put(ctx, src, "m4a", sampleResolution()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Backdate the entry past the TTL.
	stale := time.Now().Add(-2 * time.Hour).Unix()
	if _, err := c.db.Exec("UPDATE resolutions SET resolved_at = ?", stale); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, ok := c.Get(ctx, src, "m4a"); ok {
		t.Error("Get returned hit for expired entry")
	}

	removed, err := c.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Errorf("Sweep removed %d entries, want 1", removed)
	}
}

func TestSweepKeepsFreshEntries(t *testing.T) {
	t.Parallel()

	c := setupTestCache(t, time.Hour)
	ctx := context.Background()

	src := "https://www.youtube.com/watch?v=fresh"
	if err := c.Put(ctx, src, "m4a", sampleResolution()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	removed, err := c.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 0 {
		t.Errorf("Sweep removed %d entries, want 0", removed)
	}

	if _, ok := c.Get(ctx, src, "m4a"); !ok {
		t.Error("fresh entry missing after sweep")
	}
}
