package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/PlayOffP/ytdlp-service/internal/extractor"
	"github.com/PlayOffP/ytdlp-service/internal/logging"
	"github.com/PlayOffP/ytdlp-service/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Cache stores recent URL resolutions so repeated requests for the same
// video skip the extraction round-trip. Entries expire on a TTL well under
// the lifetime of the signed stream URLs they hold.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.RWMutex
}

// New opens (creating if needed) the cache database at dbPath.
// dbPath is the full path to the database FILE and its parent directory
// must already exist and be writable; startup.LoadConfig validates that.
func New(ctx context.Context, dbPath string, ttl time.Duration) (*Cache, error) {
	logging.Info("Resolution cache path: %s", dbPath)

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_temp_store=MEMORY&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	c := &Cache{db: db, ttl: ttl}

	if err := c.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close cache database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	logging.Info("Resolution cache initialized at %s (TTL %v)", dbPath, ttl)
	return c, nil
}

func (c *Cache) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS resolutions (
		source_url TEXT NOT NULL,
		format TEXT NOT NULL,
		audio_url TEXT NOT NULL,
		title TEXT NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		container TEXT NOT NULL DEFAULT '',
		persona TEXT NOT NULL DEFAULT '',
		resolved_at INTEGER NOT NULL,
		PRIMARY KEY (source_url, format)
	);

	CREATE INDEX IF NOT EXISTS idx_resolutions_resolved_at ON resolutions(resolved_at);
	`

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// Get returns the cached resolution for a source URL and format, or false
// when absent or expired. Expired rows are left for Sweep.
func (c *Cache) Get(ctx context.Context, sourceURL, format string) (*extractor.Resolution, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cutoff := time.Now().Add(-c.ttl).Unix()

	var res extractor.Resolution
	err := c.db.QueryRowContext(ctx, `
		SELECT audio_url, title, duration, container, persona
		FROM resolutions
		WHERE source_url = ? AND format = ? AND resolved_at >= ?
	`, sourceURL, format, cutoff).Scan(
		&res.AudioURL, &res.Title, &res.DurationSeconds, &res.Container, &res.Persona,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Warn("Cache lookup failed: %v", err)
		}
		metrics.ResolutionCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.ResolutionCacheLookups.WithLabelValues("hit").Inc()
	return &res, true
}

// Put stores a resolution, replacing any previous entry for the same
// source URL and format.
func (c *Cache) Put(ctx context.Context, sourceURL, format string, res *extractor.Resolution) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	query := `
		INSERT INTO resolutions (source_url, format, audio_url, title, duration, container, persona, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url, format) DO UPDATE SET
			audio_url = excluded.audio_url,
			title = excluded.title,
			duration = excluded.duration,
			container = excluded.container,
			persona = excluded.persona,
			resolved_at = excluded.resolved_at
	`

	_, err := c.db.ExecContext(ctx, query,
		sourceURL, format, res.AudioURL, res.Title, res.DurationSeconds,
		res.Container, res.Persona, time.Now().Unix(),
	)
	return err
}

// Sweep deletes expired entries and returns how many were removed.
// Intended to run periodically from a background goroutine.
func (c *Cache) Sweep(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl).Unix()
	result, err := c.db.ExecContext(ctx, "DELETE FROM resolutions WHERE resolved_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache sweep failed: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		logging.Debug("Swept %d expired cache entries", removed)
	}
	return removed, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}
