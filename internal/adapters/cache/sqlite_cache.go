package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

// SQLiteCache is a SQLite implementation of the CacheRepository interface.
// The composite result is stored as a JSON document keyed by host
// identity; expiry comparisons use parameter times so the database clock
// never matters.
type SQLiteCache struct {
	db          *sql.DB
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, ttl time.Duration, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trust_cache (
			host TEXT PRIMARY KEY,
			result TEXT,
			computed_at TEXT,
			expires_at TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_trust_cache_expires_at ON trust_cache(expires_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:          db,
		logger:      logger,
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache, nil
}

// Get retrieves the stored result for a host identity
func (c *SQLiteCache) Get(ctx context.Context, identity string) (*core.CompositeResult, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `
		SELECT result
		FROM trust_cache
		WHERE host = ? AND expires_at > ?
	`, identity, time.Now().UTC().Format(time.RFC3339)).Scan(&payload)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var result core.CompositeResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// Set stores a result, replacing any previous record for the identity
func (c *SQLiteCache) Set(ctx context.Context, identity string, result *core.CompositeResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	expiresAt := time.Now().UTC().Add(c.ttl)
	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO trust_cache (host, result, computed_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, identity, string(payload), result.ComputedAt.UTC().Format(time.RFC3339), expiresAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert cache record: %w", err)
	}
	return nil
}

// Delete removes the record for a host identity
func (c *SQLiteCache) Delete(ctx context.Context, identity string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM trust_cache
		WHERE host = ?
	`, identity)

	if err != nil {
		return fmt.Errorf("failed to delete cache record: %w", err)
	}
	return nil
}

// Cleanup removes expired records
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM trust_cache
		WHERE expires_at <= ?
	`, time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to clean up expired records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache records", zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanupTask starts a background task to clean up expired records
func (c *SQLiteCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task and closes the database connection
func (c *SQLiteCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close SQLite database", zap.Error(err))
		}
	})
}
