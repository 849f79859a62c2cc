package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db          *sql.DB
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, ttl time.Duration, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS trust_cache (
			host VARCHAR(255) PRIMARY KEY,
			result MEDIUMTEXT,
			computed_at DATETIME,
			expires_at DATETIME,
			INDEX idx_trust_cache_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
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
func (c *MySQLCache) Get(ctx context.Context, identity string) (*core.CompositeResult, error) {
	var payload string
	err := c.db.QueryRowContext(ctx, `
		SELECT result
		FROM trust_cache
		WHERE host = ? AND expires_at > ?
	`, identity, time.Now().UTC()).Scan(&payload)

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
func (c *MySQLCache) Set(ctx context.Context, identity string, result *core.CompositeResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	expiresAt := time.Now().UTC().Add(c.ttl)
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO trust_cache (host, result, computed_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE result = VALUES(result),
			computed_at = VALUES(computed_at),
			expires_at = VALUES(expires_at)
	`, identity, string(payload), result.ComputedAt.UTC(), expiresAt)

	if err != nil {
		return fmt.Errorf("failed to insert cache record: %w", err)
	}
	return nil
}

// Delete removes the record for a host identity
func (c *MySQLCache) Delete(ctx context.Context, identity string) error {
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
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `
		DELETE FROM trust_cache
		WHERE expires_at <= ?
	`, time.Now().UTC())

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
func (c *MySQLCache) startCleanupTask() {
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
func (c *MySQLCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close MySQL connection", zap.Error(err))
		}
	})
}
