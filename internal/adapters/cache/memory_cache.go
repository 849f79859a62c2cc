package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

var (
	// ErrNotFound is returned when a cache record is not found
	ErrNotFound = errors.New("cache record not found")
	// ErrExpired is returned when a cache record has expired
	ErrExpired = errors.New("cache record expired")
)

type memoryRecord struct {
	result    *core.CompositeResult
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the CacheRepository interface
type MemoryCache struct {
	records     map[string]*memoryRecord
	mu          sync.RWMutex
	logger      *zap.Logger
	ttl         time.Duration
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, ttl time.Duration, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		records:     make(map[string]*memoryRecord),
		logger:      logger,
		ttl:         ttl,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	go cache.startCleanupTask()

	return cache
}

// Get retrieves the stored result for a host identity
func (c *MemoryCache) Get(ctx context.Context, identity string) (*core.CompositeResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.records[identity]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(record.expiresAt) {
		return nil, ErrExpired
	}

	return record.result, nil
}

// Set stores a result, replacing any previous record for the identity
func (c *MemoryCache) Set(ctx context.Context, identity string, result *core.CompositeResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[identity] = &memoryRecord{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

// Delete removes the record for a host identity
func (c *MemoryCache) Delete(ctx context.Context, identity string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.records, identity)
	return nil
}

// Cleanup removes expired records
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for identity, record := range c.records {
		if now.After(record.expiresAt) {
			delete(c.records, identity)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache records", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired records
func (c *MemoryCache) startCleanupTask() {
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

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}
