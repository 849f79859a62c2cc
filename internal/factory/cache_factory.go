package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/adapters/cache"
	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
)

// CacheFactory creates cache repositories based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheRepository creates a cache repository based on the configuration
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheType := f.cfg.GetString("cache.type")
	ttl, err := f.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	cleanupFreq, err := f.cfg.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(f.logger, ttl, cleanupFreq), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		repo, err := cache.NewSQLiteCache(sqlitePath, f.logger, ttl, cleanupFreq)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "mysql":
		mysqlDSN := f.cfg.GetString("cache.mysql_dsn")
		repo, err := cache.NewMySQLCache(mysqlDSN, f.logger, ttl, cleanupFreq)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "redis":
		repo, err := cache.NewRedisCache(
			f.cfg.GetString("cache.redis_addr"),
			f.cfg.GetString("cache.redis_password"),
			f.cfg.GetInt("cache.redis_db"),
			f.logger,
			ttl,
		)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}

// GetCacheTTL returns the configured cache TTL
func (f *CacheFactory) GetCacheTTL() (time.Duration, error) {
	return f.cfg.GetDuration("cache.ttl")
}

// IsCacheEnabled returns whether caching is enabled
func (f *CacheFactory) IsCacheEnabled() bool {
	return f.cfg.GetBool("cache.enabled")
}
