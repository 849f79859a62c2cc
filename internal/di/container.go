package di

import (
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/events"
	"github.com/trustlens/trustlens/internal/factory"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/ports"
	"github.com/trustlens/trustlens/internal/trustlist"
	"github.com/trustlens/trustlens/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewFactsFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register domain facts provider
	if err := container.Provide(func(f *factory.FactsFactory) (core.DomainFactsProvider, error) {
		return f.CreateFactsProvider()
	}); err != nil {
		return nil, err
	}

	// Register text classifier
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.TextClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register event bus as the result publisher
	if err := container.Provide(events.NewBus); err != nil {
		return nil, err
	}
	if err := container.Provide(func(bus *events.Bus) core.Publisher {
		return bus
	}); err != nil {
		return nil, err
	}

	// Register trusted-domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustChecker {
		trustedDomains := cfg.GetStringSlice("analysis.trusted_domains")
		if len(trustedDomains) > 0 {
			logger.Info("Loaded trusted domains", zap.Strings("domains", trustedDomains))
		}
		return trustlist.NewChecker(trustedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register analyzer service
	if err := container.Provide(func(
		cfg *config.Config,
		facts core.DomainFactsProvider,
		classifier core.TextClassifier,
		cache core.CacheRepository,
		publisher core.Publisher,
		trusted core.TrustChecker,
		text *utils.TextProcessor,
		logger *zap.Logger,
		cacheFactory *factory.CacheFactory,
	) (*core.AnalyzerService, error) {
		freshness, err := cfg.GetDuration("analysis.freshness_window")
		if err != nil {
			return nil, fmt.Errorf("invalid freshness window: %w", err)
		}
		return core.NewAnalyzerService(
			facts,
			classifier,
			cache,
			publisher,
			trusted,
			text,
			logger,
			cacheFactory.IsCacheEnabled(),
			freshness,
			cfg.GetInt("analysis.max_fragments"),
			cfg.GetInt("analysis.fragment_preview_size"),
		), nil
	}); err != nil {
		return nil, err
	}

	// Register analysis server
	if err := container.Provide(func(f *factory.ServerFactory, service *core.AnalyzerService) (ports.AnalysisServer, error) {
		return f.CreateAnalysisServer(service)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
