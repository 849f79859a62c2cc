package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/adapters/local"
	"github.com/trustlens/trustlens/internal/adapters/remote"
	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// FactsFactory creates domain facts providers
type FactsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewFactsFactory creates a new facts factory
func NewFactsFactory(cfg *config.Config, logger *zap.Logger, text *utils.TextProcessor) *FactsFactory {
	return &FactsFactory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreateFactsProvider creates a domain facts provider based on the configuration
func (f *FactsFactory) CreateFactsProvider() (core.DomainFactsProvider, error) {
	factsCfg := f.cfg.GetFacts()

	switch factsCfg.Provider {
	case "remote":
		remoteCfg := f.cfg.GetRemote()
		timeout, err := f.cfg.GetDuration("remote.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid remote timeout: %w", err)
		}
		return remote.NewClient(remoteCfg.BaseURL, timeout, f.logger, f.text), nil
	case "local":
		timeout, err := f.cfg.GetDuration("local.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid local provider timeout: %w", err)
		}
		rbls := f.cfg.GetStringSlice("local.rbls")
		return local.NewProvider(rbls, timeout, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported facts provider: %s", factsCfg.Provider)
	}
}
