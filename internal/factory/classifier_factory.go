package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/adapters/bedrock"
	"github.com/trustlens/trustlens/internal/adapters/gemini"
	"github.com/trustlens/trustlens/internal/adapters/openai"
	"github.com/trustlens/trustlens/internal/adapters/remote"
	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// ClassifierFactory creates text classifiers
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, text *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreateClassifier creates a text classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.TextClassifier, error) {
	classifierCfg := f.cfg.GetClassifier()

	switch classifierCfg.Provider {
	case "remote":
		remoteCfg := f.cfg.GetRemote()
		timeout, err := f.cfg.GetDuration("remote.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid remote timeout: %w", err)
		}
		return remote.NewClient(remoteCfg.BaseURL, timeout, f.logger, f.text), nil
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.text).CreateClassifier()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.text).CreateClassifier()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.text).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierCfg.Provider)
	}
}
