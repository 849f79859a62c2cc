package gemini

import (
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// Factory creates new instances of the Gemini classifier
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewFactory creates a new factory for Gemini classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger, text *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreateClassifier creates a new Gemini-backed text classifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	geminiCfg := f.cfg.GetGemini()

	classifier, err := NewClassifier(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxTextSize,
		f.logger,
		f.text,
	)
	if err != nil {
		return nil, err
	}
	return classifier, nil
}
