package openai

import (
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// Factory creates new instances of the OpenAI classifier
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAI classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger, text *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreateClassifier creates a new OpenAI-backed text classifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	openaiCfg := f.cfg.GetOpenAI()
	client := openai.NewClient(openaiCfg.APIKey)

	return NewClassifier(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxTextSize,
		f.logger,
		f.text,
	), nil
}
