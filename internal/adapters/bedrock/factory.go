package bedrock

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// Factory creates new instances of the Bedrock classifier
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
	text   *utils.TextProcessor
}

// NewFactory creates a new factory for Bedrock classifiers
func NewFactory(cfg *config.Config, logger *zap.Logger, text *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
		text:   text,
	}
}

// CreateClassifier creates a new Bedrock-backed text classifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := bedrockruntime.NewFromConfig(awsCfg)

	return NewClassifier(
		client,
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.Temperature,
		bedrockCfg.TopP,
		bedrockCfg.MaxTextSize,
		f.logger,
		f.text,
	), nil
}
