package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

// AnalyzerCli implements a command-line interface for trust analysis
type AnalyzerCli struct {
	service *core.AnalyzerService
	logger  *zap.Logger
	verbose bool
}

// NewAnalyzerCli creates a new CLI analyzer
func NewAnalyzerCli(service *core.AnalyzerService, logger *zap.Logger, verbose bool) (*AnalyzerCli, error) {
	return &AnalyzerCli{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessAddress analyzes an address and displays the results
func (c *AnalyzerCli) ProcessAddress(ctx context.Context, rawURL string, fragments []string) (*core.TrustScore, error) {
	c.logger.Debug("Processing address", zap.String("url", rawURL))

	fmt.Printf("\n=== Address Summary ===\n")
	fmt.Printf("URL: %s\n", rawURL)
	fmt.Printf("Content fragments: %d\n", len(fragments))

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Running analysis pass...\n")
	startTime := time.Now()
	res := c.service.Analyze(ctx, rawURL, fragments)
	duration := time.Since(startTime)

	if res.Error != "" {
		fmt.Printf("Error: %s\n", res.Error)
	}

	score := core.CalculateTrustScore(res)
	indicator := core.Indicator(score, res.Error, false)

	fmt.Printf("\n=== Results ===\n")
	if score == nil {
		fmt.Printf("Trust score: not available\n")
	} else {
		fmt.Printf("Trust score: %d/100\n", score.Score)
		for _, e := range score.Explanations {
			fmt.Printf("  [%-8s] %-20s %+d  %s\n", e.Impact, e.Label, e.Effect, e.Value.Text)
			if c.verbose && e.Details != "" {
				fmt.Printf("             %s\n", e.Details)
			}
		}
	}
	fmt.Printf("Indicator: %s\n", indicator)
	fmt.Printf("Processing time: %v\n", duration)

	if score == nil {
		return nil, fmt.Errorf("no score available: %s", res.Error)
	}
	return score, nil
}

// Start is a no-op for the CLI analyzer
func (c *AnalyzerCli) Start() error {
	return nil
}

// Stop is a no-op for the CLI analyzer
func (c *AnalyzerCli) Stop() error {
	return nil
}
