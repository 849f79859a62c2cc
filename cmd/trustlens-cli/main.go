package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/adapters/cli"
	"github.com/trustlens/trustlens/internal/config"
	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/events"
	"github.com/trustlens/trustlens/internal/factory"
	"github.com/trustlens/trustlens/internal/logging"
	"github.com/trustlens/trustlens/internal/trustlist"
)

var (
	// Provider flags
	factsProvider      = flag.String("facts-provider", "local", "Domain facts provider (remote, local)")
	classifierProvider = flag.String("classifier", "remote", "Text classifier provider (remote, openai, gemini, bedrock)")
	maxTokens          = flag.Int("max-tokens", 1000, "Maximum tokens for LLM response")
	temperature        = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP               = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxTextSize        = flag.Int("max-text-size", 2048, "Maximum text size to send to the classifier")

	// Remote service flags
	remoteBaseURL = flag.String("remote-url", "http://127.0.0.1:8000/api/v1", "Base URL of the remote analysis service")
	remoteTimeout = flag.String("remote-timeout", "30s", "Timeout for remote analysis requests")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Analysis flags
	trustedDomains = flag.String("trusted", "", "Comma-separated list of trusted domains")
	maxFragments   = flag.Int("max-fragments", 5, "Maximum content fragments to classify")

	// Input flags
	fragmentsFile = flag.String("fragments-file", "", "File with one content fragment per line (use stdin with -stdin)")
	readStdin     = flag.Bool("stdin", false, "Read content fragments from stdin, one per line")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog       = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile    = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Printf("Usage: %s [flags] <url>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	rawURL := flag.Arg(0)

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()

	// Create the domain facts provider
	factsFactory := factory.NewFactsFactory(cfg, logger, textProcessor)
	facts, err := factsFactory.CreateFactsProvider()
	if err != nil {
		logger.Fatal("Failed to create facts provider", zap.Error(err))
	}

	// Create the text classifier
	classifierFactory := factory.NewClassifierFactory(cfg, logger, textProcessor)
	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}

	// Create the cache repository
	cacheFactory := factory.NewCacheFactory(cfg, logger)
	cacheRepo, err := cacheFactory.CreateCacheRepository()
	if err != nil {
		logger.Fatal("Failed to create cache", zap.Error(err))
	}

	trusted := trustlist.NewChecker(cfg.GetStringSlice("analysis.trusted_domains"), logger)
	bus := events.NewBus(logger)

	freshness, err := cfg.GetDuration("analysis.freshness_window")
	if err != nil {
		logger.Fatal("Invalid freshness window", zap.Error(err))
	}

	service := core.NewAnalyzerService(
		facts,
		classifier,
		cacheRepo,
		bus,
		trusted,
		textProcessor,
		logger,
		cacheFactory.IsCacheEnabled(),
		freshness,
		cfg.GetInt("analysis.max_fragments"),
		cfg.GetInt("analysis.fragment_preview_size"),
	)

	fragments, err := readFragments()
	if err != nil {
		logger.Fatal("Failed to read content fragments", zap.Error(err))
	}

	analyzer, err := cli.NewAnalyzerCli(service, logger, *verbose)
	if err != nil {
		logger.Fatal("Failed to create analyzer", zap.Error(err))
	}

	if _, err := analyzer.ProcessAddress(context.Background(), rawURL, fragments); err != nil {
		logger.Error("Analysis did not produce a score", zap.Error(err))
		os.Exit(1)
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}

// readFragments reads content fragments from the configured source,
// one per line.
func readFragments() ([]string, error) {
	var reader io.Reader
	switch {
	case *fragmentsFile != "":
		file, err := os.Open(*fragmentsFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		reader = file
	case *readStdin:
		reader = os.Stdin
	default:
		return nil, nil
	}

	var fragments []string
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			fragments = append(fragments, line)
		}
	}
	return fragments, scanner.Err()
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("facts.provider", *factsProvider)
	v.Set("classifier.provider", *classifierProvider)

	v.Set("remote.base_url", *remoteBaseURL)
	v.Set("remote.timeout", *remoteTimeout)

	switch *classifierProvider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_text_size", *maxTextSize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_text_size", *maxTextSize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_text_size", *maxTextSize)
	}

	v.Set("analysis.max_fragments", *maxFragments)

	if *trustedDomains != "" {
		domains := strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("analysis.trusted_domains", domains)
	} else {
		v.Set("analysis.trusted_domains", []string{})
	}

	return config.NewFromViper(v)
}
