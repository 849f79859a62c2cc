package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// Classifier is an implementation of the TextClassifier interface using Google Gemini
type Classifier struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	maxTextSize  int
	logger       *zap.Logger
	text         *utils.TextProcessor
	promptFormat string
}

const phishingPrompt = `You are a phishing detection system. Analyze the following text taken from a web page or URL and determine if it is a phishing attempt.
Respond with a JSON object containing:
- is_phishing: boolean (true if the text looks like phishing, false if not)
- confidence: number between 0 and 1 (how confident you are in your assessment)
- label: string (a short label such as "credential harvesting", "urgency scam" or "legitimate")

Text:
%s

Respond only with the JSON object and nothing else.`

// NewClassifier creates a new Gemini classifier
func NewClassifier(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	text *utils.TextProcessor,
) (*Classifier, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Classifier{
		client:       client,
		model:        model,
		modelName:    modelName,
		maxTextSize:  maxTextSize,
		logger:       logger,
		text:         text,
		promptFormat: phishingPrompt,
	}, nil
}

// Close closes the Gemini client
func (c *Classifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ClassifyText asks the model for a phishing verdict on the text
func (c *Classifier) ClassifyText(ctx context.Context, text string) (*core.TextVerdict, error) {
	processed := c.text.ProcessText(text, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			responseText += string(textPart)
		}
	}

	parsed, err := parseVerdict(responseText)
	if err != nil {
		return nil, err
	}

	return &core.TextVerdict{
		IsPhishing: parsed.IsPhishing,
		Confidence: parsed.Confidence,
		Label:      parsed.Label,
	}, nil
}
