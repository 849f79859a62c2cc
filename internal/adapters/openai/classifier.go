package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// Classifier is an implementation of the TextClassifier interface using OpenAI
type Classifier struct {
	client       *openai.Client
	modelName    string
	maxTokens    int
	temperature  float32
	topP         float32
	maxTextSize  int
	logger       *zap.Logger
	text         *utils.TextProcessor
	promptFormat string
}

// phishingResponse represents the structured response from the LLM
type phishingResponse struct {
	IsPhishing bool    `json:"is_phishing"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
}

const phishingPrompt = `You are a phishing detection system. Analyze the following text taken from a web page or URL and determine if it is a phishing attempt.
Respond with a JSON object containing:
- is_phishing: boolean (true if the text looks like phishing, false if not)
- confidence: number between 0 and 1 (how confident you are in your assessment)
- label: string (a short label such as "credential harvesting", "urgency scam" or "legitimate")

Text:
%s

Respond only with the JSON object and nothing else.`

// NewClassifier creates a new OpenAI classifier
func NewClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	text *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:       client,
		modelName:    modelName,
		maxTokens:    maxTokens,
		temperature:  temperature,
		topP:         topP,
		maxTextSize:  maxTextSize,
		logger:       logger,
		text:         text,
		promptFormat: phishingPrompt,
	}
}

// ClassifyText asks the model for a phishing verdict on the text
func (c *Classifier) ClassifyText(ctx context.Context, text string) (*core.TextVerdict, error) {
	processed := c.text.ProcessText(text, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processed)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	parsed, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	return &core.TextVerdict{
		IsPhishing: parsed.IsPhishing,
		Confidence: parsed.Confidence,
		Label:      parsed.Label,
	}, nil
}

// parseVerdict decodes the model output, salvaging the JSON object when
// the model wraps it in extra prose.
func parseVerdict(responseText string) (*phishingResponse, error) {
	var parsed phishingResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err == nil {
		return &parsed, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}
	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("failed to extract JSON from LLM response")
	}
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &parsed, nil
}
