package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
	"github.com/trustlens/trustlens/internal/utils"
)

// Classifier is an implementation of the TextClassifier interface using Amazon Bedrock
type Classifier struct {
	client       *bedrockruntime.Client
	modelID      string
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

// NewClassifier creates a new Bedrock classifier
func NewClassifier(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	text *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:       client,
		modelID:      modelID,
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

	payload, err := c.buildPayload(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	responseText, err := c.extractText(resp.Body)
	if err != nil {
		return nil, err
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

// buildPayload formats the request for the model family in use.
func (c *Classifier) buildPayload(prompt string) ([]byte, error) {
	if c.isAnthropicModel() {
		return json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	}
	if c.isAmazonTitanModel() {
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	}
	return json.Marshal(map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"top_p":       c.topP,
	})
}

// extractText pulls the generated text out of the model-specific
// response envelope.
func (c *Classifier) extractText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	}
	return string(body), nil
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *Classifier) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *Classifier) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
