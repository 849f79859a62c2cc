package gemini

import (
	"encoding/json"
	"fmt"
)

// phishingResponse represents the structured response from the LLM
type phishingResponse struct {
	IsPhishing bool    `json:"is_phishing"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label"`
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
