package bedrock

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/utils"
)

func newTestClassifier(modelID string) *Classifier {
	logger := zap.NewNop()
	return NewClassifier(nil, modelID, 1000, 0.1, 0.9, 2048, logger, utils.NewTextProcessor(logger))
}

func TestBuildPayload(t *testing.T) {
	t.Run("anthropic", func(t *testing.T) {
		c := newTestClassifier("anthropic.claude-v2")
		payload, err := c.buildPayload("check this")
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &body))
		assert.Equal(t, "check this", body["prompt"])
		assert.Contains(t, body, "max_tokens_to_sample")
	})

	t.Run("titan", func(t *testing.T) {
		c := newTestClassifier("amazon.titan-text-express-v1")
		payload, err := c.buildPayload("check this")
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &body))
		assert.Equal(t, "check this", body["inputText"])
		assert.Contains(t, body, "textGenerationConfig")
	})

	t.Run("generic", func(t *testing.T) {
		c := newTestClassifier("meta.llama2-70b")
		payload, err := c.buildPayload("check this")
		require.NoError(t, err)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(payload, &body))
		assert.Equal(t, "check this", body["prompt"])
		assert.Contains(t, body, "max_tokens")
	})
}

func TestExtractText(t *testing.T) {
	t.Run("anthropic", func(t *testing.T) {
		c := newTestClassifier("anthropic.claude-v2")
		got, err := c.extractText([]byte(`{"completion": "the verdict"}`))
		require.NoError(t, err)
		assert.Equal(t, "the verdict", got)
	})

	t.Run("titan", func(t *testing.T) {
		c := newTestClassifier("amazon.titan-text-express-v1")
		got, err := c.extractText([]byte(`{"results": [{"outputText": "the verdict"}]}`))
		require.NoError(t, err)
		assert.Equal(t, "the verdict", got)
	})

	t.Run("titan empty", func(t *testing.T) {
		c := newTestClassifier("amazon.titan-text-express-v1")
		_, err := c.extractText([]byte(`{"results": []}`))
		assert.Error(t, err)
	})

	t.Run("generic fields", func(t *testing.T) {
		c := newTestClassifier("meta.llama2-70b")
		got, err := c.extractText([]byte(`{"output": "the verdict"}`))
		require.NoError(t, err)
		assert.Equal(t, "the verdict", got)
	})

	t.Run("generic falls back to raw body", func(t *testing.T) {
		c := newTestClassifier("meta.llama2-70b")
		raw := `{"is_phishing": true, "confidence": 0.9, "label": "x"}`
		got, err := c.extractText([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})
}
