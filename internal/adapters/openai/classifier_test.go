package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		got, err := parseVerdict(`{"is_phishing": true, "confidence": 0.85, "label": "credential harvesting"}`)
		require.NoError(t, err)
		assert.True(t, got.IsPhishing)
		assert.Equal(t, 0.85, got.Confidence)
		assert.Equal(t, "credential harvesting", got.Label)
	})

	t.Run("json wrapped in prose", func(t *testing.T) {
		got, err := parseVerdict("Sure, here is my analysis:\n{\"is_phishing\": false, \"confidence\": 0.9, \"label\": \"legitimate\"}\nLet me know if you need more.")
		require.NoError(t, err)
		assert.False(t, got.IsPhishing)
		assert.Equal(t, 0.9, got.Confidence)
	})

	t.Run("no json at all", func(t *testing.T) {
		_, err := parseVerdict("I cannot answer that.")
		assert.Error(t, err)
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := parseVerdict(`{"is_phishing": tru`)
		assert.Error(t, err)
	})
}
