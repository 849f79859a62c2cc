package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usableResult(computedAt time.Time) *CompositeResult {
	return &CompositeResult{
		Facts:             &DomainFacts{DomainName: "example.com"},
		URLVerdict:        &TextVerdict{Label: "legitimate", Confidence: 0.95},
		URLChecked:        true,
		FragmentVerdicts:  []FragmentVerdict{},
		FragmentsAnalyzed: true,
		ComputedAt:        computedAt,
	}
}

func TestCompositeResultUsable(t *testing.T) {
	now := time.Now()
	window := DefaultFreshnessWindow

	t.Run("fresh complete record", func(t *testing.T) {
		assert.True(t, usableResult(now.Add(-time.Minute)).Usable(now, window))
	})

	t.Run("nil receiver", func(t *testing.T) {
		var r *CompositeResult
		assert.False(t, r.Usable(now, window))
	})

	t.Run("stale record", func(t *testing.T) {
		assert.False(t, usableResult(now.Add(-6*time.Minute)).Usable(now, window))
	})

	t.Run("exactly at window boundary", func(t *testing.T) {
		assert.False(t, usableResult(now.Add(-window)).Usable(now, window))
	})

	t.Run("top-level error", func(t *testing.T) {
		r := usableResult(now)
		r.Error = "analysis request failed"
		assert.False(t, r.Usable(now, window))
	})

	t.Run("missing facts", func(t *testing.T) {
		r := usableResult(now)
		r.Facts = nil
		assert.False(t, r.Usable(now, window))
	})

	t.Run("facts-level error", func(t *testing.T) {
		r := usableResult(now)
		r.Facts.Error = "could not parse address"
		assert.False(t, r.Usable(now, window))
	})

	t.Run("url not checked", func(t *testing.T) {
		r := usableResult(now)
		r.URLChecked = false
		assert.False(t, r.Usable(now, window))
	})

	t.Run("failed fragment batch", func(t *testing.T) {
		r := usableResult(now)
		r.FragmentVerdicts = nil
		assert.False(t, r.Usable(now, window))
	})

	t.Run("failed url verdict still usable", func(t *testing.T) {
		// URLChecked with a nil verdict means attempted-and-failed,
		// which is a complete record.
		r := usableResult(now)
		r.URLVerdict = nil
		assert.True(t, r.Usable(now, window))
	})
}

func TestCompositeResultEmptyFragmentsSurviveSerialization(t *testing.T) {
	// A page with no usable text stores an empty slice; the round trip
	// through a cache backend must not collapse it to nil, or the record
	// would stop being usable.
	original := usableResult(time.Now())

	payload, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded CompositeResult
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.NotNil(t, decoded.FragmentVerdicts)
	assert.Empty(t, decoded.FragmentVerdicts)
	assert.True(t, decoded.Usable(time.Now(), DefaultFreshnessWindow))
}
