package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndicator(t *testing.T) {
	tests := []struct {
		name     string
		score    *TrustScore
		errMsg   string
		inFlight bool
		want     IndicatorState
	}{
		{name: "in flight wins over score", score: &TrustScore{Score: 90}, inFlight: true, want: IndicatorLoading},
		{name: "in flight wins over error", errMsg: "boom", inFlight: true, want: IndicatorLoading},
		{name: "error without score", errMsg: "analysis request failed", want: IndicatorError},
		{name: "error wins over score", score: &TrustScore{Score: 90}, errMsg: "boom", want: IndicatorError},
		{name: "nothing yet", want: IndicatorIdle},
		{name: "low band", score: &TrustScore{Score: 0}, want: IndicatorLow},
		{name: "top of low band", score: &TrustScore{Score: 39}, want: IndicatorLow},
		{name: "bottom of medium band", score: &TrustScore{Score: 40}, want: IndicatorMedium},
		{name: "top of medium band", score: &TrustScore{Score: 69}, want: IndicatorMedium},
		{name: "bottom of high band", score: &TrustScore{Score: 70}, want: IndicatorHigh},
		{name: "maximum score", score: &TrustScore{Score: 100}, want: IndicatorHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Indicator(tt.score, tt.errMsg, tt.inFlight))
		})
	}
}
