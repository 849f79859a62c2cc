package core

// IndicatorState summarizes the score, error and in-flight status of an
// analysis for presentation.
type IndicatorState string

const (
	IndicatorIdle    IndicatorState = "idle"
	IndicatorLoading IndicatorState = "loading"
	IndicatorError   IndicatorState = "error"
	IndicatorLow     IndicatorState = "low"
	IndicatorMedium  IndicatorState = "medium"
	IndicatorHigh    IndicatorState = "high"
)

// Score-band boundaries for the indicator.
const (
	lowBandMax    = 40
	mediumBandMax = 70
)

// Indicator reduces the current analysis status to a presentation state.
// An in-flight analysis wins over any stale score or error.
func Indicator(score *TrustScore, errMsg string, inFlight bool) IndicatorState {
	switch {
	case inFlight:
		return IndicatorLoading
	case errMsg != "":
		return IndicatorError
	case score == nil:
		return IndicatorIdle
	case score.Score < lowBandMax:
		return IndicatorLow
	case score.Score < mediumBandMax:
		return IndicatorMedium
	default:
		return IndicatorHigh
	}
}
