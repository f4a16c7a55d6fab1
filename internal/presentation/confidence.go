package presentation

import (
	"math"
	"strconv"
)

// ClampConfidence forces a confidence score into [0, 1]. NaN counts as 0.
func ClampConfidence(confidence float64) float64 {
	switch {
	case math.IsNaN(confidence), confidence < 0:
		return 0
	case confidence > 1:
		return 1
	default:
		return confidence
	}
}

// ConfidencePercent is the clamped score as a percentage, rounded to two decimals
func ConfidencePercent(confidence float64) float64 {
	return math.Round(ClampConfidence(confidence)*10000) / 100
}

// ConfidenceWidth is the CSS width of the filled part of the confidence bar
func ConfidenceWidth(confidence float64) string {
	return strconv.FormatFloat(ConfidencePercent(confidence), 'f', -1, 64) + "%"
}
