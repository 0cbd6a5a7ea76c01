package domain

import "math"

// Depth categories for grid rendering. Thresholds are fixed domain
// constants: shallow groundwater below 35 m, moderate to 55 m, deep beyond.
const (
	CategoryLow    = "low"
	CategoryMedium = "medium"
	CategoryHigh   = "high"

	lowDepthThresholdM    = 35.0
	mediumDepthThresholdM = 55.0
)

// CategorizeDepth buckets a predicted depth into its band.
func CategorizeDepth(valueM float64) string {
	switch {
	case valueM < lowDepthThresholdM:
		return CategoryLow
	case valueM < mediumDepthThresholdM:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

// RoundTo rounds v to the given number of decimal places. Presentation
// values are rounded once (2 decimals for depths, 1 for confidence) so
// repeated formatting is stable.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
