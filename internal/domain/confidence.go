package domain

// Confidence blend weights and clamp range. The final score is clamped to
// [50, 98]: never totally sure, never totally useless.
const (
	confidenceFloor   = 50.0
	confidenceCeiling = 98.0
)

// ConfidenceInput carries everything the estimator inspects.
type ConfidenceInput struct {
	Point       Coordinate
	Rainfall    float64
	Temperature float64
	Refs        ReferenceLocationSet
}

// weightedScore is one sub-score of the confidence blend: a name for
// logging, a fixed blend weight, and an independently clamped scoring
// function. The estimator walks the list in order; each entry is testable
// in isolation.
type weightedScore struct {
	name   string
	weight float64
	score  func(in ConfidenceInput) float64
}

// confidenceScores is the fixed blend: location proximity 35%, input
// plausibility 25%, model heuristic 30%, completeness 10%.
var confidenceScores = []weightedScore{
	{name: "location", weight: 0.35, score: locationScore},
	{name: "feature_quality", weight: 0.25, score: featureQualityScore},
	{name: "model", weight: 0.30, score: modelScore},
	{name: "completeness", weight: 0.10, score: completenessScore},
}

// EstimateConfidence combines the weighted sub-scores into a single bounded
// percentage in [50, 98].
func EstimateConfidence(in ConfidenceInput) float64 {
	var total float64
	for _, s := range confidenceScores {
		total += s.weight * s.score(in)
	}
	return clamp(total, confidenceFloor, confidenceCeiling)
}

// locationScore decays piecewise-linearly with distance to the nearest
// reference point: 0 km scores 100, 5 km 95, 10 km 85, 20 km 70, beyond
// 50 km a flat 50. Without reference data the score is a fixed 75.
func locationScore(in ConfidenceInput) float64 {
	d, ok := in.Refs.NearestKm(in.Point)
	if in.Refs.Len() == 0 || !ok {
		return 75
	}

	var score float64
	switch {
	case d <= 5:
		score = 100 - d
	case d <= 10:
		score = 95 - (d-5)*2.0
	case d <= 20:
		score = 85 - (d-10)*1.5
	case d <= 50:
		score = 70 - (d-20)*0.67
	default:
		score = 50
	}
	return clamp(score, 50, 100)
}

// featureQualityScore penalizes implausible inputs for the district's
// climate: monthly rainfall outside [0, 600] mm or temperature outside
// [10, 50] C costs 20 points; the edge bands cost 10.
func featureQualityScore(in ConfidenceInput) float64 {
	score := 100.0

	switch {
	case in.Rainfall < 0 || in.Rainfall > 600:
		score -= 20
	case in.Rainfall > 500:
		score -= 10
	}

	switch {
	case in.Temperature < 10 || in.Temperature > 50:
		score -= 20
	case in.Temperature < 15 || in.Temperature > 45:
		score -= 10
	}

	return clamp(score, 50, 100)
}

// modelScore is a fixed heuristic for the regressor's assumed confidence.
// It is not derived from actual per-tree variance; the constant preserves
// the original behavior rather than guessing an enhanced intent.
func modelScore(ConfidenceInput) float64 { return 90 }

// completenessScore is fixed at 100: every required field is present by
// construction once validation has passed.
func completenessScore(ConfidenceInput) float64 { return 100 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
