package domain

import "math"

// OffsetCorrector adjusts a raw model estimate using nearby successful
// borewells as ground-truth anchors, compensating for systematic model bias
// near known data.
//
// Wells within RadiusKm contribute to an inverse-distance-weighted mean
// depth; each well's weight also tapers linearly to zero at the radius so a
// well entering or leaving the search disk never causes a jump. The raw
// estimate is blended toward that local mean by BlendWeight, with the pull
// capped at MaxOffsetM and scaled by how close the nearest anchor is. With
// no anchors in range the corrector is an exact identity.
type OffsetCorrector struct {
	RadiusKm    float64
	MaxOffsetM  float64
	BlendWeight float64
}

// DefaultOffsetCorrector returns the deployment defaults: 10 km anchor
// radius, 15 m offset cap, 0.35 blend.
func DefaultOffsetCorrector() OffsetCorrector {
	return OffsetCorrector{
		RadiusKm:    10.0,
		MaxOffsetM:  15.0,
		BlendWeight: 0.35,
	}
}

// Correct returns the bias-adjusted estimate. The result is continuous in
// the query coordinate, finite for finite input, and exactly raw when no
// successful well lies within RadiusKm.
func (c OffsetCorrector) Correct(raw float64, p Coordinate, wells []BorewellRecord) float64 {
	if len(wells) == 0 {
		return raw
	}

	var (
		weightSum float64
		depthSum  float64
		nearest   = math.Inf(1)
	)
	for _, w := range wells {
		if w.Status != StatusSuccess {
			continue
		}
		d := DistanceKm(p, w.Location)
		if !(d < c.RadiusKm) { // also rejects NaN
			continue
		}
		// Inverse-distance weight, tapered to zero at the radius edge.
		taper := 1 - d/c.RadiusKm
		weight := taper / (1 + d)
		weightSum += weight
		depthSum += weight * w.DepthM
		if d < nearest {
			nearest = d
		}
	}

	if weightSum == 0 {
		return raw
	}

	localMean := depthSum / weightSum
	if math.IsNaN(localMean) || math.IsInf(localMean, 0) {
		return raw
	}

	delta := clamp(localMean-raw, -c.MaxOffsetM, c.MaxOffsetM)
	proximity := clamp(1-nearest/c.RadiusKm, 0, 1)
	return raw + c.BlendWeight*proximity*delta
}
