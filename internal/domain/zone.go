package domain

import "math"

// DefaultZoneRadiusKm is the serviceable-zone radius shared by the point and
// area prediction paths.
const DefaultZoneRadiusKm = 20.0

// ReferenceLocationSet is an immutable ordered set of coordinates where the
// model's training data is geographically anchored. It is loaded once at
// startup and never mutated, so it is safe to share across request handlers.
type ReferenceLocationSet struct {
	points []Coordinate
}

// NewReferenceLocationSet copies points into an immutable set.
func NewReferenceLocationSet(points []Coordinate) ReferenceLocationSet {
	cp := make([]Coordinate, len(points))
	copy(cp, points)
	return ReferenceLocationSet{points: cp}
}

// Len returns the number of reference points.
func (s ReferenceLocationSet) Len() int { return len(s.points) }

// NearestKm returns the distance to the closest reference point. ok is false
// when the set is empty or every distance is non-finite.
func (s ReferenceLocationSet) NearestKm(p Coordinate) (km float64, ok bool) {
	min := math.Inf(1)
	for _, ref := range s.points {
		d := DistanceKm(p, ref)
		if math.IsNaN(d) {
			continue
		}
		if d < min {
			min = d
		}
	}
	if math.IsInf(min, 1) {
		return 0, false
	}
	return min, true
}

// InZone reports whether p lies within maxKm of any reference point, with an
// inclusive boundary. An empty set is permissive: the system degrades to "no
// geofencing" rather than rejecting everything when reference data is
// missing.
func (s ReferenceLocationSet) InZone(p Coordinate, maxKm float64) bool {
	if len(s.points) == 0 {
		return true
	}
	d, ok := s.NearestKm(p)
	if !ok {
		return false
	}
	return d <= maxKm
}
