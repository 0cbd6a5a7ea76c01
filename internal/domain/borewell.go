package domain

import (
	"sort"
	"strings"
)

// Borewell status values as recorded in the CGWB inventory.
const (
	StatusSuccess = "Success"
	StatusFailure = "Failure"
)

// BorewellRecord is one ground-truth well observation.
type BorewellRecord struct {
	ID               string     `json:"id"`
	Name             string     `json:"location"`
	Location         Coordinate `json:"coordinate"`
	DepthM           float64    `json:"depth"`
	YieldLPH         int        `json:"yield"`
	ConstructionYear int        `json:"year"`
	WaterQuality     string     `json:"quality"`
	Status           string     `json:"status"`
	District         string     `json:"district"`
	Taluka           string     `json:"taluka"`
}

// NearbyBorewell is a borewell tagged with its distance from a query point.
type NearbyBorewell struct {
	BorewellRecord
	DistanceKm float64 `json:"distance"`
}

// NearbyBorewells returns the wells within radiusKm of center, sorted by
// ascending distance. Wells with non-finite distances are excluded.
func NearbyBorewells(wells []BorewellRecord, center Coordinate, radiusKm float64) []NearbyBorewell {
	var nearby []NearbyBorewell
	for _, w := range wells {
		d := DistanceKm(center, w.Location)
		if !(d <= radiusKm) { // also rejects NaN
			continue
		}
		nearby = append(nearby, NearbyBorewell{BorewellRecord: w, DistanceKm: d})
	}
	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby
}

// BorewellStats summarizes a set of nearby wells.
type BorewellStats struct {
	Total       int     `json:"total"`
	Successful  int     `json:"successful"`
	Failed      int     `json:"failed"`
	SuccessRate float64 `json:"success_rate"`
	AvgDepthM   float64 `json:"avg_depth"`
	AvgYieldLPH float64 `json:"avg_yield"`
	MaxDepthM   float64 `json:"max_depth"`
	MinDepthM   float64 `json:"min_depth"`
}

// SummarizeBorewells computes aggregate statistics for nearby wells. An
// empty input yields a zeroed struct, never a division by zero.
func SummarizeBorewells(nearby []NearbyBorewell) BorewellStats {
	var stats BorewellStats
	if len(nearby) == 0 {
		return stats
	}

	stats.Total = len(nearby)
	stats.MinDepthM = nearby[0].DepthM
	stats.MaxDepthM = nearby[0].DepthM

	var depthSum, yieldSum float64
	for _, w := range nearby {
		if w.Status == StatusSuccess {
			stats.Successful++
		} else if w.Status == StatusFailure {
			stats.Failed++
		}
		depthSum += w.DepthM
		yieldSum += float64(w.YieldLPH)
		if w.DepthM > stats.MaxDepthM {
			stats.MaxDepthM = w.DepthM
		}
		if w.DepthM < stats.MinDepthM {
			stats.MinDepthM = w.DepthM
		}
	}

	n := float64(stats.Total)
	stats.SuccessRate = RoundTo(float64(stats.Successful)/n*100, 1)
	stats.AvgDepthM = RoundTo(depthSum/n, 2)
	stats.AvgYieldLPH = RoundTo(yieldSum/n, 0)
	return stats
}

// LocalPlace is a lightweight named point for client-side autocomplete.
type LocalPlace struct {
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Taluka   string  `json:"taluka"`
	District string  `json:"district"`
}

// DistinctPlaces extracts the named well locations, deduplicated
// case-insensitively by name with first occurrence kept.
func DistinctPlaces(wells []BorewellRecord) []LocalPlace {
	seen := make(map[string]struct{}, len(wells))
	var places []LocalPlace
	for _, w := range wells {
		name := strings.TrimSpace(w.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		places = append(places, LocalPlace{
			Name:     name,
			Lat:      w.Location.Lat,
			Lon:      w.Location.Lon,
			Taluka:   w.Taluka,
			District: w.District,
		})
	}
	return places
}
