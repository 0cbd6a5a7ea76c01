// Package weather synthesizes plausible weather inputs for grid prediction.
//
// The estimator is a deterministic function of coordinate and time built
// from monthly climate normals for the Nashik district, with a west-east
// gradient toward the Western Ghats (the western talukas such as Igatpuri
// and Trimbak receive several times the rainfall of the eastern plain).
// Determinism matters: the area grid must produce identical output for
// identical inputs, so nothing here draws random numbers.
package weather

import (
	"time"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// Monthly climate normals for the district, January through December.
// Rainfall is mm/month; temperature is mean daily C. The monsoon months
// June-September carry most of the annual rainfall.
var (
	rainfallNormals    = [12]float64{2, 1, 3, 8, 25, 120, 210, 180, 140, 60, 15, 4}
	temperatureNormals = [12]float64{21, 23, 27, 31, 32, 28, 25, 24, 25, 26, 23, 21}
)

// Ghats longitude band: west of ghatsEastLon the orographic factor ramps up
// to its maximum at ghatsWestLon.
const (
	ghatsWestLon = 73.5
	ghatsEastLon = 74.6

	// riverBaseLevelM is the dry-season river stage in meters.
	riverBaseLevelM = 1.2
)

// Estimator produces deterministic weather samples. The zero value is ready
// to use.
type Estimator struct{}

// New returns a ready Estimator.
func New() Estimator { return Estimator{} }

// Estimate returns the weather-derived model inputs for a point at a given
// time. Equal inputs always produce equal outputs.
func (Estimator) Estimate(p domain.Coordinate, at time.Time) domain.WeatherSample {
	month := int(at.Month()) - 1
	prev := (month + 11) % 12

	factor := orographicFactor(p.Lon)
	rainfall := rainfallNormals[month] * factor
	rainfallLag := rainfallNormals[prev] * factor

	return domain.WeatherSample{
		Rainfall:        round2(rainfall),
		RiverWaterLevel: round2(riverLevel(rainfall)),
		Temperature:     round2(temperature(month, factor)),
		RainfallLag1:    round2(rainfallLag),
		RiverLag1:       round2(riverLevel(rainfallLag)),
	}
}

// MonthlyTrend returns one sample per calendar month of the given year for
// charting, evaluated at mid-month noon.
func (e Estimator) MonthlyTrend(p domain.Coordinate, year int) []domain.WeatherSample {
	trend := make([]domain.WeatherSample, 12)
	for m := time.January; m <= time.December; m++ {
		at := time.Date(year, m, 15, 12, 0, 0, 0, time.UTC)
		trend[m-1] = e.Estimate(p, at)
	}
	return trend
}

// orographicFactor scales rainfall by proximity to the Western Ghats:
// 1.0 on the eastern plain rising linearly to 1.6 at the ghats crest.
func orographicFactor(lon float64) float64 {
	t := (ghatsEastLon - lon) / (ghatsEastLon - ghatsWestLon)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return 1 + 0.6*t
}

// riverLevel derives river stage from monthly rainfall: base flow plus
// roughly 1 m of stage per 60 mm of monthly rain.
func riverLevel(rainfallMM float64) float64 {
	return riverBaseLevelM + rainfallMM/60.0
}

// temperature applies a mild cooling with elevation toward the ghats.
func temperature(month int, factor float64) float64 {
	return temperatureNormals[month] - 2.5*(factor-1)
}

func round2(v float64) float64 { return domain.RoundTo(v, 2) }

// Station is a fixed observation station of the district network.
type Station struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistanceKm float64 `json:"distance_km"`
}

// stations is the fixed district network, approximate town centers.
var stations = []Station{
	{Name: "Nashik", Lat: 19.9975, Lon: 73.7898},
	{Name: "Malegaon", Lat: 20.5537, Lon: 74.5288},
	{Name: "Niphad", Lat: 20.0751, Lon: 74.1116},
	{Name: "Sinnar", Lat: 19.8540, Lon: 74.0005},
	{Name: "Igatpuri", Lat: 19.6953, Lon: 73.5626},
	{Name: "Yeola", Lat: 20.0437, Lon: 74.4897},
}

// NearestStations returns the n closest stations to p with distances filled
// in, nearest first.
func NearestStations(p domain.Coordinate, n int) []Station {
	out := make([]Station, len(stations))
	copy(out, stations)
	for i := range out {
		out[i].DistanceKm = domain.RoundTo(domain.DistanceKm(p, domain.Coordinate{Lat: out[i].Lat, Lon: out[i].Lon}), 2)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].DistanceKm < out[j-1].DistanceKm; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}
