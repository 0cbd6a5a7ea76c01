package weather

import (
	"testing"
	"time"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	nashik   = domain.Coordinate{Lat: 19.9975, Lon: 73.7898}
	igatpuri = domain.Coordinate{Lat: 19.6953, Lon: 73.5626}
	yeola    = domain.Coordinate{Lat: 20.0437, Lon: 74.4897}
)

func TestEstimate_Deterministic(t *testing.T) {
	e := New()
	at := time.Date(2025, time.August, 10, 14, 0, 0, 0, time.UTC)

	a := e.Estimate(nashik, at)
	b := e.Estimate(nashik, at)

	assert.Equal(t, a, b)
}

func TestEstimate_MonsoonWetterThanWinter(t *testing.T) {
	e := New()
	monsoon := e.Estimate(nashik, time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC))
	winter := e.Estimate(nashik, time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC))

	assert.Greater(t, monsoon.Rainfall, winter.Rainfall)
	assert.Greater(t, monsoon.RiverWaterLevel, winter.RiverWaterLevel)
}

func TestEstimate_GhatsWetterThanPlain(t *testing.T) {
	e := New()
	at := time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)

	west := e.Estimate(igatpuri, at)
	east := e.Estimate(yeola, at)

	assert.Greater(t, west.Rainfall, east.Rainfall)
	assert.Less(t, west.Temperature, east.Temperature)
}

func TestEstimate_LagIsPreviousMonth(t *testing.T) {
	e := New()
	july := e.Estimate(nashik, time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC))
	june := e.Estimate(nashik, time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, june.Rainfall, july.RainfallLag1)
}

func TestEstimate_PlausibleRanges(t *testing.T) {
	e := New()
	for m := time.January; m <= time.December; m++ {
		s := e.Estimate(nashik, time.Date(2025, m, 15, 12, 0, 0, 0, time.UTC))

		assert.GreaterOrEqual(t, s.Rainfall, 0.0)
		assert.Less(t, s.Rainfall, 600.0)
		assert.Greater(t, s.Temperature, 10.0)
		assert.Less(t, s.Temperature, 50.0)
		assert.Greater(t, s.RiverWaterLevel, 0.0)
	}
}

func TestMonthlyTrend_TwelveEntries(t *testing.T) {
	e := New()
	trend := e.MonthlyTrend(nashik, 2025)

	require.Len(t, trend, 12)
	july := e.Estimate(nashik, time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, july, trend[6])
}

func TestNearestStations_SortedAndLimited(t *testing.T) {
	near := NearestStations(nashik, 3)

	require.Len(t, near, 3)
	assert.Equal(t, "Nashik", near[0].Name)
	for i := 1; i < len(near); i++ {
		assert.GreaterOrEqual(t, near[i].DistanceKm, near[i-1].DistanceKm)
	}
}
