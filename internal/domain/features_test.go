package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPredictionFeatures_DerivesTimeFields(t *testing.T) {
	at := time.Date(2025, time.July, 14, 9, 30, 0, 0, time.UTC)
	w := WeatherSample{Rainfall: 180, RiverWaterLevel: 4.2, Temperature: 26, RainfallLag1: 150, RiverLag1: 3.8}

	f := NewPredictionFeatures(Coordinate{Lat: 20.0, Lon: 73.79}, w, at)

	assert.Equal(t, 2025, f.Year)
	assert.Equal(t, 7, f.Month)
	assert.Equal(t, 14, f.Day)
	assert.Equal(t, 9, f.Hour)
}

func TestVector_MatchesFeatureOrder(t *testing.T) {
	f := PredictionFeatures{
		Latitude: 20.0, Longitude: 73.79,
		Rainfall: 180, RiverWaterLevel: 4.2, Temperature: 26,
		Year: 2025, Month: 7, Day: 14, Hour: 9,
		RainfallLag1: 150, RiverLag1: 3.8,
	}

	v := f.Vector()
	require.Len(t, v, len(FeatureOrder))

	assert.Equal(t, 20.0, v[0], "Latitude")
	assert.Equal(t, 73.79, v[1], "Longitude")
	assert.Equal(t, 180.0, v[2], "Rainfall")
	assert.Equal(t, 4.2, v[3], "River_Water_Level")
	assert.Equal(t, 26.0, v[4], "Temperature")
	assert.Equal(t, 2025.0, v[5], "Year")
	assert.Equal(t, 7.0, v[6], "Month")
	assert.Equal(t, 14.0, v[7], "Day")
	assert.Equal(t, 9.0, v[8], "Hour")
	assert.Equal(t, 150.0, v[9], "Rainfall_Lag1")
	assert.Equal(t, 3.8, v[10], "River_Lag1")
}

func TestValidate_RejectsNonFinite(t *testing.T) {
	f := PredictionFeatures{Latitude: 20.0, Longitude: 73.79, Rainfall: math.NaN()}

	err := f.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "Rainfall")
}

func TestValidateFeatureSchema_AcceptsExactOrder(t *testing.T) {
	assert.NoError(t, ValidateFeatureSchema(FeatureOrder))
}

func TestValidateFeatureSchema_RejectsPermutation(t *testing.T) {
	permuted := make([]string, len(FeatureOrder))
	copy(permuted, FeatureOrder)
	permuted[0], permuted[1] = permuted[1], permuted[0]

	err := ValidateFeatureSchema(permuted)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateFeatureSchema_RejectsWrongLength(t *testing.T) {
	err := ValidateFeatureSchema(FeatureOrder[:5])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
