package domain

import (
	"fmt"
	"math"
	"time"
)

// FeatureOrder is the positional schema the regression model was trained
// with. The column names match the training dataset exactly; order is part
// of the model contract.
var FeatureOrder = []string{
	"Latitude",
	"Longitude",
	"Rainfall",
	"River_Water_Level",
	"Temperature",
	"Year",
	"Month",
	"Day",
	"Hour",
	"Rainfall_Lag1",
	"River_Lag1",
}

// PredictionFeatures is the named form of one model input row. Vector
// flattens it into the model's positional order.
type PredictionFeatures struct {
	Latitude        float64
	Longitude       float64
	Rainfall        float64
	RiverWaterLevel float64
	Temperature     float64
	Year            int
	Month           int
	Day             int
	Hour            int
	RainfallLag1    float64
	RiverLag1       float64
}

// WeatherSample holds the weather-derived model inputs for one point in
// time, including the one-step-back lag values that give the model
// short-term memory.
type WeatherSample struct {
	Rainfall        float64 `json:"rainfall"`
	RiverWaterLevel float64 `json:"river_water_level"`
	Temperature     float64 `json:"temperature"`
	RainfallLag1    float64 `json:"rainfall_lag1"`
	RiverLag1       float64 `json:"river_lag1"`
}

// NewPredictionFeatures assembles the model input for a point, weather
// sample, and observation time.
func NewPredictionFeatures(p Coordinate, w WeatherSample, at time.Time) PredictionFeatures {
	return PredictionFeatures{
		Latitude:        p.Lat,
		Longitude:       p.Lon,
		Rainfall:        w.Rainfall,
		RiverWaterLevel: w.RiverWaterLevel,
		Temperature:     w.Temperature,
		Year:            at.Year(),
		Month:           int(at.Month()),
		Day:             at.Day(),
		Hour:            at.Hour(),
		RainfallLag1:    w.RainfallLag1,
		RiverLag1:       w.RiverLag1,
	}
}

// Vector returns the features in the fixed positional order of FeatureOrder.
func (f PredictionFeatures) Vector() []float64 {
	return []float64{
		f.Latitude,
		f.Longitude,
		f.Rainfall,
		f.RiverWaterLevel,
		f.Temperature,
		float64(f.Year),
		float64(f.Month),
		float64(f.Day),
		float64(f.Hour),
		f.RainfallLag1,
		f.RiverLag1,
	}
}

// Validate rejects non-finite numeric fields. The model tolerates any finite
// magnitude; NaN or Inf would silently poison the prediction.
func (f PredictionFeatures) Validate() error {
	values := f.Vector()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %q is not a finite number", ErrInvalidInput, FeatureOrder[i])
		}
	}
	return nil
}

// ValidateFeatureSchema compares a model's published feature names against
// FeatureOrder. A mismatch means the deployed model disagrees with this
// build about feature positions, which would corrupt every prediction
// silently, so it is surfaced as a configuration error at load time.
func ValidateFeatureSchema(names []string) error {
	if len(names) != len(FeatureOrder) {
		return fmt.Errorf("%w: model schema has %d features, expected %d",
			ErrInvalidInput, len(names), len(FeatureOrder))
	}
	for i, name := range names {
		if name != FeatureOrder[i] {
			return fmt.Errorf("%w: model schema position %d is %q, expected %q",
				ErrInvalidInput, i, name, FeatureOrder[i])
		}
	}
	return nil
}
