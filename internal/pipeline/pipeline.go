// Package pipeline orchestrates groundwater depth prediction: input
// validation, zone gating, weather feature assembly, model inference,
// borewell offset correction and confidence scoring.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/observability"
)

// Inferencer produces a raw depth prediction from an ordered feature vector.
type Inferencer interface {
	Predict(ctx context.Context, features []float64) (float64, error)
	FeatureNames(ctx context.Context) ([]string, error)
}

// WeatherEstimator supplies the weather-derived model inputs for a point
// in time and space.
type WeatherEstimator interface {
	Estimate(p domain.Coordinate, at time.Time) domain.WeatherSample
}

// Recorder receives completed prediction events. Implementations must not
// block the request path on delivery.
type Recorder interface {
	RecordPrediction(ctx context.Context, ev Event)
}

// Event describes one completed prediction for downstream consumers.
type Event struct {
	RequestID  string    `json:"request_id"`
	Kind       string    `json:"kind"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	DepthM     float64   `json:"depth_m"`
	Confidence float64   `json:"confidence"`
	At         time.Time `json:"at"`
}

// PointRequest is a single-point prediction request. Callers supply their
// own weather observations; the estimator is only used for area grids.
// Timestamp is optional; when empty the current time is used.
type PointRequest struct {
	Latitude  float64
	Longitude float64
	Timestamp string

	Rainfall        float64
	RiverWaterLevel float64
	Temperature     float64
	RainfallLag1    float64
	RiverLag1       float64
}

// Sample returns the request's weather observations.
func (r PointRequest) Sample() domain.WeatherSample {
	return domain.WeatherSample{
		Rainfall:        r.Rainfall,
		RiverWaterLevel: r.RiverWaterLevel,
		Temperature:     r.Temperature,
		RainfallLag1:    r.RainfallLag1,
		RiverLag1:       r.RiverLag1,
	}
}

// PointResult is a completed single-point prediction.
type PointResult struct {
	Value      float64 `json:"predicted_water_level"`
	Confidence float64 `json:"confidence"`
}

// Service runs the prediction pipeline against injected collaborators.
// All reference data is read-only after construction.
type Service struct {
	refs      domain.ReferenceLocationSet
	wells     []domain.BorewellRecord
	inference Inferencer
	weather   WeatherEstimator
	corrector domain.OffsetCorrector
	recorder  Recorder
	logger    *slog.Logger
	metrics   *observability.Metrics

	zoneMaxKm float64
	gridSize  int
	workers   int

	ready atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder attaches a prediction event recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithZoneRadius overrides the prediction zone radius in kilometres.
func WithZoneRadius(km float64) Option {
	return func(s *Service) { s.zoneMaxKm = km }
}

// WithGrid overrides the area grid dimension and worker count.
func WithGrid(size, workers int) Option {
	return func(s *Service) {
		if size >= 2 {
			s.gridSize = size
		}
		if workers >= 1 {
			s.workers = workers
		}
	}
}

// WithCorrector overrides the borewell offset corrector.
func WithCorrector(c domain.OffsetCorrector) Option {
	return func(s *Service) { s.corrector = c }
}

// NewService builds a prediction Service.
func NewService(
	refs domain.ReferenceLocationSet,
	wells []domain.BorewellRecord,
	inference Inferencer,
	weather WeatherEstimator,
	logger *slog.Logger,
	metrics *observability.Metrics,
	opts ...Option,
) *Service {
	s := &Service{
		refs:      refs,
		wells:     wells,
		inference: inference,
		weather:   weather,
		corrector: domain.DefaultOffsetCorrector(),
		logger:    logger,
		metrics:   metrics,
		zoneMaxKm: domain.DefaultZoneRadiusKm,
		gridSize:  5,
		workers:   4,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// timestampLayouts are accepted request timestamp formats, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return domain.Now(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", domain.ErrInvalidInput, s)
}

// CheckReadiness verifies the inference backend serves the expected feature
// schema. It flips the readiness flag on success and is safe to call again
// after a failure.
func (s *Service) CheckReadiness(ctx context.Context) error {
	names, err := s.inference.FeatureNames(ctx)
	if err != nil {
		s.ready.Store(false)
		return fmt.Errorf("fetch feature schema: %w", err)
	}
	if err := domain.ValidateFeatureSchema(names); err != nil {
		s.ready.Store(false)
		return err
	}
	s.ready.Store(true)
	return nil
}

// Ready reports whether the feature schema has been validated.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// PredictPoint runs the full pipeline for one coordinate.
func (s *Service) PredictPoint(ctx context.Context, req PointRequest) (PointResult, error) {
	if !isFinite(req.Latitude) || !isFinite(req.Longitude) {
		return PointResult{}, fmt.Errorf("%w: coordinates must be finite", domain.ErrInvalidInput)
	}
	for name, v := range map[string]float64{
		"rainfall":          req.Rainfall,
		"river_water_level": req.RiverWaterLevel,
		"temperature":       req.Temperature,
		"rainfall_lag1":     req.RainfallLag1,
		"river_lag1":        req.RiverLag1,
	} {
		if !isFinite(v) {
			return PointResult{}, fmt.Errorf("%w: %s must be a finite number", domain.ErrInvalidInput, name)
		}
	}
	at, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return PointResult{}, err
	}

	p := domain.Coordinate{Lat: req.Latitude, Lon: req.Longitude}
	if !s.refs.InZone(p, s.zoneMaxKm) {
		s.metrics.PredictionsTotal.WithLabelValues("point", "out_of_zone").Inc()
		return PointResult{}, fmt.Errorf("%w: point is more than %.0f km from known data coverage", domain.ErrOutOfZone, s.zoneMaxKm)
	}

	res, err := s.evaluate(ctx, p, at, req.Sample())
	if err != nil {
		s.metrics.PredictionsTotal.WithLabelValues("point", "error").Inc()
		return PointResult{}, err
	}
	s.metrics.PredictionsTotal.WithLabelValues("point", "ok").Inc()
	s.metrics.ConfidenceScore.Observe(res.Confidence)

	if s.recorder != nil {
		s.recorder.RecordPrediction(ctx, Event{
			Kind:       "point",
			Latitude:   p.Lat,
			Longitude:  p.Lon,
			DepthM:     res.Value,
			Confidence: res.Confidence,
			At:         at,
		})
	}
	s.logger.InfoContext(ctx, "prediction complete",
		slog.Float64("lat", p.Lat),
		slog.Float64("lon", p.Lon),
		slog.Float64("depth_m", res.Value),
		slog.Float64("confidence", res.Confidence),
	)
	return res, nil
}

// evaluate performs assembly, inference, correction and scoring for one
// in-zone coordinate. The point path passes the caller's weather sample;
// the area path passes estimator output.
func (s *Service) evaluate(ctx context.Context, p domain.Coordinate, at time.Time, sample domain.WeatherSample) (PointResult, error) {
	features := domain.NewPredictionFeatures(p, sample, at)
	if err := features.Validate(); err != nil {
		return PointResult{}, err
	}

	start := domain.Now()
	raw, err := s.inference.Predict(ctx, features.Vector())
	s.metrics.InferenceDuration.Observe(domain.Now().Sub(start).Seconds())
	if err != nil {
		return PointResult{}, fmt.Errorf("%w: model inference failed: %v", domain.ErrUnavailable, err)
	}
	if !isFinite(raw) {
		return PointResult{}, fmt.Errorf("%w: model returned a non-finite prediction", domain.ErrUnavailable)
	}

	corrected := s.corrector.Correct(raw, p, s.wells)

	confidence := domain.EstimateConfidence(domain.ConfidenceInput{
		Point:       p,
		Rainfall:    sample.Rainfall,
		Temperature: sample.Temperature,
		Refs:        s.refs,
	})

	return PointResult{
		Value:      domain.RoundTo(corrected, 2),
		Confidence: domain.RoundTo(confidence, 1),
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
