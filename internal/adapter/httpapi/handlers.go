package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/boundary"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/pipeline"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/weather"
)

// The frontend treats every API response as 200 and branches on the
// success flag, so domain failures are reported in the body rather than
// the status line. Only transport-level problems surface as non-200.
func (s *Server) fail(c *gin.Context, err error) {
	msg := "internal error"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		msg = err.Error()
	case errors.Is(err, domain.ErrOutOfZone):
		msg = err.Error()
	case errors.Is(err, domain.ErrNoResult):
		msg = err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		msg = "prediction service temporarily unavailable"
	default:
		s.logger.ErrorContext(c.Request.Context(), "unhandled request error",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	c.JSON(http.StatusOK, gin.H{"success": false, "error": msg})
}

func (s *Server) badRequest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": false, "error": "invalid request body"})
}

// Weather fields are pointers so absent keys can be told apart from zero
// observations.
type predictBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp"`

	Rainfall        *float64 `json:"rainfall"`
	RiverWaterLevel *float64 `json:"river_water_level"`
	Temperature     *float64 `json:"temperature"`
	RainfallLag1    *float64 `json:"rainfall_lag1"`
	RiverLag1       *float64 `json:"river_lag1"`
}

func (s *Server) handlePredict(c *gin.Context) {
	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c)
		return
	}

	for name, v := range map[string]*float64{
		"rainfall":          body.Rainfall,
		"river_water_level": body.RiverWaterLevel,
		"temperature":       body.Temperature,
		"rainfall_lag1":     body.RainfallLag1,
		"river_lag1":        body.RiverLag1,
	} {
		if v == nil {
			s.fail(c, fmt.Errorf("%w: missing required field %q", domain.ErrInvalidInput, name))
			return
		}
	}

	res, err := s.predictor.PredictPoint(c.Request.Context(), pipeline.PointRequest{
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		Timestamp: body.Timestamp,

		Rainfall:        *body.Rainfall,
		RiverWaterLevel: *body.RiverWaterLevel,
		Temperature:     *body.Temperature,
		RainfallLag1:    *body.RainfallLag1,
		RiverLag1:       *body.RiverLag1,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"predicted_water_level": res.Value,
		"confidence":            res.Confidence,
	})
}

type predictAreaBody struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

func (s *Server) handlePredictArea(c *gin.Context) {
	var body predictAreaBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c)
		return
	}

	res, err := s.predictor.PredictArea(c.Request.Context(), pipeline.AreaRequest{
		North: body.North,
		South: body.South,
		East:  body.East,
		West:  body.West,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"predictions": res.Cells,
		"top_5":       res.Top5,
		"statistics":  res.Stats,
	})
}

type boundaryBody struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

func (s *Server) handleBoundary(c *gin.Context) {
	var body boundaryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c)
		return
	}

	req := boundary.Request{Name: body.Name}
	if body.Lat != nil && body.Lng != nil {
		req.Point = &domain.Coordinate{Lat: *body.Lat, Lon: *body.Lng}
	}

	b, err := s.resolver.Resolve(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}

	geometry, err := geojson.Marshal(b.Polygon)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"name":     b.Name,
		"method":   b.Method,
		"boundary": json.RawMessage(geometry),
	})
}

type borewellsBody struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	RadiusKm  *float64 `json:"radius_km"`
}

func (s *Server) handleBorewells(c *gin.Context) {
	var body borewellsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c)
		return
	}

	radius := 10.0
	if body.RadiusKm != nil && *body.RadiusKm > 0 {
		radius = min(*body.RadiusKm, 50.0)
	}

	center := domain.Coordinate{Lat: body.Latitude, Lon: body.Longitude}
	nearby := domain.NearbyBorewells(s.wells, center, radius)
	if nearby == nil {
		nearby = []domain.NearbyBorewell{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"borewells":  nearby,
		"statistics": domain.SummarizeBorewells(nearby),
		"places":     domain.DistinctPlaces(s.wells),
	})
}

type weatherBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *Server) handleWeather(c *gin.Context) {
	var body weatherBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c)
		return
	}

	p := domain.Coordinate{Lat: body.Latitude, Lon: body.Longitude}
	now := domain.Now()

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"current":  s.weather.Estimate(p, now),
		"trend":    s.weather.MonthlyTrend(p, now.Year()),
		"stations": weather.NearestStations(p, 3),
	})
}

type suggestionsBody struct {
	Query string `json:"query"`
	Max   int    `json:"max"`
}

func (s *Server) handleSuggestions(c *gin.Context) {
	var body suggestionsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c)
		return
	}
	if body.Max <= 0 || body.Max > 20 {
		body.Max = 8
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"suggestions": s.suggester.Suggest(c.Request.Context(), body.Query, body.Max),
	})
}

func (s *Server) handleLocalPlaces(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"places":  domain.DistinctPlaces(s.wells),
	})
}
