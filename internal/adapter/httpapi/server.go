// Package httpapi exposes the prediction service over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/boundary"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/pipeline"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/places"
)

// Predictor runs the prediction pipeline.
type Predictor interface {
	PredictPoint(ctx context.Context, req pipeline.PointRequest) (pipeline.PointResult, error)
	PredictArea(ctx context.Context, req pipeline.AreaRequest) (pipeline.AreaResult, error)
	CheckReadiness(ctx context.Context) error
	Ready() bool
}

// BoundaryResolver resolves place boundary polygons.
type BoundaryResolver interface {
	Resolve(ctx context.Context, req boundary.Request) (*boundary.Boundary, error)
}

// Suggester answers place suggestion queries.
type Suggester interface {
	Suggest(ctx context.Context, query string, max int) []places.Suggestion
}

// WeatherProvider supplies weather estimates for the weather endpoint.
type WeatherProvider interface {
	Estimate(p domain.Coordinate, at time.Time) domain.WeatherSample
	MonthlyTrend(p domain.Coordinate, year int) []domain.WeatherSample
}

// Server wires the API handlers into an http.Server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger

	predictor Predictor
	resolver  BoundaryResolver
	suggester Suggester
	weather   WeatherProvider
	wells     []domain.BorewellRecord
}

// NewServer builds the HTTP server and registers all routes.
func NewServer(
	addr string,
	predictor Predictor,
	resolver BoundaryResolver,
	suggester Suggester,
	weather WeatherProvider,
	wells []domain.BorewellRecord,
	logger *slog.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:    logger,
		predictor: predictor,
		resolver:  resolver,
		suggester: suggester,
		weather:   weather,
		wells:     wells,
	}

	engine.Use(gin.Recovery(), s.requestID(), s.requestLog())

	engine.GET("/healthz", s.handleHealth)
	engine.GET("/readyz", s.handleReady)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	{
		api.POST("/predict", s.handlePredict)
		api.POST("/predict_area", s.handlePredictArea)
		api.POST("/boundary", s.handleBoundary)
		api.POST("/borewells", s.handleBorewells)
		api.POST("/weather", s.handleWeather)
		api.POST("/suggestions", s.handleSuggestions)
		api.GET("/places/local", s.handleLocalPlaces)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "request handled",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.String("request_id", c.GetString("request_id")),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleReady(c *gin.Context) {
	if s.predictor.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.predictor.CheckReadiness(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
