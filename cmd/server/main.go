package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	geminiadapter "github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/gemini"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/httpapi"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/inference"
	kafkaadapter "github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/kafka"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/nominatim"
	overpassadapter "github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/overpass"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/adapter/postgres"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/boundary"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/config"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/observability"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/pipeline"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/places"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/weather"
)

func main() {
	// Local development convenience; deployed environments set real env vars.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refs, wells := loadReferenceData(ctx, cfg, logger)

	modelClient := inference.NewClient(cfg.ModelServiceURL, cfg.ModelTimeout)
	estimator := weather.New()

	opts := []pipeline.Option{
		pipeline.WithZoneRadius(cfg.ZoneMaxKm),
		pipeline.WithGrid(cfg.GridSize, cfg.GridWorkers),
		pipeline.WithCorrector(domain.OffsetCorrector{
			RadiusKm:    cfg.CorrectionRadiusKm,
			MaxOffsetM:  cfg.CorrectionMaxOffsetM,
			BlendWeight: domain.DefaultOffsetCorrector().BlendWeight,
		}),
	}

	// Prediction events are feature-flagged via KAFKA_ENABLED.
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic, logger, metrics)
		opts = append(opts, pipeline.WithRecorder(kafkaWriter))
		logger.Info("kafka prediction events enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka prediction events disabled")
	}

	predictor := pipeline.NewService(refs, wells, modelClient, estimator, logger, metrics, opts...)

	readyCtx, cancel := context.WithTimeout(ctx, cfg.ModelTimeout)
	if err := predictor.CheckReadiness(readyCtx); err != nil {
		logger.Warn("model service not ready at startup, will retry on /readyz", "error", err)
	}
	cancel()

	geocoder := nominatim.NewCachedGeocoder(
		nominatim.NewClient(cfg.NominatimURL, "groundwater-prediction-service/1.0", cfg.NominatimTimeout, logger),
		cfg.GeocodeCacheSize,
		metrics,
	)
	assembler := overpassadapter.NewAssembler(cfg.OverpassURL, cfg.OverpassTimeout)
	resolver := boundary.NewResolver(geocoder, assembler, logger, metrics,
		cfg.RegionQualifier, cfg.CircleRadiusKm, cfg.CircleVertices)

	// Gemini suggestions are feature-flagged via GEMINI_API_KEY.
	var backend places.Suggester
	if cfg.GeminiEnabled {
		suggester, err := geminiadapter.NewSuggester(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			logger.Warn("gemini init failed, using curated suggestions only", "error", err)
		} else {
			defer suggester.Close()
			backend = suggester
			logger.Info("gemini suggestions enabled", "model", cfg.GeminiModel)
		}
	} else {
		logger.Info("gemini suggestions disabled")
	}
	suggestions := places.NewService(backend, logger)

	srv := httpapi.NewServer(cfg.HTTPAddr, predictor, resolver, suggestions, estimator, wells, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadReferenceData reads reference locations and borewell records from the
// database. With no database configured, or on load failure, the service
// runs degraded: the zone check passes everywhere and no offset correction
// is applied.
func loadReferenceData(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ReferenceLocationSet, []domain.BorewellRecord) {
	if cfg.PostgresURL == "" {
		logger.Warn("no database configured, running without reference data")
		return domain.NewReferenceLocationSet(nil), nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repo, err := postgres.Open(loadCtx, cfg.PostgresURL)
	if err != nil {
		logger.Error("database connection failed, running without reference data", "error", err)
		return domain.NewReferenceLocationSet(nil), nil
	}
	defer repo.Close()

	points, err := repo.ReferenceLocations(loadCtx)
	if err != nil {
		logger.Error("loading reference locations failed", "error", err)
	}
	wells, err := repo.Borewells(loadCtx)
	if err != nil {
		logger.Error("loading borewells failed", "error", err)
	}

	logger.Info("reference data loaded", "locations", len(points), "borewells", len(wells))
	return domain.NewReferenceLocationSet(points), wells
}
