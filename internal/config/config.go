package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Model service (required).
	ModelServiceURL string
	ModelTimeout    time.Duration

	// Reference data store. Optional: an empty URL runs the service with
	// empty reference/borewell collections (degraded, no geofencing).
	PostgresURL string

	// Prediction zone and grid.
	ZoneMaxKm   float64
	GridSize    int
	GridWorkers int

	// Offset correction.
	CorrectionRadiusKm   float64
	CorrectionMaxOffsetM float64

	// Boundary resolution.
	NominatimURL     string
	NominatimTimeout time.Duration
	OverpassURL      string
	OverpassTimeout  time.Duration
	GeocodeCacheSize int
	RegionQualifier  string
	CircleRadiusKm   float64
	CircleVertices   int

	// Gemini location suggestions (feature-flagged via GEMINI_API_KEY).
	GeminiAPIKey  string
	GeminiModel   string
	GeminiEnabled bool

	// Kafka prediction events (feature-flagged via KAFKA_ENABLED).
	KafkaBrokers []string
	KafkaTopic   string
	KafkaEnabled bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	modelTimeout, err := parseDuration("MODEL_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	nominatimTimeout, err := parseDuration("NOMINATIM_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	overpassTimeout, err := parseDuration("OVERPASS_TIMEOUT", "25s")
	if err != nil {
		return nil, err
	}

	zoneMaxKm, err := parseFloat("ZONE_MAX_KM", 20.0)
	if err != nil {
		return nil, err
	}
	gridSize, err := parseInt("GRID_SIZE", 5)
	if err != nil {
		return nil, err
	}
	gridWorkers, err := parseInt("GRID_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	correctionRadius, err := parseFloat("CORRECTION_RADIUS_KM", 10.0)
	if err != nil {
		return nil, err
	}
	correctionMaxOffset, err := parseFloat("CORRECTION_MAX_OFFSET_M", 15.0)
	if err != nil {
		return nil, err
	}
	circleRadius, err := parseFloat("CIRCLE_RADIUS_KM", 2.0)
	if err != nil {
		return nil, err
	}
	circleVertices, err := parseInt("CIRCLE_VERTICES", 48)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseInt("GEOCODE_CACHE_SIZE", 1000)
	if err != nil {
		return nil, err
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	geminiEnabled := geminiKey != ""
	if v := os.Getenv("GEMINI_ENABLED"); v != "" {
		geminiEnabled = v == "true"
	}

	kafkaEnabled := os.Getenv("KAFKA_ENABLED") == "true"

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ModelServiceURL: os.Getenv("MODEL_SERVICE_URL"),
		ModelTimeout:    modelTimeout,

		PostgresURL: os.Getenv("POSTGRES_URL"),

		ZoneMaxKm:   zoneMaxKm,
		GridSize:    gridSize,
		GridWorkers: gridWorkers,

		CorrectionRadiusKm:   correctionRadius,
		CorrectionMaxOffsetM: correctionMaxOffset,

		NominatimURL:     envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		NominatimTimeout: nominatimTimeout,
		OverpassURL:      envOrDefault("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout:  overpassTimeout,
		GeocodeCacheSize: cacheSize,
		RegionQualifier:  envOrDefault("REGION_QUALIFIER", "Nashik, Maharashtra, India"),
		CircleRadiusKm:   circleRadius,
		CircleVertices:   circleVertices,

		GeminiAPIKey:  geminiKey,
		GeminiModel:   envOrDefault("GEMINI_MODEL", "gemini-pro"),
		GeminiEnabled: geminiEnabled,

		KafkaBrokers: parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   envOrDefault("KAFKA_TOPIC", "groundwater-predictions"),
		KafkaEnabled: kafkaEnabled,
	}

	if cfg.ModelServiceURL == "" {
		return nil, errors.New("MODEL_SERVICE_URL is required")
	}
	if cfg.ZoneMaxKm <= 0 {
		return nil, errors.New("ZONE_MAX_KM must be positive")
	}
	if cfg.GridSize < 2 {
		return nil, errors.New("GRID_SIZE must be at least 2")
	}
	if cfg.GridWorkers < 1 {
		return nil, errors.New("GRID_WORKERS must be at least 1")
	}
	if cfg.CircleVertices < 3 {
		return nil, errors.New("CIRCLE_VERTICES must be at least 3")
	}
	if cfg.GeminiEnabled && cfg.GeminiAPIKey == "" {
		return nil, errors.New("GEMINI_ENABLED is true but GEMINI_API_KEY is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
