package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MODEL_SERVICE_URL", "http://model:5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://model:5000", cfg.ModelServiceURL)
	assert.Equal(t, 20.0, cfg.ZoneMaxKm)
	assert.Equal(t, 5, cfg.GridSize)
	assert.Equal(t, 10.0, cfg.CorrectionRadiusKm)
	assert.Equal(t, 15.0, cfg.CorrectionMaxOffsetM)
	assert.Equal(t, 2.0, cfg.CircleRadiusKm)
	assert.Equal(t, 48, cfg.CircleVertices)
	assert.Equal(t, "Nashik, Maharashtra, India", cfg.RegionQualifier)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled)
	assert.False(t, cfg.GeminiEnabled)
}

func TestLoadMissingModelURL(t *testing.T) {
	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "MODEL_SERVICE_URL")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MODEL_SERVICE_URL", "http://model:5000")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("ZONE_MAX_KM", "30")
	t.Setenv("GRID_SIZE", "7")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("KAFKA_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 30.0, cfg.ZoneMaxKm)
	assert.Equal(t, 7, cfg.GridSize)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled)
}

func TestLoadGeminiImpliedByKey(t *testing.T) {
	t.Setenv("MODEL_SERVICE_URL", "http://model:5000")
	t.Setenv("GEMINI_API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.GeminiEnabled)
	assert.Equal(t, "gemini-pro", cfg.GeminiModel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"ZONE_MAX_KM":      "-5",
		"GRID_SIZE":        "1",
		"GRID_WORKERS":     "0",
		"CIRCLE_VERTICES":  "2",
		"SHUTDOWN_TIMEOUT": "soon",
		"MODEL_TIMEOUT":    "-1s",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("MODEL_SERVICE_URL", "http://model:5000")
			t.Setenv(key, val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadGeminiEnabledWithoutKey(t *testing.T) {
	t.Setenv("MODEL_SERVICE_URL", "http://model:5000")
	t.Setenv("GEMINI_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
