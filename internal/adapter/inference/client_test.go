package inference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict(t *testing.T) {
	var gotFeatures []float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/predict", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Features []float64 `json:"features"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotFeatures = req.Features

		json.NewEncoder(w).Encode(map[string]float64{"prediction": 42.7})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	features := []float64{20.0, 73.79, 120, 3.2, 27, 2024, 6, 15, 10, 95, 3.0}

	got, err := c.Predict(context.Background(), features)
	require.NoError(t, err)
	assert.Equal(t, 42.7, got)
	assert.Equal(t, features, gotFeatures)
}

func TestPredictServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Predict(context.Background(), []float64{1, 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPredictUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Predict(context.Background(), []float64{1})
	assert.Error(t, err)
}

func TestFeatureNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/schema", r.URL.Path)
		json.NewEncoder(w).Encode(map[string][]string{
			"features": {"Latitude", "Longitude", "Rainfall"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	names, err := c.FeatureNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Latitude", "Longitude", "Rainfall"}, names)
}

func TestFeatureNamesBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.FeatureNames(context.Background())
	assert.Error(t, err)
}
