package kafka

import (
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/pipeline"
)

func TestSerializeToMessage(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)
	ev := pipeline.Event{
		RequestID:  "req-1",
		Kind:       "point",
		Latitude:   20.0059,
		Longitude:  73.7897,
		DepthM:     42.46,
		Confidence: 87.5,
		At:         at,
	}

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, []byte("req-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"kind":"point"`)
	assert.Contains(t, string(msg.Value), `"depth_m":42.46`)

	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("point"), msg.Headers[0].Value)
	assert.Equal(t, "predicted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(at.Format(time.RFC3339)), msg.Headers[1].Value)
}

func TestSerializeToMessageRoundTrips(t *testing.T) {
	ev := pipeline.Event{
		RequestID: "req-2",
		Kind:      "area",
		DepthM:    61.2,
		At:        time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(ev)
	require.NoError(t, err)
	assert.IsType(t, kafkago.Message{}, msg)
	assert.JSONEq(t, `{
		"request_id": "req-2",
		"kind": "area",
		"latitude": 0,
		"longitude": 0,
		"depth_m": 61.2,
		"confidence": 0,
		"at": "2024-07-01T08:00:00Z"
	}`, string(msg.Value))
}
