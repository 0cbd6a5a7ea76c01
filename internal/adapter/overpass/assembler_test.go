package overpass

import (
	"testing"

	overpassapi "github.com/serjvanilla/go-overpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

func node(id int64, lat, lon float64) *overpassapi.Node {
	return &overpassapi.Node{Meta: overpassapi.Meta{ID: id}, Lat: lat, Lon: lon}
}

func TestStitchSegmentsOrdered(t *testing.T) {
	// Three ways already head to tail: 1-2-3, 3-4, 4-5-1.
	segments := [][]*overpassapi.Node{
		{node(1, 20.0, 73.0), node(2, 20.1, 73.0), node(3, 20.1, 73.1)},
		{node(3, 20.1, 73.1), node(4, 20.0, 73.1)},
		{node(4, 20.0, 73.1), node(5, 19.9, 73.05), node(1, 20.0, 73.0)},
	}

	ring := stitchSegments(segments)
	ids := make([]int64, len(ring))
	for i, n := range ring {
		ids[i] = n.ID
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 1}, ids)
}

func TestStitchSegmentsReversedAndShuffled(t *testing.T) {
	// Same ring, but the middle segment is reversed and order is shuffled.
	segments := [][]*overpassapi.Node{
		{node(1, 20.0, 73.0), node(2, 20.1, 73.0), node(3, 20.1, 73.1)},
		{node(1, 20.0, 73.0), node(5, 19.9, 73.05), node(4, 20.0, 73.1)},
		{node(4, 20.0, 73.1), node(3, 20.1, 73.1)},
	}

	ring := stitchSegments(segments)
	ids := make([]int64, len(ring))
	for i, n := range ring {
		ids[i] = n.ID
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 1}, ids)
}

func TestRingToPolygonClosesRing(t *testing.T) {
	nodes := []*overpassapi.Node{
		node(1, 20.0, 73.0),
		node(2, 20.1, 73.0),
		node(3, 20.1, 73.1),
	}

	poly, err := ringToPolygon(nodes, 99)
	require.NoError(t, err)

	coords := poly.Coords()[0]
	require.Len(t, coords, 4)
	assert.Equal(t, coords[0], coords[3])
	// geom coordinates are lon, lat.
	assert.Equal(t, 73.0, coords[0].X())
	assert.Equal(t, 20.0, coords[0].Y())
}

func TestRingToPolygonAlreadyClosed(t *testing.T) {
	nodes := []*overpassapi.Node{
		node(1, 20.0, 73.0),
		node(2, 20.1, 73.0),
		node(3, 20.1, 73.1),
		node(1, 20.0, 73.0),
	}

	poly, err := ringToPolygon(nodes, 99)
	require.NoError(t, err)
	assert.Len(t, poly.Coords()[0], 4)
}

func TestRingToPolygonTooFewPoints(t *testing.T) {
	_, err := ringToPolygon([]*overpassapi.Node{node(1, 20, 73), node(2, 20.1, 73)}, 99)
	assert.ErrorIs(t, err, domain.ErrNoResult)
}
