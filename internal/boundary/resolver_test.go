package boundary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/observability"
)

type fakeGeocoder struct {
	searchResults map[string][]GeocodeResult
	searchErr     error
	reverseResult *GeocodeResult
	reverseErr    error
	searchQueries []string
	reverseCalls  int
}

func (f *fakeGeocoder) Search(_ context.Context, query string) ([]GeocodeResult, error) {
	f.searchQueries = append(f.searchQueries, query)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults[query], nil
}

func (f *fakeGeocoder) Reverse(context.Context, domain.Coordinate) (*GeocodeResult, error) {
	f.reverseCalls++
	return f.reverseResult, f.reverseErr
}

type fakeAssembler struct {
	polygon *geom.Polygon
	err     error
	calls   int
	osmType string
	osmID   int64
}

func (f *fakeAssembler) Assemble(_ context.Context, osmType string, osmID int64) (*geom.Polygon, error) {
	f.calls++
	f.osmType = osmType
	f.osmID = osmID
	return f.polygon, f.err
}

func squarePolygon(t *testing.T) *geom.Polygon {
	t.Helper()
	poly, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
		{73.7, 19.9}, {73.9, 19.9}, {73.9, 20.1}, {73.7, 20.1}, {73.7, 19.9},
	}})
	require.NoError(t, err)
	return poly
}

func newResolver(geocoder Geocoder, assembler GeometryAssembler) *Resolver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewResolver(geocoder, assembler, logger, observability.NewMetricsForTesting(),
		"Nashik, Maharashtra, India", 2.0, 48)
}

var trimbak = domain.Coordinate{Lat: 19.93, Lon: 73.53}

func TestResolveReverseGeocodeWins(t *testing.T) {
	gc := &fakeGeocoder{reverseResult: &GeocodeResult{
		DisplayName: "Trimbakeshwar, Nashik",
		Polygon:     squarePolygon(t),
	}}
	r := newResolver(gc, nil)

	b, err := r.Resolve(context.Background(), Request{Point: &trimbak})
	require.NoError(t, err)
	assert.Equal(t, "reverse_geocode", b.Method)
	assert.Equal(t, "Trimbakeshwar, Nashik", b.Name)
	assert.NotNil(t, b.Polygon)
	assert.Empty(t, gc.searchQueries, "forward geocoding must not run after a reverse hit")
}

func TestResolveForwardQualifierVariants(t *testing.T) {
	gc := &fakeGeocoder{searchResults: map[string][]GeocodeResult{
		"Sinnar village, Nashik, Maharashtra, India": {{
			DisplayName: "Sinnar, Nashik",
			Polygon:     squarePolygon(t),
		}},
	}}
	r := newResolver(gc, nil)

	b, err := r.Resolve(context.Background(), Request{Name: "Sinnar"})
	require.NoError(t, err)
	assert.Equal(t, "forward_geocode", b.Method)

	// Earlier variants were tried first, in order.
	require.GreaterOrEqual(t, len(gc.searchQueries), 4)
	assert.Equal(t, "Sinnar, Nashik, Maharashtra, India", gc.searchQueries[0])
	assert.Equal(t, "Sinnar taluka, Nashik, Maharashtra, India", gc.searchQueries[1])
	assert.Equal(t, "Sinnar tehsil, Nashik, Maharashtra, India", gc.searchQueries[2])
	assert.Equal(t, "Sinnar village, Nashik, Maharashtra, India", gc.searchQueries[3])
}

func TestResolveBoundingBoxFallback(t *testing.T) {
	gc := &fakeGeocoder{searchResults: map[string][]GeocodeResult{
		"Igatpuri, Nashik, Maharashtra, India": {{
			DisplayName: "Igatpuri, Nashik",
			Bounds:      &domain.Bounds{North: 19.75, South: 19.65, East: 73.60, West: 73.50},
		}},
	}}
	r := newResolver(gc, nil)

	b, err := r.Resolve(context.Background(), Request{Name: "Igatpuri"})
	require.NoError(t, err)
	assert.Equal(t, "bounding_box", b.Method)

	coords := b.Polygon.Coords()[0]
	require.Len(t, coords, 5)
	assert.Equal(t, coords[0], coords[4], "ring must be closed")
	assert.Equal(t, 73.50, coords[0].X())
	assert.Equal(t, 19.65, coords[0].Y())
}

func TestResolveOSMGeometryFallback(t *testing.T) {
	gc := &fakeGeocoder{searchResults: map[string][]GeocodeResult{
		"Dindori, Nashik, Maharashtra, India": {{
			DisplayName: "Dindori, Nashik",
			OSMType:     "relation",
			OSMID:       1234567,
		}},
	}}
	asm := &fakeAssembler{polygon: squarePolygon(t)}
	r := newResolver(gc, asm)

	b, err := r.Resolve(context.Background(), Request{Name: "Dindori"})
	require.NoError(t, err)
	assert.Equal(t, "osm_geometry", b.Method)
	assert.Equal(t, 1, asm.calls)
	assert.Equal(t, "relation", asm.osmType)
	assert.Equal(t, int64(1234567), asm.osmID)
}

func TestResolveCircleFallback(t *testing.T) {
	gc := &fakeGeocoder{}
	r := newResolver(gc, &fakeAssembler{err: errors.New("timeout")})

	b, err := r.Resolve(context.Background(), Request{Name: "Nowhere", Point: &trimbak})
	require.NoError(t, err)
	assert.Equal(t, "circle", b.Method)
	assert.Equal(t, "Nowhere", b.Name)

	coords := b.Polygon.Coords()[0]
	assert.Len(t, coords, 49, "48 vertices plus the closing point")
	assert.Equal(t, coords[0], coords[48])

	// Centroid of the ring should sit on the request point.
	var sumX, sumY float64
	for _, c := range coords[:48] {
		sumX += c.X()
		sumY += c.Y()
	}
	assert.InDelta(t, trimbak.Lon, sumX/48, 1e-9)
	assert.InDelta(t, trimbak.Lat, sumY/48, 1e-9)
}

func TestResolveCircleRadius(t *testing.T) {
	poly, err := circlePolygon(domain.Coordinate{Lat: 20.0, Lon: 73.79}, 2.0, 48)
	require.NoError(t, err)

	for _, c := range poly.Coords()[0] {
		d := domain.DistanceKm(domain.Coordinate{Lat: 20.0, Lon: 73.79},
			domain.Coordinate{Lat: c.Y(), Lon: c.X()})
		assert.InDelta(t, 2.0, d, 0.05)
	}
}

func TestResolveNoResult(t *testing.T) {
	// A name-only request with no geocode hits has no center for the
	// circle stage.
	r := newResolver(&fakeGeocoder{}, nil)

	_, err := r.Resolve(context.Background(), Request{Name: "Atlantis"})
	assert.ErrorIs(t, err, domain.ErrNoResult)
}

func TestResolveEmptyRequest(t *testing.T) {
	r := newResolver(&fakeGeocoder{}, nil)

	_, err := r.Resolve(context.Background(), Request{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveGeocoderErrorsFallThrough(t *testing.T) {
	gc := &fakeGeocoder{searchErr: errors.New("503"), reverseErr: errors.New("503")}
	r := newResolver(gc, nil)

	b, err := r.Resolve(context.Background(), Request{Name: "Sinnar", Point: &trimbak})
	require.NoError(t, err)
	assert.Equal(t, "circle", b.Method)
}
