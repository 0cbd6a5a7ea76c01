// Package boundary resolves administrative boundary polygons for named
// places and coordinates. Resolution cascades through geocoding, bounding
// boxes, raw OSM geometry assembly and finally a synthetic circle, so a
// caller always gets some polygon back for a plausible request.
package boundary

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/twpayne/go-geom"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/observability"
)

// GeocodeResult is one candidate place from a geocoding lookup.
type GeocodeResult struct {
	DisplayName string
	Center      domain.Coordinate
	OSMType     string
	OSMID       int64
	Polygon     *geom.Polygon
	Bounds      *domain.Bounds
}

// Geocoder looks places up by name or coordinate.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]GeocodeResult, error)
	Reverse(ctx context.Context, p domain.Coordinate) (*GeocodeResult, error)
}

// GeometryAssembler builds a polygon from raw OSM object geometry.
type GeometryAssembler interface {
	Assemble(ctx context.Context, osmType string, osmID int64) (*geom.Polygon, error)
}

// Request asks for a boundary by place name, coordinate, or both.
type Request struct {
	Name  string
	Point *domain.Coordinate
}

// Boundary is a resolved place outline. Method names the stage that
// produced the polygon.
type Boundary struct {
	Name    string        `json:"name"`
	Method  string        `json:"method"`
	Polygon *geom.Polygon `json:"-"`
}

// Resolver cascades through boundary resolution strategies in order.
type Resolver struct {
	geocoder  Geocoder
	assembler GeometryAssembler
	logger    *slog.Logger
	metrics   *observability.Metrics

	// Region context appended to forward-geocoding queries, for example
	// "Nashik, Maharashtra, India".
	regionQualifier string
	circleRadiusKm  float64
	circleVertices  int
}

// NewResolver builds a Resolver. The assembler may be nil, in which case
// the raw-geometry stage is skipped.
func NewResolver(geocoder Geocoder, assembler GeometryAssembler, logger *slog.Logger, metrics *observability.Metrics, regionQualifier string, circleRadiusKm float64, circleVertices int) *Resolver {
	return &Resolver{
		geocoder:        geocoder,
		assembler:       assembler,
		logger:          logger,
		metrics:         metrics,
		regionQualifier: regionQualifier,
		circleRadiusKm:  circleRadiusKm,
		circleVertices:  circleVertices,
	}
}

// qualifierFormats are the place-type variants tried during forward
// geocoding. Rural Indian place names often need the administrative
// qualifier before Nominatim returns the right object.
var qualifierFormats = []string{
	"%s, %s",
	"%s taluka, %s",
	"%s tehsil, %s",
	"%s village, %s",
	"%s town, %s",
	"%s municipal council, %s",
}

// resolution carries state across stages: the best geocode candidate seen
// so far, kept for the bbox, assembly and circle fallbacks.
type resolution struct {
	req       Request
	candidate *GeocodeResult
}

type stage struct {
	name string
	run  func(ctx context.Context, st *resolution) (*Boundary, error)
}

// Resolve walks the stage chain and returns the first boundary produced.
// ErrNoResult is returned only when no stage can run at all, which requires
// a request with neither a usable name nor a coordinate.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Boundary, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" && req.Point == nil {
		return nil, fmt.Errorf("%w: boundary request needs a place name or a coordinate", domain.ErrInvalidInput)
	}

	st := &resolution{req: req}
	stages := []stage{
		{name: "reverse_geocode", run: r.reverseStage},
		{name: "forward_geocode", run: r.forwardStage},
		{name: "bounding_box", run: r.bboxStage},
		{name: "osm_geometry", run: r.assembleStage},
		{name: "circle", run: r.circleStage},
	}

	for _, s := range stages {
		b, err := s.run(ctx, st)
		if err != nil {
			r.logger.DebugContext(ctx, "boundary stage failed",
				slog.String("stage", s.name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if b == nil {
			continue
		}
		b.Method = s.name
		if b.Name == "" {
			b.Name = req.Name
		}
		r.metrics.BoundaryResolutions.WithLabelValues(s.name).Inc()
		r.logger.InfoContext(ctx, "boundary resolved",
			slog.String("name", b.Name),
			slog.String("method", s.name),
		)
		return b, nil
	}

	r.metrics.BoundaryResolutions.WithLabelValues("none").Inc()
	return nil, fmt.Errorf("%w: no boundary found for %q", domain.ErrNoResult, req.Name)
}

func (r *Resolver) reverseStage(ctx context.Context, st *resolution) (*Boundary, error) {
	if st.req.Point == nil {
		return nil, nil
	}
	res, err := r.geocoder.Reverse(ctx, *st.req.Point)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	st.remember(res)
	if res.Polygon == nil {
		return nil, nil
	}
	return &Boundary{Name: res.DisplayName, Polygon: res.Polygon}, nil
}

func (r *Resolver) forwardStage(ctx context.Context, st *resolution) (*Boundary, error) {
	if st.req.Name == "" {
		return nil, nil
	}
	var lastErr error
	for _, format := range qualifierFormats {
		query := fmt.Sprintf(format, st.req.Name, r.regionQualifier)
		results, err := r.geocoder.Search(ctx, query)
		if err != nil {
			lastErr = err
			continue
		}
		for i := range results {
			res := &results[i]
			st.remember(res)
			if res.Polygon != nil {
				return &Boundary{Name: res.DisplayName, Polygon: res.Polygon}, nil
			}
		}
	}
	return nil, lastErr
}

func (r *Resolver) bboxStage(_ context.Context, st *resolution) (*Boundary, error) {
	if st.candidate == nil || st.candidate.Bounds == nil {
		return nil, nil
	}
	b := st.candidate.Bounds
	if b.North <= b.South || b.East <= b.West {
		return nil, nil
	}
	ring := [][]geom.Coord{{
		{b.West, b.South},
		{b.East, b.South},
		{b.East, b.North},
		{b.West, b.North},
		{b.West, b.South},
	}}
	poly, err := geom.NewPolygon(geom.XY).SetCoords(ring)
	if err != nil {
		return nil, err
	}
	return &Boundary{Name: st.candidate.DisplayName, Polygon: poly}, nil
}

func (r *Resolver) assembleStage(ctx context.Context, st *resolution) (*Boundary, error) {
	if r.assembler == nil || st.candidate == nil || st.candidate.OSMID == 0 {
		return nil, nil
	}
	poly, err := r.assembler.Assemble(ctx, st.candidate.OSMType, st.candidate.OSMID)
	if err != nil {
		return nil, err
	}
	return &Boundary{Name: st.candidate.DisplayName, Polygon: poly}, nil
}

// circleStage synthesizes an approximate boundary circle around the request
// point or, failing that, the best geocode candidate.
func (r *Resolver) circleStage(_ context.Context, st *resolution) (*Boundary, error) {
	var center domain.Coordinate
	name := st.req.Name
	switch {
	case st.req.Point != nil:
		center = *st.req.Point
	case st.candidate != nil:
		center = st.candidate.Center
		name = st.candidate.DisplayName
	default:
		return nil, nil
	}
	poly, err := circlePolygon(center, r.circleRadiusKm, r.circleVertices)
	if err != nil {
		return nil, err
	}
	return &Boundary{Name: name, Polygon: poly}, nil
}

// circlePolygon builds a closed ring of n vertices approximating a circle
// of the given radius. The equirectangular scale (111 km per degree of
// latitude, shrunk by cos(lat) for longitude) is fine at this size.
func circlePolygon(center domain.Coordinate, radiusKm float64, n int) (*geom.Polygon, error) {
	if n < 3 {
		return nil, fmt.Errorf("circle needs at least 3 vertices, got %d", n)
	}
	latScale := radiusKm / 111.0
	lonScale := latScale / math.Cos(center.Lat*math.Pi/180)

	ring := make([]geom.Coord, 0, n+1)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		ring = append(ring, geom.Coord{
			center.Lon + lonScale*math.Sin(theta),
			center.Lat + latScale*math.Cos(theta),
		})
	}
	ring = append(ring, ring[0])
	return geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{ring})
}

func (st *resolution) remember(res *GeocodeResult) {
	if st.candidate == nil {
		st.candidate = res
		return
	}
	// Prefer candidates that can feed later stages.
	if st.candidate.OSMID == 0 && res.OSMID != 0 {
		st.candidate = res
		return
	}
	if st.candidate.Bounds == nil && res.Bounds != nil {
		st.candidate = res
	}
}
