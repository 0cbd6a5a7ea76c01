// Package overpass assembles boundary polygons from raw OSM geometry via
// the Overpass API. It is the fallback for places whose Nominatim entry
// carries no polygon.
package overpass

import (
	"context"
	"fmt"
	"net/http"
	"time"

	overpassapi "github.com/serjvanilla/go-overpass"
	"github.com/twpayne/go-geom"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// Assembler queries Overpass and stitches way geometry into polygons.
type Assembler struct {
	client overpassapi.Client
}

// NewAssembler builds an Assembler against the given Overpass endpoint.
func NewAssembler(endpoint string, timeout time.Duration) *Assembler {
	httpClient := &http.Client{
		Timeout: timeout,
	}
	return &Assembler{
		client: overpassapi.NewWithSettings(endpoint, 2, httpClient),
	}
}

// Assemble fetches an OSM object and returns its outline polygon. For
// relations the outer-role member ways are stitched end to end; for ways
// the node chain is used directly.
func (a *Assembler) Assemble(ctx context.Context, osmType string, osmID int64) (*geom.Polygon, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch osmType {
	case "relation":
		return a.assembleRelation(osmID)
	case "way":
		return a.assembleWay(osmID)
	default:
		return nil, fmt.Errorf("%w: no polygon geometry for OSM type %q", domain.ErrNoResult, osmType)
	}
}

func (a *Assembler) assembleRelation(osmID int64) (*geom.Polygon, error) {
	query := fmt.Sprintf("[out:json];rel(%d);(._;>;);out body;", osmID)
	result, err := a.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	rel, ok := result.Relations[osmID]
	if !ok {
		return nil, fmt.Errorf("%w: relation %d not found", domain.ErrNoResult, osmID)
	}

	var segments [][]*overpassapi.Node
	for _, member := range rel.Members {
		if member.Role != "outer" || member.Way == nil {
			continue
		}
		if len(member.Way.Nodes) >= 2 {
			segments = append(segments, member.Way.Nodes)
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: relation %d has no outer ways", domain.ErrNoResult, osmID)
	}

	ring := stitchSegments(segments)
	return ringToPolygon(ring, osmID)
}

func (a *Assembler) assembleWay(osmID int64) (*geom.Polygon, error) {
	query := fmt.Sprintf("[out:json];way(%d);(._;>;);out body;", osmID)
	result, err := a.client.Query(query)
	if err != nil {
		return nil, fmt.Errorf("overpass query failed: %w", err)
	}

	way, ok := result.Ways[osmID]
	if !ok {
		return nil, fmt.Errorf("%w: way %d not found", domain.ErrNoResult, osmID)
	}
	return ringToPolygon(way.Nodes, osmID)
}

// stitchSegments joins way segments that share endpoints into one node
// chain, reversing segments as needed. Overpass returns relation members
// in arbitrary order.
func stitchSegments(segments [][]*overpassapi.Node) []*overpassapi.Node {
	ring := append([]*overpassapi.Node(nil), segments[0]...)
	remaining := segments[1:]

	for len(remaining) > 0 {
		tail := ring[len(ring)-1].ID
		attached := false
		for i, seg := range remaining {
			switch {
			case seg[0].ID == tail:
				ring = append(ring, seg[1:]...)
			case seg[len(seg)-1].ID == tail:
				for j := len(seg) - 2; j >= 0; j-- {
					ring = append(ring, seg[j])
				}
			default:
				continue
			}
			remaining = append(remaining[:i], remaining[i+1:]...)
			attached = true
			break
		}
		if !attached {
			break
		}
	}
	return ring
}

func ringToPolygon(nodes []*overpassapi.Node, osmID int64) (*geom.Polygon, error) {
	coords := make([]geom.Coord, 0, len(nodes)+1)
	for _, n := range nodes {
		coords = append(coords, geom.Coord{n.Lon, n.Lat})
	}
	if len(coords) < 3 {
		return nil, fmt.Errorf("%w: OSM object %d has too few points for a polygon", domain.ErrNoResult, osmID)
	}
	if !coords[0].Equal(geom.XY, coords[len(coords)-1]) {
		coords = append(coords, coords[0])
	}
	return geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{coords})
}
