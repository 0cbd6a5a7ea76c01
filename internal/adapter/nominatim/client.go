// Package nominatim implements boundary.Geocoder against the OSM Nominatim
// API, including polygon extraction from its GeoJSON output.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/boundary"
	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// Client talks to a Nominatim instance.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. The public instance requires a
// descriptive User-Agent; pass one that identifies this deployment.
func NewClient(baseURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// place is one Nominatim result row. Coordinates and bounding box values
// arrive as strings.
type place struct {
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	OSMType     string          `json:"osm_type"`
	OSMID       int64           `json:"osm_id"`
	BoundingBox []string        `json:"boundingbox"`
	GeoJSON     json.RawMessage `json:"geojson"`
}

// Search performs forward geocoding with polygon output enabled.
func (c *Client) Search(ctx context.Context, query string) ([]boundary.GeocodeResult, error) {
	params := url.Values{
		"format":            {"json"},
		"q":                 {query},
		"limit":             {"5"},
		"polygon_geojson":   {"1"},
		"polygon_threshold": {"0.005"},
	}

	var rows []place
	if err := c.doRequest(ctx, "/search", params, &rows); err != nil {
		return nil, err
	}

	results := make([]boundary.GeocodeResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, c.toResult(row))
	}
	return results, nil
}

// Reverse looks up the administrative area containing a point. Zoom 10
// asks for district-level objects rather than individual buildings.
func (c *Client) Reverse(ctx context.Context, p domain.Coordinate) (*boundary.GeocodeResult, error) {
	params := url.Values{
		"format":          {"json"},
		"lat":             {strconv.FormatFloat(p.Lat, 'f', 6, 64)},
		"lon":             {strconv.FormatFloat(p.Lon, 'f', 6, 64)},
		"zoom":            {"10"},
		"addressdetails":  {"1"},
		"polygon_geojson": {"1"},
	}

	var row place
	if err := c.doRequest(ctx, "/reverse", params, &row); err != nil {
		return nil, err
	}
	if row.DisplayName == "" {
		return nil, nil
	}
	result := c.toResult(row)
	return &result, nil
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) toResult(row place) boundary.GeocodeResult {
	result := boundary.GeocodeResult{
		DisplayName: row.DisplayName,
		OSMType:     row.OSMType,
		OSMID:       row.OSMID,
	}
	result.Center.Lat, _ = strconv.ParseFloat(row.Lat, 64)
	result.Center.Lon, _ = strconv.ParseFloat(row.Lon, 64)

	// Bounding box order is south, north, west, east.
	if len(row.BoundingBox) == 4 {
		south, err1 := strconv.ParseFloat(row.BoundingBox[0], 64)
		north, err2 := strconv.ParseFloat(row.BoundingBox[1], 64)
		west, err3 := strconv.ParseFloat(row.BoundingBox[2], 64)
		east, err4 := strconv.ParseFloat(row.BoundingBox[3], 64)
		if err1 == nil && err2 == nil && err3 == nil && err4 == nil {
			result.Bounds = &domain.Bounds{North: north, South: south, East: east, West: west}
		}
	}

	if len(row.GeoJSON) > 0 {
		if poly := parsePolygon(row.GeoJSON); poly != nil {
			result.Polygon = poly
		}
	}
	return result
}

// parsePolygon extracts a polygon from Nominatim's geojson field. Point and
// line geometries are ignored; for multipolygons the largest member wins.
func parsePolygon(raw json.RawMessage) *geom.Polygon {
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil
	}
	switch shape := g.(type) {
	case *geom.Polygon:
		return shape
	case *geom.MultiPolygon:
		var best *geom.Polygon
		for i := 0; i < shape.NumPolygons(); i++ {
			p := shape.Polygon(i)
			if best == nil || ringPoints(p) > ringPoints(best) {
				best = p
			}
		}
		return best
	default:
		return nil
	}
}

func ringPoints(p *geom.Polygon) int {
	if p.NumLinearRings() == 0 {
		return 0
	}
	return len(p.LinearRing(0).Coords())
}
