package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// AreaRequest asks for predictions across a rectangular region sampled on
// an N by N grid.
type AreaRequest struct {
	North float64
	South float64
	East  float64
	West  float64
}

// GridCell is one evaluated grid point, ranked within its area result.
// Rank is null for cells outside the top five.
type GridCell struct {
	Latitude   float64 `json:"lat"`
	Longitude  float64 `json:"lng"`
	Value      float64 `json:"predicted_water_level"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category"`
	Rank       *int    `json:"rank"`
	IsTop      bool    `json:"is_top"`
}

// AreaStats summarizes an area result.
type AreaStats struct {
	TotalPoints int     `json:"total_points"`
	AvgDepth    float64 `json:"avg_water_level"`
	MaxDepth    float64 `json:"max_water_level"`
	MinDepth    float64 `json:"min_water_level"`
	HighCount   int     `json:"high_potential_count"`
	MediumCount int     `json:"medium_potential_count"`
	LowCount    int     `json:"low_potential_count"`
}

// AreaResult is the full response for an area prediction. Top5 repeats the
// highest-ranked cells for map callouts.
type AreaResult struct {
	Cells []GridCell `json:"predictions"`
	Top5  []GridCell `json:"top_5"`
	Stats AreaStats  `json:"statistics"`
}

// linspace returns n values from lo to hi inclusive. For n == 1 it returns
// just lo.
func linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// PredictArea evaluates the grid over the requested bounds. Cells outside
// the prediction zone are skipped rather than failing the whole request,
// as are cells whose individual evaluation errors. All cells share one
// evaluation timestamp.
func (s *Service) PredictArea(ctx context.Context, req AreaRequest) (AreaResult, error) {
	for _, v := range []float64{req.North, req.South, req.East, req.West} {
		if !isFinite(v) {
			return AreaResult{}, fmt.Errorf("%w: bounds must be finite", domain.ErrInvalidInput)
		}
	}
	if req.North < req.South {
		return AreaResult{}, fmt.Errorf("%w: north must not be south of south", domain.ErrInvalidInput)
	}

	at := domain.Now()
	lats := linspace(req.South, req.North, s.gridSize)
	lons := linspace(req.West, req.East, s.gridSize)

	// Row-major order so ranking ties break deterministically.
	points := make([]domain.Coordinate, 0, s.gridSize*s.gridSize)
	for _, lat := range lats {
		for _, lon := range lons {
			points = append(points, domain.Coordinate{Lat: lat, Lon: lon})
		}
	}

	type slot struct {
		cell GridCell
		ok   bool
	}
	slots := make([]slot, len(points))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, p := range points {
		if !s.refs.InZone(p, s.zoneMaxKm) {
			s.metrics.GridCellsSkipped.Inc()
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p domain.Coordinate) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := s.evaluate(ctx, p, at, s.weather.Estimate(p, at))
			if err != nil {
				s.logger.WarnContext(ctx, "grid cell evaluation failed",
					slog.Float64("lat", p.Lat),
					slog.Float64("lon", p.Lon),
					slog.String("error", err.Error()),
				)
				return
			}
			slots[i] = slot{
				cell: GridCell{
					Latitude:   p.Lat,
					Longitude:  p.Lon,
					Value:      res.Value,
					Confidence: res.Confidence,
					Category:   domain.CategorizeDepth(res.Value),
				},
				ok: true,
			}
		}(i, p)
	}
	wg.Wait()

	cells := make([]GridCell, 0, len(slots))
	for _, sl := range slots {
		if sl.ok {
			cells = append(cells, sl.cell)
		}
	}
	s.metrics.GridPointsEvaluated.Observe(float64(len(cells)))

	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Value > cells[j].Value
	})
	top := min(5, len(cells))
	for i := 0; i < top; i++ {
		rank := i + 1
		cells[i].Rank = &rank
		cells[i].IsTop = true
	}

	result := AreaResult{
		Cells: cells,
		Top5:  append([]GridCell{}, cells[:top]...),
		Stats: summarizeCells(cells),
	}

	if len(cells) > 0 {
		s.metrics.PredictionsTotal.WithLabelValues("area", "ok").Inc()
	} else {
		s.metrics.PredictionsTotal.WithLabelValues("area", "empty").Inc()
	}
	if s.recorder != nil && len(cells) > 0 {
		best := cells[0]
		s.recorder.RecordPrediction(ctx, Event{
			Kind:       "area",
			Latitude:   best.Latitude,
			Longitude:  best.Longitude,
			DepthM:     best.Value,
			Confidence: best.Confidence,
			At:         at,
		})
	}
	s.logger.InfoContext(ctx, "area prediction complete",
		slog.Int("points", len(cells)),
		slog.Int("skipped", len(points)-len(cells)),
	)
	return result, nil
}

func summarizeCells(cells []GridCell) AreaStats {
	stats := AreaStats{TotalPoints: len(cells)}
	if len(cells) == 0 {
		return stats
	}
	sum := 0.0
	stats.MaxDepth = cells[0].Value
	stats.MinDepth = cells[0].Value
	for _, c := range cells {
		sum += c.Value
		if c.Value > stats.MaxDepth {
			stats.MaxDepth = c.Value
		}
		if c.Value < stats.MinDepth {
			stats.MinDepth = c.Value
		}
		switch c.Category {
		case domain.CategoryHigh:
			stats.HighCount++
		case domain.CategoryMedium:
			stats.MediumCount++
		default:
			stats.LowCount++
		}
	}
	stats.AvgDepth = domain.RoundTo(sum/float64(len(cells)), 2)
	return stats
}
