// Package postgres loads reference locations and borewell records from the
// district survey database.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// Repository reads reference data. The tables are survey imports and are
// effectively static, so everything is loaded once at startup.
type Repository struct {
	db *sqlx.DB
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, url string) (*Repository, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

type locationRow struct {
	Latitude  float64 `db:"latitude"`
	Longitude float64 `db:"longitude"`
}

// ReferenceLocations loads the coordinates the training data covers.
func (r *Repository) ReferenceLocations(ctx context.Context) ([]domain.Coordinate, error) {
	var rows []locationRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT latitude, longitude FROM reference_locations`)
	if err != nil {
		return nil, fmt.Errorf("select reference locations: %w", err)
	}

	points := make([]domain.Coordinate, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.Coordinate{Lat: row.Latitude, Lon: row.Longitude})
	}
	return points, nil
}

type borewellRow struct {
	ID               string  `db:"id"`
	Name             string  `db:"name"`
	Latitude         float64 `db:"latitude"`
	Longitude        float64 `db:"longitude"`
	DepthM           float64 `db:"depth_m"`
	YieldLPH         int     `db:"yield_lph"`
	ConstructionYear int     `db:"construction_year"`
	WaterQuality     string  `db:"water_quality"`
	Status           string  `db:"status"`
	District         string  `db:"district"`
	Taluka           string  `db:"taluka"`
}

// Borewells loads the surveyed borewell records.
func (r *Repository) Borewells(ctx context.Context) ([]domain.BorewellRecord, error) {
	var rows []borewellRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, latitude, longitude, depth_m, yield_lph,
		       construction_year, water_quality, status, district, taluka
		FROM borewells`)
	if err != nil {
		return nil, fmt.Errorf("select borewells: %w", err)
	}

	wells := make([]domain.BorewellRecord, 0, len(rows))
	for _, row := range rows {
		wells = append(wells, domain.BorewellRecord{
			ID:               row.ID,
			Name:             row.Name,
			Location:         domain.Coordinate{Lat: row.Latitude, Lon: row.Longitude},
			DepthM:           row.DepthM,
			YieldLPH:         row.YieldLPH,
			ConstructionYear: row.ConstructionYear,
			WaterQuality:     row.WaterQuality,
			Status:           row.Status,
			District:         row.District,
			Taluka:           row.Taluka,
		})
	}
	return wells, nil
}
