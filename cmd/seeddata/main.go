// Command seeddata generates synthetic borewell survey fixtures for local
// development. It writes a SQL seed script for the service database and a
// JSON fixture usable by checkdata and the test suites. Output is
// deterministic for a given -seed.
//
// Usage:
//
//	go run ./cmd/seeddata \
//	  -wells 200 -locations 40 \
//	  -sql-out data/seed/borewells.sql \
//	  -json-out data/seed/borewells.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// talukaCenters anchor the synthetic wells so distributions look like real
// survey data rather than uniform noise.
var talukaCenters = []struct {
	taluka string
	lat    float64
	lon    float64
}{
	{"Nashik", 20.0059, 73.7897},
	{"Trimbakeshwar", 19.9322, 73.5306},
	{"Sinnar", 19.8450, 74.0000},
	{"Igatpuri", 19.6950, 73.5626},
	{"Niphad", 20.0781, 74.1111},
	{"Dindori", 20.2039, 73.8356},
	{"Malegaon", 20.5537, 74.5288},
	{"Yeola", 20.0424, 74.4894},
}

var qualities = []string{"Good", "Moderate", "Saline", "Hard"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	wellCount := flag.Int("wells", 200, "number of borewell records to generate")
	locationCount := flag.Int("locations", 40, "number of reference locations to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible output")
	sqlOut := flag.String("sql-out", "", "output path for the SQL seed script")
	jsonOut := flag.String("json-out", "", "output path for the JSON fixture")
	flag.Parse()

	if *sqlOut == "" && *jsonOut == "" {
		flag.Usage()
		return fmt.Errorf("at least one of -sql-out, -json-out is required")
	}

	rng := rand.New(rand.NewSource(*seed))
	wells := generateWells(rng, *wellCount)
	locations := generateLocations(rng, *locationCount)

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, wells); err != nil {
			return err
		}
		fmt.Printf("wrote %d wells to %s\n", len(wells), *jsonOut)
	}
	if *sqlOut != "" {
		if err := writeSQL(*sqlOut, wells, locations); err != nil {
			return err
		}
		fmt.Printf("wrote %d wells and %d locations to %s\n", len(wells), len(locations), *sqlOut)
	}
	return nil
}

func generateWells(rng *rand.Rand, n int) []domain.BorewellRecord {
	wells := make([]domain.BorewellRecord, 0, n)
	for i := 0; i < n; i++ {
		center := talukaCenters[rng.Intn(len(talukaCenters))]

		status := domain.StatusSuccess
		depth := 25 + rng.Float64()*75
		yield := 500 + rng.Intn(4500)
		// Roughly a quarter of district borewells come up dry.
		if rng.Float64() < 0.25 {
			status = domain.StatusFailure
			depth = 80 + rng.Float64()*70
			yield = 0
		}

		wells = append(wells, domain.BorewellRecord{
			ID:               fmt.Sprintf("CGWB-%s", uuid.NewString()[:8]),
			Name:             fmt.Sprintf("%s Well %d", center.taluka, i+1),
			Location:         jitter(rng, center.lat, center.lon),
			DepthM:           domain.RoundTo(depth, 1),
			YieldLPH:         yield,
			ConstructionYear: 1995 + rng.Intn(29),
			WaterQuality:     qualities[rng.Intn(len(qualities))],
			Status:           status,
			District:         "Nashik",
			Taluka:           center.taluka,
		})
	}
	return wells
}

func generateLocations(rng *rand.Rand, n int) []domain.Coordinate {
	points := make([]domain.Coordinate, 0, n)
	for i := 0; i < n; i++ {
		center := talukaCenters[i%len(talukaCenters)]
		points = append(points, jitter(rng, center.lat, center.lon))
	}
	return points
}

// jitter spreads a point up to roughly 8 km from its taluka center.
func jitter(rng *rand.Rand, lat, lon float64) domain.Coordinate {
	return domain.Coordinate{
		Lat: domain.RoundTo(lat+(rng.Float64()-0.5)*0.15, 4),
		Lon: domain.RoundTo(lon+(rng.Float64()-0.5)*0.15, 4),
	}
}

func writeJSON(path string, wells []domain.BorewellRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(wells, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wells: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func writeSQL(path string, wells []domain.BorewellRecord, locations []domain.Coordinate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var b strings.Builder
	b.WriteString("BEGIN;\n")
	b.WriteString("TRUNCATE reference_locations, borewells;\n\n")

	for _, p := range locations {
		fmt.Fprintf(&b, "INSERT INTO reference_locations (latitude, longitude) VALUES (%.4f, %.4f);\n", p.Lat, p.Lon)
	}
	b.WriteString("\n")
	for _, w := range wells {
		fmt.Fprintf(&b,
			"INSERT INTO borewells (id, name, latitude, longitude, depth_m, yield_lph, construction_year, water_quality, status, district, taluka) VALUES ('%s', '%s', %.4f, %.4f, %.1f, %d, %d, '%s', '%s', '%s', '%s');\n",
			w.ID, escape(w.Name), w.Location.Lat, w.Location.Lon, w.DepthM, w.YieldLPH,
			w.ConstructionYear, w.WaterQuality, w.Status, w.District, escape(w.Taluka))
	}
	b.WriteString("\nCOMMIT;\n")

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
