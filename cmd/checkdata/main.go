// Command checkdata validates a borewell survey export before it is loaded
// into the service database. It checks each record against the domain rules
// the prediction pipeline assumes and reports every violation found.
//
// Usage:
//
//	go run ./cmd/checkdata -json data/seed/borewells.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/domain"
)

// District bounding box, generous enough for border talukas.
const (
	minLat = 19.3
	maxLat = 21.0
	minLon = 73.2
	maxLon = 75.0

	maxDepthM = 300.0
	minYear   = 1950
	maxYear   = 2026
)

func main() {
	jsonPath := flag.String("json", "", "path to a borewell JSON export")
	flag.Parse()

	if *jsonPath == "" {
		flag.Usage()
		log.Fatal("missing required flag: -json")
	}

	violations, total, err := check(*jsonPath)
	if err != nil {
		log.Fatal(err)
	}

	for _, v := range violations {
		fmt.Println(v)
	}
	fmt.Printf("checked %d records, %d violations\n", total, len(violations))
	if len(violations) > 0 {
		os.Exit(1)
	}
}

func check(path string) (violations []string, total int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read export: %w", err)
	}

	var wells []domain.BorewellRecord
	if err := json.Unmarshal(data, &wells); err != nil {
		return nil, 0, fmt.Errorf("parse export: %w", err)
	}

	seen := make(map[string]bool, len(wells))
	for i, w := range wells {
		report := func(format string, args ...any) {
			violations = append(violations, fmt.Sprintf("record %d (%s): %s", i, w.ID, fmt.Sprintf(format, args...)))
		}

		if w.ID == "" {
			report("missing id")
		} else if seen[w.ID] {
			report("duplicate id")
		}
		seen[w.ID] = true

		lat, lon := w.Location.Lat, w.Location.Lon
		if math.IsNaN(lat) || math.IsNaN(lon) || lat < minLat || lat > maxLat || lon < minLon || lon > maxLon {
			report("coordinate (%.4f, %.4f) outside district bounds", lat, lon)
		}
		if w.DepthM <= 0 || w.DepthM > maxDepthM {
			report("implausible depth %.1f m", w.DepthM)
		}
		if w.Status != domain.StatusSuccess && w.Status != domain.StatusFailure {
			report("unknown status %q", w.Status)
		}
		if w.Status == domain.StatusSuccess && w.YieldLPH <= 0 {
			report("successful well with no yield")
		}
		if w.ConstructionYear != 0 && (w.ConstructionYear < minYear || w.ConstructionYear > maxYear) {
			report("implausible construction year %d", w.ConstructionYear)
		}
	}
	return violations, len(wells), nil
}
