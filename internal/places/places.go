// Package places serves location suggestions for the search box: an
// optional generative backend with a curated fallback list covering the
// well-known places of the district.
package places

import (
	"context"
	"log/slog"
	"strings"
)

// Suggestion is one place offered to the user.
type Suggestion struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	Popular     bool     `json:"popular"`
	Lat         float64  `json:"lat"`
	Lon         float64  `json:"lng"`
	Priority    int      `json:"priority"`
}

// Suggester produces suggestions for a free-text query.
type Suggester interface {
	Suggest(ctx context.Context, query string, max int) ([]Suggestion, error)
}

// curated is the built-in suggestion list. Priorities order the default
// view when the query is empty.
var curated = []Suggestion{
	{Name: "Nashik", Category: "city", Description: "District headquarters on the Godavari river", Keywords: []string{"nashik", "nasik", "city"}, Popular: true, Lat: 20.0059, Lon: 73.7897, Priority: 1},
	{Name: "Trimbakeshwar", Category: "town", Description: "Temple town at the source of the Godavari", Keywords: []string{"trimbak", "temple", "godavari"}, Popular: true, Lat: 19.9322, Lon: 73.5306, Priority: 2},
	{Name: "Malegaon", Category: "city", Description: "Textile city in the north of the district", Keywords: []string{"malegaon", "textile"}, Popular: true, Lat: 20.5537, Lon: 74.5288, Priority: 3},
	{Name: "Sinnar", Category: "town", Description: "Industrial town southeast of Nashik", Keywords: []string{"sinnar", "industrial", "midc"}, Popular: true, Lat: 19.8450, Lon: 74.0000, Priority: 4},
	{Name: "Igatpuri", Category: "town", Description: "Hill town in the Western Ghats, heavy monsoon rainfall", Keywords: []string{"igatpuri", "ghats", "hill"}, Popular: true, Lat: 19.6950, Lon: 73.5626, Priority: 5},
	{Name: "Gangapur Dam", Category: "reservoir", Description: "Main water supply reservoir for Nashik city", Keywords: []string{"gangapur", "dam", "reservoir", "water"}, Popular: true, Lat: 20.0330, Lon: 73.6770, Priority: 6},
	{Name: "Lasalgaon", Category: "village", Description: "Largest onion market in Asia", Keywords: []string{"lasalgaon", "onion", "market"}, Popular: true, Lat: 20.1427, Lon: 74.2394, Priority: 7},
	{Name: "Panchavati", Category: "locality", Description: "Historic locality on the north bank of the Godavari", Keywords: []string{"panchavati", "ramkund", "godavari"}, Popular: true, Lat: 20.0076, Lon: 73.7913, Priority: 8},
}

// Fallback filters the curated list by a case-insensitive substring match
// on name and keywords. An empty query returns the whole list in priority
// order. max <= 0 means no limit.
func Fallback(query string, max int) []Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]Suggestion, 0, len(curated))
	for _, s := range curated {
		if query == "" || matches(s, query) {
			out = append(out, s)
		}
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func matches(s Suggestion, query string) bool {
	if strings.Contains(strings.ToLower(s.Name), query) {
		return true
	}
	for _, kw := range s.Keywords {
		if strings.Contains(kw, query) {
			return true
		}
	}
	return false
}

// Service answers suggestion queries, degrading to the curated list when
// no backend is configured or the backend fails.
type Service struct {
	backend Suggester
	logger  *slog.Logger
}

// NewService builds a suggestion Service. backend may be nil.
func NewService(backend Suggester, logger *slog.Logger) *Service {
	return &Service{backend: backend, logger: logger}
}

// Suggest returns up to max suggestions for the query.
func (s *Service) Suggest(ctx context.Context, query string, max int) []Suggestion {
	if s.backend != nil {
		suggestions, err := s.backend.Suggest(ctx, query, max)
		if err == nil && len(suggestions) > 0 {
			return suggestions
		}
		if err != nil {
			s.logger.WarnContext(ctx, "suggestion backend failed, using curated list",
				slog.String("error", err.Error()))
		}
	}
	return Fallback(query, max)
}
