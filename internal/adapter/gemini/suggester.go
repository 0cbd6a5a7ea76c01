// Package gemini implements places.Suggester on top of the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bhujal-labs/groundwater-prediction-service/internal/places"
)

// districtCenter is the default coordinate assigned to suggestions the
// model returns without usable coordinates.
var districtCenter = struct{ lat, lon float64 }{20.0, 73.79}

// Suggester generates place suggestions with a Gemini model.
type Suggester struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewSuggester builds a Suggester.
func NewSuggester(ctx context.Context, apiKey, modelName string, logger *slog.Logger) (*Suggester, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}
	return &Suggester{
		client: client,
		model:  client.GenerativeModel(modelName),
		logger: logger,
	}, nil
}

// Close releases the underlying API client.
func (s *Suggester) Close() error {
	return s.client.Close()
}

func buildPrompt(query string, max int) string {
	var b strings.Builder
	b.WriteString("You are a local geography assistant for Nashik district, Maharashtra, India.\n")
	fmt.Fprintf(&b, "Suggest up to %d places in Nashik district matching the search text %q.\n", max, query)
	b.WriteString("Respond with ONLY a JSON array, no prose. Each element must have these keys:\n")
	b.WriteString(`{"name": string, "category": string, "description": string, "lat": number, "lng": number}` + "\n")
	b.WriteString("Coordinates must be inside Nashik district. Categories: city, town, village, locality, reservoir, landmark.\n")
	return b.String()
}

// Suggest asks the model for place suggestions.
func (s *Suggester) Suggest(ctx context.Context, query string, max int) ([]places.Suggestion, error) {
	if max <= 0 {
		max = 8
	}
	resp, err := s.model.GenerateContent(ctx, genai.Text(buildPrompt(query, max)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("no content returned from AI")
	}
	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}

	suggestions, err := parseSuggestions(string(textPart))
	if err != nil {
		return nil, err
	}
	if len(suggestions) > max {
		suggestions = suggestions[:max]
	}
	s.logger.DebugContext(ctx, "gemini suggestions generated",
		slog.String("query", query),
		slog.Int("count", len(suggestions)),
	)
	return suggestions, nil
}

// jsonArrayPattern extracts the first JSON array from model output that
// ignored the "array only" instruction.
var jsonArrayPattern = regexp.MustCompile(`(?s)\[.*\]`)

// parseSuggestions extracts a suggestion list from raw model output,
// tolerating markdown fences and surrounding prose.
func parseSuggestions(raw string) ([]places.Suggestion, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```json") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimSuffix(raw, "```")
		raw = strings.TrimSpace(raw)
	} else if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(raw, "```")
		raw = strings.TrimSpace(raw)
	}
	if !strings.HasPrefix(raw, "[") {
		match := jsonArrayPattern.FindString(raw)
		if match == "" {
			return nil, fmt.Errorf("no JSON array in AI response: %s", truncate(raw, 200))
		}
		raw = match
	}

	var suggestions []places.Suggestion
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI response to JSON: %w", err)
	}

	out := suggestions[:0]
	for _, s := range suggestions {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		if !plausibleCoordinate(s.Lat, s.Lon) {
			s.Lat = districtCenter.lat
			s.Lon = districtCenter.lon
		}
		out = append(out, s)
	}
	return out, nil
}

// plausibleCoordinate checks a point is roughly inside Nashik district.
func plausibleCoordinate(lat, lon float64) bool {
	return lat >= 19.0 && lat <= 21.0 && lon >= 73.0 && lon <= 75.0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
