package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionsPlainArray(t *testing.T) {
	raw := `[
		{"name": "Ozar", "category": "town", "description": "Airport town", "lat": 20.09, "lng": 73.93},
		{"name": "Yeola", "category": "town", "description": "Paithani weaving center", "lat": 20.04, "lng": 74.49}
	]`

	got, err := parseSuggestions(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ozar", got[0].Name)
	assert.Equal(t, 20.09, got[0].Lat)
	assert.Equal(t, 73.93, got[0].Lon)
}

func TestParseSuggestionsMarkdownFenced(t *testing.T) {
	raw := "```json\n[{\"name\": \"Ozar\", \"category\": \"town\", \"lat\": 20.09, \"lng\": 73.93}]\n```"

	got, err := parseSuggestions(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ozar", got[0].Name)
}

func TestParseSuggestionsEmbeddedInProse(t *testing.T) {
	raw := `Here are some places you might like:
[{"name": "Ozar", "category": "town", "lat": 20.09, "lng": 73.93}]
Let me know if you need more.`

	got, err := parseSuggestions(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestParseSuggestionsDefaultsImplausibleCoordinates(t *testing.T) {
	raw := `[
		{"name": "Somewhere", "category": "village", "lat": 0, "lng": 0},
		{"name": "Elsewhere", "category": "village", "lat": 48.85, "lng": 2.35}
	]`

	got, err := parseSuggestions(raw)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, 20.0, s.Lat)
		assert.Equal(t, 73.79, s.Lon)
	}
}

func TestParseSuggestionsDropsNamelessEntries(t *testing.T) {
	raw := `[{"name": "  ", "category": "village"}, {"name": "Ozar", "category": "town", "lat": 20.09, "lng": 73.93}]`

	got, err := parseSuggestions(raw)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ozar", got[0].Name)
}

func TestParseSuggestionsRejectsGarbage(t *testing.T) {
	_, err := parseSuggestions("I cannot help with that request.")
	assert.Error(t, err)

	_, err = parseSuggestions("[not json]")
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt("temple", 5)
	assert.Contains(t, prompt, "Nashik district")
	assert.Contains(t, prompt, `"temple"`)
	assert.Contains(t, prompt, "5")
	assert.Contains(t, prompt, "JSON array")
}
