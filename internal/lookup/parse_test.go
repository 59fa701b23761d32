package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	raw := `{"name": "Dark Chocolate 85%", "tags": ["sweet", "snack"], "nutriScore": "D",
		"boundingBox": {"x": 0.1, "y": 0.2, "width": 0.5, "height": 0.6}}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "Dark Chocolate 85%", got.Name)
	assert.Equal(t, []string{"sweet", "snack"}, got.Tags)
	assert.Equal(t, "D", got.NutriScore)
	require.NotNil(t, got.BoundingBox)
	assert.Equal(t, 0.5, got.BoundingBox.Width)
}

func TestParseAnalysisFencedResponse(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"name\": \"Oat Milk\", \"tags\": [\"dairy-free\"]}\n```"

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "Oat Milk", got.Name)
	assert.Equal(t, []string{"dairy-free"}, got.Tags)
	assert.Nil(t, got.BoundingBox)
}

func TestParseAnalysisNullFields(t *testing.T) {
	raw := `{"name": "Crackers", "tags": null, "nutriScore": null, "boundingBox": null}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, "Crackers", got.Name)
	assert.Empty(t, got.Tags)
	assert.Empty(t, got.NutriScore)
}

func TestParseAnalysisDropsBlankTags(t *testing.T) {
	raw := `{"name": "Tea", "tags": [" herbal ", "", "  "]}`

	got, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"herbal"}, got.Tags)
}

func TestParseAnalysisNoObject(t *testing.T) {
	_, err := ParseAnalysis("I could not identify any product.")
	assert.Error(t, err)
}

func TestParseTexts(t *testing.T) {
	got, err := ParseTexts("```json\n[\"Milch\", \"vegan\"]\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"Milch", "vegan"}, got)
}

func TestParseTextsNoArray(t *testing.T) {
	_, err := ParseTexts("sorry, I cannot translate that")
	assert.Error(t, err)
}
