package share

import (
	"strings"
	"testing"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	item := domain.Item{
		ID:            "2024-01-15T10:30:00Z",
		Name:          "Dark Chocolate 85%",
		Rating:        4,
		ItemType:      domain.ItemTypeProduct,
		Notes:         "bitter but good",
		Tags:          []string{"sweet", "snack"},
		NutriScore:    "D",
		Ingredients:   []string{"cocoa mass", "sugar"},
		Allergens:     []string{"milk"},
		IsGlutenFree:  true,
		IsLactoseFree: false,
	}

	code, err := Encode(item)
	require.NoError(t, err)
	assert.NotContains(t, code, "+")
	assert.NotContains(t, code, "/")
	assert.NotContains(t, code, "=")

	draft, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, item.Name, draft.Name)
	assert.Equal(t, item.Rating, draft.Rating)
	assert.Equal(t, item.ItemType, draft.ItemType)
	assert.Equal(t, item.Tags, draft.Tags)
	assert.Equal(t, item.NutriScore, draft.NutriScore)
	assert.Equal(t, item.Ingredients, draft.Ingredients)
	assert.Equal(t, item.Allergens, draft.Allergens)
	assert.True(t, draft.IsGlutenFree)
	assert.False(t, draft.IsLactoseFree)
}

func TestEncodeExcludesIDAndImage(t *testing.T) {
	item := domain.Item{
		ID:       "2024-01-15T10:30:00Z",
		Name:     "Juice",
		Rating:   3,
		ItemType: domain.ItemTypeProduct,
		Image:    "item_123456.jpg",
	}

	code, err := Encode(item)
	require.NoError(t, err)

	draft, err := Decode(code)
	require.NoError(t, err)
	assert.Empty(t, draft.Image)
}

func TestDecodeDefaultsItemType(t *testing.T) {
	item := domain.Item{Name: "Legacy", Rating: 2}

	code, err := Encode(item)
	require.NoError(t, err)

	draft, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeProduct, draft.ItemType)
}

func TestDecodeDishRoundTrip(t *testing.T) {
	item := domain.Item{
		Name:           "Pad Thai",
		Rating:         5,
		ItemType:       domain.ItemTypeDish,
		RestaurantName: "Thai Garden",
		CuisineType:    "Thai",
		Price:          12.5,
	}

	code, err := Encode(item)
	require.NoError(t, err)

	draft, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemTypeDish, draft.ItemType)
	assert.Equal(t, "Thai Garden", draft.RestaurantName)
	assert.Equal(t, "Thai", draft.CuisineType)
	assert.Equal(t, 12.5, draft.Price)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("not!!valid@@base64")
	assert.Error(t, err)

	// Valid base64, not valid DEFLATE.
	_, err = Decode("aGVsbG8gd29ybGQ")
	assert.Error(t, err)
}

func TestEncodedCodeIsCompact(t *testing.T) {
	item := domain.Item{
		Name:        "Granola",
		Rating:      4,
		ItemType:    domain.ItemTypeProduct,
		Ingredients: []string{strings.Repeat("oats, ", 50)},
	}

	code, err := Encode(item)
	require.NoError(t, err)
	// Highly repetitive input must compress well below its raw size.
	assert.Less(t, len(code), 200)
}
