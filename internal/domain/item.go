package domain

import "strings"

type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeDish    ItemType = "dish"
)

type NutriScore string

// ParseNutriScore validates a Nutri-Score letter case-insensitively and
// returns the canonical upper-case grade. Anything outside A-E is rejected
// and must be treated as absent, never stored.
func ParseNutriScore(s string) (NutriScore, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return "A", true
	case "B":
		return "B", true
	case "C":
		return "C", true
	case "D":
		return "D", true
	case "E":
		return "E", true
	default:
		return "", false
	}
}

// Item is a catalogued food entry. The JSON shape is the persisted shape:
// one array of these under the collection key, rewritten in full on every
// mutation. Readers must tolerate legacy records missing newer optional
// fields; see Normalize.
type Item struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Rating   int      `json:"rating"`
	ItemType ItemType `json:"itemType"`

	Notes string   `json:"notes,omitempty"`
	Image string   `json:"image,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	NutriScore    NutriScore `json:"nutriScore,omitempty"`
	Ingredients   []string   `json:"ingredients,omitempty"`
	Allergens     []string   `json:"allergens,omitempty"`
	IsLactoseFree bool       `json:"isLactoseFree,omitempty"`
	IsVegan       bool       `json:"isVegan,omitempty"`
	IsGlutenFree  bool       `json:"isGlutenFree,omitempty"`

	RestaurantName string  `json:"restaurantName,omitempty"`
	CuisineType    string  `json:"cuisineType,omitempty"`
	Price          float64 `json:"price,omitempty"`
}

// Normalize upgrades a record loaded from storage that predates newer
// optional fields: an absent itemType means product. Dietary booleans
// already default to false through the zero value.
func (i *Item) Normalize() {
	if i.ItemType == "" {
		i.ItemType = ItemTypeProduct
	}
}

// Draft is an item under construction: the Item shape minus the id, which
// the repository assigns at commit time. Validation tags encode the commit
// gate: a name and a 1-5 star rating are required, everything else is
// optional.
type Draft struct {
	Name     string   `json:"name" validate:"required"`
	Rating   int      `json:"rating" validate:"min=1,max=5"`
	ItemType ItemType `json:"itemType" validate:"omitempty,oneof=product dish"`

	Notes string   `json:"notes,omitempty"`
	Image string   `json:"image,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	NutriScore    NutriScore `json:"nutriScore,omitempty" validate:"omitempty,oneof=A B C D E"`
	Ingredients   []string   `json:"ingredients,omitempty"`
	Allergens     []string   `json:"allergens,omitempty"`
	IsLactoseFree bool       `json:"isLactoseFree,omitempty"`
	IsVegan       bool       `json:"isVegan,omitempty"`
	IsGlutenFree  bool       `json:"isGlutenFree,omitempty"`

	RestaurantName string  `json:"restaurantName,omitempty"`
	CuisineType    string  `json:"cuisineType,omitempty"`
	Price          float64 `json:"price,omitempty"`
}

// FromItem builds an edit-mode draft from a committed item.
func FromItem(i Item) Draft {
	return Draft{
		Name:           i.Name,
		Rating:         i.Rating,
		ItemType:       i.ItemType,
		Notes:          i.Notes,
		Image:          i.Image,
		Tags:           i.Tags,
		NutriScore:     i.NutriScore,
		Ingredients:    i.Ingredients,
		Allergens:      i.Allergens,
		IsLactoseFree:  i.IsLactoseFree,
		IsVegan:        i.IsVegan,
		IsGlutenFree:   i.IsGlutenFree,
		RestaurantName: i.RestaurantName,
		CuisineType:    i.CuisineType,
		Price:          i.Price,
	}
}

// NameKey returns the duplicate-detection comparison key for a display name:
// trimmed and case-folded. Matching is exact on this key, never fuzzy.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
