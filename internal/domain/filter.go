package domain

import "strings"

type RatingFilter string

const (
	RatingAll      RatingFilter = "all"
	RatingLiked    RatingFilter = "liked"    // rating >= 4
	RatingDisliked RatingFilter = "disliked" // 1 <= rating <= 2
)

// ListFilter narrows a listing. Zero values mean "no constraint"; the three
// predicates are ANDed.
type ListFilter struct {
	Type   ItemType
	Rating RatingFilter
	Search string
}

func (f ListFilter) Matches(i Item) bool {
	return f.matchesType(i) && f.matchesRating(i) && f.matchesSearch(i)
}

func (f ListFilter) matchesType(i Item) bool {
	return f.Type == "" || i.ItemType == f.Type
}

func (f ListFilter) matchesRating(i Item) bool {
	switch f.Rating {
	case RatingLiked:
		return i.Rating >= 4
	case RatingDisliked:
		return i.Rating >= 1 && i.Rating <= 2
	default:
		return true
	}
}

func (f ListFilter) matchesSearch(i Item) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	fields := []string{i.Name, i.Notes, strings.Join(i.Tags, " ")}
	if i.ItemType == ItemTypeDish {
		fields = append(fields, i.RestaurantName, i.CuisineType)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
