package domain

// Field names a draft field for the purpose of tracking hand edits. A field
// the user has touched is never overwritten by a later enrichment result.
type Field string

const (
	FieldName        Field = "name"
	FieldTags        Field = "tags"
	FieldNutriScore  Field = "nutriScore"
	FieldIngredients Field = "ingredients"
	FieldAllergens   Field = "allergens"
	FieldLactoseFree Field = "isLactoseFree"
	FieldVegan       Field = "isVegan"
	FieldGlutenFree  Field = "isGlutenFree"
)

type FieldSet map[Field]struct{}

func NewFieldSet(fields ...Field) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s.Add(f)
	}
	return s
}

func (s FieldSet) Add(f Field) { s[f] = struct{}{} }

func (s FieldSet) Has(f Field) bool {
	if s == nil {
		return false
	}
	_, ok := s[f]
	return ok
}
