package enrich

import (
	"fmt"
	"strings"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/lookup"
)

// resolver folds partial lookup results into one draft under a fixed
// precedence table:
//
//   - name: first non-empty result wins; a name already on the draft
//     (hand-entered or seeded) is never replaced.
//   - tags: union across sources in first-seen order, no duplicates.
//   - nutriScore: first valid A-E grade wins; invalid grades are discarded.
//   - ingredients, allergens: the first source in a run replaces whatever
//     the draft carried before; later sources in the same run concatenate.
//   - dietary booleans: logical OR, order-independent.
//
// Fields the user already edited by hand (the touched set) are never
// written, whatever the source says.
type resolver struct {
	draft    *domain.Draft
	touched  domain.FieldSet
	written  map[domain.Field]bool
	warnings []Warning
}

func newResolver(draft *domain.Draft, touched domain.FieldSet) *resolver {
	return &resolver{
		draft:   draft,
		touched: touched,
		written: make(map[domain.Field]bool),
	}
}

func (r *resolver) warnf(source, format string, args ...any) {
	r.warnings = append(r.warnings, Warning{Source: source, Message: fmt.Sprintf(format, args...)})
}

func (r *resolver) applyAnalysis(a *lookup.ImageAnalysis) {
	r.setName(a.Name)
	r.mergeTags(a.Tags)
	r.setNutriScore(a.NutriScore)
}

func (r *resolver) applyProduct(p *lookup.ProductInfo) {
	r.setName(p.Name)
	r.mergeTags(p.Tags)
	r.setNutriScore(p.NutriScore)
	r.mergeList(domain.FieldIngredients, &r.draft.Ingredients, p.Ingredients)
	r.mergeList(domain.FieldAllergens, &r.draft.Allergens, p.Allergens)
	r.orFlag(domain.FieldLactoseFree, &r.draft.IsLactoseFree, p.LactoseFree)
	r.orFlag(domain.FieldVegan, &r.draft.IsVegan, p.Vegan)
	r.orFlag(domain.FieldGlutenFree, &r.draft.IsGlutenFree, p.GlutenFree)
}

func (r *resolver) setName(name string) {
	if r.touched.Has(domain.FieldName) {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(r.draft.Name) != "" {
		return
	}
	r.draft.Name = name
}

func (r *resolver) mergeTags(tags []string) {
	if r.touched.Has(domain.FieldTags) || len(tags) == 0 {
		return
	}

	seen := make(map[string]bool, len(r.draft.Tags))
	for _, tag := range r.draft.Tags {
		seen[domain.NameKey(tag)] = true
	}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := domain.NameKey(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		r.draft.Tags = append(r.draft.Tags, tag)
	}
}

func (r *resolver) setNutriScore(raw string) {
	if r.touched.Has(domain.FieldNutriScore) || r.draft.NutriScore != "" {
		return
	}
	if score, ok := domain.ParseNutriScore(raw); ok {
		r.draft.NutriScore = score
	}
}

func (r *resolver) mergeList(field domain.Field, dst *[]string, src []string) {
	if r.touched.Has(field) || len(src) == 0 {
		return
	}
	if r.written[field] {
		*dst = append(*dst, src...)
		return
	}
	*dst = append([]string(nil), src...)
	r.written[field] = true
}

func (r *resolver) orFlag(field domain.Field, dst *bool, src bool) {
	if r.touched.Has(field) {
		return
	}
	*dst = *dst || src
}

// translationBatch flattens the translatable draft fields into one slice so
// a single translator call preserves index alignment. Touched fields are
// left out of the batch entirely.
type translationBatch struct {
	texts    []string
	segments []segment
}

type segment struct {
	field domain.Field
	start int
	count int
}

func (r *resolver) buildBatch() translationBatch {
	var b translationBatch

	add := func(field domain.Field, texts []string) {
		if r.touched.Has(field) || len(texts) == 0 {
			return
		}
		b.segments = append(b.segments, segment{field: field, start: len(b.texts), count: len(texts)})
		b.texts = append(b.texts, texts...)
	}

	if r.draft.Name != "" {
		add(domain.FieldName, []string{r.draft.Name})
	}
	add(domain.FieldTags, r.draft.Tags)
	add(domain.FieldIngredients, r.draft.Ingredients)
	add(domain.FieldAllergens, r.draft.Allergens)

	return b
}

// applyBatch writes translated texts back to the draft. The caller has
// already verified len(translated) == len(b.texts).
func (r *resolver) applyBatch(b translationBatch, translated []string) {
	for _, seg := range b.segments {
		part := translated[seg.start : seg.start+seg.count]
		switch seg.field {
		case domain.FieldName:
			r.draft.Name = strings.TrimSpace(part[0])
		case domain.FieldTags:
			r.draft.Tags = trimAll(part)
		case domain.FieldIngredients:
			r.draft.Ingredients = trimAll(part)
		case domain.FieldAllergens:
			r.draft.Allergens = trimAll(part)
		}
	}
}

func trimAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = strings.TrimSpace(t)
	}
	return out
}
