// Package store owns the committed item collection. The repository is the
// sole writer to the underlying blob store for this collection: the whole
// collection is one JSON array under a well-known key, rewritten in full on
// every mutation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/localstore"
	"github.com/go-playground/validator/v10"
)

// collectionKey is the storage key the item array lives under. It matches
// the key legacy data was written to, so existing catalogs load unchanged.
const collectionKey = "foodItems"

var ErrNotFound = errors.New("item not found")

// ValidationError reports the commit-gate failures for a draft: missing
// name, rating outside 1-5. It is fully recoverable by user correction and
// never leaves a side effect.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type ItemRepository struct {
	store    localstore.Store
	validate *validator.Validate
	logger   *slog.Logger

	// mu serializes mutations so every read-modify-write of the persisted
	// array runs to completion before the next one starts.
	mu         sync.Mutex
	now        func() time.Time
	lastCreate time.Time
}

func NewItemRepository(store localstore.Store, logger *slog.Logger) *ItemRepository {
	v := validator.New()
	// Report violations under JSON field names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ItemRepository{
		store:    store,
		validate: v,
		logger:   logger,
		now:      time.Now,
	}
}

// PendingCreate is a create suspended on duplicate confirmation. The caller
// must either Confirm to commit the draft or Cancel to return to drafting;
// nothing is persisted until then.
type PendingCreate struct {
	repo       *ItemRepository
	draft      domain.Draft
	Duplicates []domain.Item
}

// Create validates the draft and runs the duplicate gate. When no existing
// item shares the draft's name, the item is committed immediately and
// returned. When duplicates exist, Create returns a nil item and a
// PendingCreate holding them; the operation is suspended until the caller
// confirms or cancels.
func (r *ItemRepository) Create(ctx context.Context, draft domain.Draft) (*domain.Item, *PendingCreate, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.ItemType == "" {
		draft.ItemType = domain.ItemTypeProduct
	}
	if err := r.validateDraft(draft); err != nil {
		return nil, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.load(ctx)
	duplicates := findDuplicates(items, draft.Name)
	if len(duplicates) > 0 {
		return nil, &PendingCreate{repo: r, draft: draft, Duplicates: duplicates}, nil
	}

	item, err := r.commit(ctx, items, draft)
	if err != nil {
		return nil, nil, err
	}
	return item, nil, nil
}

// Confirm commits the suspended draft despite the duplicates.
func (p *PendingCreate) Confirm(ctx context.Context) (*domain.Item, error) {
	p.repo.mu.Lock()
	defer p.repo.mu.Unlock()

	// Reload rather than reusing the snapshot taken at Create time; other
	// mutations may have run while the confirmation was pending.
	items := p.repo.load(ctx)
	return p.repo.commit(ctx, items, p.draft)
}

// Cancel abandons the suspended draft. Nothing was persisted, so this only
// exists to make the state transition explicit.
func (p *PendingCreate) Cancel() {}

// Update replaces the fields of an existing item in place, preserving its id
// and its position in the collection. Duplicate detection deliberately does
// not run here: an edit already owns its identity, and renaming an item to
// collide with another is allowed.
func (r *ItemRepository) Update(ctx context.Context, id string, draft domain.Draft) (*domain.Item, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.ItemType == "" {
		draft.ItemType = domain.ItemTypeProduct
	}
	if err := r.validateDraft(draft); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.load(ctx)
	for i := range items {
		if items[i].ID != id {
			continue
		}
		updated := draftToItem(draft, id)
		items[i] = updated
		if err := r.save(ctx, items); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	return nil, fmt.Errorf("failed to update item %q: %w", id, ErrNotFound)
}

// Delete removes the item if present. Deleting an id that does not exist is
// a silent no-op, not an error.
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.load(ctx)
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return nil
	}
	return r.save(ctx, kept)
}

// Get returns the item with the given id, or nil if it does not exist.
func (r *ItemRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	for _, item := range r.load(ctx) {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, nil
}

// List returns the items matching the filter, in storage order
// (newest-first). The full collection is returned on an empty filter; there
// is no pagination.
func (r *ItemRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Item, error) {
	items := r.load(ctx)
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if filter.Matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// FindDuplicates returns the existing items whose trimmed, case-folded name
// equals the given name exactly. No fuzzy matching.
func (r *ItemRepository) FindDuplicates(ctx context.Context, name string) ([]domain.Item, error) {
	return findDuplicates(r.load(ctx), name), nil
}

func findDuplicates(items []domain.Item, name string) []domain.Item {
	key := domain.NameKey(name)
	var dups []domain.Item
	for _, item := range items {
		if domain.NameKey(item.Name) == key {
			dups = append(dups, item)
		}
	}
	return dups
}

func (r *ItemRepository) validateDraft(draft domain.Draft) error {
	err := r.validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate draft: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "min", "max":
			fields[fe.Field()] = "must be between 1 and 5"
		case "oneof":
			fields[fe.Field()] = "has an invalid value"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &ValidationError{Fields: fields}
}

// commit assigns a fresh creation-timestamp id and prepends the item so the
// collection stays newest-first. Callers hold r.mu.
func (r *ItemRepository) commit(ctx context.Context, items []domain.Item, draft domain.Draft) (*domain.Item, error) {
	ts := r.now().UTC()
	// Keep ids strictly increasing even if the clock resolution collapses
	// two creates onto the same instant.
	if !ts.After(r.lastCreate) {
		ts = r.lastCreate.Add(time.Nanosecond)
	}
	r.lastCreate = ts

	item := draftToItem(draft, ts.Format(time.RFC3339Nano))
	items = append([]domain.Item{item}, items...)
	if err := r.save(ctx, items); err != nil {
		return nil, err
	}
	r.logger.Info("item created", "id", item.ID, "name", item.Name, "type", item.ItemType)
	return &item, nil
}

// load reads the collection. A missing key or an unparseable blob both yield
// an empty collection: local storage corruption must never be fatal.
func (r *ItemRepository) load(ctx context.Context) []domain.Item {
	blob, err := r.store.Get(ctx, collectionKey)
	if err != nil {
		r.logger.Error("failed to read item collection", "error", err)
		return nil
	}
	if len(blob) == 0 {
		return nil
	}

	var items []domain.Item
	if err := json.Unmarshal(blob, &items); err != nil {
		r.logger.Warn("item collection unparseable, starting empty", "error", err)
		return nil
	}
	for i := range items {
		items[i].Normalize()
	}
	return items
}

func (r *ItemRepository) save(ctx context.Context, items []domain.Item) error {
	if items == nil {
		items = []domain.Item{}
	}
	blob, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal item collection: %w", err)
	}
	if err := r.store.Set(ctx, collectionKey, blob); err != nil {
		return fmt.Errorf("failed to persist item collection: %w", err)
	}
	return nil
}

func draftToItem(draft domain.Draft, id string) domain.Item {
	return domain.Item{
		ID:             id,
		Name:           draft.Name,
		Rating:         draft.Rating,
		ItemType:       draft.ItemType,
		Notes:          draft.Notes,
		Image:          draft.Image,
		Tags:           draft.Tags,
		NutriScore:     draft.NutriScore,
		Ingredients:    draft.Ingredients,
		Allergens:      draft.Allergens,
		IsLactoseFree:  draft.IsLactoseFree,
		IsVegan:        draft.IsVegan,
		IsGlutenFree:   draft.IsGlutenFree,
		RestaurantName: draft.RestaurantName,
		CuisineType:    draft.CuisineType,
		Price:          draft.Price,
	}
}
