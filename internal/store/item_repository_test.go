package store

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/TheSylus/Hmmm/internal/db"
	"github.com/TheSylus/Hmmm/internal/domain"
	"github.com/TheSylus/Hmmm/internal/localstore"
	"github.com/TheSylus/Hmmm/internal/localstore/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*ItemRepository, localstore.Store) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })

	kv := sqlite.New(d)
	return NewItemRepository(kv, slog.Default()), kv
}

func productDraft(name string, rating int) domain.Draft {
	return domain.Draft{Name: name, Rating: rating, ItemType: domain.ItemTypeProduct}
}

func mustCreate(t *testing.T, repo *ItemRepository, draft domain.Draft) domain.Item {
	t.Helper()
	item, pending, err := repo.Create(context.Background(), draft)
	require.NoError(t, err)
	require.Nil(t, pending)
	require.NotNil(t, item)
	return *item
}

func TestCreate(t *testing.T) {
	repo, _ := newTestRepository(t)

	item := mustCreate(t, repo, productDraft("Dark Chocolate", 4))

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "Dark Chocolate", item.Name)
	assert.Equal(t, 4, item.Rating)
	assert.Equal(t, domain.ItemTypeProduct, item.ItemType)
}

func TestCreateTrimsName(t *testing.T) {
	repo, _ := newTestRepository(t)

	item := mustCreate(t, repo, productDraft("  Oat Milk  ", 3))
	assert.Equal(t, "Oat Milk", item.Name)
}

func TestCreateEmptyNameFailsValidation(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"", "   "} {
		_, _, err := repo.Create(ctx, productDraft(name, 3))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "name %q", name)
		assert.Contains(t, verr.Fields, "name")
	}

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items, "failed create must leave the collection unchanged")
}

func TestCreateUnratedFailsValidation(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, _, err := repo.Create(ctx, productDraft("Crisps", 0))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rating")

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateRatingOutOfRangeFailsValidation(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, _, err := repo.Create(context.Background(), productDraft("Crisps", 6))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "rating")
}

func TestCreateNewestFirst(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, productDraft("First", 3))
	mustCreate(t, repo, productDraft("Second", 3))
	mustCreate(t, repo, productDraft("Third", 3))

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Third", items[0].Name)
	assert.Equal(t, "Second", items[1].Name)
	assert.Equal(t, "First", items[2].Name)
}

func TestCreateDuplicateSuspendsForConfirmation(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	existing := mustCreate(t, repo, productDraft("Pad Thai", 5))

	// Same name modulo trim and case must be detected.
	item, pending, err := repo.Create(ctx, productDraft("  pad thai ", 2))
	require.NoError(t, err)
	assert.Nil(t, item, "duplicate create must not auto-commit")
	require.NotNil(t, pending)
	require.Len(t, pending.Duplicates, 1)
	assert.Equal(t, existing.ID, pending.Duplicates[0].ID)

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1, "nothing committed while confirmation is pending")
}

func TestPendingCreateConfirm(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, productDraft("Pad Thai", 5))
	_, pending, err := repo.Create(ctx, productDraft("Pad Thai", 2))
	require.NoError(t, err)
	require.NotNil(t, pending)

	item, err := pending.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", item.Name)

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, item.ID, items[0].ID, "confirmed item is newest-first")
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestPendingCreateCancel(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, productDraft("Pad Thai", 5))
	_, pending, err := repo.Create(ctx, productDraft("Pad Thai", 2))
	require.NoError(t, err)
	require.NotNil(t, pending)

	pending.Cancel()

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUpdate(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	item := mustCreate(t, repo, productDraft("Oats", 3))

	draft := productDraft("Rolled Oats", 4)
	draft.Tags = []string{"breakfast"}
	updated, err := repo.Update(ctx, item.ID, draft)
	require.NoError(t, err)

	assert.Equal(t, item.ID, updated.ID, "id is immutable")
	assert.Equal(t, "Rolled Oats", updated.Name)
	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, []string{"breakfast"}, updated.Tags)
}

// Editing a name into a collision with another item must succeed: duplicate
// detection only gates brand-new items.
func TestUpdateAllowsNameCollision(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, productDraft("Pad Thai", 5))
	other := mustCreate(t, repo, productDraft("Green Curry", 3))

	updated, err := repo.Update(ctx, other.ID, productDraft("Pad Thai", 3))
	require.NoError(t, err)
	assert.Equal(t, "Pad Thai", updated.Name)

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestUpdateMissingIDFails(t *testing.T) {
	repo, _ := newTestRepository(t)

	_, err := repo.Update(context.Background(), "no-such-id", productDraft("X", 3))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	item := mustCreate(t, repo, productDraft("Gone Soon", 1))

	require.NoError(t, repo.Delete(ctx, item.ID))

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeleteMissingIDIsNoOp(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, productDraft("Keeper", 4))

	require.NoError(t, repo.Delete(ctx, "no-such-id"))

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGet(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	item := mustCreate(t, repo, productDraft("Findable", 3))

	got, err := repo.Get(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)

	missing, err := repo.Get(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListFilters(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	dish := func(name string, rating int, cuisine string) domain.Draft {
		return domain.Draft{Name: name, Rating: rating, ItemType: domain.ItemTypeDish, CuisineType: cuisine}
	}

	// Five-item fixture; created oldest to newest.
	mustCreate(t, repo, productDraft("Thai Curry Paste", 5))   // product, liked, "thai"
	mustCreate(t, repo, dish("Pad Thai", 5, "Thai"))           // dish, liked, "thai"
	mustCreate(t, repo, dish("Tom Yum", 2, "Thai"))            // dish, disliked, "thai"
	mustCreate(t, repo, dish("Margherita", 5, "Italian"))      // dish, liked, no "thai"
	mustCreate(t, repo, dish("Thai Basil Stir Fry", 4, "Thai")) // dish, liked, "thai"

	items, err := repo.List(ctx, domain.ListFilter{
		Type:   domain.ItemTypeDish,
		Rating: domain.RatingLiked,
		Search: "thai",
	})
	require.NoError(t, err)

	require.Len(t, items, 2)
	// Storage order preserved: newest-first.
	assert.Equal(t, "Thai Basil Stir Fry", items[0].Name)
	assert.Equal(t, "Pad Thai", items[1].Name)
}

// An unparseable persisted blob is treated as an absent collection, never a
// fatal error.
func TestCorruptCollectionFailsOpen(t *testing.T) {
	repo, kv := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, collectionKey, []byte("{not json")))

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)

	// And the store keeps working afterwards.
	mustCreate(t, repo, productDraft("Fresh Start", 3))
	items, err = repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

// A legacy persisted record without itemType or dietary booleans loads as a
// product with all flags false.
func TestLoadLegacyRecord(t *testing.T) {
	repo, kv := newTestRepository(t)
	ctx := context.Background()

	legacy := `[{"id":"2023-01-01T00:00:00Z","name":"Old Entry","rating":4,"tags":["vintage"]}]`
	require.NoError(t, kv.Set(ctx, collectionKey, []byte(legacy)))

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.ItemTypeProduct, items[0].ItemType)
	assert.False(t, items[0].IsVegan)
	assert.False(t, items[0].IsLactoseFree)
	assert.False(t, items[0].IsGlutenFree)
	assert.Equal(t, []string{"vintage"}, items[0].Tags)
}

func TestFindDuplicatesExactMatchOnly(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	mustCreate(t, repo, productDraft("Pad Thai", 5))

	dups, err := repo.FindDuplicates(ctx, " PAD THAI ")
	require.NoError(t, err)
	assert.Len(t, dups, 1)

	// Substrings are not duplicates; matching is never fuzzy.
	none, err := repo.FindDuplicates(ctx, "Pad")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "is required"}}
	assert.Contains(t, err.Error(), "name: is required")
	assert.True(t, errors.As(error(err), new(*ValidationError)))
}
