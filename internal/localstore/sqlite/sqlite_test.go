package sqlite

import (
	"context"
	"testing"

	"github.com/TheSylus/Hmmm/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return New(d)
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)

	value, err := s.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestSetThenGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "foodItems", []byte(`[{"name":"Milk"}]`)))

	value, err := s.Get(ctx, "foodItems")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Milk"}]`, string(value))
}

func TestSetReplacesValue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("first")))
	require.NoError(t, s.Set(ctx, "k", []byte("second")))

	value, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), value)
}

func TestKeysAreIndependent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))

	a, err := s.Get(ctx, "a")
	require.NoError(t, err)
	b, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), a)
	assert.Equal(t, []byte("2"), b)
}
