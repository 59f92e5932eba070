package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/stylevision/internal/domain"
)

func TestKVStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()

	_, err := s.Get(ctx, "local:a", "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Set(ctx, "local:a", "k", "v1"))
	require.NoError(t, s.Set(ctx, "local:a", "k", "v2"))
	v, err := s.Get(ctx, "local:a", "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	_, err = s.Get(ctx, "local:b", "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Delete(ctx, "local:a", "k"))
	require.NoError(t, s.Delete(ctx, "local:a", "k"))
	_, err = s.Get(ctx, "local:a", "k")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKVStore_PurgeExpiredOnlyTouchesPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewKVStore()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }

	require.NoError(t, s.Set(ctx, domain.SessionNamespace("old"), "userImage", "x"))
	require.NoError(t, s.Set(ctx, domain.LocalNamespace("old"), "cart", "y"))
	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	require.NoError(t, s.Set(ctx, domain.SessionNamespace("new"), "userImage", "z"))

	n, err := s.PurgeExpired(ctx, domain.SessionPrefix, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Get(ctx, domain.SessionNamespace("old"), "userImage")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(ctx, domain.LocalNamespace("old"), "cart")
	assert.NoError(t, err)
	_, err = s.Get(ctx, domain.SessionNamespace("new"), "userImage")
	assert.NoError(t, err)
}

func TestGarmentRepo_ListAndFind(t *testing.T) {
	ctx := context.Background()
	r := NewGarmentRepo(
		domain.Garment{ID: "a", Name: "A", Category: "saias", Active: true},
		domain.Garment{ID: "b", Name: "B", Category: "camisetas", Active: true},
		domain.Garment{ID: "c", Name: "C", Category: "camisetas", Active: false},
	)

	all, err := r.List(ctx, domain.GarmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cams, err := r.List(ctx, domain.GarmentFilter{Category: "camisetas"})
	require.NoError(t, err)
	require.Len(t, cams, 1)
	assert.Equal(t, "b", cams[0].ID)

	_, err = r.FindByID(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	cats, err := r.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"camisetas", "saias"}, cats)
}
