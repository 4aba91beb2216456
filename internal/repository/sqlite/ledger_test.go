package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
)

func setupStore(t *testing.T) *LedgerStore {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledgers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLedgerStore_PutGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "profile-1", []byte(`{"items":[]}`)))
	require.NoError(t, store.Put(ctx, "profile-1", []byte(`{"items":[],"coupon_code":"A"}`)))

	got, err := store.Get(ctx, "profile-1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"coupon_code":"A"}`, string(got))
}

func TestLedgerStore_Get_NotFound(t *testing.T) {
	store := setupStore(t)

	_, err := store.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLedgerStore_Delete(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "profile-1", []byte(`{}`)))

	require.NoError(t, store.Delete(ctx, "profile-1"))
	_, err := store.Get(ctx, "profile-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "profile-1"))
}

func TestLedgerStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgers.db")
	ctx := context.Background()

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "profile-1", []byte(`{"items":[]}`)))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "profile-1")
	require.NoError(t, err)
	assert.Equal(t, `{"items":[]}`, string(got))
}

func TestLedgerStore_PurgeBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	store.now = func() time.Time { return base }
	require.NoError(t, store.Put(ctx, "stale", []byte(`{}`)))
	store.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, store.Put(ctx, "fresh", []byte(`{}`)))

	n, err := store.PurgeBefore(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestLedgerStore_Ping(t *testing.T) {
	assert.NoError(t, setupStore(t).Ping(context.Background()))
}
