package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLocalStorageRoundTrip(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.SetAll(map[string]string{"token": "abc", "user": `{"id":1}`}))
	value, ok, err := db.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)

	require.NoError(t, db.SetAll(map[string]string{"token": "def"}))
	value, _, err = db.Get("token")
	require.NoError(t, err)
	assert.Equal(t, "def", value)

	require.NoError(t, db.Remove("token", "user", "missing"))
	_, ok, err = db.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SetAll(map[string]string{"token": "persisted"}))
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}

func TestOpenReplacesUnreadableState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	garbage := []byte("not a database, just bytes left behind by something else")
	require.NoError(t, os.WriteFile(path, garbage, 0o600))

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NotEmpty(t, db.Recovered)
	moved, err := os.ReadFile(db.Recovered)
	require.NoError(t, err)
	assert.Equal(t, garbage, moved)

	_, ok, err := db.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, db.SetAll(map[string]string{"token": "fresh"}))

	require.NoError(t, db.Close())
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Empty(t, reopened.Recovered)
}

type view struct {
	IDs []int `json:"ids"`
}

func TestSQLiteViewCache(t *testing.T) {
	ctx := context.Background()
	cache := NewSQLiteViewCache(openTestDB(t), time.Hour)
	key := ViewKey(3, ViewAllBookings)

	var got view
	assert.ErrorIs(t, cache.LoadView(ctx, key, &got), ErrCacheMiss)

	require.NoError(t, cache.StoreView(ctx, key, view{IDs: []int{1, 2}}))
	require.NoError(t, cache.LoadView(ctx, key, &got))
	assert.Equal(t, []int{1, 2}, got.IDs)

	require.NoError(t, cache.InvalidateViews(ctx, UserViewKeys(3)...))
	assert.ErrorIs(t, cache.LoadView(ctx, key, &got), ErrCacheMiss)
}

func TestSQLiteViewCacheExpiresAcrossRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")
	stored := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	key := ViewKey(3, ViewMyBookings)

	db, err := Open(path)
	require.NoError(t, err)
	cache := NewSQLiteViewCache(db, 5*time.Minute)
	cache.now = func() time.Time { return stored }
	require.NoError(t, cache.StoreView(ctx, key, view{IDs: []int{1}}))
	require.NoError(t, db.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	cache = NewSQLiteViewCache(reopened, 5*time.Minute)

	var got view
	cache.now = func() time.Time { return stored.Add(4 * time.Minute) }
	require.NoError(t, cache.LoadView(ctx, key, &got))
	assert.Equal(t, []int{1}, got.IDs)

	cache.now = func() time.Time { return stored.Add(5 * time.Minute) }
	assert.ErrorIs(t, cache.LoadView(ctx, key, &got), ErrCacheMiss)

	cache.now = func() time.Time { return stored }
	assert.ErrorIs(t, cache.LoadView(ctx, key, &got), ErrCacheMiss, "expired row is dropped")
}

func TestViewKeysAreScopedPerUser(t *testing.T) {
	assert.Equal(t, "views:3:bookings", ViewKey(3, ViewAllBookings))
	assert.NotEqual(t, ViewKey(3, ViewMyBookings), ViewKey(4, ViewMyBookings))
	assert.Len(t, UserViewKeys(9), 2)
}

func TestRedisViewCacheLoadMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisViewCache(db, time.Hour)

	mock.ExpectGet("views:1:bookings").RedisNil()

	var got view
	err := cache.LoadView(context.Background(), "views:1:bookings", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisViewCacheStoreAndLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisViewCache(db, time.Hour)

	mock.ExpectSet("views:1:bookings", `{"ids":[5]}`, time.Hour).SetVal("OK")
	mock.ExpectGet("views:1:bookings").SetVal(`{"ids":[5]}`)

	ctx := context.Background()
	require.NoError(t, cache.StoreView(ctx, "views:1:bookings", view{IDs: []int{5}}))

	var got view
	require.NoError(t, cache.LoadView(ctx, "views:1:bookings", &got))
	assert.Equal(t, []int{5}, got.IDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisViewCacheInvalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	cache := NewRedisViewCache(db, 0)

	keys := UserViewKeys(1)
	mock.ExpectDel(keys...).SetVal(2)

	require.NoError(t, cache.InvalidateViews(context.Background(), keys...))
	require.NoError(t, cache.InvalidateViews(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
