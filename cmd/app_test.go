package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"campus-sports-cli/api"
	"campus-sports-cli/config"
	"campus-sports-cli/session"
	"campus-sports-cli/storage"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestApp(t *testing.T, dir string) *app {
	t.Helper()
	prev := cfg
	t.Cleanup(func() { cfg = prev })
	cfg = config.Config{ConfigDir: dir, RequestTimeout: "5s", ViewTTL: "5m"}

	a, err := openApp(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestUnauthorizedResponseSignsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	}))
	defer srv.Close()

	a := openTestApp(t, t.TempDir())
	ctx := context.Background()
	user := api.User{ID: 9, Email: gofakeit.Email(), Username: gofakeit.Username()}
	require.NoError(t, a.session.SetAuth("stale-token", user))
	viewKey := storage.ViewKey(user.ID, storage.ViewMyBookings)
	require.NoError(t, a.views.StoreView(ctx, viewKey, []api.Booking{{ID: 1, Status: api.StatusConfirmed}}))

	c := api.NewClient()
	c.BaseURL = srv.URL
	a.attach(c)

	_, err := c.MyBookings(ctx)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	assert.False(t, a.session.IsAuthenticated())
	for _, key := range []string{session.TokenKey, session.UserKey} {
		_, ok, err := a.db.Get(key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	var cached []api.Booking
	assert.ErrorIs(t, a.views.LoadView(ctx, viewKey, &cached), storage.ErrCacheMiss)

	_, err = a.requireUser()
	assert.ErrorContains(t, err, "not logged in")
}

func TestOpenAppStartsSignedOutOnUnreadableState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.db"), []byte("definitely not sqlite"), 0o600))

	a := openTestApp(t, dir)
	assert.NotEmpty(t, a.db.Recovered)
	assert.False(t, a.session.IsAuthenticated())

	require.NoError(t, a.session.SetAuth("fresh-token", api.User{ID: 1, Email: gofakeit.Email()}))
	assert.True(t, a.session.IsAuthenticated())
}
