package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus-sports-cli/api"
	"campus-sports-cli/session"
	"campus-sports-cli/storage"
)

// app is the local state a command works against: the sqlite state file, the
// session stored in it and the booking view cache.
type app struct {
	db      *storage.DB
	session *session.Store
	views   storage.ViewCache
	redis   *storage.RedisViewCache
}

func openApp(ctx context.Context) (*app, error) {
	ttl, err := cfg.ViewCacheTTL()
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.StatePath())
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}
	if db.Recovered != "" {
		logger.Printf("local state unreadable, started over moved=%s", db.Recovered)
	}

	a := &app{db: db, session: session.Open(db, logger)}
	if cfg.CacheURL != "" {
		rdb, err := storage.DialRedis(ctx, cfg.CacheURL)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("connect view cache: %w", err)
		}
		a.redis = storage.NewRedisViewCache(rdb, ttl)
		a.views = a.redis
	} else {
		a.views = storage.NewSQLiteViewCache(db, ttl)
	}

	a.attach(client)
	return a, nil
}

// attach makes c authenticate with the session and sign out on a 401.
func (a *app) attach(c *api.Client) {
	c.Tokens = a.session
	c.OnUnauthorized = a.signOut
}

func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}

// signOut clears the session and drops the signed-in user's cached views.
func (a *app) signOut() {
	user, ok := a.session.User()
	if err := a.session.ClearAuth(); err != nil {
		logger.Printf("session clear error=%q", err)
	}
	if !ok {
		return
	}
	if err := a.views.InvalidateViews(context.Background(), storage.UserViewKeys(user.ID)...); err != nil {
		logger.Printf("views invalidate error=%q user_id=%d", err, user.ID)
	}
}

// requireUser guards commands that need a signed-in user.
func (a *app) requireUser() (api.User, error) {
	err := a.session.Require(time.Now())
	switch {
	case errors.Is(err, session.ErrTokenExpired):
		a.signOut()
		return api.User{}, fmt.Errorf("session expired. Run 'campus-sports auth login' to sign in again")
	case err != nil:
		return api.User{}, fmt.Errorf("not logged in. Run 'campus-sports auth login' first")
	}
	user, _ := a.session.User()
	return user, nil
}

func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
