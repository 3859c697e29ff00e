package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrCacheMiss = errors.New("view not cached")

// DefaultViewTTL bounds how long a cached list view is served before the
// server is asked again.
const DefaultViewTTL = 5 * time.Minute

// ViewCache keeps booking list views until they are invalidated or expire.
type ViewCache interface {
	LoadView(ctx context.Context, key string, dest any) error
	StoreView(ctx context.Context, key string, value any) error
	InvalidateViews(ctx context.Context, keys ...string) error
}

const (
	ViewAllBookings = "bookings"
	ViewMyBookings  = "my_booking"
)

// ViewKey scopes a view to one user so a shared cache never mixes accounts.
func ViewKey(userID int64, view string) string {
	return fmt.Sprintf("views:%d:%s", userID, view)
}

// UserViewKeys lists every cached view belonging to a user.
func UserViewKeys(userID int64) []string {
	return []string{ViewKey(userID, ViewAllBookings), ViewKey(userID, ViewMyBookings)}
}

type SQLiteViewCache struct {
	db  *DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLiteViewCache(db *DB, ttl time.Duration) *SQLiteViewCache {
	if ttl <= 0 {
		ttl = DefaultViewTTL
	}
	return &SQLiteViewCache{db: db, ttl: ttl, now: time.Now}
}

// LoadView serves a view stored less than ttl ago. Older rows are dropped and
// reported as a miss.
func (c *SQLiteViewCache) LoadView(ctx context.Context, key string, dest any) error {
	var payload string
	var storedAt sql.NullString
	err := c.db.conn.QueryRowContext(ctx, "SELECT payload, stored_at FROM booking_views WHERE key = ?", key).Scan(&payload, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("load view %s: %w", key, err)
	}

	stored, err := time.Parse(time.RFC3339Nano, storedAt.String)
	if age := c.now().Sub(stored); err != nil || age < 0 || age >= c.ttl {
		if err := c.InvalidateViews(ctx, key); err != nil {
			return err
		}
		return ErrCacheMiss
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return fmt.Errorf("decode view %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteViewCache) StoreView(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = c.db.conn.ExecContext(ctx, `
INSERT INTO booking_views (key, payload, stored_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at;`,
		key, string(payload), c.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("store view %s: %w", key, err)
	}
	return nil
}

func (c *SQLiteViewCache) InvalidateViews(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := c.db.conn.ExecContext(ctx, "DELETE FROM booking_views WHERE key = ?", key); err != nil {
			return fmt.Errorf("invalidate view %s: %w", key, err)
		}
	}
	return nil
}
