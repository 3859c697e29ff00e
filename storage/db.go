package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// DB is the durable local state: a key/value table standing in for browser
// local storage, and the cached booking list views.
type DB struct {
	conn *sql.DB
	// Recovered is where an unreadable state file was moved when Open had to
	// start over, or empty.
	Recovered string
}

// Open opens the state file, creating it when missing. A file that is not a
// readable database is moved aside and replaced by an empty one, which leaves
// the user signed out.
func Open(path string) (*DB, error) {
	if err := ensureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	conn, err := openConn(path)
	if err == nil {
		return &DB{conn: conn}, nil
	}
	if !isCorrupt(err) {
		return nil, err
	}

	moved := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
	if err := os.Rename(path, moved); err != nil {
		return nil, fmt.Errorf("move aside unreadable state: %w", err)
	}
	_ = os.Remove(path + "-journal")

	conn, err = openConn(path)
	if err != nil {
		return nil, err
	}
	return &DB{conn: conn, Recovered: moved}, nil
}

func openConn(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func isCorrupt(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrNotADB || sqliteErr.Code == sqlite3.ErrCorrupt
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func ensureSchema(conn *sql.DB) error {
	createLocal := `
CREATE TABLE IF NOT EXISTS local_storage (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT
);`
	if _, err := conn.Exec(createLocal); err != nil {
		return fmt.Errorf("create local_storage table: %w", err)
	}

	createViews := `
CREATE TABLE IF NOT EXISTS booking_views (
  key TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  stored_at TEXT
);`
	if _, err := conn.Exec(createViews); err != nil {
		return fmt.Errorf("create booking_views table: %w", err)
	}
	return nil
}

func (d *DB) Get(key string) (string, bool, error) {
	var value string
	err := d.conn.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// SetAll writes every key in one transaction.
func (d *DB) SetAll(values map[string]string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range values {
		_, err := tx.Exec(`
INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`, key, value, now)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("write %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// Remove deletes every key in one transaction. Missing keys are ignored.
func (d *DB) Remove(keys ...string) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := tx.Exec("DELETE FROM local_storage WHERE key = ?", key); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return tx.Commit()
}
