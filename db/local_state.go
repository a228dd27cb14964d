// ABOUTME: Key/value local state: the logged-in user id and this device's id
// ABOUTME: Store implements the session persistence the login controller needs
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	keyUserID   = "userId"
	keyDeviceID = "deviceId"
)

// Store wraps the local database.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Get returns the value for key and whether it was set.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM local_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO local_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM local_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// SessionUserID returns the remembered user id. A value that is not a
// number is treated as no session.
func (s *Store) SessionUserID(ctx context.Context) (int, bool, error) {
	v, ok, err := s.Get(ctx, keyUserID)
	if err != nil || !ok {
		return 0, false, err
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, nil
	}
	return id, true, nil
}

func (s *Store) SetSessionUserID(ctx context.Context, userID int) error {
	return s.Set(ctx, keyUserID, strconv.Itoa(userID))
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.Delete(ctx, keyUserID)
}

// DeviceID returns this install's id, creating it on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	v, ok, err := s.Get(ctx, keyDeviceID)
	if err != nil {
		return "", err
	}
	if ok {
		return v, nil
	}

	id := newID()
	if err := s.Set(ctx, keyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}

func newID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
