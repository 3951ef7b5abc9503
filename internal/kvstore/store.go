// Package kvstore is the key-value persistence boundary: string keys mapped to
// JSON blobs and primitives, stored in a single SQL table so that reads and
// writes can join a caller's transaction.
package kvstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("key not found")

// Entry is one stored key.
type Entry struct {
	bun.BaseModel `bun:"table:kv_entries,alias:kv"`

	Key       string    `bun:"entry_key,pk"`
	Value     string    `bun:"entry_value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// Store defines the key-value contract. Every method takes the bun handle to
// run on; a nil handle falls back to the store's default connection.
type Store interface {
	Get(ctx context.Context, db bun.IDB, key string) (string, error)
	Set(ctx context.Context, db bun.IDB, key, value string) error
	Delete(ctx context.Context, db bun.IDB, key string) error
	Keys(ctx context.Context, db bun.IDB) ([]string, error)
	Clear(ctx context.Context, db bun.IDB) error
}

// Impl implements Store on a bun connection.
type Impl struct {
	db bun.IDB
}

// NewStore creates a new key-value store.
func NewStore(db bun.IDB) Store {
	return &Impl{db: db}
}

func (s *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return s.db
	}
	return db
}

// Get returns the raw value stored under key.
func (s *Impl) Get(ctx context.Context, db bun.IDB, key string) (string, error) {
	db = s.resolveDB(db)
	entry := new(Entry)
	err := db.NewSelect().
		Model(entry).
		Where("entry_key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return entry.Value, nil
}

// Set stores value under key, replacing any previous value.
func (s *Impl) Set(ctx context.Context, db bun.IDB, key, value string) error {
	db = s.resolveDB(db)
	entry := &Entry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := db.NewInsert().
		Model(entry).
		On("CONFLICT (entry_key) DO UPDATE").
		Set("entry_value = EXCLUDED.entry_value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Impl) Delete(ctx context.Context, db bun.IDB, key string) error {
	db = s.resolveDB(db)
	_, err := db.NewDelete().
		Model((*Entry)(nil)).
		Where("entry_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// Keys lists stored keys in lexical order.
func (s *Impl) Keys(ctx context.Context, db bun.IDB) ([]string, error) {
	db = s.resolveDB(db)
	var keys []string
	err := db.NewSelect().
		Model((*Entry)(nil)).
		Column("entry_key").
		Order("entry_key ASC").
		Scan(ctx, &keys)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

// Clear removes every key.
func (s *Impl) Clear(ctx context.Context, db bun.IDB) error {
	db = s.resolveDB(db)
	_, err := db.NewDelete().
		Model((*Entry)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear store: %w", err)
	}
	return nil
}

// GetJSON decodes the blob under key into dst. It reports false when the key
// is missing.
func GetJSON(ctx context.Context, s Store, db bun.IDB, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, db, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("failed to decode key %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, db bun.IDB, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode key %q: %w", key, err)
	}
	return s.Set(ctx, db, key, string(raw))
}

// GetInt reads a number stored as a string, returning def when missing.
func GetInt(ctx context.Context, s Store, db bun.IDB, key string, def int) (int, error) {
	raw, err := s.Get(ctx, db, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("key %q holds a non-numeric value: %w", key, err)
	}
	return n, nil
}

// SetInt stores n as a decimal string.
func SetInt(ctx context.Context, s Store, db bun.IDB, key string, n int) error {
	return s.Set(ctx, db, key, strconv.Itoa(n))
}

// GetBool reads "true"/"false", returning def when missing.
func GetBool(ctx context.Context, s Store, db bun.IDB, key string, def bool) (bool, error) {
	raw, err := s.Get(ctx, db, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return false, err
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("key %q holds a non-boolean value: %w", key, err)
	}
	return b, nil
}

// SetBool stores b as "true" or "false".
func SetBool(ctx context.Context, s Store, db bun.IDB, key string, b bool) error {
	return s.Set(ctx, db, key, strconv.FormatBool(b))
}

// GetString returns the value under key or def when missing.
func GetString(ctx context.Context, s Store, db bun.IDB, key, def string) (string, error) {
	raw, err := s.Get(ctx, db, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return def, nil
		}
		return "", err
	}
	return raw, nil
}
