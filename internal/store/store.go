// Package store provides instance-scoped persistence for the batch engine.
//
// All state (label cache, suggestion lists, execution history, failure groups)
// lives in a single SQLite key/value table. Keys are composite: a base key
// plus a sanitized instance identifier derived from the server origin, so two
// deployments of the same photo server never share state.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/thornmill/relabel/internal/shared"
)

// Store reads and writes JSON-encoded values under instance-scoped keys.
//
// Every Get/Set hits the database immediately; there is no write-back cache.
type Store struct {
	db       *sql.DB
	instance string
}

// NewStore creates a Store scoped to the instance identified by the server base URL.
//
// Returns [shared.ErrNoInstance] when no origin can be derived from the URL.
func NewStore(db *sql.DB, baseURL string) (*Store, error) {
	instance, err := InstanceID(baseURL)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, instance: instance}, nil
}

// InstanceID derives the instance identifier from a server URL: the
// scheme+host origin with every non-alphanumeric rune replaced by '_'.
func InstanceID(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", fmt.Errorf("%w: server URL not configured", shared.ErrNoInstance)
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: invalid server URL %q", shared.ErrNoInstance, baseURL)
	}

	return sanitize(u.Scheme + "://" + u.Host), nil
}

// sanitize maps every non-alphanumeric rune to '_'.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Instance returns the sanitized instance identifier this store is scoped to.
func (s *Store) Instance() string {
	return s.instance
}

// Key returns the composite storage key for a base key.
func (s *Store) Key(baseKey string) string {
	return baseKey + s.instance
}

// Get reads the value under baseKey into dest.
// Returns false with dest untouched when the key is absent.
func (s *Store) Get(baseKey string, dest any) (bool, error) {
	var raw string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = ?", s.Key(baseKey)).Scan(&raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read key %s: %w", baseKey, err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode value for key %s: %w", baseKey, err)
	}

	return true, nil
}

// Set writes value under baseKey, replacing any existing value.
func (s *Store) Set(baseKey string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %s: %w", baseKey, err)
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.Exec(query, s.Key(baseKey), string(raw)); err != nil {
		return fmt.Errorf("failed to write key %s: %w", baseKey, err)
	}

	return nil
}

// Delete removes the values under the given base keys for this instance only.
func (s *Store) Delete(baseKeys ...string) error {
	for _, baseKey := range baseKeys {
		if _, err := s.db.Exec("DELETE FROM kv_store WHERE key = ?", s.Key(baseKey)); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", baseKey, err)
		}
	}
	return nil
}
