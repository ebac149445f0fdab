// Package store persists the session (bearer token and user blob) in a small
// SQLite key-value file so CLI invocations share a login.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "modernc.org/sqlite"

	"github.com/zenem/zenem/internal/api"
)

// Fixed keys in the kv table.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)

// Store wraps the SQLite connection holding session state
type Store struct {
	conn *sql.DB
}

// Open creates or opens the store at path, creating parent directories.
// It enables WAL mode and runs migrations.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// A single connection keeps :memory: databases coherent across calls.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS kv (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (s *Store) get(key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) set(key, value string) error {
	_, err := s.conn.Exec(`
INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) remove(keys ...string) error {
	for _, k := range keys {
		if _, err := s.conn.Exec("DELETE FROM kv WHERE key = ?", k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// SetToken stores the bearer token
func (s *Store) SetToken(token string) error {
	return s.set(KeyAuthToken, token)
}

// Token returns the stored bearer token, or "" when logged out.
// It satisfies api.TokenSource.
func (s *Store) Token() (string, error) {
	v, _, err := s.get(KeyAuthToken)
	return v, err
}

// ClearToken forgets the bearer token
func (s *Store) ClearToken() error {
	return s.remove(KeyAuthToken)
}

// SetUser stores the user blob as JSON
func (s *Store) SetUser(u api.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.set(KeyUserData, string(data))
}

// User returns the stored user, or nil when none is stored
func (s *Store) User() (*api.User, error) {
	v, ok, err := s.get(KeyUserData)
	if err != nil || !ok {
		return nil, err
	}
	var u api.User
	if err := json.Unmarshal([]byte(v), &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// Clear removes the whole session
func (s *Store) Clear() error {
	return s.remove(KeyAuthToken, KeyUserData)
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// ok is false when the token is not a JWT or carries no exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	t, err := claims.GetExpirationTime()
	if err != nil || t == nil {
		return time.Time{}, false
	}
	return t.Time, true
}

var _ api.TokenSource = (*Store)(nil)
