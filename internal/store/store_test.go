package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenem/zenem/internal/api"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenWALMode(t *testing.T) {
	s := openTemp(t)

	var journalMode string
	require.NoError(t, s.conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestOpenInMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetToken("abc"))
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

func TestToken_RoundTrip(t *testing.T) {
	s := openTemp(t)

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok, "no token before login")

	require.NoError(t, s.SetToken("first"))
	require.NoError(t, s.SetToken("second"))
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Equal(t, "second", tok)

	require.NoError(t, s.ClearToken())
	tok, err = s.Token()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestUser_RoundTrip(t *testing.T) {
	s := openTemp(t)

	u, err := s.User()
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.SetUser(api.User{ID: "u1", Email: "a@b.c", Name: "Ada", Roles: []string{"ADMIN"}}))
	u, err = s.User()
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, []string{"ADMIN"}, u.Roles)
}

func TestClear(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.SetToken("t"))
	require.NoError(t, s.SetUser(api.User{ID: "u1"}))

	require.NoError(t, s.Clear())

	tok, _ := s.Token()
	u, _ := s.User()
	assert.Empty(t, tok)
	assert.Nil(t, u)
}

func TestPersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("kept"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "kept", tok)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	got, ok := TokenExpiry(signed)
	require.True(t, ok)
	assert.True(t, got.Equal(exp), "got %v want %v", got, exp)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	_, ok = TokenExpiry(noExp)
	assert.False(t, ok)

	_, ok = TokenExpiry("opaque-token")
	assert.False(t, ok)
}
