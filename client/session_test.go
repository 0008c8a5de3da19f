package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	// Missing file means logged out, not an error.
	s, err := store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	in := Session{Token: "tok", User: &User{ID: "u1", Name: "Alice", Email: "a@x.com"}}
	require.NoError(t, store.Save(in))

	out, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, in.Token, out.Token)
	require.NotNil(t, out.User)
	assert.Equal(t, "Alice", out.User.Name)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "session file is private")

	require.NoError(t, store.Clear())
	s, err = store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	// Clearing an already-clear store is fine.
	require.NoError(t, store.Clear())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	store := NewFileStore(path)
	s, err := store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated(), "corrupt session treated as logged out")
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()

	s, err := store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	require.NoError(t, store.Save(Session{Token: "tok"}))
	s, err = store.Load()
	require.NoError(t, err)
	assert.True(t, s.Authenticated())

	require.NoError(t, store.Clear())
	s, err = store.Load()
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
}
