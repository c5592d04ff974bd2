package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())

	creds := Credentials{
		ServerURL: "http://localhost:8080",
		Username:  "alice",
		Password:  "secret1",
	}
	require.NoError(t, store.Save(creds))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, creds, loaded)
}

func TestLoadBeforeSave(t *testing.T) {
	store := New(t.TempDir())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCredentialFileIsNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	require.NoError(t, store.Save(Credentials{Username: "alice", Password: "hunter222"}))

	raw, err := os.ReadFile(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "alice")
	assert.NotContains(t, string(raw), "hunter222")
}

func TestClear(t *testing.T) {
	store := New(t.TempDir())

	require.NoError(t, store.Save(Credentials{Username: "alice"}))
	require.NoError(t, store.Clear())

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found)

	// clearing twice is fine
	require.NoError(t, store.Clear())
}

func TestTamperedFileFailsDecryption(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	require.NoError(t, store.Save(Credentials{Username: "alice"}))

	path := filepath.Join(dir, "credentials.enc")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, _, err = store.Load()
	require.Error(t, err)
}
