package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("extraction.url", "http://localhost:8100"))
	require.NoError(t, store.Set("scheduler.poll_minutes", 15))
	require.NoError(t, store.Set("scheduler.enabled", true))

	assert.Equal(t, "http://localhost:8100", store.GetString("extraction.url"))
	assert.Equal(t, 15, store.GetInt("scheduler.poll_minutes"))
	assert.True(t, store.GetBool("scheduler.enabled"))

	_, ok := store.Get("missing.key")
	assert.False(t, ok)
}

func TestConfigStore_TypeMismatchesReturnZero(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", "a string"))

	assert.Zero(t, store.GetInt("key"))
	assert.False(t, store.GetBool("key"))
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("providers.dropbox.token", "sl.token"))
	require.NoError(t, store.Set("scheduler.poll_minutes", 30))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "sl.token", reopened.GetString("providers.dropbox.token"))
	assert.Equal(t, 30, reopened.GetInt("scheduler.poll_minutes"))
}

func TestConfigStore_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[extraction]
url = "http://localhost:8100"
api_key = "secret"

[providers.graph]
tenant = "contoso"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8100", store.GetString("extraction.url"))
	assert.Equal(t, "secret", store.GetString("extraction.api_key"))
	assert.Equal(t, "contoso", store.GetString("providers.graph.tenant"))
}

func TestConfigStore_RestrictedFilePermissions(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("providers.dropbox.token", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_MissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, store.GetString("anything"))
	assert.DirExists(t, filepath.Dir(store.Path()))
}
