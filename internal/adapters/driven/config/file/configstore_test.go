package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore(t *testing.T) {
	store, dir := newTestStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "lexrag")

	_, err := NewConfigStore(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 0.35))
	require.NoError(t, store.Set("whole", 4.0))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("list", []any{"a", 1, "b"}))

	assert.Equal(t, "hello", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))

	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 4, store.GetInt("whole"))
	assert.Equal(t, 0, store.GetInt("f"))

	assert.InDelta(t, 0.35, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 42.0, store.GetFloat("i"), 1e-9)
	assert.Zero(t, store.GetFloat("s"))

	assert.True(t, store.GetBool("b"))
	assert.False(t, store.GetBool("missing"))

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("list"))
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_SetRejectsEmptyKey(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Set("  ", 1))
}

func TestConfigStore_SaveWritesNestedTables(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	require.NoError(t, store.Set("embedding.dimensions", 768))
	require.NoError(t, store.Set("retrieval.threshold", 0.3))
	require.NoError(t, store.Save())

	raw, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[embedding]")
	assert.Contains(t, string(raw), "[retrieval]")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "ollama", reloaded.GetString("embedding.provider"))
	assert.Equal(t, 768, reloaded.GetInt("embedding.dimensions"))
	assert.InDelta(t, 0.3, reloaded.GetFloat("retrieval.threshold"), 1e-9)
}

func TestConfigStore_SaveConflict(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.Set("retrieval", "flat"))
	require.NoError(t, store.Set("retrieval.limit", 5))

	assert.Error(t, store.Save())
}

func TestConfigStore_LoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[broken"), 0o600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_LoadReplacesMemory(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Set("llm.model", "llama3.2"))

	require.NoError(t, store.Load())

	_, ok := store.Get("llm.model")
	assert.False(t, ok)
}
