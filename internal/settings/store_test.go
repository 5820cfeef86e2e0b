package settings

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nested", "settings.json"), Settings{CheckInterval: 2000})
}

func readFile(t *testing.T, path string) Settings {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var s Settings
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, ms := range []int{1, 100, 2000, 300000} {
		store := newTestStore(t)
		want := Settings{CheckInterval: ms}

		require.NoError(t, store.Save(ctx, want))
		assert.Equal(t, want, store.Load(ctx))
	}
}

func TestStore_FileFormat(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(context.Background(), Settings{CheckInterval: 1500}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, map[string]any{"checkInterval": float64(1500)}, raw)
}

func TestStore_LoadMissingPersistsDefault(t *testing.T) {
	store := newTestStore(t)

	got := store.Load(context.Background())

	assert.Equal(t, Settings{CheckInterval: 2000}, got)
	assert.Equal(t, got, readFile(t, store.Path()))
}

func TestStore_LoadCorruptPersistsDefault(t *testing.T) {
	tests := map[string]string{
		"invalid json":  "{checkInterval: ",
		"wrong type":    `{"checkInterval": "fast"}`,
		"zero interval": `{"checkInterval": 0}`,
		"negative":      `{"checkInterval": -5}`,
		"beyond a day":  `{"checkInterval": 10000000000000}`,
		"empty":         "",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
			require.NoError(t, os.WriteFile(store.Path(), []byte(body), 0o644))

			got := store.Load(context.Background())

			assert.Equal(t, Settings{CheckInterval: 2000}, got)
			assert.Equal(t, got, readFile(t, store.Path()))
		})
	}
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	assert.Error(t, store.Save(context.Background(), Settings{CheckInterval: 0}))
	assert.Error(t, store.Save(context.Background(), Settings{CheckInterval: MaxIntervalMS + 1}))
	assert.Error(t, store.Save(context.Background(), Settings{CheckInterval: 10_000_000_000_000}))
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestStore_SaveFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	// a regular file where the parent directory should be
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	store := NewStore(filepath.Join(blocker, "settings.json"), Settings{CheckInterval: 3000})

	assert.Error(t, store.Save(context.Background(), Settings{CheckInterval: 3000}))
	// Load still hands back a usable value
	assert.Equal(t, Settings{CheckInterval: 3000}, store.Load(context.Background()))
}

func TestNewStore_InvalidDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"), Settings{})
	assert.Equal(t, FallbackIntervalMS, store.defaults.CheckInterval)
}

func TestSettings_Interval(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, Settings{CheckInterval: 1500}.Interval())
}

func TestSettings_ValidRange(t *testing.T) {
	assert.True(t, Settings{CheckInterval: 1}.Valid())
	assert.True(t, Settings{CheckInterval: MaxIntervalMS}.Valid())
	assert.Equal(t, 24*time.Hour, Settings{CheckInterval: MaxIntervalMS}.Interval())

	for _, ms := range []int{0, -1, MaxIntervalMS + 1, 10_000_000_000_000} {
		s := Settings{CheckInterval: ms}
		assert.False(t, s.Valid(), ms)
	}
}
