//go:build !windows && !darwin

package autostart

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDesktopStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	s := NewDesktopStore(dir)

	_, err := s.Get("PlayAwake")
	assert.ErrorIs(t, err, ErrNotFound)

	value := `"/opt/play awake/playawake"|1.0.0|638448912000000000`
	require.NoError(t, s.Set("PlayAwake", value))

	got, err := s.Get("PlayAwake")
	require.NoError(t, err)
	assert.Equal(t, value, got)

	data, err := os.ReadFile(filepath.Join(dir, "PlayAwake.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `Exec="/opt/play awake/playawake"`)
	assert.True(t, strings.HasPrefix(string(data), "[Desktop Entry]\n"))

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"PlayAwake"}, names)

	require.NoError(t, s.Delete("PlayAwake"))
	require.NoError(t, s.Delete("PlayAwake"))
	names, err = s.Names()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDesktopStore_ForeignEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "PlayAwake.desktop"), []byte("[Desktop Entry]\nExec=/x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	s := NewDesktopStore(dir)
	got, err := s.Get("PlayAwake")
	require.NoError(t, err)
	assert.Empty(t, got)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"PlayAwake"}, names)
}

func TestDesktopStore_LegacyValueExec(t *testing.T) {
	s := NewDesktopStore(t.TempDir())
	require.NoError(t, s.Set("PlayAwake", `"/usr/bin/play$awake"`))
	data, err := os.ReadFile(filepath.Join(s.(*dirStore).dir, "PlayAwake.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `Exec="/usr/bin/play\$awake"`)
}

func TestDesktopStore_ReconcilePurgesCaseVariant(t *testing.T) {
	dir := t.TempDir()
	exePath := filepath.Join(t.TempDir(), "playawake")
	require.NoError(t, os.WriteFile(exePath, []byte("bin"), 0o755))

	store := NewDesktopStore(dir)
	reg := New(store, NewFileStore(filepath.Join(t.TempDir(), "archive.json")), Options{
		Name:       "PlayAwake",
		Executable: exePath,
		Version:    "1.0.0",
	})
	require.NoError(t, reg.Register())
	stale := Record{Path: "/gone/playawake", Version: "0.9.0", RegisteredAt: time.Now()}
	require.NoError(t, store.Set("playawake", stale.Encode()))

	assert.Equal(t, OutcomeValid, reg.Reconcile(context.Background()))

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"PlayAwake"}, names)
	assert.True(t, reg.IsRegistered())
}
