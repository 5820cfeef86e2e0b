// Package settings persists the user-mutable settings record.
//
// A missing or corrupt file never prevents startup: Load substitutes the
// defaults and writes them back. Save is best effort; the in-memory value
// stays authoritative for the session when the disk refuses the write.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/scienceol/playawake/internal/config"
	"github.com/scienceol/playawake/internal/logging"
)

const (
	// FallbackIntervalMS is used when the caller hands NewStore an invalid default.
	FallbackIntervalMS = 2000
	// MaxIntervalMS caps the poll interval at one day.
	MaxIntervalMS = config.MaxIntervalMS
)

// Settings is the persisted record.
type Settings struct {
	CheckInterval int `json:"checkInterval"` // milliseconds
}

// Valid reports whether s can drive the poll loop.
func (s Settings) Valid() bool {
	return s.CheckInterval > 0 && s.CheckInterval <= MaxIntervalMS
}

// Interval returns CheckInterval as a duration.
func (s Settings) Interval() time.Duration {
	return time.Duration(s.CheckInterval) * time.Millisecond
}

// Store reads and writes one settings file.
type Store struct {
	path     string
	defaults Settings
	mu       sync.Mutex
}

// NewStore creates a store for path. defaults is what Load returns when the
// file is unusable.
func NewStore(path string, defaults Settings) *Store {
	if !defaults.Valid() {
		defaults = Settings{CheckInterval: FallbackIntervalMS}
	}
	return &Store{path: path, defaults: defaults}
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted settings, or the defaults (persisted
// immediately) when the file is missing, unreadable or invalid.
func (s *Store) Load(ctx context.Context) Settings {
	log := logging.FromContext(ctx)

	cur, err := s.read()
	if err == nil {
		return cur
	}

	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", s.path).Msg("settings file missing, writing defaults")
	} else {
		log.Warn().Err(err).Str("path", s.path).Msg("settings file unusable, writing defaults")
	}
	if err := s.Save(ctx, s.defaults); err != nil {
		log.Warn().Err(err).Msg("could not persist default settings")
	}
	return s.defaults
}

// Save overwrites the settings file. The write goes through a temp file and
// a rename so a crash never leaves half a JSON object behind.
func (s *Store) Save(ctx context.Context, st Settings) error {
	if !st.Valid() {
		return fmt.Errorf("checkInterval must be between 1 and %d, got %d", MaxIntervalMS, st.CheckInterval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := config.EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}

	logging.FromContext(ctx).Debug().Int("check_interval_ms", st.CheckInterval).Msg("settings saved")
	return nil
}

func (s *Store) read() (Settings, error) {
	// #nosec G304 - the settings path is derived from the app dir
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Settings{}, err
	}
	var st Settings
	if err := json.Unmarshal(data, &st); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	if !st.Valid() {
		return Settings{}, fmt.Errorf("checkInterval must be between 1 and %d, got %d", MaxIntervalMS, st.CheckInterval)
	}
	return st, nil
}
