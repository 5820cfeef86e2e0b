//go:build !windows

package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/scienceol/playawake/internal/config"
)

// entryFormat renders and reads back one autostart file.
type entryFormat interface {
	ext() string
	render(name, value string) ([]byte, error)
	// extract returns the stored record value, or false when the file
	// carries none (hand-written or foreign entries).
	extract(data []byte) (string, bool)
}

// dirStore maps each entry to one file in an autostart directory.
type dirStore struct {
	dir    string
	format entryFormat
}

func (s *dirStore) file(name string) string {
	return filepath.Join(s.dir, name+s.format.ext())
}

func (s *dirStore) FoldsCase() bool { return false }

func (s *dirStore) Get(name string) (string, error) {
	// #nosec G304 - name is the configured autostart key
	data, err := os.ReadFile(s.file(name))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read autostart entry: %w", err)
	}
	v, ok := s.format.extract(data)
	if !ok {
		return "", nil
	}
	return v, nil
}

func (s *dirStore) Set(name, value string) error {
	data, err := s.format.render(name, value)
	if err != nil {
		return err
	}
	if err := config.EnsureDir(s.dir); err != nil {
		return err
	}
	if err := os.WriteFile(s.file(name), data, 0o644); err != nil {
		return fmt.Errorf("write autostart entry: %w", err)
	}
	return nil
}

func (s *dirStore) Delete(name string) error {
	err := os.Remove(s.file(name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove autostart entry: %w", err)
	}
	return nil
}

func (s *dirStore) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list autostart entries: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), s.format.ext()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), s.format.ext()))
	}
	sort.Strings(names)
	return names, nil
}
