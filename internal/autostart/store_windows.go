//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// RegistryStore is the per-user Run key. Value names are the entry names.
type RegistryStore struct {
	root registry.Key
	path string
}

func NewAutorunStore() (Store, error) {
	return &RegistryStore{root: registry.CURRENT_USER, path: runKeyPath}, nil
}

// FoldsCase is true: registry value names are case-insensitive.
func (s *RegistryStore) FoldsCase() bool { return true }

func (s *RegistryStore) Get(name string) (string, error) {
	k, err := registry.OpenKey(s.root, s.path, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	v, _, err := k.GetStringValue(name)
	if errors.Is(err, registry.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read run value %s: %w", name, err)
	}
	return v, nil
}

func (s *RegistryStore) Set(name, value string) error {
	k, _, err := registry.CreateKey(s.root, s.path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(name, value); err != nil {
		return fmt.Errorf("write run value %s: %w", name, err)
	}
	return nil
}

func (s *RegistryStore) Delete(name string) error {
	k, err := registry.OpenKey(s.root, s.path, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("delete run value %s: %w", name, err)
	}
	return nil
}

func (s *RegistryStore) Names() ([]string, error) {
	k, err := registry.OpenKey(s.root, s.path, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()

	names, err := k.ReadValueNames(0)
	if err != nil {
		return nil, fmt.Errorf("list run values: %w", err)
	}
	return names, nil
}
