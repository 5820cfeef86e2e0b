package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "playawake"

// Dir returns the per-user application directory. PLAYAWAKE_HOME wins over
// the platform config location (%AppData% on windows, XDG_CONFIG_HOME or
// ~/.config elsewhere).
func Dir() (string, error) {
	if v := os.Getenv("PLAYAWAKE_HOME"); v != "" {
		return filepath.Abs(v)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("resolve config dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDirName), nil
}

// EnsureDir creates dir if it is missing. Safe to call repeatedly.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// Executable returns the running binary with symlinks resolved.
func Executable() (string, error) {
	p, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Abs(p)
}
