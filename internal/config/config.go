package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxIntervalMS is the longest poll interval accepted anywhere (one day).
const MaxIntervalMS = 24 * 60 * 60 * 1000

// Detection strategies understood by the activity package.
const (
	StrategyProcess = "process"
	StrategyWindow  = "window"
	StrategyAudio   = "audio"
)

type Config struct {
	Target            string        `yaml:"target"`
	Strategy          string        `yaml:"strategy"`
	DefaultIntervalMS int           `yaml:"default_interval_ms"`
	ReassertInterval  time.Duration `yaml:"reassert_interval"`
	AutostartName     string        `yaml:"autostart_name"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"`
	LogFile           string        `yaml:"log_file"`
	Notify            bool          `yaml:"notify"`

	// Dir is the per-user application directory the file was resolved from.
	Dir string `yaml:"-"`
}

// Flags carries command line overrides. Zero values mean "not set".
type Flags struct {
	ConfigPath string
	Target     string
	Strategy   string
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Target:            "Spotify",
		Strategy:          StrategyProcess,
		DefaultIntervalMS: 2000,
		AutostartName:     "PlayAwake",
		LogLevel:          "info",
		LogFormat:         "console",
		Notify:            true,
	}
}

// Load resolves configuration from flags > env > config file.
func Load(flags Flags) (*Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	cfg.Dir = dir

	// 1. Load config file as base
	cfgPath := flags.ConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("PLAYAWAKE_CONFIG")
	}
	if cfgPath == "" {
		cfgPath = filepath.Join(dir, "config.yaml")
	}
	// #nosec G304 - the config file path comes from the user or the app dir
	if data, err := os.ReadFile(cfgPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", cfgPath, err)
	}

	// 2. Environment variables override config file
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// 3. CLI flags override everything
	if flags.Target != "" {
		cfg.Target = flags.Target
	}
	if flags.Strategy != "" {
		cfg.Strategy = flags.Strategy
	}

	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(dir, cfg.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("PLAYAWAKE_TARGET"); v != "" {
		cfg.Target = v
	}
	if v := os.Getenv("PLAYAWAKE_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("PLAYAWAKE_INTERVAL_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PLAYAWAKE_INTERVAL_MS: %w", err)
		}
		cfg.DefaultIntervalMS = n
	}
	if v := os.Getenv("PLAYAWAKE_REASSERT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PLAYAWAKE_REASSERT_INTERVAL: %w", err)
		}
		cfg.ReassertInterval = d
	}
	if v := os.Getenv("PLAYAWAKE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PLAYAWAKE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("target is required (--target, PLAYAWAKE_TARGET, or config file)")
	}
	switch c.Strategy {
	case StrategyProcess, StrategyWindow, StrategyAudio:
	default:
		return fmt.Errorf("unknown strategy %q (use %s, %s or %s)", c.Strategy, StrategyProcess, StrategyWindow, StrategyAudio)
	}
	if c.DefaultIntervalMS <= 0 || c.DefaultIntervalMS > MaxIntervalMS {
		return fmt.Errorf("default_interval_ms must be between 1 and %d", MaxIntervalMS)
	}
	if c.ReassertInterval < 0 {
		return fmt.Errorf("reassert_interval must be non-negative")
	}
	if strings.TrimSpace(c.AutostartName) == "" {
		return fmt.Errorf("autostart_name must not be empty")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q (use console or json)", c.LogFormat)
	}
	return nil
}

// SettingsPath is where the user-mutable settings live.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, "settings.json")
}

// ArchivePath is where superseded autostart records are kept.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Dir, "autostart-archive.json")
}
