package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scienceol/playawake/internal/autostart"
	"github.com/scienceol/playawake/internal/config"
	"github.com/scienceol/playawake/internal/logging"
	"github.com/scienceol/playawake/internal/settings"
)

var (
	flagConfig   string
	flagTarget   string
	flagStrategy string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: <app dir>/config.yaml)")
	pf.StringVar(&flagTarget, "target", "", "Application to track (e.g. Spotify)")
	pf.StringVar(&flagStrategy, "strategy", "", "Detection strategy: process, window or audio")
	addRunFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:   "playawake",
	Short: "PlayAwake keeps your machine awake while music is playing",
	Long: `PlayAwake watches one application (Spotify by default) and holds the
operating system's idle inhibition while it is playing. When playback stops
the machine is allowed to sleep again.

Run without a subcommand to start the tray app.`,
	// The autostart entry may append its record fields to the command line.
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDaemon,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is the resolved configuration plus a logger-carrying context,
// shared by every subcommand.
type session struct {
	cfg *config.Config
	ctx context.Context
	log io.Closer
}

// setup loads configuration and logging. logFile forces a log file for
// launches that have no console.
func setup(cmd *cobra.Command, logFile bool) (*session, error) {
	cfg, err := config.Load(config.Flags{
		ConfigPath: flagConfig,
		Target:     flagTarget,
		Strategy:   flagStrategy,
	})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	lc := logging.DefaultConfig()
	lc.Format = cfg.LogFormat
	if lc.Level, err = logging.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	lc.File = cfg.LogFile
	if logFile && lc.File == "" {
		lc.File = filepath.Join(cfg.Dir, "playawake.log")
	}

	logger, closer, err := logging.New(lc)
	if err != nil {
		return nil, err
	}
	logger = logger.With().Str("version", version).Logger()

	return &session{
		cfg: cfg,
		ctx: logging.WithContext(cmd.Context(), logger),
		log: closer,
	}, nil
}

func (s *session) Close() {
	_ = s.log.Close()
}

func (s *session) settingsStore() *settings.Store {
	return settings.NewStore(s.cfg.SettingsPath(), settings.Settings{CheckInterval: s.cfg.DefaultIntervalMS})
}

func (s *session) registrar() (*autostart.Registrar, error) {
	exe, err := config.Executable()
	if err != nil {
		return nil, err
	}
	autorun, err := autostart.NewAutorunStore()
	if err != nil {
		return nil, err
	}
	return autostart.New(autorun, autostart.NewFileStore(s.cfg.ArchivePath()), autostart.Options{
		Name:       s.cfg.AutostartName,
		Executable: exe,
		Version:    version,
	}), nil
}
