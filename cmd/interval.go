package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/scienceol/playawake/internal/settings"
	"github.com/scienceol/playawake/internal/ui"
)

func init() {
	rootCmd.AddCommand(intervalCmd)
}

var intervalCmd = &cobra.Command{
	Use:   "interval [milliseconds]",
	Short: "Show or set the poll interval",
	Long: `Without an argument prints the persisted poll interval. With one, stores
it; a running instance picks the new value up on its next tick.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		store := s.settingsStore()
		if len(args) == 0 {
			cur := store.Load(s.ctx)
			ui.KeyValue("Interval", cur.Interval().String())
			ui.KeyValue("File", store.Path())
			return nil
		}

		ms, err := strconv.Atoi(args[0])
		next := settings.Settings{CheckInterval: ms}
		if err != nil || !next.Valid() {
			return fmt.Errorf("interval must be between 1 and %d milliseconds, got %q", settings.MaxIntervalMS, args[0])
		}
		if err := store.Save(s.ctx, next); err != nil {
			return fmt.Errorf("save interval: %w", err)
		}
		ui.Success("Interval set to %s", next.Interval().String())
		return nil
	},
}
