package cmd

import (
	"github.com/spf13/cobra"

	"github.com/scienceol/playawake/internal/activity"
	"github.com/scienceol/playawake/internal/ui"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Sample the tracked application once and print the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		sig, err := activity.New(s.cfg.Strategy, s.cfg.Target)
		if err != nil {
			return err
		}

		ui.KeyValue("Target", s.cfg.Target)
		ui.KeyValue("Strategy", sig.Name())
		if sig.IsActive(s.ctx) {
			ui.Success("%s is active", s.cfg.Target)
		} else {
			ui.Info("%s is not active", s.cfg.Target)
		}
		return nil
	},
}
