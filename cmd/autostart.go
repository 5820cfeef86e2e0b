package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scienceol/playawake/internal/autostart"
	"github.com/scienceol/playawake/internal/ui"
)

func init() {
	autostartCmd.AddCommand(autostartEnableCmd, autostartDisableCmd, autostartStatusCmd, autostartReconcileCmd)
	rootCmd.AddCommand(autostartCmd)
}

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage launching PlayAwake at login",
}

// withRegistrar runs fn against the configured registrar.
func withRegistrar(fn func(s *session, r *autostart.Registrar) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		s, err := setup(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.registrar()
		if err != nil {
			return fmt.Errorf("autostart unavailable: %w", err)
		}
		return fn(s, r)
	}
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Register this executable to start at login",
	Args:  cobra.NoArgs,
	RunE: withRegistrar(func(s *session, r *autostart.Registrar) error {
		if err := r.Register(); err != nil {
			return fmt.Errorf("enable autostart: %w", err)
		}
		ui.Success("Autostart enabled %s", ui.Dim("("+s.cfg.AutostartName+")"))
		return nil
	}),
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Remove the autostart entry",
	Args:  cobra.NoArgs,
	RunE: withRegistrar(func(s *session, r *autostart.Registrar) error {
		if err := r.Unregister(); err != nil {
			return fmt.Errorf("disable autostart: %w", err)
		}
		ui.Success("Autostart disabled")
		return nil
	}),
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a valid autostart entry exists",
	Args:  cobra.NoArgs,
	RunE: withRegistrar(func(s *session, r *autostart.Registrar) error {
		ui.KeyValue("Entry", s.cfg.AutostartName)
		if r.IsRegistered() {
			ui.Success("Registered for this executable and version")
		} else {
			ui.Warn("Not registered %s", ui.Dim("(run \"playawake autostart reconcile\" to repair a stale entry)"))
		}
		return nil
	}),
}

var autostartReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Validate and repair the autostart entry now",
	Args:  cobra.NoArgs,
	RunE: withRegistrar(func(s *session, r *autostart.Registrar) error {
		outcome := r.Reconcile(s.ctx)
		if outcome == autostart.OutcomeFailed {
			ui.Error("Autostart entry could not be repaired %s", ui.Dim("(see log)"))
			return nil
		}
		ui.Info("Autostart entry %s", outcome)
		return nil
	}),
}
