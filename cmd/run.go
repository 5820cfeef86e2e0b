package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scienceol/playawake/internal/activity"
	"github.com/scienceol/playawake/internal/controller"
	"github.com/scienceol/playawake/internal/logging"
	"github.com/scienceol/playawake/internal/notify"
	"github.com/scienceol/playawake/internal/power"
	"github.com/scienceol/playawake/internal/settings"
	"github.com/scienceol/playawake/internal/status"
	"github.com/scienceol/playawake/internal/tray"
	"github.com/scienceol/playawake/internal/ui"
)

var flagHeadless bool

func addRunFlags(c *cobra.Command) {
	c.Flags().BoolVar(&flagHeadless, "headless", false, "Run without a tray icon and print state changes to the terminal")
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the tracked application and keep the machine awake while it plays",
	Long: `Starts the poll loop. Every interval the tracked application is sampled;
when it starts playing the idle inhibition is asserted, when it stops the
inhibition is released.

The autostart entry is validated and repaired before the loop starts. The
interval can be changed from the tray or with "playawake interval" while
running.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	s, err := setup(cmd, !flagHeadless)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logging.FromContext(ctx)

	if flagHeadless {
		ui.Banner(version)
		fmt.Fprintln(os.Stderr)
		ui.KeyValue("Target", s.cfg.Target)
		ui.KeyValue("Strategy", s.cfg.Strategy)
	}

	store := s.settingsStore()
	current := store.Load(ctx)

	// Autostart is repaired before the loop starts. Failing to reach the
	// autorun store only disables the tray toggle.
	var reg tray.Autostart
	if r, err := s.registrar(); err != nil {
		log.Warn().Err(err).Msg("autostart unavailable")
	} else {
		outcome := r.Reconcile(ctx)
		log.Info().Stringer("outcome", outcome).Msg("autostart reconciled")
		reg = r
	}

	sig, err := activity.New(s.cfg.Strategy, s.cfg.Target)
	if err != nil {
		return err
	}

	inhibitor := power.New(ctx)
	defer func() {
		if err := inhibitor.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing inhibitor")
		}
	}()

	cell := status.NewCell()
	ctl := controller.New(sig, inhibitor, cell, controller.Options{
		Target:        s.cfg.Target,
		Interval:      current.Interval(),
		ReassertEvery: s.cfg.ReassertInterval,
	})
	// Seed the cell so the first paint carries the target and start time.
	cell.Publish(ctl.State())

	go func() {
		if err := ctl.Run(ctx); err != nil {
			log.Error().Err(err).Msg("poll loop failed")
		}
		stop()
	}()

	go func() {
		err := settings.Watch(ctx, store, current, func(st settings.Settings) {
			ctl.SetInterval(st.Interval())
		})
		if err != nil {
			log.Warn().Err(err).Msg("settings watcher stopped")
		}
	}()

	if flagHeadless {
		ui.KeyValue("Interval", current.Interval().String())
		ui.Separator()
		ui.Info("Waiting for %s...", s.cfg.Target)
		printTransitions(ctx, cell)
		fmt.Fprintln(os.Stderr)
		ui.Warn("Shutting down...")
	} else {
		tray.Run(ctx, tray.Options{
			Cell:     cell,
			Target:   s.cfg.Target,
			Interval: current.Interval(),
			OnInterval: func(d time.Duration) {
				ctl.SetInterval(d)
				// The in-memory interval stays authoritative if this fails.
				if err := store.Save(ctx, settings.Settings{CheckInterval: int(d / time.Millisecond)}); err != nil {
					log.Warn().Err(err).Msg("failed to persist interval")
				}
			},
			Autostart: reg,
			Notifier:  notify.New(s.cfg.Notify),
			OnExit:    stop,
		})
	}

	stop()
	ctl.Stop()
	<-ctl.Done()
	return nil
}

// printTransitions drains the status cell until ctx is done, printing
// only real state changes.
func printTransitions(ctx context.Context, cell *status.Cell) {
	last := status.Inactive
	for {
		select {
		case <-ctx.Done():
			return
		case <-cell.Changed():
			snap := cell.Load()
			if snap.State == last {
				continue
			}
			last = snap.State
			ui.Transition(snap.Since, snap.State == status.Active, snap.Target)
		}
	}
}
