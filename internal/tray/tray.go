// Package tray is the system tray surface. It reads the controller's state
// from a status.Cell and forwards user choices back through callbacks; it
// never runs on the poll loop's goroutine.
package tray

import (
	"context"
	"fmt"
	"time"

	"fyne.io/systray"

	"github.com/scienceol/playawake/internal/logging"
	"github.com/scienceol/playawake/internal/notify"
	"github.com/scienceol/playawake/internal/status"
)

// Intervals offered in the "Check interval" submenu.
var Intervals = []time.Duration{
	1 * time.Second,
	2 * time.Second,
	5 * time.Second,
	10 * time.Second,
	30 * time.Second,
	1 * time.Minute,
	5 * time.Minute,
}

// Autostart is the registration the "Start with system" item toggles.
type Autostart interface {
	IsRegistered() bool
	Register() error
	Unregister() error
}

type Options struct {
	Cell     *status.Cell
	Target   string
	Interval time.Duration

	// OnInterval persists and applies a new interval chosen from the menu.
	OnInterval func(time.Duration)
	Autostart  Autostart
	Notifier   *notify.Notifier
	// OnExit runs when the user picks Exit, before the tray quits.
	OnExit func()
}

// Run blocks on the tray event loop until Exit is chosen or ctx is done.
// It must be called from the main goroutine.
func Run(ctx context.Context, opts Options) {
	ctx = logging.WithComponent(ctx, "tray")
	systray.Run(func() { onReady(ctx, opts) }, func() {
		logging.FromContext(ctx).Debug().Msg("tray exited")
	})
}

type menu struct {
	status    *systray.MenuItem
	intervals []*systray.MenuItem
	autostart *systray.MenuItem
	quit      *systray.MenuItem
}

func onReady(ctx context.Context, opts Options) {
	systray.SetIcon(iconFor(false))
	systray.SetTitle("PlayAwake")

	m := &menu{}
	m.status = systray.AddMenuItem(statusLine(opts.Cell.Load(), opts.Target), "")
	m.status.Disable()

	parent := systray.AddMenuItem("Check interval", "How often to look for "+opts.Target)
	for _, d := range Intervals {
		m.intervals = append(m.intervals, parent.AddSubMenuItemCheckbox(intervalLabel(d), "", d == opts.Interval))
	}

	registered := opts.Autostart != nil && opts.Autostart.IsRegistered()
	m.autostart = systray.AddMenuItemCheckbox("Start with system", "Launch PlayAwake at login", registered)
	systray.AddSeparator()
	m.quit = systray.AddMenuItem("Exit", "Release the wake lock and quit")

	repaint(m, opts.Cell.Load(), opts.Target)
	go loop(ctx, m, opts)
}

func loop(ctx context.Context, m *menu, opts Options) {
	log := logging.FromContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	clicks := make([]chan struct{}, len(m.intervals))
	for i, item := range m.intervals {
		clicks[i] = item.ClickedCh
	}
	picked := make(chan int)
	forwardClicks(ctx, clicks, picked)

	for {
		select {
		case <-ctx.Done():
			systray.Quit()
			return

		case <-opts.Cell.Changed():
			repaint(m, opts.Cell.Load(), opts.Target)

		case i := <-picked:
			d := Intervals[i]
			for j, item := range m.intervals {
				if j == i {
					item.Check()
				} else {
					item.Uncheck()
				}
			}
			log.Info().Dur("interval", d).Msg("interval chosen")
			if opts.OnInterval != nil {
				opts.OnInterval(d)
			}

		case <-m.autostart.ClickedCh:
			toggleAutostart(ctx, m.autostart, opts)

		case <-m.quit.ClickedCh:
			log.Info().Msg("exit requested")
			if opts.OnExit != nil {
				opts.OnExit()
			}
			systray.Quit()
			return
		}
	}
}

// forwardClicks sends the index of each clicked item to picked. The
// forwarders exit once ctx is done, even mid-send.
func forwardClicks(ctx context.Context, clicks []chan struct{}, picked chan<- int) {
	for i, ch := range clicks {
		i, ch := i, ch
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-ch:
					select {
					case picked <- i:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}
}

func toggleAutostart(ctx context.Context, item *systray.MenuItem, opts Options) {
	if opts.Autostart == nil {
		return
	}
	var err error
	if item.Checked() {
		err = opts.Autostart.Unregister()
	} else {
		err = opts.Autostart.Register()
	}
	if err != nil && opts.Notifier != nil {
		opts.Notifier.Show(ctx, "Start with system", fmt.Sprintf("Could not change the autostart entry: %v", err))
	}
	if opts.Autostart.IsRegistered() {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func repaint(m *menu, snap status.Snapshot, target string) {
	active := snap.State == status.Active
	systray.SetIcon(iconFor(active))
	systray.SetTooltip(tooltip(snap, target))
	m.status.SetTitle(statusLine(snap, target))
}

func statusLine(snap status.Snapshot, target string) string {
	if snap.State == status.Active {
		return fmt.Sprintf("%s playing since %s", target, snap.Since.Local().Format("15:04"))
	}
	return "Waiting for " + target
}

func tooltip(snap status.Snapshot, target string) string {
	if snap.State == status.Active {
		return "PlayAwake: keeping awake for " + target
	}
	return "PlayAwake: idle"
}

func intervalLabel(d time.Duration) string {
	switch {
	case d < time.Minute:
		return plural(int(d/time.Second), "second")
	default:
		return plural(int(d/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
