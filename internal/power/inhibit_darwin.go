//go:build darwin

package power

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/scienceol/playawake/internal/logging"
)

type darwinInhibitor struct {
	log *zerolog.Logger

	mu    sync.Mutex
	child *heldChild
}

func newInhibitor(ctx context.Context) Inhibitor {
	return &darwinInhibitor{log: logging.FromContext(ctx)}
}

func (d *darwinInhibitor) SetInhibited(active bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !active {
		d.releaseLocked()
		return nil
	}

	if d.child != nil {
		if d.child.alive() {
			return nil // already running
		}
		d.log.Warn().Msg("caffeinate exited, restarting")
		d.child = nil
	}

	path, err := exec.LookPath("caffeinate")
	if err != nil {
		return fmt.Errorf("caffeinate not found: %w", err)
	}

	child, err := startChild(exec.Command(path, caffeinateArgs(DirectiveFlags(true), os.Getpid())...))
	if err != nil {
		return err
	}
	d.child = child
	return nil
}

func (d *darwinInhibitor) releaseLocked() {
	if d.child != nil {
		d.child.stop()
		d.child = nil
	}
}

func (d *darwinInhibitor) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releaseLocked()
	return nil
}

// caffeinateArgs maps directive flags onto caffeinate switches.
// -d: prevent display sleep
// -i: prevent idle sleep
// -s: prevent system sleep (AC power)
// -w <pid>: exit automatically when this process dies
func caffeinateArgs(f Flags, pid int) []string {
	sw := "-"
	if f.Has(FlagDisplay) {
		sw += "d"
	}
	if f.Has(FlagSystem) {
		sw += "is"
	}
	return []string{sw, "-w", strconv.Itoa(pid)}
}
