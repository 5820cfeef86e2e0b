//go:build windows

package power

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"

	"github.com/scienceol/playawake/internal/logging"
)

const (
	esSystemRequired  uint32 = 0x00000001
	esDisplayRequired uint32 = 0x00000002
	esContinuous      uint32 = 0x80000000
)

var (
	kernel32                    = windows.NewLazySystemDLL("kernel32.dll")
	procSetThreadExecutionState = kernel32.NewProc("SetThreadExecutionState")
)

// windowsInhibitor sets the calling thread's execution state. The state is
// per OS thread, so callers must issue every directive from one locked
// thread (the controller does).
type windowsInhibitor struct {
	log *zerolog.Logger
}

func newInhibitor(ctx context.Context) Inhibitor {
	return &windowsInhibitor{log: logging.FromContext(ctx)}
}

func (w *windowsInhibitor) SetInhibited(active bool) error {
	flags := executionState(DirectiveFlags(active))
	prev, _, callErr := procSetThreadExecutionState.Call(uintptr(flags))
	if prev == 0 {
		return fmt.Errorf("SetThreadExecutionState(%#x) failed: %w", flags, callErr)
	}
	w.log.Trace().Uint32("flags", flags).Uint32("previous", uint32(prev)).Msg("execution state set")
	return nil
}

func (w *windowsInhibitor) Close() error {
	return w.SetInhibited(false)
}

func executionState(f Flags) uint32 {
	var es uint32
	if f.Has(FlagContinuous) {
		es |= esContinuous
	}
	if f.Has(FlagSystem) {
		es |= esSystemRequired
	}
	if f.Has(FlagDisplay) {
		es |= esDisplayRequired
	}
	return es
}
