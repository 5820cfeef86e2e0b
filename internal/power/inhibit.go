package power

import (
	"context"
	"strings"
)

// Flags is the set of requirements carried by one directive.
type Flags uint8

const (
	// FlagSystem keeps the machine from idle sleep.
	FlagSystem Flags = 1 << iota
	// FlagDisplay keeps the display from dimming or blanking.
	FlagDisplay
	// FlagContinuous marks the directive as the new standing state rather
	// than a one-shot nudge. Every directive carries it.
	FlagContinuous
)

func (f Flags) Has(o Flags) bool { return f&o == o }

func (f Flags) String() string {
	var parts []string
	if f.Has(FlagContinuous) {
		parts = append(parts, "continuous")
	}
	if f.Has(FlagSystem) {
		parts = append(parts, "system")
	}
	if f.Has(FlagDisplay) {
		parts = append(parts, "display")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// DirectiveFlags returns the flags asserted for the given activity state.
func DirectiveFlags(active bool) Flags {
	if active {
		return FlagContinuous | FlagSystem | FlagDisplay
	}
	return FlagContinuous
}

// Inhibitor asserts or releases the OS "stay awake" directive.
type Inhibitor interface {
	// SetInhibited asserts the directive for active. The directive is level
	// triggered: callers re-assert it while active, and implementations
	// treat a repeated call as a cheap health check of what they hold.
	// Errors are non-fatal; the next call retries.
	SetInhibited(active bool) error

	// Close releases everything. Safe to call multiple times.
	Close() error
}

// New returns a platform-appropriate Inhibitor.
// See inhibit_windows.go, inhibit_darwin.go, inhibit_linux.go, inhibit_other.go.
func New(ctx context.Context) Inhibitor {
	return newInhibitor(ctx)
}
