// Package activity answers one question: is the tracked application doing
// its thing right now? Every strategy is approximate and every strategy
// fails safe: errors and panics read as "not active".
package activity

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/scienceol/playawake/internal/config"
	"github.com/scienceol/playawake/internal/logging"
)

// Signal reports whether the tracked activity is happening. IsActive has no
// side effects and never panics.
type Signal interface {
	IsActive(ctx context.Context) bool
	Name() string
}

// New returns the strategy named by config.Strategy* for target, wired to
// the platform process table, window list and audio source.
func New(strategy, target string) (Signal, error) {
	procs := NewProcessLister()
	var s Signal
	switch strategy {
	case config.StrategyProcess:
		s = NewProcessSignal(target, procs)
	case config.StrategyWindow:
		s = NewWindowTitleSignal(target, procs, NewWindowLister())
	case config.StrategyAudio:
		s = NewAudioSignal(target, newPlatformSource(), NewProcessSignal(target, procs))
	default:
		return nil, fmt.Errorf("unknown detection strategy %q", strategy)
	}
	return Guard(s), nil
}

// Guard wraps s so a panic inside IsActive reads as false.
func Guard(s Signal) Signal {
	if _, ok := s.(guarded); ok {
		return s
	}
	return guarded{inner: s}
}

type guarded struct {
	inner Signal
}

func (g guarded) Name() string { return g.inner.Name() }

func (g guarded) IsActive(ctx context.Context) (active bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.FromContext(ctx).Error().
				Str("strategy", g.inner.Name()).
				Interface("panic", r).
				Msg("activity detection panicked")
			active = false
		}
	}()
	return g.inner.IsActive(ctx)
}

// normalizeName folds an executable or app name for comparison:
// "C:\Apps\Spotify.exe", "Spotify.exe" and "spotify" are all "spotify".
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ToLower(name)
	return strings.TrimSuffix(name, ".exe")
}

func sameApp(a, b string) bool {
	return normalizeName(a) == normalizeName(b)
}
