//go:build linux

package power

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/coreos/go-systemd/v22/login1"
	"github.com/rs/zerolog"

	"github.com/scienceol/playawake/internal/logging"
)

const (
	inhibitWho = "playawake"
	inhibitWhy = "Media is currently playing"
)

// linuxInhibitor holds a logind block inhibitor while active. When logind
// is unreachable it falls back to a systemd-inhibit child.
type linuxInhibitor struct {
	log *zerolog.Logger

	mu    sync.Mutex
	lock  *os.File
	child *heldChild
}

func newInhibitor(ctx context.Context) Inhibitor {
	return &linuxInhibitor{log: logging.FromContext(ctx)}
}

func (l *linuxInhibitor) SetInhibited(active bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !active {
		l.releaseLocked()
		return nil
	}

	if l.lock != nil {
		return nil // held; the fd stays valid until we close it
	}
	if l.child != nil {
		if l.child.alive() {
			return nil
		}
		l.log.Warn().Msg("systemd-inhibit exited, re-acquiring")
		l.child = nil
	}

	what := inhibitWhat(DirectiveFlags(true))
	lockErr := l.acquireLogind(what)
	if lockErr == nil {
		return nil
	}
	l.log.Debug().Err(lockErr).Msg("logind inhibit unavailable, trying systemd-inhibit")

	if err := l.spawnFallback(what); err != nil {
		return fmt.Errorf("inhibit %s: %w (logind: %v)", what, err, lockErr)
	}
	return nil
}

func (l *linuxInhibitor) acquireLogind(what string) error {
	conn, err := login1.New()
	if err != nil {
		return fmt.Errorf("connect to logind: %w", err)
	}
	// The inhibitor lives as long as the returned fd, not the connection.
	defer conn.Close()

	f, err := conn.Inhibit(what, inhibitWho, inhibitWhy, "block")
	if err != nil {
		return fmt.Errorf("acquire inhibit lock: %w", err)
	}
	l.lock = f
	l.log.Debug().Str("what", what).Msg("logind inhibit lock acquired")
	return nil
}

func (l *linuxInhibitor) spawnFallback(what string) error {
	path, err := exec.LookPath("systemd-inhibit")
	if err != nil {
		return fmt.Errorf("systemd-inhibit not found: %w", err)
	}

	cmd := exec.Command(path,
		"--what="+what,
		"--who="+inhibitWho,
		"--why="+inhibitWhy,
		"--mode=block",
		"sleep", "infinity",
	)
	// Kernel sends SIGTERM to child when parent dies, so a crash cannot
	// leave the machine pinned awake.
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}

	child, err := startChild(cmd)
	if err != nil {
		return err
	}
	l.child = child
	l.log.Debug().Str("what", what).Msg("systemd-inhibit started")
	return nil
}

func (l *linuxInhibitor) releaseLocked() {
	if l.lock != nil {
		if err := l.lock.Close(); err != nil {
			l.log.Warn().Err(err).Msg("error releasing inhibit lock")
		}
		l.lock = nil
	}
	if l.child != nil {
		l.child.stop()
		l.child = nil
	}
}

func (l *linuxInhibitor) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked()
	return nil
}

// inhibitWhat maps directive flags onto logind inhibitor kinds.
func inhibitWhat(f Flags) string {
	var what []string
	if f.Has(FlagDisplay) {
		what = append(what, "idle")
	}
	if f.Has(FlagSystem) {
		what = append(what, "sleep")
	}
	return strings.Join(what, ":")
}
