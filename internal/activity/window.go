package activity

import (
	"context"
	"strconv"
	"strings"

	"github.com/scienceol/playawake/internal/logging"
)

// Window is a visible top-level window.
type Window struct {
	PID   int32
	Title string
}

// WindowLister enumerates top-level windows.
type WindowLister interface {
	Windows(ctx context.Context) ([]Window, error)
}

// WindowTitleSignal is active while a matching process owns a window whose
// title is something other than the bare app name. Players typically show
// "Artist - Track" while playing and their own name when idle.
type WindowTitleSignal struct {
	target  string
	procs   ProcessLister
	windows WindowLister
}

// NewWindowTitleSignal creates the window-title strategy.
func NewWindowTitleSignal(target string, procs ProcessLister, windows WindowLister) *WindowTitleSignal {
	return &WindowTitleSignal{target: target, procs: procs, windows: windows}
}

func (s *WindowTitleSignal) Name() string { return "window" }

func (s *WindowTitleSignal) IsActive(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	pids, err := matchingPIDs(ctx, s.procs, s.target)
	if err != nil {
		log.Debug().Err(err).Msg("process check failed")
		return false
	}
	if len(pids) == 0 {
		return false
	}

	wins, err := s.windows.Windows(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("window enumeration failed")
		return false
	}
	for _, w := range wins {
		if _, ok := pids[w.PID]; !ok {
			continue
		}
		if titleSuggestsPlayback(w.Title, s.target) {
			return true
		}
	}
	return false
}

func titleSuggestsPlayback(title, target string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	return !strings.EqualFold(title, normalizeTitle(target))
}

// normalizeTitle strips a trailing .exe so "Spotify.exe" compares against
// a "Spotify" window title.
func normalizeTitle(target string) string {
	t := strings.TrimSpace(target)
	if strings.HasSuffix(strings.ToLower(t), ".exe") {
		t = t[:len(t)-4]
	}
	return t
}

// parseWmctrl reads `wmctrl -lp` output:
//
//	0x03a00003  0 12345  host Artist - Track
func parseWmctrl(out string) []Window {
	var wins []Window
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		pid, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil || pid <= 0 {
			continue
		}
		// title is everything after the host column, internal spacing kept
		rest := line
		for i := 0; i < 4; i++ {
			rest = strings.TrimLeft(rest, " \t")
			if idx := strings.IndexAny(rest, " \t"); idx >= 0 {
				rest = rest[idx:]
			} else {
				rest = ""
			}
		}
		wins = append(wins, Window{PID: int32(pid), Title: strings.TrimSpace(rest)})
	}
	return wins
}
