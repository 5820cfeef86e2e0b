//go:build linux

package activity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisPath       = "/org/mpris/MediaPlayer2"
	mprisStatusProp = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
)

func newPlatformSource() AudioSource {
	return &mprisSource{}
}

// mprisSource reads the target player's MPRIS PlaybackStatus from the
// session bus. Players register as org.mpris.MediaPlayer2.<name>[.instanceN].
type mprisSource struct {
	mu   sync.Mutex
	conn *dbus.Conn
}

func (p *mprisSource) Playing(ctx context.Context, target string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return false, fmt.Errorf("%w: session bus: %v", ErrAudioUnavailable, err)
		}
		p.conn = conn
	}

	var names []string
	if err := p.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		p.drop()
		return false, fmt.Errorf("%w: list names: %v", ErrAudioUnavailable, err)
	}

	found := false
	for _, name := range names {
		if !mprisMatches(name, target) {
			continue
		}
		found = true
		v, err := p.conn.Object(name, mprisPath).GetProperty(mprisStatusProp)
		if err != nil {
			continue
		}
		if status, ok := v.Value().(string); ok && status == "Playing" {
			return true, nil
		}
	}
	if !found {
		return false, fmt.Errorf("%w: no media session for %s", ErrAudioUnavailable, target)
	}
	return false, nil
}

func (p *mprisSource) drop() {
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// mprisMatches reports whether bus name belongs to target's player.
func mprisMatches(name, target string) bool {
	if !strings.HasPrefix(name, mprisPrefix) {
		return false
	}
	player := strings.TrimPrefix(name, mprisPrefix)
	if i := strings.IndexByte(player, '.'); i >= 0 {
		player = player[:i]
	}
	return sameApp(player, target)
}
