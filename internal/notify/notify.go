// Package notify shows a one-shot message when an action the user asked
// for fails. Background failures never come through here.
package notify

import (
	"context"

	"github.com/scienceol/playawake/internal/logging"
)

const appName = "PlayAwake"

// Notifier delivers messages without blocking the caller.
type Notifier struct {
	enabled bool
	show    func(title, message string) error
}

// New returns a Notifier using the platform mechanism. A disabled
// Notifier only logs.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled, show: show}
}

// Show displays message in the background. Delivery errors are logged.
func (n *Notifier) Show(ctx context.Context, title, message string) {
	log := logging.FromContext(ctx)
	log.Warn().Str("title", title).Msg(message)
	if !n.enabled {
		return
	}
	go func() {
		if err := n.show(title, message); err != nil {
			log.Debug().Err(err).Msg("notification not delivered")
		}
	}()
}
