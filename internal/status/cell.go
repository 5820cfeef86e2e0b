// Package status hands the controller's state to whatever surface displays
// it. The worker publishes; the surface drains. Nothing flows the other way.
package status

import (
	"sync/atomic"
	"time"
)

// State is the activity state owned by the controller.
type State int

const (
	Inactive State = iota
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// Snapshot is one published state.
type Snapshot struct {
	State  State
	Since  time.Time
	Target string
}

// Cell is a single-slot latest-value cell. Publishing never blocks; a burst
// of publishes before the reader wakes up coalesces into one wakeup and the
// reader sees the last value.
type Cell struct {
	latest  atomic.Pointer[Snapshot]
	changed chan struct{}
}

// NewCell creates an empty cell. Load returns the zero Snapshot until the
// first Publish.
func NewCell() *Cell {
	return &Cell{changed: make(chan struct{}, 1)}
}

// Publish stores s and wakes the reader.
func (c *Cell) Publish(s Snapshot) {
	c.latest.Store(&s)
	select {
	case c.changed <- struct{}{}:
	default:
		// wakeup already pending
	}
}

// Load returns the latest published snapshot.
func (c *Cell) Load() Snapshot {
	if s := c.latest.Load(); s != nil {
		return *s
	}
	return Snapshot{}
}

// Changed fires after one or more publishes.
func (c *Cell) Changed() <-chan struct{} {
	return c.changed
}
