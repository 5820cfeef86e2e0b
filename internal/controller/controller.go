// Package controller runs the poll loop that turns activity readings into
// idle-inhibition directives.
package controller

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/scienceol/playawake/internal/activity"
	"github.com/scienceol/playawake/internal/logging"
	"github.com/scienceol/playawake/internal/power"
	"github.com/scienceol/playawake/internal/status"
)

// DefaultInterval is used when Options.Interval is not positive.
const DefaultInterval = 2 * time.Second

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("controller already running")

// Sink receives every state change. status.Cell implements it; the worker
// never touches a UI directly.
type Sink interface {
	Publish(status.Snapshot)
}

type Options struct {
	// Target is copied into published snapshots.
	Target string
	// Interval between ticks. Changed at runtime with SetInterval.
	Interval time.Duration
	// ReassertEvery re-issues the active directive while nothing changes.
	// Zero re-asserts on every active tick.
	ReassertEvery time.Duration
	Now           func() time.Time
}

// Controller owns the Active/Inactive state. Only the Run goroutine mutates
// it; everything else reads snapshots.
type Controller struct {
	signal    activity.Signal
	inhibitor power.Inhibitor
	sink      Sink
	opts      Options

	interval atomic.Int64
	snapshot atomic.Pointer[status.Snapshot]
	nudge    chan struct{}

	started atomic.Bool
	stopCh  chan struct{}
	once    sync.Once
	done    chan struct{}

	// loop state, Run goroutine only
	active     bool
	pending    bool
	lastAssert time.Time
}

func New(signal activity.Signal, inhibitor power.Inhibitor, sink Sink, opts Options) *Controller {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	c := &Controller{
		signal:    signal,
		inhibitor: inhibitor,
		sink:      sink,
		opts:      opts,
		nudge:     make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
	c.SetInterval(opts.Interval)
	c.snapshot.Store(&status.Snapshot{State: status.Inactive, Since: opts.Now(), Target: opts.Target})
	return c
}

// Interval returns the current tick interval.
func (c *Controller) Interval() time.Duration {
	return time.Duration(c.interval.Load())
}

// SetInterval changes the tick interval. The running loop picks it up
// without waiting for the old interval to elapse. Non-positive values are
// ignored.
func (c *Controller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	if time.Duration(c.interval.Swap(int64(d))) == d {
		return
	}
	select {
	case c.nudge <- struct{}{}:
	default:
	}
}

// State returns the latest snapshot.
func (c *Controller) State() status.Snapshot {
	return *c.snapshot.Load()
}

// Stop asks Run to return. Safe to call more than once.
func (c *Controller) Stop() {
	c.once.Do(func() {
		close(c.stopCh)
	})
}

// Done is closed once Run has returned and the directive is released.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run ticks until ctx is done or Stop is called. Every exit path, a panic
// included, releases the inhibitor and publishes Inactive.
func (c *Controller) Run(ctx context.Context) (err error) {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	// Windows execution state belongs to the calling thread; every
	// directive, including the final release, must come from the same one.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ctx = logging.WithComponent(ctx, "controller")
	log := logging.FromContext(ctx)

	defer close(c.done)
	defer c.release(log)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("controller panic: %v", r)
			log.Error().Interface("panic", r).Msg("poll loop crashed")
		}
	}()

	log.Info().
		Str("signal", c.signal.Name()).
		Dur("interval", c.Interval()).
		Msg("poll loop started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.stopCh:
			return nil
		case <-c.nudge:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(c.Interval())
			log.Debug().Dur("interval", c.Interval()).Msg("interval changed")
			continue
		case <-timer.C:
		}

		c.tick(ctx, log)
		timer.Reset(c.Interval())
	}
}

func (c *Controller) tick(ctx context.Context, log *zerolog.Logger) {
	now := c.opts.Now()
	active := c.read(ctx, log)

	switch {
	case active != c.active:
		c.active = active
		log.Info().Bool("active", active).Msg("activity changed")
		c.assert(log, active, now)
		c.publish(now)

	case active && (c.pending || c.reassertDue(now)):
		c.assert(log, true, now)

	case !active && c.pending:
		c.assert(log, false, now)
	}
}

func (c *Controller) reassertDue(now time.Time) bool {
	return c.opts.ReassertEvery <= 0 || now.Sub(c.lastAssert) >= c.opts.ReassertEvery
}

// read samples the signal. A panic counts as no activity.
func (c *Controller) read(ctx context.Context, log *zerolog.Logger) (active bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("activity signal panicked")
			active = false
		}
	}()
	return c.signal.IsActive(ctx)
}

// assert issues one directive. A failure is retried on the next tick.
func (c *Controller) assert(log *zerolog.Logger, active bool, now time.Time) {
	if err := c.setInhibited(active); err != nil {
		c.pending = true
		log.Warn().Err(err).Bool("active", active).Msg("failed to set idle inhibition")
		return
	}
	c.pending = false
	c.lastAssert = now
}

func (c *Controller) setInhibited(active bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("inhibitor panic: %v", r)
		}
	}()
	return c.inhibitor.SetInhibited(active)
}

func (c *Controller) publish(now time.Time) {
	st := status.Inactive
	if c.active {
		st = status.Active
	}
	snap := status.Snapshot{State: st, Since: now, Target: c.opts.Target}
	c.snapshot.Store(&snap)
	if c.sink != nil {
		c.sink.Publish(snap)
	}
}

func (c *Controller) release(log *zerolog.Logger) {
	if err := c.setInhibited(false); err != nil {
		log.Error().Err(err).Msg("failed to release idle inhibition")
	}
	c.active = false
	c.pending = false
	c.publish(c.opts.Now())
	log.Info().Msg("poll loop stopped")
}
