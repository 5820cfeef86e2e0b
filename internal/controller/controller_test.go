package controller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scienceol/playawake/internal/status"
)

type mockInhibitor struct {
	mock.Mock
}

func (m *mockInhibitor) SetInhibited(active bool) error {
	return m.Called(active).Error(0)
}

func (m *mockInhibitor) Close() error {
	return m.Called().Error(0)
}

// recordingInhibitor keeps every directive it receives.
type recordingInhibitor struct {
	mu    sync.Mutex
	calls []bool
}

func (r *recordingInhibitor) SetInhibited(active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, active)
	return nil
}

func (r *recordingInhibitor) Close() error { return nil }

func (r *recordingInhibitor) last() (bool, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return false, false
	}
	return r.calls[len(r.calls)-1], true
}

// scriptSignal replays readings, then repeats the last one.
type scriptSignal struct {
	mu       sync.Mutex
	readings []bool
	i        int
}

func (s *scriptSignal) Name() string { return "script" }

func (s *scriptSignal) IsActive(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.readings) == 0 {
		return false
	}
	v := s.readings[min(s.i, len(s.readings)-1)]
	s.i++
	return v
}

// liveSignal returns whatever was last stored.
type liveSignal struct{ v atomic.Bool }

func (s *liveSignal) Name() string                  { return "live" }
func (s *liveSignal) IsActive(context.Context) bool { return s.v.Load() }

type countingSignal struct{ n *atomic.Int64 }

func (s *countingSignal) Name() string { return "counting" }
func (s *countingSignal) IsActive(context.Context) bool {
	s.n.Add(1)
	return false
}

type panicSignal struct{}

func (panicSignal) Name() string                  { return "panic" }
func (panicSignal) IsActive(context.Context) bool { panic("boom") }

type sinkRecorder struct {
	mu    sync.Mutex
	snaps []status.Snapshot
}

func (s *sinkRecorder) Publish(snap status.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func (s *sinkRecorder) states() []status.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]status.State, len(s.snaps))
	for i, snap := range s.snaps {
		out[i] = snap.State
	}
	return out
}

var nop = zerolog.Nop()

func TestTick_EdgeTriggeredScenario(t *testing.T) {
	inh := &mockInhibitor{}
	inh.On("SetInhibited", true).Return(nil).Once()
	inh.On("SetInhibited", false).Return(nil).Once()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tickN int
	sink := &sinkRecorder{}
	c := New(&scriptSignal{readings: []bool{false, false, true, true, false}}, inh, sink, Options{
		Target:        "Spotify",
		Interval:      100 * time.Millisecond,
		ReassertEvery: time.Hour,
		Now:           func() time.Time { return base.Add(time.Duration(tickN) * 100 * time.Millisecond) },
	})

	for tickN = 0; tickN < 5; tickN++ {
		c.tick(context.Background(), &nop)
	}

	inh.AssertExpectations(t)
	inh.AssertNumberOfCalls(t, "SetInhibited", 2)
	assert.Equal(t, []status.State{status.Active, status.Inactive}, sink.states())
	assert.Equal(t, base.Add(200*time.Millisecond), sink.snaps[0].Since)
	assert.Equal(t, base.Add(400*time.Millisecond), sink.snaps[1].Since)
	assert.Equal(t, "Spotify", sink.snaps[0].Target)
}

func TestTick_ReassertsWhileActive(t *testing.T) {
	inh := &recordingInhibitor{}
	c := New(&scriptSignal{readings: []bool{true, true, true, false, false}}, inh, nil, Options{Interval: time.Second})
	for i := 0; i < 5; i++ {
		c.tick(context.Background(), &nop)
	}
	assert.Equal(t, []bool{true, true, true, false}, inh.calls)
}

func TestTick_ReassertInterval(t *testing.T) {
	inh := &recordingInhibitor{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := New(&scriptSignal{readings: []bool{true}}, inh, nil, Options{
		Interval:      time.Second,
		ReassertEvery: 30 * time.Second,
		Now:           func() time.Time { return now },
	})

	for i := 0; i < 40; i++ {
		c.tick(context.Background(), &nop)
		now = now.Add(time.Second)
	}
	// initial assert at 0s, then at 30s
	assert.Len(t, inh.calls, 2)
}

func TestTick_InhibitorFailureRetried(t *testing.T) {
	inh := &mockInhibitor{}
	inh.On("SetInhibited", true).Return(errors.New("denied")).Once()
	inh.On("SetInhibited", true).Return(nil).Once()

	sink := &sinkRecorder{}
	c := New(&scriptSignal{readings: []bool{true}}, inh, sink, Options{Interval: time.Second, ReassertEvery: time.Hour})

	c.tick(context.Background(), &nop)
	assert.True(t, c.pending)
	assert.Equal(t, status.Active, c.State().State)

	c.tick(context.Background(), &nop)
	assert.False(t, c.pending)

	c.tick(context.Background(), &nop)
	inh.AssertExpectations(t)
	inh.AssertNumberOfCalls(t, "SetInhibited", 2)
}

func TestTick_PanicsAreContained(t *testing.T) {
	inh := &mockInhibitor{}
	c := New(panicSignal{}, inh, nil, Options{Interval: time.Second})

	assert.NotPanics(t, func() { c.tick(context.Background(), &nop) })
	assert.Equal(t, status.Inactive, c.State().State)
	inh.AssertNotCalled(t, "SetInhibited", mock.Anything)
}

func TestRun_ReleasesOnStop(t *testing.T) {
	sig := &liveSignal{}
	sig.v.Store(true)
	inh := &recordingInhibitor{}
	cell := status.NewCell()
	c := New(sig, inh, cell, Options{Interval: 5 * time.Millisecond})

	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		return c.State().State == status.Active
	}, time.Second, time.Millisecond)

	c.Stop()
	c.Stop()
	<-c.Done()
	require.NoError(t, <-errCh)

	last, ok := inh.last()
	require.True(t, ok)
	assert.False(t, last)
	assert.Equal(t, status.Inactive, cell.Load().State)
}

func TestRun_ReleasesOnCancel(t *testing.T) {
	sig := &liveSignal{}
	sig.v.Store(true)
	inh := &mockInhibitor{}
	inh.On("SetInhibited", true).Return(nil)
	inh.On("SetInhibited", false).Return(nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	c := New(sig, inh, nil, Options{Interval: 5 * time.Millisecond})
	go func() { _ = c.Run(ctx) }()

	require.Eventually(t, func() bool { return c.State().State == status.Active }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller did not stop")
	}
	inh.AssertCalled(t, "SetInhibited", false)
}

func TestRun_BoundedLatency(t *testing.T) {
	sig := &liveSignal{}
	inh := &recordingInhibitor{}
	c := New(sig, inh, nil, Options{Interval: 10 * time.Millisecond})
	go func() { _ = c.Run(context.Background()) }()
	defer func() {
		c.Stop()
		<-c.Done()
	}()

	for _, want := range []bool{true, false, true, false} {
		sig.v.Store(want)
		require.Eventually(t, func() bool {
			got, ok := inh.last()
			return ok && got == want
		}, 200*time.Millisecond, time.Millisecond)
	}
}

func TestRun_IntervalChangeTakesEffect(t *testing.T) {
	sig := &liveSignal{}
	inh := &recordingInhibitor{}
	c := New(sig, inh, nil, Options{Interval: time.Hour})
	go func() { _ = c.Run(context.Background()) }()
	defer func() {
		c.Stop()
		<-c.Done()
	}()

	// let the immediate first tick pass, then flip the signal
	require.Eventually(t, func() bool { return c.started.Load() }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	sig.v.Store(true)

	c.SetInterval(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, c.Interval())
	require.Eventually(t, func() bool {
		return c.State().State == status.Active
	}, time.Second, time.Millisecond)
}

func TestRun_Twice(t *testing.T) {
	c := New(&liveSignal{}, &recordingInhibitor{}, nil, Options{Interval: time.Millisecond})
	go func() { _ = c.Run(context.Background()) }()
	require.Eventually(t, func() bool { return c.started.Load() }, time.Second, time.Millisecond)

	assert.ErrorIs(t, c.Run(context.Background()), ErrAlreadyRunning)
	c.Stop()
	<-c.Done()
}

func TestNew_DefaultsNonPositiveInterval(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second, time.Duration(-1 << 62)} {
		c := New(&liveSignal{}, &recordingInhibitor{}, nil, Options{Interval: d})
		assert.Equal(t, DefaultInterval, c.Interval(), d.String())
	}
}

func TestRun_NonPositiveIntervalDoesNotSpin(t *testing.T) {
	var ticks atomic.Int64
	sig := &countingSignal{n: &ticks}
	c := New(sig, &recordingInhibitor{}, nil, Options{Interval: -time.Hour})
	go func() { _ = c.Run(context.Background()) }()

	time.Sleep(100 * time.Millisecond)
	c.Stop()
	<-c.Done()

	// only the immediate first tick fits in 100ms with the default interval
	assert.Equal(t, int64(1), ticks.Load())
}

func TestState_SeedsCellBeforeRun(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(&liveSignal{}, &recordingInhibitor{}, nil, Options{
		Target: "Spotify",
		Now:    func() time.Time { return start },
	})

	cell := status.NewCell()
	cell.Publish(c.State())

	snap := cell.Load()
	assert.Equal(t, status.Inactive, snap.State)
	assert.Equal(t, "Spotify", snap.Target)
	assert.Equal(t, start, snap.Since)
}

func TestSetInterval_IgnoresNonPositive(t *testing.T) {
	c := New(&liveSignal{}, &recordingInhibitor{}, nil, Options{Interval: time.Second})
	c.SetInterval(0)
	c.SetInterval(-time.Second)
	assert.Equal(t, time.Second, c.Interval())
}
