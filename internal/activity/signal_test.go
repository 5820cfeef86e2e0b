package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scienceol/playawake/internal/config"
)

type fakeProcs struct {
	list  []Process
	err   error
	calls int
}

func (f *fakeProcs) Processes(context.Context) ([]Process, error) {
	f.calls++
	return f.list, f.err
}

type fakeWindows struct {
	list  []Window
	err   error
	calls int
}

func (f *fakeWindows) Windows(context.Context) ([]Window, error) {
	f.calls++
	return f.list, f.err
}

type fakeSignal struct {
	active bool
	calls  int
}

func (f *fakeSignal) Name() string { return "fake" }
func (f *fakeSignal) IsActive(context.Context) bool {
	f.calls++
	return f.active
}

type panicSignal struct{}

func (panicSignal) Name() string                  { return "panic" }
func (panicSignal) IsActive(context.Context) bool { panic("enumeration exploded") }

func TestProcessSignal(t *testing.T) {
	tests := []struct {
		name   string
		procs  *fakeProcs
		target string
		want   bool
	}{
		{"exact name", &fakeProcs{list: []Process{{PID: 1, Name: "Spotify"}}}, "Spotify", true},
		{"windows exe", &fakeProcs{list: []Process{{PID: 1, Name: "Spotify.exe"}}}, "Spotify", true},
		{"case folded", &fakeProcs{list: []Process{{PID: 1, Name: "spotify"}}}, "Spotify.exe", true},
		{"other process", &fakeProcs{list: []Process{{PID: 1, Name: "spotifyd-helper"}}}, "Spotify", false},
		{"empty table", &fakeProcs{}, "Spotify", false},
		{"enumeration error", &fakeProcs{err: errors.New("access denied")}, "Spotify", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProcessSignal(tt.target, tt.procs)
			assert.Equal(t, tt.want, s.IsActive(context.Background()))
		})
	}
}

func TestWindowTitleSignal_AnyMatch(t *testing.T) {
	procs := &fakeProcs{list: []Process{
		{PID: 10, Name: "Spotify.exe"},
		{PID: 11, Name: "Spotify.exe"},
		{PID: 12, Name: "explorer.exe"},
	}}
	wins := &fakeWindows{list: []Window{
		{PID: 10, Title: "Spotify"},
		{PID: 11, Title: "Daft Punk - Veridis Quo"},
	}}

	s := NewWindowTitleSignal("Spotify", procs, wins)
	assert.True(t, s.IsActive(context.Background()))
}

func TestWindowTitleSignal_Inactive(t *testing.T) {
	tests := []struct {
		name        string
		procs       *fakeProcs
		wins        *fakeWindows
		wantWinCall bool
	}{
		{
			name:        "only bare titles",
			procs:       &fakeProcs{list: []Process{{PID: 10, Name: "Spotify.exe"}, {PID: 11, Name: "Spotify.exe"}}},
			wins:        &fakeWindows{list: []Window{{PID: 10, Title: "Spotify"}, {PID: 11, Title: "spotify"}, {PID: 11, Title: ""}}},
			wantWinCall: true,
		},
		{
			name:        "title belongs to another process",
			procs:       &fakeProcs{list: []Process{{PID: 10, Name: "Spotify.exe"}}},
			wins:        &fakeWindows{list: []Window{{PID: 99, Title: "Some Song"}}},
			wantWinCall: true,
		},
		{
			name:        "process not running",
			procs:       &fakeProcs{list: []Process{{PID: 12, Name: "explorer.exe"}}},
			wins:        &fakeWindows{list: []Window{{PID: 12, Title: "Downloads"}}},
			wantWinCall: false,
		},
		{
			name:        "window enumeration fails",
			procs:       &fakeProcs{list: []Process{{PID: 10, Name: "Spotify.exe"}}},
			wins:        &fakeWindows{err: errors.New("no display")},
			wantWinCall: true,
		},
		{
			name:        "process enumeration fails",
			procs:       &fakeProcs{err: errors.New("boom")},
			wins:        &fakeWindows{},
			wantWinCall: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWindowTitleSignal("Spotify", tt.procs, tt.wins)
			assert.False(t, s.IsActive(context.Background()))
			assert.Equal(t, tt.wantWinCall, tt.wins.calls > 0)
		})
	}
}

func TestGuard_RecoversPanic(t *testing.T) {
	s := Guard(panicSignal{})
	assert.NotPanics(t, func() {
		assert.False(t, s.IsActive(context.Background()))
	})
	assert.Equal(t, "panic", s.Name())
	// wrapping twice is a no-op
	assert.Equal(t, s, Guard(s))
}

type fakeSource struct {
	playing bool
	err     error
	calls   int
}

func (f *fakeSource) Playing(context.Context, string) (bool, error) {
	f.calls++
	return f.playing, f.err
}

func TestAudioSignal_UsesSource(t *testing.T) {
	source := &fakeSource{playing: true}
	fallback := &fakeSignal{active: false}
	s := NewAudioSignal("Spotify", source, fallback)

	assert.True(t, s.IsActive(context.Background()))
	assert.Equal(t, 1, source.calls)
	assert.Zero(t, fallback.calls)

	source.playing = false
	assert.False(t, s.IsActive(context.Background()))
	assert.Zero(t, fallback.calls)
}

func TestAudioSignal_FallsBackWithBackoff(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeSource{err: ErrAudioUnavailable}
	fallback := &fakeSignal{active: true}
	s := NewAudioSignal("Spotify", source, fallback)
	s.now = func() time.Time { return now }

	assert.True(t, s.IsActive(context.Background()))
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 1, fallback.calls)

	// still inside the backoff window: the source is not asked again
	now = now.Add(500 * time.Millisecond)
	assert.True(t, s.IsActive(context.Background()))
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 2, fallback.calls)

	// the source recovers once the window has passed
	now = now.Add(maxBackoff)
	source.err = nil
	source.playing = false
	assert.False(t, s.IsActive(context.Background()))
	assert.Equal(t, 2, source.calls)
	assert.Equal(t, 2, fallback.calls)
}

func TestBackoff_Bounds(t *testing.T) {
	var b backoff
	for i := 0; i < 20; i++ {
		d := b.nextDelay()
		require.GreaterOrEqual(t, d, minBackoff)
		require.LessOrEqual(t, d, maxBackoff)
	}
	b.reset()
	assert.Zero(t, b.attempt)
	assert.True(t, b.ready(time.Now()))
}

func TestParseWmctrl(t *testing.T) {
	out := "0x03a00003  0 4242   myhost Daft Punk - Veridis  Quo\n" +
		"0x01e00006 -1 1      myhost Desktop\n" +
		"0x02000001  0 0      myhost N/A\n" +
		"garbage\n" +
		"0x04400003  0 5151   myhost \n"

	got := parseWmctrl(out)
	require.Len(t, got, 3)
	assert.Equal(t, Window{PID: 4242, Title: "Daft Punk - Veridis  Quo"}, got[0])
	assert.Equal(t, Window{PID: 1, Title: "Desktop"}, got[1])
	assert.Equal(t, Window{PID: 5151, Title: ""}, got[2])
}

func TestNew(t *testing.T) {
	for _, strategy := range []string{config.StrategyProcess, config.StrategyWindow, config.StrategyAudio} {
		s, err := New(strategy, "Spotify")
		require.NoError(t, err)
		assert.Equal(t, strategy, s.Name())
	}

	_, err := New("psychic", "Spotify")
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "spotify", normalizeName(`C:\Users\me\AppData\Roaming\Spotify\Spotify.exe`))
	assert.Equal(t, "spotify", normalizeName("/usr/bin/spotify"))
	assert.Equal(t, "spotify", normalizeName(" Spotify.EXE "))
}
