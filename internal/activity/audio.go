package activity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scienceol/playawake/internal/logging"
)

// ErrAudioUnavailable means the audio source cannot answer at all (no
// session bus, target not exposing a media session, unsupported OS).
var ErrAudioUnavailable = errors.New("audio source unavailable")

// AudioSource asks the OS audio layer whether target is producing sound.
type AudioSource interface {
	Playing(ctx context.Context, target string) (bool, error)
}

// AudioSignal prefers the audio source and falls back to another strategy
// (normally process presence) while the source cannot answer. A failing
// source is retried on an exponential backoff instead of every tick.
type AudioSignal struct {
	target   string
	source   AudioSource
	fallback Signal
	now      func() time.Time

	mu      sync.Mutex
	backoff backoff
}

// NewAudioSignal creates the audio strategy.
func NewAudioSignal(target string, source AudioSource, fallback Signal) *AudioSignal {
	return &AudioSignal{
		target:   target,
		source:   source,
		fallback: fallback,
		now:      time.Now,
	}
}

func (s *AudioSignal) Name() string { return "audio" }

func (s *AudioSignal) IsActive(ctx context.Context) bool {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	now := s.now()
	due := s.backoff.ready(now)
	s.mu.Unlock()

	if due {
		playing, err := s.source.Playing(ctx, s.target)
		s.mu.Lock()
		if err == nil {
			s.backoff.reset()
			s.mu.Unlock()
			return playing
		}
		wait := s.backoff.fail(now)
		s.mu.Unlock()
		log.Debug().Err(err).Dur("retry_in", wait).Msg("audio source unavailable, using fallback")
	}

	return s.fallback.IsActive(ctx)
}
