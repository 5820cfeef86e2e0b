package activity

import (
	"math"
	"math/rand"
	"time"
)

const (
	minBackoff = 1 * time.Second
	maxBackoff = 60 * time.Second
	jitter     = 0.25
)

// backoff spaces out retries of an unavailable source with exponential
// delays and jitter. It never sleeps; callers ask whether a retry is due.
type backoff struct {
	attempt int
	next    time.Time
}

// ready reports whether a retry is due at now.
func (b *backoff) ready(now time.Time) bool {
	return !now.Before(b.next)
}

// fail records a failed attempt at now and returns the delay until the next one.
func (b *backoff) fail(now time.Time) time.Duration {
	d := b.nextDelay()
	b.next = now.Add(d)
	return d
}

// reset clears the failure streak (call after a successful query).
func (b *backoff) reset() {
	b.attempt = 0
	b.next = time.Time{}
}

func (b *backoff) nextDelay() time.Duration {
	// Exponential: min * 2^attempt, capped at max
	base := float64(minBackoff) * math.Pow(2, float64(b.attempt))
	if base > float64(maxBackoff) {
		base = float64(maxBackoff)
	}

	// Add jitter: +/-25%
	j := base * jitter * (2*rand.Float64() - 1)
	d := time.Duration(base + j)
	if d < minBackoff {
		d = minBackoff
	}
	if d > maxBackoff {
		d = maxBackoff
	}

	b.attempt++
	return d
}
