package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := out
	out = &buf
	t.Cleanup(func() { out = prev })
	return &buf
}

func TestPlainOutputWithoutTTY(t *testing.T) {
	buf := capture(t)

	Banner("1.2.3")
	KeyValue("target", "Spotify")
	Warn("interval %dms", 500)

	got := buf.String()
	assert.Contains(t, got, "playawake v1.2.3")
	assert.Contains(t, got, "target")
	assert.Contains(t, got, "Spotify")
	assert.Contains(t, got, "interval 500ms")
	assert.NotContains(t, got, "\033[")
}

func TestTransition(t *testing.T) {
	buf := capture(t)
	at := time.Date(2024, 6, 1, 14, 3, 7, 0, time.Local)

	Transition(at, true, "Spotify")
	Transition(at.Add(time.Minute), false, "Spotify")

	assert.Equal(t,
		"  14:03:07 ▶ Spotify active, keeping awake\n"+
			"  14:04:07 ■ Spotify inactive, sleep allowed\n",
		buf.String())
}
