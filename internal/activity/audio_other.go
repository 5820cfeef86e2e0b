//go:build !linux

package activity

import "context"

// No playback source is wired on this platform; AudioSignal always uses
// its fallback.
func newPlatformSource() AudioSource {
	return unavailableSource{}
}

type unavailableSource struct{}

func (unavailableSource) Playing(context.Context, string) (bool, error) {
	return false, ErrAudioUnavailable
}
