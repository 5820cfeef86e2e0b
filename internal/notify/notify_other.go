//go:build !linux && !darwin && !windows

package notify

import "errors"

func show(string, string) error {
	return errors.New("notifications not supported on this platform")
}
