//go:build !darwin && !linux && !windows

package power

import "context"

type noopInhibitor struct{}

func newInhibitor(context.Context) Inhibitor {
	return noopInhibitor{}
}

func (noopInhibitor) SetInhibited(bool) error { return nil }
func (noopInhibitor) Close() error            { return nil }
