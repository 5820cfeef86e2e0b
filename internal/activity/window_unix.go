//go:build !windows

package activity

import (
	"context"
	"fmt"
	"os/exec"
)

// NewWindowLister returns a lister backed by wmctrl (X11 and XWayland).
func NewWindowLister() WindowLister {
	return wmctrlLister{}
}

type wmctrlLister struct{}

func (wmctrlLister) Windows(ctx context.Context) ([]Window, error) {
	path, err := exec.LookPath("wmctrl")
	if err != nil {
		return nil, fmt.Errorf("wmctrl not found: %w", err)
	}
	out, err := exec.CommandContext(ctx, path, "-lp").Output()
	if err != nil {
		return nil, fmt.Errorf("wmctrl -lp: %w", err)
	}
	return parseWmctrl(string(out)), nil
}
