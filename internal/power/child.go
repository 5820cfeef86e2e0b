//go:build linux || darwin

package power

import (
	"fmt"
	"os/exec"
)

// heldChild is a helper process whose lifetime is the inhibition.
type heldChild struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func startChild(cmd *exec.Cmd) (*heldChild, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}
	h := &heldChild{cmd: cmd, done: make(chan struct{})}

	// Reap the child in background so it doesn't become a zombie.
	go func() {
		_ = cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

// alive reports whether the helper is still running.
func (h *heldChild) alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *heldChild) stop() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	<-h.done
}
