package activity

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/scienceol/playawake/internal/logging"
)

// Process is one entry of the OS process table.
type Process struct {
	PID  int32
	Name string
}

// ProcessLister enumerates running processes.
type ProcessLister interface {
	Processes(ctx context.Context) ([]Process, error)
}

// NewProcessLister returns a lister backed by the OS process table.
func NewProcessLister() ProcessLister {
	return psLister{}
}

type psLister struct{}

func (psLister) Processes(ctx context.Context) ([]Process, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}
	out := make([]Process, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// exited between enumeration and lookup, or access denied
			continue
		}
		out = append(out, Process{PID: p.Pid, Name: name})
	}
	return out, nil
}

// ProcessSignal is active while any process named like the target exists.
type ProcessSignal struct {
	target string
	procs  ProcessLister
}

// NewProcessSignal creates the process-presence strategy.
func NewProcessSignal(target string, procs ProcessLister) *ProcessSignal {
	return &ProcessSignal{target: target, procs: procs}
}

func (s *ProcessSignal) Name() string { return "process" }

func (s *ProcessSignal) IsActive(ctx context.Context) bool {
	pids, err := matchingPIDs(ctx, s.procs, s.target)
	if err != nil {
		logging.FromContext(ctx).Debug().Err(err).Msg("process check failed")
		return false
	}
	return len(pids) > 0
}

func matchingPIDs(ctx context.Context, procs ProcessLister, target string) (map[int32]struct{}, error) {
	list, err := procs.Processes(ctx)
	if err != nil {
		return nil, err
	}
	pids := make(map[int32]struct{})
	for _, p := range list {
		if sameApp(p.Name, target) {
			pids[p.PID] = struct{}{}
		}
	}
	return pids, nil
}
