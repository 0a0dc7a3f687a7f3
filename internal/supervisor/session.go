// Package supervisor owns the set of managed processes for one session and
// drives the fan-out / gate / fan-in sequence: start every background
// service, block on the single foreground process, then sweep-terminate the
// background set in start order.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/randomizedcoder/go-demo-stack/internal/process"
)

// SessionPlan is the declarative input to one session: the log directory and
// the ordered process specs. Exactly one spec carries the Foreground role.
type SessionPlan struct {
	LogDir     string
	Background []process.Spec
	Foreground process.Spec
}

// Callbacks contains optional hooks for session events. All callbacks run
// synchronously on the supervisor goroutine.
type Callbacks struct {
	// OnLaunch is called when a process starts.
	OnLaunch func(name string, pid int)

	// OnLaunchError is called when a launch attempt fails.
	OnLaunchError func(name string, err error)

	// OnExit is called when a managed process is observed to have exited.
	OnExit func(name string, exitCode int, uptime time.Duration)

	// OnTerminate is called after a background process was successfully
	// signalled during teardown.
	OnTerminate func(name string)

	// OnTerminateError is called when a termination request fails.
	OnTerminateError func(name string, err error)
}

// Supervisor runs one session. It exclusively owns every ManagedProcess it
// launches; nothing outside it signals a managed process directly.
type Supervisor struct {
	plan      SessionPlan
	logger    *slog.Logger
	callbacks Callbacks

	// Grace period between SIGTERM and SIGKILL during teardown.
	termGrace time.Duration

	// Registry of launched processes, in launch order.
	mu        sync.RWMutex
	processes []*process.ManagedProcess
}

// Config holds configuration for creating a new Supervisor.
type Config struct {
	Plan      SessionPlan
	Logger    *slog.Logger
	Callbacks Callbacks

	// TermGrace is the SIGTERM-to-SIGKILL grace period (default 5s).
	TermGrace time.Duration
}

// New creates a new Supervisor for one session.
func New(cfg Config) *Supervisor {
	grace := cfg.TermGrace
	if grace <= 0 {
		grace = 5 * time.Second
	}
	return &Supervisor{
		plan:      cfg.Plan,
		logger:    cfg.Logger,
		callbacks: cfg.Callbacks,
		termGrace: grace,
	}
}

// Run executes the session sequence and blocks until teardown completes.
//
// The returned error is non-nil only when the session could not be set up at
// all (log directory creation). Individual launch and termination failures
// are best-effort: reported through callbacks and collected in the
// SessionResult, never fatal to the session.
//
// Cancelling ctx does not abandon the foreground wait; it forwards a
// termination request to the foreground process so the wait still completes
// by observing its exit.
func (s *Supervisor) Run(ctx context.Context) (*SessionResult, error) {
	start := time.Now()

	// Log directory is created exactly once, before any launch.
	if err := os.MkdirAll(s.plan.LogDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", s.plan.LogDir, err)
	}

	result := NewSessionResult()

	// Phase 1: fan out. Every background launch is attempted regardless of
	// earlier failures.
	for _, spec := range s.plan.Background {
		s.launch(spec, result)
	}

	// Phase 2: gate on the foreground process.
	fg := s.launch(s.plan.Foreground, result)
	if fg != nil {
		s.waitForeground(ctx, fg, result)
	} else {
		result.ForegroundFailure = true
	}

	// Phase 3: fan in. Termination requests in start order, best-effort.
	s.teardown(result)

	result.Duration = time.Since(start)

	s.logger.Info("session_complete",
		"started", len(result.Started),
		"launch_failures", len(result.LaunchFailures),
		"terminated", len(result.Terminated),
		"termination_failures", len(result.TerminationFailures),
		"foreground_exit_code", result.ForegroundExitCode,
		"duration", result.Duration.String(),
	)

	return result, nil
}

// launch attempts to start one process and records the outcome. A failure is
// reported and recorded but never stops the session.
func (s *Supervisor) launch(spec process.Spec, result *SessionResult) *process.ManagedProcess {
	logPath := filepath.Join(s.plan.LogDir, LogFileName(spec.Name))

	p, err := process.Launch(spec, logPath, s.logger)
	if err != nil {
		s.logger.Error("launch_failed",
			"process", spec.Name,
			"phase", "launch",
			"error", err,
		)
		result.LaunchFailures[spec.Name] = err
		if s.callbacks.OnLaunchError != nil {
			s.callbacks.OnLaunchError(spec.Name, err)
		}
		return nil
	}

	s.mu.Lock()
	s.processes = append(s.processes, p)
	s.mu.Unlock()

	result.Started = append(result.Started, spec.Name)
	if s.callbacks.OnLaunch != nil {
		s.callbacks.OnLaunch(spec.Name, p.PID())
	}
	return p
}

// waitForeground blocks until the foreground process exits. Context
// cancellation is translated into a termination request against the
// foreground process; the wait itself always ends on process exit.
func (s *Supervisor) waitForeground(ctx context.Context, fg *process.ManagedProcess, result *SessionResult) {
	select {
	case <-fg.Done():
	case <-ctx.Done():
		s.logger.Info("session_interrupted", "process", fg.Name())
		if err := fg.Terminate(s.termGrace); err != nil {
			s.logger.Error("terminate_failed",
				"process", fg.Name(),
				"phase", "interrupt",
				"error", err,
			)
		}
		<-fg.Done()
	}

	code := fg.ExitCode()
	result.ForegroundExitCode = code
	result.ForegroundFailure = code != 0
	if result.ForegroundFailure {
		s.logger.Warn("foreground_failed",
			"process", fg.Name(),
			"exit_code", code,
		)
	}
	if s.callbacks.OnExit != nil {
		s.callbacks.OnExit(fg.Name(), code, fg.Uptime())
	}
}

// teardown issues one termination request per background process, in start
// order. Requests against already-exited processes are no-ops; a failed
// request is recorded and teardown continues.
func (s *Supervisor) teardown(result *SessionResult) {
	s.mu.RLock()
	procs := make([]*process.ManagedProcess, len(s.processes))
	copy(procs, s.processes)
	s.mu.RUnlock()

	for _, p := range procs {
		if p.Role() != process.Background {
			continue
		}

		alreadyExited := p.State() == process.StateExited

		if err := p.Terminate(s.termGrace); err != nil {
			s.logger.Error("terminate_failed",
				"process", p.Name(),
				"phase", "teardown",
				"error", err,
			)
			result.TerminationFailures[p.Name()] = err
			if s.callbacks.OnTerminateError != nil {
				s.callbacks.OnTerminateError(p.Name(), err)
			}
			continue
		}

		result.Terminated = append(result.Terminated, p.Name())
		if s.callbacks.OnTerminate != nil {
			s.callbacks.OnTerminate(p.Name())
		}
		if s.callbacks.OnExit != nil {
			s.callbacks.OnExit(p.Name(), p.ExitCode(), p.Uptime())
		}
		if alreadyExited {
			s.logger.Debug("terminate_noop", "process", p.Name())
		}
	}
}

// Snapshot returns the current status of every launched process, in launch
// order. Safe for concurrent use while the session runs.
func (s *Supervisor) Snapshot() []ProcessStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]ProcessStatus, 0, len(s.processes))
	for _, p := range s.processes {
		statuses = append(statuses, ProcessStatus{
			Name:     p.Name(),
			Role:     p.Role(),
			PID:      p.PID(),
			State:    p.State(),
			ExitCode: p.ExitCode(),
			Uptime:   p.Uptime(),
		})
	}
	return statuses
}

// ProcessStatus is a point-in-time view of one managed process.
type ProcessStatus struct {
	Name     string
	Role     process.Role
	PID      int
	State    process.State
	ExitCode int
	Uptime   time.Duration
}

// LogFileName derives the per-process log file name from the process name.
func LogFileName(name string) string {
	return name + ".log"
}
