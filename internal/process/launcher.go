package process

import (
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Spec describes one process the supervisor manages: a human-readable name,
// the executable plus argument list, and whether the supervisor waits on it.
type Spec struct {
	Name    string
	Command []string
	Role    Role
}

// ManagedProcess is one spawned child: its spec, the log file capturing its
// combined output, its process identity, and its lifecycle state. All state
// transitions happen inside this type; callers observe through accessors.
type ManagedProcess struct {
	spec    Spec
	logPath string
	logger  *slog.Logger

	cmd       *exec.Cmd
	logFile   *os.File
	pid       int
	startTime time.Time

	mu       sync.Mutex
	state    State
	exitCode int
	endTime  time.Time

	// Closed by the reaper goroutine once the process has exited.
	done chan struct{}
}

// Launch starts the program described by spec with stdout and stderr both
// redirected to logPath (created or truncated). It does not wait for the
// process to finish. The parent directory of logPath must already exist.
//
// On failure it returns a *LaunchError and no process is left running.
func Launch(spec Spec, logPath string, logger *slog.Logger) (*ManagedProcess, error) {
	if len(spec.Command) == 0 || spec.Command[0] == "" {
		return nil, &LaunchError{Name: spec.Name, Err: errors.New("empty command")}
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, &LaunchError{Name: spec.Name, Err: err}
	}

	cmd := exec.Command(spec.Command[0], spec.Command[1:]...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	// Own process group so termination reaches any children the service forks.
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}

	p := &ManagedProcess{
		spec:    spec,
		logPath: logPath,
		logger:  logger,
		cmd:     cmd,
		logFile: logFile,
		state:   StatePending,
		done:    make(chan struct{}),
	}

	p.startTime = time.Now()
	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, &LaunchError{Name: spec.Name, Err: err}
	}

	p.pid = cmd.Process.Pid
	p.setState(StateRunning)

	logger.Info("process_started",
		"process", spec.Name,
		"role", spec.Role.String(),
		"pid", p.pid,
		"log", logPath,
	)

	go p.reap()

	return p, nil
}

// reap waits for the process to exit, records the exit code, and releases
// the log file. It runs once per launched process.
func (p *ManagedProcess) reap() {
	waitErr := p.cmd.Wait()
	exitCode := extractExitCode(waitErr)

	p.logFile.Close()

	p.mu.Lock()
	p.exitCode = exitCode
	p.state = StateExited
	p.endTime = time.Now()
	p.mu.Unlock()

	p.logger.Info("process_exited",
		"process", p.spec.Name,
		"pid", p.pid,
		"exit_code", exitCode,
		"uptime", time.Since(p.startTime).String(),
	)

	close(p.done)
}

// Wait blocks until the process has exited and returns its exit code.
func (p *ManagedProcess) Wait() int {
	<-p.done
	return p.ExitCode()
}

// Done returns a channel closed when the process has exited.
func (p *ManagedProcess) Done() <-chan struct{} {
	return p.done
}

// Terminate requests termination of the process group: SIGTERM first, then
// SIGKILL if the process has not exited within grace. A request against an
// already-exited process is a no-op, not an error.
func (p *ManagedProcess) Terminate(grace time.Duration) error {
	if p.State() != StateRunning {
		return nil
	}

	if err := p.signalGroup(syscall.SIGTERM); err != nil {
		// The process may have exited between the state check and the
		// signal. That race is a successful no-op.
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return &TerminationError{Name: p.spec.Name, Err: err}
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
	}

	p.logger.Warn("force_killing_process",
		"process", p.spec.Name,
		"pid", p.pid,
	)
	if err := p.signalGroup(syscall.SIGKILL); err != nil {
		if errors.Is(err, syscall.ESRCH) || errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return &TerminationError{Name: p.spec.Name, Err: err}
	}

	<-p.done
	return nil
}

// signalGroup delivers sig to the process group, falling back to the single
// process when the group is not resolvable.
func (p *ManagedProcess) signalGroup(sig syscall.Signal) error {
	pgid, err := syscall.Getpgid(p.pid)
	if err != nil {
		return p.cmd.Process.Signal(sig)
	}
	return syscall.Kill(-pgid, sig)
}

// Name returns the process's human-readable identifier.
func (p *ManagedProcess) Name() string {
	return p.spec.Name
}

// Role returns the process's supervision role.
func (p *ManagedProcess) Role() Role {
	return p.spec.Role
}

// PID returns the assigned process identity. Valid only once the process
// has reached StateRunning.
func (p *ManagedProcess) PID() int {
	return p.pid
}

// LogPath returns the path of the file capturing the process's output.
func (p *ManagedProcess) LogPath() string {
	return p.logPath
}

// State returns the current lifecycle state.
func (p *ManagedProcess) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ExitCode returns the recorded exit code. Meaningful only in StateExited.
func (p *ManagedProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

// Uptime returns how long the process has been running, or its final
// lifetime once exited.
func (p *ManagedProcess) Uptime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StatePending:
		return 0
	case StateExited:
		return p.endTime.Sub(p.startTime)
	default:
		return time.Since(p.startTime)
	}
}

func (p *ManagedProcess) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// extractExitCode extracts the exit code from a Wait() error.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// Signal exit: 128 + signal number
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
	}

	// Unknown error, assume exit code 1
	return 1
}
