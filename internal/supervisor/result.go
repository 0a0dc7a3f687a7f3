package supervisor

import "time"

// SessionResult summarizes one session: which processes reached Running,
// which failed to launch, how the foreground process exited, and which
// background processes were successfully signalled during teardown.
//
// Suppressed best-effort errors are preserved here so they stay observable
// even though they never abort the session.
type SessionResult struct {
	// Started lists processes that reached StateRunning, in launch order
	// (the foreground process last).
	Started []string

	// LaunchFailures maps process name to the launch error.
	LaunchFailures map[string]error

	// ForegroundExitCode is the foreground process's exit status.
	ForegroundExitCode int

	// ForegroundFailure is set when the foreground process exited non-zero
	// or never launched.
	ForegroundFailure bool

	// Terminated lists background processes whose termination request
	// succeeded (including no-op requests against already-exited ones).
	Terminated []string

	// TerminationFailures maps process name to the termination error.
	TerminationFailures map[string]error

	// Duration is the wall-clock length of the session.
	Duration time.Duration
}

// NewSessionResult returns an empty result with initialized maps.
func NewSessionResult() *SessionResult {
	return &SessionResult{
		LaunchFailures:      make(map[string]error),
		TerminationFailures: make(map[string]error),
	}
}

// FullSuccess reports whether every process launched, the foreground exited
// cleanly, and every termination request succeeded.
func (r *SessionResult) FullSuccess() bool {
	return len(r.LaunchFailures) == 0 &&
		len(r.TerminationFailures) == 0 &&
		!r.ForegroundFailure
}

// StartedCount returns the number of processes that reached Running.
func (r *SessionResult) StartedCount() int {
	return len(r.Started)
}
