// Package process provides launching and lifecycle control for the external
// programs that make up the demo stack.
package process

// Role distinguishes processes the supervisor leaves running in the
// background from the single process whose completion gates the session.
type Role int

const (
	// Background processes are started and left running until teardown.
	Background Role = iota

	// Foreground is the single process the supervisor blocks on.
	Foreground
)

// String returns a human-readable name for the role.
func (r Role) String() string {
	switch r {
	case Background:
		return "background"
	case Foreground:
		return "foreground"
	default:
		return "unknown"
	}
}

// State represents the lifecycle state of a managed process.
type State int

const (
	// StatePending is the initial state: command configured, not started.
	StatePending State = iota

	// StateRunning indicates the process was started and has not been
	// observed to exit.
	StateRunning

	// StateExited indicates the process terminated, on its own or in
	// response to a termination request. The exit code is recorded but
	// does not introduce a separate failure state.
	StateExited
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// HasPID returns true if a process identity is defined in this state.
func (s State) HasPID() bool {
	return s == StateRunning || s == StateExited
}

// IsTerminal returns true if the state is a terminal state.
func (s State) IsTerminal() bool {
	return s == StateExited
}
