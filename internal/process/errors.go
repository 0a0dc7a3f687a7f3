package process

import "fmt"

// LaunchError indicates a managed process could not be started: the
// executable was not found, the log file could not be opened, or the start
// itself failed. A launch failure is local to one process and never aborts
// the remaining launches.
type LaunchError struct {
	Name string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Name, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// TerminationError indicates a termination request against a tracked process
// did not succeed. Teardown continues for the remaining processes.
type TerminationError struct {
	Name string
	Err  error
}

func (e *TerminationError) Error() string {
	return fmt.Sprintf("terminate %s: %v", e.Name, e.Err)
}

func (e *TerminationError) Unwrap() error {
	return e.Err
}
