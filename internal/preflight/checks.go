// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// Config holds the inputs the checks validate.
type Config struct {
	PythonPath  string
	BackendPort int
	UploadPort  int
	LogDir      string
	SimScript   string
	RootDir     string
}

// RunAll executes all preflight checks.
func RunAll(cfg Config) *Result {
	result := &Result{
		Checks: make([]Check, 0, 5),
		Passed: true,
	}

	for _, check := range []Check{
		checkPython(cfg.PythonPath),
		checkPort("backend_port", cfg.BackendPort),
		checkPort("upload_port", cfg.UploadPort),
		checkLogDir(cfg.LogDir),
		checkSimScript(cfg.RootDir, cfg.SimScript),
	} {
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
		}
	}

	return result
}

// checkPython verifies the Python interpreter is available and working.
func checkPython(path string) Check {
	cmd := exec.Command(path, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Check{
			Name:    "python",
			Passed:  false,
			Message: fmt.Sprintf("not runnable at %s: %v", path, err),
		}
	}

	// "Python 3.11.4"
	version := strings.TrimSpace(string(output))
	return Check{
		Name:    "python",
		Passed:  true,
		Message: fmt.Sprintf("found at %s (%s)", path, version),
	}
}

// checkPort verifies a service port is free to bind.
func checkPort(name string, port int) Check {
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Check{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("port %d is not bindable: %v", port, err),
		}
	}
	ln.Close()

	return Check{
		Name:    name,
		Passed:  true,
		Message: fmt.Sprintf("port %d is free", port),
	}
}

// checkLogDir verifies the log directory exists (or can be created) and is
// writable.
func checkLogDir(dir string) Check {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{
			Name:    "log_dir",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", dir, err),
		}
	}

	probe := filepath.Join(dir, ".preflight")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		return Check{
			Name:    "log_dir",
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", dir, err),
		}
	}
	os.Remove(probe)

	return Check{
		Name:    "log_dir",
		Passed:  true,
		Message: fmt.Sprintf("%s is writable", dir),
	}
}

// checkSimScript verifies the simulator script exists. Warning only: the
// launch itself reports the authoritative error.
func checkSimScript(rootDir, script string) Check {
	path := script
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, script)
	}

	if _, err := os.Stat(path); err != nil {
		return Check{
			Name:    "sim_script",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s not found (launch will fail if missing)", path),
		}
	}

	return Check{
		Name:    "sim_script",
		Passed:  true,
		Message: fmt.Sprintf("found %s", path),
	}
}

// PrintResults prints the preflight check results to stdout.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
		if !check.Passed {
			fmt.Printf("    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Println()
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "python":
		return "install python3 (apt install python3 / brew install python3) or pass --python"
	case "backend_port", "upload_port":
		return "stop the process holding the port or pass --backend-port/--upload-port"
	case "log_dir":
		return "pass --logs pointing at a writable directory"
	default:
		return "see documentation"
	}
}
