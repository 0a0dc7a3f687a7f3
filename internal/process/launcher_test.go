package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoSpec(name, output string) Spec {
	return Spec{
		Name:    name,
		Command: []string{"echo", output},
		Role:    Background,
	}
}

func sleepSpec(name string, d time.Duration) Spec {
	return Spec{
		Name:    name,
		Command: []string{"sleep", fmt.Sprintf("%.3f", d.Seconds())},
		Role:    Background,
	}
}

func exitCodeSpec(name string, code int) Spec {
	return Spec{
		Name:    name,
		Command: []string{"sh", "-c", fmt.Sprintf("exit %d", code)},
		Role:    Foreground,
	}
}

func TestLaunch_CapturesOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "backend.log")

	p, err := Launch(echoSpec("backend", "hello demo"), logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	if code := p.Wait(); code != 0 {
		t.Errorf("Wait() = %d, want 0", code)
	}
	if p.State() != StateExited {
		t.Errorf("State() = %v, want StateExited", p.State())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "hello demo") {
		t.Errorf("log content = %q, want it to contain %q", data, "hello demo")
	}
}

func TestLaunch_CapturesStderr(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "upload_server.log")

	spec := Spec{
		Name:    "upload_server",
		Command: []string{"sh", "-c", "echo oops >&2"},
		Role:    Background,
	}
	p, err := Launch(spec, logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	p.Wait()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "oops") {
		t.Errorf("log content = %q, want stderr captured", data)
	}
}

func TestLaunch_TruncatesPreviousRun(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "backend.log")
	if err := os.WriteFile(logPath, []byte("stale content from last run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Launch(echoSpec("backend", "fresh"), logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	p.Wait()

	data, _ := os.ReadFile(logPath)
	if strings.Contains(string(data), "stale") {
		t.Errorf("log content = %q, want previous run truncated", data)
	}
}

func TestLaunch_Errors(t *testing.T) {
	tmp := t.TempDir()

	// A directory at the log path makes it unopenable for writing.
	blockedLog := filepath.Join(tmp, "blocked.log")
	if err := os.Mkdir(blockedLog, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		spec    Spec
		logPath string
	}{
		{
			name:    "missing executable",
			spec:    Spec{Name: "viewer", Command: []string{"definitely-not-a-real-binary-xyz"}},
			logPath: filepath.Join(tmp, "viewer.log"),
		},
		{
			name:    "empty command",
			spec:    Spec{Name: "viewer", Command: nil},
			logPath: filepath.Join(tmp, "viewer.log"),
		},
		{
			name:    "unwritable log path",
			spec:    echoSpec("upload_server", "hi"),
			logPath: blockedLog,
		},
		{
			name:    "missing log directory",
			spec:    echoSpec("backend", "hi"),
			logPath: filepath.Join(tmp, "no-such-dir", "backend.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Launch(tt.spec, tt.logPath, newTestLogger())
			if err == nil {
				p.Terminate(time.Second)
				t.Fatal("Launch() succeeded, want *LaunchError")
			}
			var launchErr *LaunchError
			if !errors.As(err, &launchErr) {
				t.Fatalf("error type = %T, want *LaunchError", err)
			}
			if launchErr.Name != tt.spec.Name {
				t.Errorf("LaunchError.Name = %q, want %q", launchErr.Name, tt.spec.Name)
			}
		})
	}
}

func TestManagedProcess_ExitCode(t *testing.T) {
	tests := []struct {
		name string
		code int
	}{
		{"clean exit", 0},
		{"error exit", 1},
		{"custom exit", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logPath := filepath.Join(t.TempDir(), "simulator.log")
			p, err := Launch(exitCodeSpec("simulator", tt.code), logPath, newTestLogger())
			if err != nil {
				t.Fatalf("Launch() error = %v", err)
			}
			if got := p.Wait(); got != tt.code {
				t.Errorf("Wait() = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestManagedProcess_Terminate(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "backend.log")
	p, err := Launch(sleepSpec("backend", 30*time.Second), logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	if p.State() != StateRunning {
		t.Fatalf("State() = %v before terminate, want StateRunning", p.State())
	}

	if err := p.Terminate(2 * time.Second); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	if p.State() != StateExited {
		t.Errorf("State() = %v after terminate, want StateExited", p.State())
	}
	// SIGTERM death is recorded as 128+15.
	if code := p.ExitCode(); code != 128+int(syscall.SIGTERM) {
		t.Errorf("ExitCode() = %d, want %d", code, 128+int(syscall.SIGTERM))
	}
}

func TestManagedProcess_TerminateAlreadyExited(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "viewer.log")
	p, err := Launch(echoSpec("viewer", "done"), logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	p.Wait()

	// Idempotent: signalling an exited process reports success.
	if err := p.Terminate(time.Second); err != nil {
		t.Errorf("Terminate() after exit = %v, want nil", err)
	}
	if err := p.Terminate(time.Second); err != nil {
		t.Errorf("second Terminate() after exit = %v, want nil", err)
	}
}

func TestManagedProcess_Accessors(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "simulator.log")
	spec := sleepSpec("simulator", 10*time.Second)
	spec.Role = Foreground

	p, err := Launch(spec, logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	defer p.Terminate(time.Second)

	if p.Name() != "simulator" {
		t.Errorf("Name() = %q, want %q", p.Name(), "simulator")
	}
	if p.Role() != Foreground {
		t.Errorf("Role() = %v, want Foreground", p.Role())
	}
	if p.PID() <= 0 {
		t.Errorf("PID() = %d, want > 0", p.PID())
	}
	if p.LogPath() != logPath {
		t.Errorf("LogPath() = %q, want %q", p.LogPath(), logPath)
	}

	time.Sleep(50 * time.Millisecond)
	if p.Uptime() <= 0 {
		t.Errorf("Uptime() = %v while running, want > 0", p.Uptime())
	}
}

func TestManagedProcess_UptimeFrozenAfterExit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "viewer.log")
	p, err := Launch(echoSpec("viewer", "x"), logPath, newTestLogger())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	p.Wait()

	first := p.Uptime()
	time.Sleep(50 * time.Millisecond)
	second := p.Uptime()
	if first != second {
		t.Errorf("Uptime() moved after exit: %v then %v", first, second)
	}
}

func TestExtractExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: 0,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractExitCode(tt.err); got != tt.wantCode {
				t.Errorf("extractExitCode(%v) = %d, want %d", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestExtractExitCode_FromRealProcess(t *testing.T) {
	cmd := exec.Command("sh", "-c", "exit 3")
	err := cmd.Run()
	if got := extractExitCode(err); got != 3 {
		t.Errorf("extractExitCode() = %d, want 3", got)
	}
}

func TestState_Strings(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StatePending, "pending"},
		{StateRunning, "running"},
		{StateExited, "exited"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
			}
		})
	}
}

func TestState_HasPID(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StatePending, false},
		{StateRunning, true},
		{StateExited, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.HasPID(); got != tt.want {
				t.Errorf("State(%d).HasPID() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestRole_String(t *testing.T) {
	if Background.String() != "background" || Foreground.String() != "foreground" {
		t.Errorf("Role strings = %q/%q", Background.String(), Foreground.String())
	}
	if Role(9).String() != "unknown" {
		t.Errorf("Role(9).String() = %q, want unknown", Role(9).String())
	}
}
