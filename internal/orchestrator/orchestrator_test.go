package orchestrator

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/randomizedcoder/go-demo-stack/internal/config"
	"github.com/randomizedcoder/go-demo-stack/internal/stats"
	"github.com/randomizedcoder/go-demo-stack/internal/supervisor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExitSummary(t *testing.T) {
	o := New(config.DefaultConfig(), testLogger(), "test")

	tracker := stats.NewTracker()
	tracker.Record(stats.ProcessRecord{Name: "backend", Role: "background", ExitCode: 143, Uptime: 30 * time.Second})
	tracker.Record(stats.ProcessRecord{Name: "simulator", Role: "foreground", ExitCode: 0, Uptime: 25 * time.Second})

	result := supervisor.NewSessionResult()
	result.Duration = 31 * time.Second
	result.ForegroundExitCode = 0

	out := o.exitSummary(result, tracker, "/tmp/demo/logs", 4)

	for _, want := range []string{
		"Configured Processes:   4",
		"/tmp/demo/logs",
		"backend",
		"simulator",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Launch Failures") {
		t.Error("clean run should not list launch failures")
	}
}

func TestExitSummary_ForegroundFailureTailsLog(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, supervisor.LogFileName(NameSimulator))
	if err := os.WriteFile(logPath, []byte("starting\nTraceback\nValueError: bad frame\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := New(config.DefaultConfig(), testLogger(), "test")

	result := supervisor.NewSessionResult()
	result.Duration = time.Second
	result.ForegroundExitCode = 1
	result.ForegroundFailure = true
	result.LaunchFailures["ndvi_viewer"] = errors.New("executable file not found")

	out := o.exitSummary(result, stats.NewTracker(), logDir, 4)

	for _, want := range []string{
		"exit code 1",
		"ValueError: bad frame",
		"Launch Failures",
		"ndvi_viewer",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestExitSummary_MissingLogIsNotFatal(t *testing.T) {
	o := New(config.DefaultConfig(), testLogger(), "test")

	result := supervisor.NewSessionResult()
	result.ForegroundFailure = true
	result.ForegroundExitCode = 7

	out := o.exitSummary(result, stats.NewTracker(), filepath.Join(t.TempDir(), "nope"), 4)
	if !strings.Contains(out, "exit code 7") {
		t.Errorf("summary missing foreground exit code:\n%s", out)
	}
}
