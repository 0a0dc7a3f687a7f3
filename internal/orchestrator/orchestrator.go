// Package orchestrator wires configuration, preflight checks, metrics, the
// resource monitor, the optional TUI, and the supervisor into one session run.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/randomizedcoder/go-demo-stack/internal/config"
	"github.com/randomizedcoder/go-demo-stack/internal/logging"
	"github.com/randomizedcoder/go-demo-stack/internal/metrics"
	"github.com/randomizedcoder/go-demo-stack/internal/monitor"
	"github.com/randomizedcoder/go-demo-stack/internal/preflight"
	"github.com/randomizedcoder/go-demo-stack/internal/stats"
	"github.com/randomizedcoder/go-demo-stack/internal/supervisor"
	"github.com/randomizedcoder/go-demo-stack/internal/tui"
)

// foregroundLogTailLines is how much of the simulator log the exit summary
// shows when the simulator fails.
const foregroundLogTailLines = 20

// Orchestrator runs one full demo session.
type Orchestrator struct {
	cfg     *config.Config
	logger  *slog.Logger
	version string
}

// New creates an orchestrator.
func New(cfg *config.Config, logger *slog.Logger, version string) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		logger:  logger,
		version: version,
	}
}

// Run executes the session and blocks until teardown completes.
//
// The returned error reflects only setup problems (failed preflight, an
// uncreatable log directory). Individual process failures are best-effort:
// they are logged, counted in metrics, and shown in the exit summary, but do
// not make the run itself fail.
func (o *Orchestrator) Run(ctx context.Context) error {
	rootDir, err := ResolveRoot(o.cfg)
	if err != nil {
		return err
	}
	logDir := ResolveLogDir(o.cfg, rootDir)
	plan := BuildPlan(o.cfg, rootDir)

	if !o.cfg.SkipPreflight {
		result := preflight.RunAll(preflight.Config{
			PythonPath:  o.cfg.PythonPath,
			BackendPort: o.cfg.BackendPort,
			UploadPort:  o.cfg.UploadPort,
			LogDir:      logDir,
			SimScript:   o.cfg.SimScript,
			RootDir:     rootDir,
		})
		if !o.cfg.TUIEnabled {
			preflight.PrintResults(result)
		}
		if !result.Passed {
			return fmt.Errorf("preflight checks failed")
		}
	}

	// Metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollectorWithRegistry(metrics.CollectorConfig{
		Version:             o.version,
		ConfiguredProcesses: len(plan.Background) + 1,
	}, registry)

	server := metrics.NewServer(o.cfg.MetricsAddr, registry, o.logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("starting metrics server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Resource monitor
	var mon *monitor.Monitor
	var monDone chan struct{}
	monCtx, monCancel := context.WithCancel(context.Background())
	defer monCancel()
	if o.cfg.MonitorEnabled {
		mon = monitor.New(monitor.Config{Interval: o.cfg.MonitorInterval}, o.logger)
		monDone = make(chan struct{})
		go func() {
			mon.Run(monCtx)
			close(monDone)
		}()
	}

	tracker := stats.NewTracker()

	sup := supervisor.New(supervisor.Config{
		Plan:      plan,
		Logger:    o.logger,
		TermGrace: o.cfg.TermGrace,
		Callbacks: supervisor.Callbacks{
			OnLaunch: func(name string, pid int) {
				collector.ProcessLaunched(name)
			},
			OnLaunchError: func(name string, err error) {
				collector.LaunchFailed(name)
			},
			OnExit: func(name string, exitCode int, uptime time.Duration) {
				collector.ProcessExited(name)
				role := "background"
				if name == plan.Foreground.Name {
					role = "foreground"
				}
				tracker.Record(stats.ProcessRecord{
					Name:     name,
					Role:     role,
					ExitCode: exitCode,
					Uptime:   uptime,
				})
			},
			OnTerminate: func(name string) {
				collector.TerminationSignaled(name)
			},
			OnTerminateError: func(name string, err error) {
				collector.TerminationFailed(name)
			},
		},
	})

	// SIGINT/SIGTERM cancel the session: the foreground simulator is
	// terminated and teardown proceeds normally.
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional TUI. Quitting the dashboard cancels the session.
	var program *tea.Program
	if o.cfg.TUIEnabled {
		var cancelRun context.CancelFunc
		runCtx, cancelRun = context.WithCancel(runCtx)
		defer cancelRun()

		program = tea.NewProgram(tui.New(tui.Config{
			LogDir:      logDir,
			MetricsAddr: o.cfg.MetricsAddr,
			Source:      sup,
		}), tea.WithAltScreen())
		go func() {
			if _, err := program.Run(); err != nil {
				o.logger.Error("tui_error", "error", err)
			}
			cancelRun()
		}()
	}

	result, err := sup.Run(runCtx)
	if program != nil {
		tui.SendQuit(program)
		program.Wait()
	}
	if err != nil {
		return err
	}

	collector.SetForegroundExitCode(result.ForegroundExitCode)
	collector.SetSessionDuration(result.Duration)

	// Flush the resource monitor before printing the summary so the CSV is
	// mentioned only once it exists.
	monCancel()
	if mon != nil {
		<-monDone
		csvPath := filepath.Join(logDir, "system_stats.csv")
		if err := mon.WriteCSV(csvPath); err != nil {
			o.logger.Warn("system_stats_write_failed", "error", err)
		}
	}

	fmt.Print(o.exitSummary(result, tracker, logDir, len(plan.Background)+1))
	return nil
}

// exitSummary renders the final report, tailing the simulator log when the
// foreground run failed.
func (o *Orchestrator) exitSummary(result *supervisor.SessionResult, tracker *stats.Tracker, logDir string, configured int) string {
	cfg := stats.SummaryConfig{
		Duration:            result.Duration,
		ConfiguredProcesses: configured,
		LogDir:              logDir,
		MetricsAddr:         o.cfg.MetricsAddr,
		ForegroundName:      NameSimulator,
		ForegroundExitCode:  result.ForegroundExitCode,
		LaunchFailures:      result.LaunchFailures,
		TerminationFailures: result.TerminationFailures,
	}

	if result.ForegroundFailure {
		logPath := filepath.Join(logDir, supervisor.LogFileName(NameSimulator))
		if lines, err := logging.Tail(logPath, foregroundLogTailLines); err == nil {
			cfg.ForegroundLogTail = lines
		}
	}

	return stats.FormatExitSummary(tracker.Summary(), cfg)
}
