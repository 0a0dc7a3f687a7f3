package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/randomizedcoder/go-demo-stack/internal/config"
	"github.com/randomizedcoder/go-demo-stack/internal/process"
	"github.com/randomizedcoder/go-demo-stack/internal/supervisor"
)

// Process names used throughout the session. Log files, metrics labels, and
// the exit summary all key off these.
const (
	NameBackend      = "backend"
	NameUploadServer = "upload_server"
	NameViewer       = "ndvi_viewer"
	NameSimulator    = "simulator"
)

// ResolveRoot returns the directory the demo services run from. An empty
// RootDir derives it from the executable's location.
func ResolveRoot(cfg *config.Config) (string, error) {
	if cfg.RootDir != "" {
		return filepath.Abs(cfg.RootDir)
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	return filepath.Dir(exe), nil
}

// ResolveLogDir returns the absolute log directory for the session.
func ResolveLogDir(cfg *config.Config, rootDir string) string {
	if filepath.IsAbs(cfg.LogDir) {
		return cfg.LogDir
	}
	return filepath.Join(rootDir, cfg.LogDir)
}

// BuildPlan assembles the session plan from configuration: the three
// background services in launch order, then the foreground simulator.
func BuildPlan(cfg *config.Config, rootDir string) supervisor.SessionPlan {
	simScript := cfg.SimScript
	if !filepath.IsAbs(simScript) {
		simScript = filepath.Join(rootDir, simScript)
	}

	return supervisor.SessionPlan{
		LogDir: ResolveLogDir(cfg, rootDir),
		Background: []process.Spec{
			{
				Name: NameBackend,
				Role: process.Background,
				Command: []string{
					cfg.PythonPath, "-m", "uvicorn", cfg.BackendApp,
					"--host", "0.0.0.0",
					"--port", strconv.Itoa(cfg.BackendPort),
				},
			},
			{
				Name: NameUploadServer,
				Role: process.Background,
				Command: []string{
					cfg.PythonPath, "-m", "uvicorn", cfg.UploadApp,
					"--host", "0.0.0.0",
					"--port", strconv.Itoa(cfg.UploadPort),
				},
			},
			{
				Name:    NameViewer,
				Role:    process.Background,
				Command: strings.Fields(cfg.ViewerCmd),
			},
		},
		Foreground: process.Spec{
			Name: NameSimulator,
			Role: process.Foreground,
			Command: []string{
				cfg.PythonPath, simScript,
				"--duration", strconv.Itoa(int(cfg.SimDuration.Seconds())),
				"--frame_fps", strconv.FormatFloat(cfg.FrameFPS, 'f', -1, 64),
				"--telemetry_hz", strconv.FormatFloat(cfg.TelemetryHz, 'f', -1, 64),
			},
		},
	}
}

// DescribePlan renders the plan for --print-plan.
func DescribePlan(plan supervisor.SessionPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Log directory: %s\n\n", plan.LogDir)
	b.WriteString("Launch order:\n")
	for i, spec := range plan.Background {
		fmt.Fprintf(&b, "  %d. %-16s %s\n", i+1, spec.Name, strings.Join(spec.Command, " "))
	}
	fmt.Fprintf(&b, "  %d. %-16s %s  (foreground)\n",
		len(plan.Background)+1, plan.Foreground.Name, strings.Join(plan.Foreground.Command, " "))

	return b.String()
}
