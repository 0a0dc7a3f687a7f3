package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line flags and returns a Config.
func ParseFlags() (*Config, error) {
	cfg := DefaultConfig()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `go-demo-stack - local demo stack orchestration

Usage:
  go-demo-stack [flags]

Paths:
`)
		printFlagCategory([]string{"root", "logs"})

		fmt.Fprintf(os.Stderr, "\nServices:\n")
		printFlagCategory([]string{"python", "backend-app", "backend-port", "upload-app", "upload-port", "viewer"})

		fmt.Fprintf(os.Stderr, "\nSimulator:\n")
		printFlagCategory([]string{"sim-script", "sim-duration", "fps", "telemetry-hz"})

		fmt.Fprintf(os.Stderr, "\nShutdown:\n")
		printFlagCategory([]string{"term-grace"})

		fmt.Fprintf(os.Stderr, "\nObservability:\n")
		printFlagCategory([]string{"metrics", "v", "log-format", "tui", "monitor", "monitor-interval"})

		fmt.Fprintf(os.Stderr, "\nDiagnostics:\n")
		printFlagCategory([]string{"print-plan", "skip-preflight"})

		fmt.Fprintf(os.Stderr, `
Examples:
  # Run the full demo stack for one minute
  go-demo-stack

  # Short smoke run with the live dashboard
  go-demo-stack -sim-duration 10s -tui

  # Print the process plan without starting anything
  go-demo-stack -print-plan

`)
	}

	// Paths
	flag.StringVar(&cfg.RootDir, "root", cfg.RootDir, "Project root (default: directory of the executable)")
	flag.StringVar(&cfg.LogDir, "logs", cfg.LogDir, "Log directory, relative to root unless absolute")

	// Services
	flag.StringVar(&cfg.PythonPath, "python", cfg.PythonPath, "Python interpreter used for the demo services")
	flag.StringVar(&cfg.BackendApp, "backend-app", cfg.BackendApp, "ASGI app spec for the telemetry backend")
	flag.IntVar(&cfg.BackendPort, "backend-port", cfg.BackendPort, "Port for the telemetry backend")
	flag.StringVar(&cfg.UploadApp, "upload-app", cfg.UploadApp, "ASGI app spec for the chunk upload server")
	flag.IntVar(&cfg.UploadPort, "upload-port", cfg.UploadPort, "Port for the chunk upload server")
	flag.StringVar(&cfg.ViewerCmd, "viewer", cfg.ViewerCmd, "Viewer command (placeholder external program)")

	// Simulator
	flag.StringVar(&cfg.SimScript, "sim-script", cfg.SimScript, "Foreground simulator script")
	flag.DurationVar(&cfg.SimDuration, "sim-duration", cfg.SimDuration, "Simulator run duration (bounds the session)")
	flag.Float64Var(&cfg.FrameFPS, "fps", cfg.FrameFPS, "Simulator frame sampling rate")
	flag.Float64Var(&cfg.TelemetryHz, "telemetry-hz", cfg.TelemetryHz, "Simulator telemetry sampling rate")

	// Shutdown
	flag.DurationVar(&cfg.TermGrace, "term-grace", cfg.TermGrace, "SIGTERM-to-SIGKILL grace period during teardown")

	// Observability
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	flag.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	flag.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Enable live terminal dashboard")
	flag.BoolVar(&cfg.MonitorEnabled, "monitor", cfg.MonitorEnabled, "Sample system CPU/RAM into system_stats.csv")
	flag.DurationVar(&cfg.MonitorInterval, "monitor-interval", cfg.MonitorInterval, "Resource sampling interval")

	// Diagnostics
	flag.BoolVar(&cfg.PrintPlan, "print-plan", cfg.PrintPlan, "Print the process plan and exit")
	flag.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	flag.Parse()

	return cfg, nil
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(names []string) {
	flag.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(os.Stderr, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(os.Stderr, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(os.Stderr)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	switch f.DefValue {
	case "true", "false":
		return ""
	}

	if strings.HasSuffix(f.DefValue, "s") || strings.HasSuffix(f.DefValue, "m") || strings.HasSuffix(f.DefValue, "h") {
		return "duration"
	}

	if _, err := fmt.Sscanf(f.DefValue, "%d", new(int)); err == nil {
		return "int"
	}

	return "string"
}
