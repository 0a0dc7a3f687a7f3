// Package main provides the go-demo-stack CLI entry point.
//
// go-demo-stack launches the demo's background services (backend receiver,
// upload server, NDVI viewer), runs the performance simulator in the
// foreground, and tears the stack down when the simulator finishes.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randomizedcoder/go-demo-stack/internal/config"
	"github.com/randomizedcoder/go-demo-stack/internal/logging"
	"github.com/randomizedcoder/go-demo-stack/internal/orchestrator"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/go-demo-stack
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Handle version flag early (before flag parsing)
	if len(os.Args) > 1 {
		arg := os.Args[1]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Printf("go-demo-stack %s\n", version)
			return 0
		}
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return 1
	}

	// When TUI is enabled, suppress logs to avoid interfering with TUI
	// rendering
	var logger *slog.Logger
	if cfg.TUIEnabled {
		logger = logging.NewLoggerWithWriter(io.Discard, "json", "info")
	} else {
		logger = logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose)
	}
	logging.SetDefault(logger)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	// Handle --print-plan mode
	if cfg.PrintPlan {
		rootDir, err := orchestrator.ResolveRoot(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving root directory: %v\n", err)
			return 1
		}
		fmt.Print(orchestrator.DescribePlan(orchestrator.BuildPlan(cfg, rootDir)))
		return 0
	}

	logger.Info("starting",
		"version", version,
		"backend_port", cfg.BackendPort,
		"upload_port", cfg.UploadPort,
		"sim_duration", cfg.SimDuration,
		"metrics_addr", cfg.MetricsAddr,
	)

	if !cfg.TUIEnabled {
		printBanner(cfg)
	}

	orch := orchestrator.New(cfg, logger, version)
	if err := orch.Run(context.Background()); err != nil {
		logger.Error("orchestrator_failed", "error", err)
		return 1
	}

	return 0
}

// printBanner prints the startup banner.
func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                         go-demo-stack                             ║")
	fmt.Println("║       Local Demo Orchestration with Process Supervision           ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Backend:     %s on :%d\n", cfg.BackendApp, cfg.BackendPort)
	fmt.Printf("  Uploads:     %s on :%d\n", cfg.UploadApp, cfg.UploadPort)
	fmt.Printf("  Viewer:      %s\n", cfg.ViewerCmd)
	fmt.Printf("  Simulator:   %s for %s at %.1f fps\n", cfg.SimScript, cfg.SimDuration, cfg.FrameFPS)
	fmt.Printf("  Metrics:     http://%s/metrics\n", cfg.MetricsAddr)
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop early.")
	fmt.Println()
}
