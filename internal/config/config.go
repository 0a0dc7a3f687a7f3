// Package config provides configuration management for go-demo-stack.
package config

import "time"

// Config holds all configuration options for the demo orchestrator.
type Config struct {
	// Paths
	RootDir string `json:"root_dir"` // "" = derive from the executable's location
	LogDir  string `json:"log_dir"`  // relative to RootDir unless absolute

	// Interpreter used for the demo services
	PythonPath string `json:"python_path"`

	// Background services
	BackendApp  string `json:"backend_app"`
	BackendPort int    `json:"backend_port"`
	UploadApp   string `json:"upload_app"`
	UploadPort  int    `json:"upload_port"`
	ViewerCmd   string `json:"viewer_cmd"`

	// Foreground simulator (passed through verbatim)
	SimScript   string        `json:"sim_script"`
	SimDuration time.Duration `json:"sim_duration"`
	FrameFPS    float64       `json:"frame_fps"`
	TelemetryHz float64       `json:"telemetry_hz"`

	// Teardown
	TermGrace time.Duration `json:"term_grace"`

	// Observability
	MetricsAddr string `json:"metrics_addr"`
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	TUIEnabled  bool   `json:"tui"`

	// Resource monitor (system_stats.csv in the log dir)
	MonitorEnabled  bool          `json:"monitor"`
	MonitorInterval time.Duration `json:"monitor_interval"`

	// Diagnostic modes
	PrintPlan     bool `json:"print_plan"`
	SkipPreflight bool `json:"skip_preflight"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Paths
		RootDir: "",
		LogDir:  "logs",

		// Services
		PythonPath:  "python3",
		BackendApp:  "fastapi_receiver:app",
		BackendPort: 8000,
		UploadApp:   "upload_server:app",
		UploadPort:  9000,
		ViewerCmd:   "ndvi-viewer",

		// Simulator
		SimScript:   "perf_simulator.py",
		SimDuration: 60 * time.Second,
		FrameFPS:    10.0,
		TelemetryHz: 1.0,

		// Teardown
		TermGrace: 5 * time.Second,

		// Observability
		MetricsAddr: "0.0.0.0:17092",
		Verbose:     false,
		LogFormat:   "json",
		TUIEnabled:  false,

		// Monitor
		MonitorEnabled:  true,
		MonitorInterval: 500 * time.Millisecond,
	}
}
