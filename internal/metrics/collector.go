// Package metrics provides Prometheus metrics for go-demo-stack.
//
// All metrics are aggregate; with a handful of managed processes the
// per-process label cardinality is trivially safe.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector manages all Prometheus metrics for one orchestrator run.
type Collector struct {
	info                *prometheus.GaugeVec
	configuredProcesses prometheus.Gauge
	runningProcesses    prometheus.Gauge
	launchesTotal       prometheus.Counter
	launchFailures      *prometheus.CounterVec
	exitsTotal          *prometheus.CounterVec
	terminationsTotal   prometheus.Counter
	terminationFailures *prometheus.CounterVec
	foregroundExitCode  prometheus.Gauge
	sessionSeconds      prometheus.Gauge
}

// CollectorConfig holds configuration for the collector.
type CollectorConfig struct {
	Version             string
	ConfiguredProcesses int
}

// NewCollector creates a new metrics collector on the default registry.
func NewCollector(cfg CollectorConfig) *Collector {
	return NewCollectorWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewCollectorWithRegistry creates a collector with a custom registry.
// Useful for testing.
func NewCollectorWithRegistry(cfg CollectorConfig, registry prometheus.Registerer) *Collector {
	c := &Collector{
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "demo_stack_info",
				Help: "Information about the orchestrator (value always 1)",
			},
			[]string{"version"},
		),
		configuredProcesses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "demo_stack_configured_processes",
				Help: "Number of processes configured for the session",
			},
		),
		runningProcesses: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "demo_stack_running_processes",
				Help: "Managed processes currently running",
			},
		),
		launchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "demo_stack_launches_total",
				Help: "Total successful process launches",
			},
		),
		launchFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_stack_launch_failures_total",
				Help: "Launch failures by process",
			},
			[]string{"process"},
		),
		exitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_stack_process_exits_total",
				Help: "Observed process exits by process",
			},
			[]string{"process"},
		),
		terminationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "demo_stack_terminations_total",
				Help: "Successful termination requests during teardown",
			},
		),
		terminationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "demo_stack_termination_failures_total",
				Help: "Termination failures by process",
			},
			[]string{"process"},
		),
		foregroundExitCode: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "demo_stack_foreground_exit_code",
				Help: "Exit code of the foreground simulator (-1 until it exits)",
			},
		),
		sessionSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "demo_stack_session_duration_seconds",
				Help: "Wall-clock duration of the completed session",
			},
		),
	}

	registry.MustRegister(
		c.info,
		c.configuredProcesses,
		c.runningProcesses,
		c.launchesTotal,
		c.launchFailures,
		c.exitsTotal,
		c.terminationsTotal,
		c.terminationFailures,
		c.foregroundExitCode,
		c.sessionSeconds,
	)

	c.info.WithLabelValues(cfg.Version).Set(1)
	c.configuredProcesses.Set(float64(cfg.ConfiguredProcesses))
	c.foregroundExitCode.Set(-1)

	return c
}

// ProcessLaunched records a successful launch.
func (c *Collector) ProcessLaunched(name string) {
	c.launchesTotal.Inc()
	c.runningProcesses.Inc()
}

// LaunchFailed records a failed launch attempt.
func (c *Collector) LaunchFailed(name string) {
	c.launchFailures.WithLabelValues(name).Inc()
}

// ProcessExited records an observed exit.
func (c *Collector) ProcessExited(name string) {
	c.exitsTotal.WithLabelValues(name).Inc()
	c.runningProcesses.Dec()
}

// TerminationSignaled records a successful teardown termination request.
func (c *Collector) TerminationSignaled(name string) {
	c.terminationsTotal.Inc()
}

// TerminationFailed records a failed teardown termination request.
func (c *Collector) TerminationFailed(name string) {
	c.terminationFailures.WithLabelValues(name).Inc()
}

// SetForegroundExitCode records the foreground process's exit status.
func (c *Collector) SetForegroundExitCode(code int) {
	c.foregroundExitCode.Set(float64(code))
}

// SetSessionDuration records the completed session's duration.
func (c *Collector) SetSessionDuration(d time.Duration) {
	c.sessionSeconds.Set(d.Seconds())
}
