// Package monitor samples system-wide CPU and memory usage while a session
// runs and writes the samples to a CSV file at shutdown.
package monitor

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Sample is one observation of system CPU and memory usage.
type Sample struct {
	Timestamp  time.Time
	CPUPercent float64
	MemUsedMB  float64
	MemPercent float64
}

// Monitor periodically reads /proc/stat and /proc/meminfo and buffers
// samples in memory. WriteCSV flushes them in one pass at session end.
type Monitor struct {
	interval time.Duration
	logger   *slog.Logger

	procStat    string
	procMeminfo string

	mu      sync.Mutex
	samples []Sample
	prev    cpuTimes
	hasPrev bool
}

// Config holds configuration for the monitor.
type Config struct {
	// Interval between samples.
	Interval time.Duration

	// ProcStat and ProcMeminfo override the /proc paths. For tests.
	ProcStat    string
	ProcMeminfo string
}

// New creates a monitor. Interval defaults to 500ms.
func New(cfg Config, logger *slog.Logger) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 500 * time.Millisecond
	}
	if cfg.ProcStat == "" {
		cfg.ProcStat = "/proc/stat"
	}
	if cfg.ProcMeminfo == "" {
		cfg.ProcMeminfo = "/proc/meminfo"
	}

	return &Monitor{
		interval:    cfg.Interval,
		logger:      logger,
		procStat:    cfg.ProcStat,
		procMeminfo: cfg.ProcMeminfo,
	}
}

// Run samples until ctx is cancelled. Intended to run in its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	m.logger.Debug("monitor_started", "interval", m.interval)

	// Prime the CPU counters so the first delta is meaningful.
	m.sampleOnce()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("monitor_stopped", "samples", m.Count())
			return
		case <-ticker.C:
			m.sampleOnce()
		}
	}
}

// Count returns the number of buffered samples.
func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples)
}

func (m *Monitor) sampleOnce() {
	now := time.Now()

	cur, err := readCPUTimes(m.procStat)
	if err != nil {
		m.logger.Warn("monitor_cpu_read_failed", "error", err)
		return
	}

	memUsedMB, memPercent, err := readMemUsage(m.procMeminfo)
	if err != nil {
		m.logger.Warn("monitor_mem_read_failed", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasPrev {
		m.prev = cur
		m.hasPrev = true
		return
	}

	cpu := cpuPercent(m.prev, cur)
	m.prev = cur

	m.samples = append(m.samples, Sample{
		Timestamp:  now,
		CPUPercent: cpu,
		MemUsedMB:  memUsedMB,
		MemPercent: memPercent,
	})
}

// WriteCSV writes all buffered samples to path, creating parent directories
// as needed. Columns: ts, cpu_percent, mem_used_mb, mem_percent.
func (m *Monitor) WriteCSV(path string) error {
	m.mu.Lock()
	samples := append([]Sample(nil), m.samples...)
	m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"ts", "cpu_percent", "mem_used_mb", "mem_percent"}); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			strconv.FormatFloat(float64(s.Timestamp.UnixNano())/1e9, 'f', 3, 64),
			strconv.FormatFloat(s.CPUPercent, 'f', 1, 64),
			strconv.FormatFloat(s.MemUsedMB, 'f', 1, 64),
			strconv.FormatFloat(s.MemPercent, 'f', 1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	m.logger.Info("system_stats_written", "path", path, "samples", len(samples))
	return nil
}

// cpuTimes holds the aggregate cpu line counters from /proc/stat.
type cpuTimes struct {
	idle  uint64
	total uint64
}

// readCPUTimes parses the aggregate "cpu" line of /proc/stat.
func readCPUTimes(path string) (cpuTimes, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cpuTimes{}, err
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return cpuTimes{}, fmt.Errorf("malformed cpu line: %q", line)
		}

		var t cpuTimes
		for i, field := range fields[1:] {
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return cpuTimes{}, fmt.Errorf("parsing cpu field %q: %w", field, err)
			}
			t.total += v
			// Fields: user nice system idle iowait irq softirq ...
			if i == 3 || i == 4 {
				t.idle += v
			}
		}
		return t, nil
	}
	return cpuTimes{}, fmt.Errorf("no cpu line in %s", path)
}

// cpuPercent computes utilization from two successive counter readings.
func cpuPercent(prev, cur cpuTimes) float64 {
	totalDelta := cur.total - prev.total
	if cur.total <= prev.total {
		return 0
	}
	idleDelta := cur.idle - prev.idle
	if cur.idle < prev.idle {
		idleDelta = 0
	}
	return 100 * float64(totalDelta-idleDelta) / float64(totalDelta)
}

// readMemUsage parses /proc/meminfo into used MB and used percent.
// Used is MemTotal - MemAvailable, matching what most tools report.
func readMemUsage(path string) (usedMB, usedPercent float64, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}

	var totalKB, availableKB uint64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			availableKB, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if totalKB == 0 {
		return 0, 0, fmt.Errorf("no MemTotal in %s", path)
	}

	usedKB := totalKB - availableKB
	usedMB = float64(usedKB) / 1024
	usedPercent = 100 * float64(usedKB) / float64(totalKB)
	return usedMB, usedPercent, nil
}
