// Package stats collects per-process lifecycle statistics for a session and
// formats the exit summary displayed when the orchestrator shuts down.
package stats

import (
	"math"
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// ProcessRecord captures the final lifecycle facts for one managed process.
type ProcessRecord struct {
	Name     string
	Role     string
	ExitCode int
	Uptime   time.Duration
}

// Tracker accumulates process records over a session.
//
// Thread-safe: records arrive from supervisor callbacks on multiple
// goroutines.
type Tracker struct {
	mu        sync.Mutex
	records   []ProcessRecord
	exitCodes map[int]int
	// TDigest is not thread-safe; guarded by mu.
	uptimeDigest *tdigest.TDigest
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		exitCodes:    make(map[int]int),
		uptimeDigest: tdigest.NewWithCompression(100), // ~100 centroids, ~10KB
	}
}

// Record adds a completed process to the tracker.
func (t *Tracker) Record(rec ProcessRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = append(t.records, rec)
	t.exitCodes[rec.ExitCode]++
	t.uptimeDigest.Add(rec.Uptime.Seconds(), 1)
}

// UptimeSummary is a snapshot of the tracker at session end.
type UptimeSummary struct {
	Records   []ProcessRecord
	ExitCodes map[int]int

	MinUptime time.Duration
	MaxUptime time.Duration
	AvgUptime time.Duration

	// Percentiles from the T-Digest.
	UptimeP50 time.Duration
	UptimeP95 time.Duration
	UptimeP99 time.Duration
}

// Summary computes the final uptime distribution across recorded processes.
func (t *Tracker) Summary() *UptimeSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := &UptimeSummary{
		Records:   append([]ProcessRecord(nil), t.records...),
		ExitCodes: make(map[int]int, len(t.exitCodes)),
	}
	for code, count := range t.exitCodes {
		s.ExitCodes[code] = count
	}

	if len(t.records) == 0 {
		return s
	}

	var total time.Duration
	s.MinUptime = t.records[0].Uptime
	for _, rec := range t.records {
		total += rec.Uptime
		if rec.Uptime < s.MinUptime {
			s.MinUptime = rec.Uptime
		}
		if rec.Uptime > s.MaxUptime {
			s.MaxUptime = rec.Uptime
		}
	}
	s.AvgUptime = total / time.Duration(len(t.records))

	s.UptimeP50 = quantileDuration(t.uptimeDigest, 0.50)
	s.UptimeP95 = quantileDuration(t.uptimeDigest, 0.95)
	s.UptimeP99 = quantileDuration(t.uptimeDigest, 0.99)

	return s
}

// Count returns the number of recorded processes.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

func quantileDuration(d *tdigest.TDigest, q float64) time.Duration {
	v := d.Quantile(q)
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return time.Duration(v * float64(time.Second))
}
