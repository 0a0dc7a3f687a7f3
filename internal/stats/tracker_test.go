package stats

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTracker_Empty(t *testing.T) {
	tr := NewTracker()

	sum := tr.Summary()
	if len(sum.Records) != 0 {
		t.Errorf("records = %d, want 0", len(sum.Records))
	}
	if sum.UptimeP50 != 0 || sum.MaxUptime != 0 {
		t.Errorf("empty summary has nonzero values: %+v", sum)
	}
	if tr.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tr.Count())
	}
}

func TestTracker_SingleRecord(t *testing.T) {
	tr := NewTracker()
	tr.Record(ProcessRecord{Name: "simulator", Role: "foreground", ExitCode: 0, Uptime: 10 * time.Second})

	sum := tr.Summary()
	if len(sum.Records) != 1 {
		t.Fatalf("records = %d, want 1", len(sum.Records))
	}
	if sum.MinUptime != 10*time.Second || sum.MaxUptime != 10*time.Second {
		t.Errorf("min/max = %v/%v, want 10s/10s", sum.MinUptime, sum.MaxUptime)
	}
	if sum.AvgUptime != 10*time.Second {
		t.Errorf("avg = %v, want 10s", sum.AvgUptime)
	}
	if sum.ExitCodes[0] != 1 {
		t.Errorf("exit code counts = %v", sum.ExitCodes)
	}
}

func TestTracker_Distribution(t *testing.T) {
	tr := NewTracker()
	for i := 1; i <= 100; i++ {
		tr.Record(ProcessRecord{
			Name:   fmt.Sprintf("proc-%d", i),
			Role:   "background",
			Uptime: time.Duration(i) * time.Second,
		})
	}

	sum := tr.Summary()
	if sum.MinUptime != 1*time.Second {
		t.Errorf("min = %v, want 1s", sum.MinUptime)
	}
	if sum.MaxUptime != 100*time.Second {
		t.Errorf("max = %v, want 100s", sum.MaxUptime)
	}

	// T-Digest is approximate; allow a small tolerance around the true
	// percentiles of the uniform 1..100s distribution.
	within := func(got time.Duration, want, tol float64) bool {
		return got.Seconds() >= want-tol && got.Seconds() <= want+tol
	}
	if !within(sum.UptimeP50, 50, 3) {
		t.Errorf("P50 = %v, want ~50s", sum.UptimeP50)
	}
	if !within(sum.UptimeP95, 95, 3) {
		t.Errorf("P95 = %v, want ~95s", sum.UptimeP95)
	}
	if !within(sum.UptimeP99, 99, 3) {
		t.Errorf("P99 = %v, want ~99s", sum.UptimeP99)
	}
}

func TestTracker_ExitCodeCounts(t *testing.T) {
	tr := NewTracker()
	tr.Record(ProcessRecord{Name: "backend", ExitCode: 143})
	tr.Record(ProcessRecord{Name: "upload_server", ExitCode: 143})
	tr.Record(ProcessRecord{Name: "simulator", ExitCode: 0})

	sum := tr.Summary()
	if sum.ExitCodes[143] != 2 {
		t.Errorf("exit code 143 count = %d, want 2", sum.ExitCodes[143])
	}
	if sum.ExitCodes[0] != 1 {
		t.Errorf("exit code 0 count = %d, want 1", sum.ExitCodes[0])
	}
}

func TestTracker_ConcurrentRecord(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr.Record(ProcessRecord{
				Name:   fmt.Sprintf("proc-%d", i),
				Uptime: time.Second,
			})
		}(i)
	}
	wg.Wait()

	if tr.Count() != 10 {
		t.Errorf("Count() = %d, want 10", tr.Count())
	}
}
