package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SummaryConfig holds session-level facts for the exit summary.
type SummaryConfig struct {
	// Duration is the total session duration.
	Duration time.Duration

	// ConfiguredProcesses is the number of processes the plan declared.
	ConfiguredProcesses int

	// LogDir is where per-process log files were written.
	LogDir string

	// MetricsAddr is the Prometheus metrics endpoint address.
	MetricsAddr string

	// ForegroundName and ForegroundExitCode describe the simulator outcome.
	ForegroundName     string
	ForegroundExitCode int

	// LaunchFailures and TerminationFailures are keyed by process name.
	LaunchFailures      map[string]error
	TerminationFailures map[string]error

	// ForegroundLogTail holds the last lines of the foreground log, shown
	// only when the foreground process failed.
	ForegroundLogTail []string
}

// FormatExitSummary formats the session summary for display at program exit.
//
// The summary includes:
// - Run information
// - Per-process outcome table
// - Launch and termination failures (if any)
// - Uptime distribution
// - Exit code counts
func FormatExitSummary(sum *UptimeSummary, cfg SummaryConfig) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")
	b.WriteString("                          go-demo-stack Exit Summary\n")
	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n\n")

	// Run info
	fmt.Fprintf(&b, "Run Duration:           %s\n", FormatDuration(cfg.Duration))
	fmt.Fprintf(&b, "Configured Processes:   %d\n", cfg.ConfiguredProcesses)
	if cfg.LogDir != "" {
		fmt.Fprintf(&b, "Log Directory:          %s\n", cfg.LogDir)
	}
	if cfg.ForegroundName != "" {
		fmt.Fprintf(&b, "Foreground (%s):  exit code %d %s\n",
			cfg.ForegroundName, cfg.ForegroundExitCode, exitCodeLabel(cfg.ForegroundExitCode))
	}
	b.WriteString("\n")

	if sum != nil && len(sum.Records) > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                                 Processes\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		fmt.Fprintf(&b, "  %-16s %-12s %10s %12s\n", "Process", "Role", "Exit", "Uptime")
		b.WriteString("  " + strings.Repeat("─", 54) + "\n")
		for _, rec := range sum.Records {
			fmt.Fprintf(&b, "  %-16s %-12s %10d %12s\n",
				rec.Name, rec.Role, rec.ExitCode, FormatDuration(rec.Uptime))
		}
		b.WriteString("\n")
	}

	// Failures
	if len(cfg.LaunchFailures) > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                              Launch Failures\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
		for _, name := range sortedKeys(cfg.LaunchFailures) {
			fmt.Fprintf(&b, "  %-16s %v\n", name, cfg.LaunchFailures[name])
		}
		b.WriteString("\n")
	}
	if len(cfg.TerminationFailures) > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                           Termination Failures\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
		for _, name := range sortedKeys(cfg.TerminationFailures) {
			fmt.Fprintf(&b, "  %-16s %v\n", name, cfg.TerminationFailures[name])
		}
		b.WriteString("\n")
	}

	// Uptime distribution
	if sum != nil && len(sum.Records) > 1 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                            Uptime Distribution\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		fmt.Fprintf(&b, "  Min:                  %s\n", FormatDuration(sum.MinUptime))
		fmt.Fprintf(&b, "  P50 (median):         %s\n", FormatDuration(sum.UptimeP50))
		fmt.Fprintf(&b, "  P95:                  %s\n", FormatDuration(sum.UptimeP95))
		fmt.Fprintf(&b, "  P99:                  %s\n", FormatDuration(sum.UptimeP99))
		fmt.Fprintf(&b, "  Max:                  %s\n", FormatDuration(sum.MaxUptime))
		fmt.Fprintf(&b, "  Average:              %s\n", FormatDuration(sum.AvgUptime))
		b.WriteString("\n")
	}

	// Exit codes
	if sum != nil && len(sum.ExitCodes) > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		b.WriteString("                                Exit Codes\n")
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")

		codes := make([]int, 0, len(sum.ExitCodes))
		for code := range sum.ExitCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(&b, "  %3d %-16s %d\n", code, exitCodeLabel(code), sum.ExitCodes[code])
		}
		b.WriteString("\n")
	}

	// Foreground log tail (only present when the simulator failed)
	if len(cfg.ForegroundLogTail) > 0 {
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n")
		fmt.Fprintf(&b, "                       Last %d lines of %s log\n", len(cfg.ForegroundLogTail), cfg.ForegroundName)
		b.WriteString("───────────────────────────────────────────────────────────────────────────────\n\n")
		for _, line := range cfg.ForegroundLogTail {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	if cfg.MetricsAddr != "" {
		fmt.Fprintf(&b, "Metrics endpoint was: http://%s/metrics\n", cfg.MetricsAddr)
	}

	b.WriteString("═══════════════════════════════════════════════════════════════════════════════\n")

	return b.String()
}

func sortedKeys(m map[string]error) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// exitCodeLabel returns a human-readable label for common exit codes.
func exitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(clean)"
	case 1:
		return "(error)"
	case 130:
		return "(SIGINT)"
	case 137:
		return "(SIGKILL)"
	case 143:
		return "(SIGTERM)"
	default:
		return ""
	}
}

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
