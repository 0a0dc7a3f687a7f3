package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/go-demo-stack/internal/process"
	"github.com/randomizedcoder/go-demo-stack/internal/supervisor"
)

// renderDashboard renders the full dashboard.
func (m Model) renderDashboard() string {
	sections := []string{
		m.renderHeader(),
		m.renderProcessTable(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" go-demo-stack │ Running: %d/%d │ Elapsed: %s ",
		m.RunningCount(),
		len(m.processes),
		formatDuration(m.Elapsed()),
	)
	return headerStyle.Width(m.width).Render(header)
}

func (m Model) renderProcessTable() string {
	rows := []string{
		sectionHeaderStyle.Render("Processes"),
		mutedStyle.Render(fmt.Sprintf("  %-16s %-12s %-8s %8s %10s  %s",
			"NAME", "ROLE", "STATE", "PID", "UPTIME", "LOG")),
	}

	if len(m.processes) == 0 {
		rows = append(rows, mutedStyle.Render("  (no processes yet)"))
	}
	for _, p := range m.processes {
		rows = append(rows, m.renderProcessRow(p))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return boxStyle.Width(m.width - 2).Render(content)
}

func (m Model) renderProcessRow(p supervisor.ProcessStatus) string {
	pid := "-"
	if p.State.HasPID() {
		pid = fmt.Sprintf("%d", p.PID)
	}

	state := p.State.String()
	style := stateStyle(p)
	if p.State == process.StateExited {
		state = fmt.Sprintf("exited(%d)", p.ExitCode)
	}

	logFile := filepath.Join(m.logDir, supervisor.LogFileName(p.Name))

	line := fmt.Sprintf("  %-16s %-12s %-8s %8s %10s  %s",
		p.Name,
		p.Role.String(),
		state,
		pid,
		formatDuration(p.Uptime),
		logFile,
	)
	return style.Render(line)
}

// stateStyle picks the row style for a process status.
func stateStyle(p supervisor.ProcessStatus) lipgloss.Style {
	switch p.State {
	case process.StateRunning:
		return statusRunning
	case process.StatePending:
		return statusPending
	case process.StateExited:
		if p.ExitCode != 0 {
			return statusFailed
		}
		return statusExited
	default:
		return baseStyle
	}
}

func (m Model) renderFooter() string {
	footer := fmt.Sprintf(" q: quit session │ metrics: http://%s/metrics │ updated %s ",
		m.metricsAddr,
		m.lastUpdate.Format("15:04:05"),
	)
	return footerStyle.Render(footer)
}
