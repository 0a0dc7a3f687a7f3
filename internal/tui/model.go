package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/go-demo-stack/internal/process"
	"github.com/randomizedcoder/go-demo-stack/internal/supervisor"
)

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// SnapshotSource provides the current state of all managed processes.
// Implemented by supervisor.Supervisor.
type SnapshotSource interface {
	Snapshot() []supervisor.ProcessStatus
}

// Model represents the TUI state.
type Model struct {
	logDir      string
	metricsAddr string

	source    SnapshotSource
	processes []supervisor.ProcessStatus

	startTime  time.Time
	lastUpdate time.Time

	width  int
	height int

	quitting bool
}

// Config holds TUI configuration.
type Config struct {
	LogDir      string
	MetricsAddr string
	Source      SnapshotSource
}

// New creates a new TUI model.
func New(cfg Config) Model {
	return Model{
		logDir:      cfg.LogDir,
		metricsAddr: cfg.MetricsAddr,
		source:      cfg.Source,
		startTime:   time.Now(),
		lastUpdate:  time.Now(),
		width:       80,
		height:      24,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.source != nil {
			m.processes = m.source.Snapshot()
		}
		m.lastUpdate = time.Now()
		return m, tickCmd()

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderDashboard()
}

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Elapsed returns the time since the session started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// RunningCount returns the number of processes currently running.
func (m Model) RunningCount() int {
	count := 0
	for _, p := range m.processes {
		if p.State == process.StateRunning {
			count++
		}
	}
	return count
}

// SendQuit sends a quit message to the TUI.
func SendQuit(p *tea.Program) {
	if p != nil {
		p.Send(QuitMsg{})
	}
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
