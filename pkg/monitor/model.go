// ABOUTME: bubbletea model and view for the status monitor TUI
// ABOUTME: Same tick/status-message/quit lifecycle as a standard bubbletea status view

package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Snapshot is the subset of engine state the monitor displays.
type Snapshot struct {
	WorldName     string
	SampleRate    int
	BlockSize     int
	ActiveSources int64
	Overruns      uint64
	Underruns     uint64
	RecentEvents  []string // most recent first, already formatted
}

// Monitor drives a bubbletea program displaying Snapshot updates.
type Monitor struct {
	worldName string
	program   *tea.Program
	updates   chan Snapshot
	quitChan  chan struct{}
}

// New creates a Monitor for worldName. Start must be called to begin
// rendering.
func New(worldName string) *Monitor {
	return &Monitor{
		worldName: worldName,
		updates:   make(chan Snapshot, 10),
		quitChan:  make(chan struct{}, 1),
	}
}

// Start runs the TUI until the user quits or Stop is called. It blocks.
func (m *Monitor) Start() error {
	model := tuiModel{
		snapshot:  Snapshot{WorldName: m.worldName},
		startTime: time.Now(),
		quitChan:  m.quitChan,
	}

	m.program = tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		for snap := range m.updates {
			if m.program != nil {
				m.program.Send(snapshotMsg(snap))
			}
		}
	}()

	_, err := m.program.Run()
	return err
}

// Update pushes a fresh Snapshot to the running TUI. It never blocks; a
// snapshot arriving while the channel is full is dropped in favor of the
// next one.
func (m *Monitor) Update(snap Snapshot) {
	select {
	case m.updates <- snap:
	default:
	}
}

// Stop ends the TUI program and closes the update channel.
func (m *Monitor) Stop() {
	if m.program != nil {
		m.program.Quit()
	}
	close(m.updates)
}

// QuitChan signals when the user requested quit from within the TUI.
func (m *Monitor) QuitChan() <-chan struct{} {
	return m.quitChan
}

type tickMsg time.Time
type snapshotMsg Snapshot

type tuiModel struct {
	snapshot  Snapshot
	startTime time.Time
	quitting  bool
	quitChan  chan struct{}
}

func (m tuiModel) Init() tea.Cmd {
	return tickEvery()
}

func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			select {
			case m.quitChan <- struct{}{}:
			default:
			}
			return m, tea.Quit
		}

	case tickMsg:
		return m, tickEvery()

	case snapshotMsg:
		m.snapshot = Snapshot(msg)
		return m, nil
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.quitting {
		return "Shutting down monitor...\n"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	warnStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
	eventHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))

	var b strings.Builder

	b.WriteString(titleStyle.Render("spatialrt monitor"))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("World: "))
	b.WriteString(valueStyle.Render(m.snapshot.WorldName))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Format: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d Hz, block %d", m.snapshot.SampleRate, m.snapshot.BlockSize)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Uptime: "))
	b.WriteString(valueStyle.Render(time.Since(m.startTime).Round(time.Second).String()))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Active sources: "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.snapshot.ActiveSources)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Overruns: "))
	if m.snapshot.Overruns > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d", m.snapshot.Overruns)))
	} else {
		b.WriteString(valueStyle.Render("0"))
	}
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Underruns: "))
	if m.snapshot.Underruns > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d", m.snapshot.Underruns)))
	} else {
		b.WriteString(valueStyle.Render("0"))
	}
	b.WriteString("\n\n")

	b.WriteString(eventHeaderStyle.Render(fmt.Sprintf("Recent events (%d)", len(m.snapshot.RecentEvents))))
	b.WriteString("\n\n")

	if len(m.snapshot.RecentEvents) == 0 {
		b.WriteString(valueStyle.Render("  (none)"))
		b.WriteString("\n")
	} else {
		for _, ev := range m.snapshot.RecentEvents {
			b.WriteString("  - ")
			b.WriteString(valueStyle.Render(ev))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press 'q' or Ctrl+C to quit"))
	return b.String()
}
