// ABOUTME: Tests for the monitor TUI's pure View rendering
package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestViewRendersSnapshotFields(t *testing.T) {
	m := tuiModel{
		snapshot: Snapshot{
			WorldName:     "demo",
			SampleRate:    48000,
			BlockSize:     1024,
			ActiveSources: 3,
			Overruns:      0,
			Underruns:     5,
			RecentEvents:  []string{"SourceStarted{1}", "SourceLooped{1,1}"},
		},
		startTime: time.Now(),
	}

	out := m.View()
	for _, want := range []string{"demo", "48000", "1024", "3", "5", "SourceStarted{1}"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q in output:\n%s", want, out)
		}
	}
}

func TestViewShowsShuttingDownWhenQuitting(t *testing.T) {
	m := tuiModel{quitting: true}
	out := m.View()
	if !strings.Contains(out, "Shutting down") {
		t.Errorf("View() = %q, want shutdown message", out)
	}
}

func TestUpdateHandlesQuitKey(t *testing.T) {
	quitChan := make(chan struct{}, 1)
	m := tuiModel{quitChan: quitChan}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	nm := next.(tuiModel)
	if !nm.quitting {
		t.Error("expected quitting to be true after q key")
	}
	select {
	case <-quitChan:
	default:
		t.Error("expected quitChan to receive a signal")
	}
}
