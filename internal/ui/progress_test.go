package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"escheck/internal/pipeline"
)

func TestProgressModelTracksStatuses(t *testing.T) {
	events := make(chan pipeline.Event)
	m := NewProgressModel("escheck", []string{"a.js", "b.html"}, events).(*progressModel)

	m.applyEvent(pipeline.Event{Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{File: "a.js", Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})
	if got := m.fraction(); got != 0.25 {
		t.Fatalf("fraction = %v, want 0.25", got)
	}
	m.applyEvent(pipeline.Event{File: "a.js", Stage: pipeline.StageCheck, Status: pipeline.StatusFailed})
	m.applyEvent(pipeline.Event{File: "b.html", Stage: pipeline.StageCheck, Status: pipeline.StatusCached})
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction = %v, want 1", got)
	}

	view := m.View()
	for _, want := range []string{"escheck (check)", "failed a.js", "cached b.html"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModelAddsUnknownFiles(t *testing.T) {
	m := NewProgressModel("escheck", nil, nil).(*progressModel)
	if m.View() != "" {
		t.Fatalf("empty model should render nothing")
	}
	m.applyEvent(pipeline.Event{File: "late.js", Status: pipeline.StatusQueued})
	m.applyEvent(pipeline.Event{File: "late.js", Status: pipeline.StatusWorking})
	if len(m.items) != 1 || m.items[0].status != pipeline.StatusWorking {
		t.Fatalf("items = %+v", m.items)
	}
	if !strings.Contains(m.View(), "checking late.js") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestProgressModelQuitsWhenEventsClose(t *testing.T) {
	events := make(chan pipeline.Event)
	close(events)
	m := NewProgressModel("escheck", []string{"a.js"}, events).(*progressModel)
	if _, ok := m.listenForEvent()().(doneMsg); !ok {
		t.Fatalf("closed channel should yield doneMsg")
	}
	m.Update(doneMsg{})
	if !m.done || !strings.HasPrefix(m.View(), "done: ") {
		t.Fatalf("model not finished: %q", m.View())
	}
}

func TestProgressModelInterrupt(t *testing.T) {
	m := NewProgressModel("escheck", []string{"a.js"}, nil)
	if Interrupted(m) {
		t.Fatal("fresh model reports interrupt")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !Interrupted(m) {
		t.Fatal("ctrl+c not recorded")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("dist/assets/index-abcdef.js", 12); got != "dist/asse..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("a.js", 12); got != "a.js" {
		t.Fatalf("truncate = %q", got)
	}
}
