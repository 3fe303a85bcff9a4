package main

import (
	"context"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"escheck/internal/driver"
	"escheck/internal/pipeline"
	"escheck/internal/ui"
)

// progressRelay lets one Runner feed a fresh progress view on every run.
type progressRelay struct {
	mu sync.Mutex
	ch chan<- pipeline.Event
}

func (r *progressRelay) OnEvent(ev pipeline.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ch != nil {
		r.ch <- ev
	}
}

func (r *progressRelay) attach(ch chan<- pipeline.Event) {
	r.mu.Lock()
	r.ch = ch
	r.mu.Unlock()
}

type checkOutcome struct {
	state *driver.RunState
	err   error
}

// runCheckWithUI runs one check while a Bubble Tea view renders the
// progress events relayed from the runner.
func runCheckWithUI(ctx context.Context, title string, runner *driver.Runner, relay *progressRelay, emit driver.Emit) (*driver.RunState, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)
	relay.attach(events)

	go func() {
		state, err := runner.Run(ctx, emit)
		relay.attach(nil)
		outcomeCh <- checkOutcome{state: state, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	final, uiErr := program.Run()
	// the view may be gone before the run is; keep the runner from blocking
	go func() {
		for range events {
		}
	}()
	if ui.Interrupted(final) {
		cancel()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.state, uiErr
	}
	return outcome.state, outcome.err
}
