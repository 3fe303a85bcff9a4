package pipeline

import (
	"testing"
	"time"
)

func TestTimingsSum(t *testing.T) {
	var tm Timings
	if tm.Has(StageCheck) {
		t.Fatal("empty timings should have no stages")
	}
	tm.Set(StageCollect, 2*time.Millisecond)
	tm.Set(StageCheck, 5*time.Millisecond)
	if got := tm.Sum(StageCollect, StageCheck, StageReport); got != 7*time.Millisecond {
		t.Fatalf("Sum = %v", got)
	}
	if !tm.Has(StageCheck) || tm.Duration(StageReport) != 0 {
		t.Fatal("unexpected stage state")
	}
}

func TestRecorderAndTerminal(t *testing.T) {
	var rec Recorder
	EmitQueued(&rec, []string{"a.js", "b.js"})
	Emit(&rec, Event{File: "a.js", Stage: StageCheck, Status: StatusDone})
	Emit(nil, Event{})

	events := rec.Events()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Status.Terminal() || !events[2].Status.Terminal() {
		t.Fatalf("unexpected terminal flags: %+v", events)
	}
}
