package pipeline

import "time"

// Stage describes a phase of a check run.
type Stage string

const (
	// StageCollect normalises emitted assets and applies output exclusions.
	StageCollect Stage = "collect"
	// StageCheck parses each asset under the target grammar.
	StageCheck Stage = "check"
	// StageReport renders the collected diagnostics.
	StageReport Stage = "report"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	// StatusDone means the asset was checked and accepted.
	StatusDone Status = "done"
	// StatusFailed means the asset was checked and produced diagnostics.
	StatusFailed Status = "failed"
	// StatusError means the asset could not be read.
	StatusError Status = "error"
	// StatusCached means the result came from the result cache.
	StatusCached Status = "cached"
)

// Terminal reports whether no further events follow for the file.
func (s Status) Terminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusError, StatusCached:
		return true
	}
	return false
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: checking goroutines emit directly.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
