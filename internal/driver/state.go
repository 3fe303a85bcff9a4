package driver

import (
	"escheck/internal/diag"
	"escheck/internal/ecma"
	"escheck/internal/observ"
	"escheck/internal/pipeline"
	"escheck/internal/source"
)

// RunState is everything one run produced. A new RunState is created for
// every Run; the Runner keeps no reference to it afterwards.
type RunState struct {
	Version ecma.Version
	// OutputRoot is the absolute directory assets were resolved against.
	OutputRoot string
	FileSet    *source.FileSet
	Bag        *diag.Bag

	// Checked lists the absolute paths that were parsed, in emission order.
	Checked []string
	// Skipped lists the paths removed by output exclusion.
	Skipped []string
	// Ignored counts emitted files that are neither HTML nor JavaScript.
	Ignored int
	// Fragments counts inline scripts parsed out of HTML documents.
	Fragments int
	// Suppressed counts diagnostics dropped by diagnostic-level exclusion.
	Suppressed int
	// CacheHits counts files whose result came from a cache.
	CacheHits int

	Timer   *observ.Timer
	Timings pipeline.Timings
}

func newRunState(version ecma.Version, root, displayBase string, limit int) *RunState {
	fs := source.NewFileSetWithBase(displayBase)
	return &RunState{
		Version:    version,
		OutputRoot: root,
		FileSet:    fs,
		Bag:        diag.NewBag(limit),
	}
}

// Diagnostics returns the run's diagnostics in report order.
func (s *RunState) Diagnostics() []*diag.Diagnostic {
	if s == nil || s.Bag == nil {
		return nil
	}
	return s.Bag.Items()
}

// Partition splits diagnostics into syntax findings and read failures.
func (s *RunState) Partition() (syntax, io []*diag.Diagnostic) {
	if s == nil || s.Bag == nil {
		return nil, nil
	}
	return s.Bag.Partition()
}

// Failed reports whether any syntax diagnostic survived exclusion.
func (s *RunState) Failed() bool {
	return s != nil && s.Bag != nil && s.Bag.HasErrors()
}

// Clean reports whether the run produced no diagnostics at all.
func (s *RunState) Clean() bool {
	return s == nil || s.Bag == nil || s.Bag.Len() == 0
}
