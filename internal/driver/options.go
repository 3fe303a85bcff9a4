package driver

import (
	"context"

	"escheck/internal/ecma"
	"escheck/internal/exclude"
	"escheck/internal/pipeline"
)

// ReportFunc renders a finished run. It is called in the Reporting phase,
// after every file has been checked.
type ReportFunc func(ctx context.Context, state *RunState) error

// Options configure a Runner. They are fixed for the Runner's lifetime.
type Options struct {
	// Version is the grammar every script is checked against.
	Version ecma.Version
	// Exclude drops diagnostics whose path (or diagnostic) matches.
	Exclude exclude.Rules
	// ExcludeOutput drops emitted files before they are parsed.
	ExcludeOutput exclude.Rules
	// RootPath shortens displayed paths; the output root is used when empty.
	RootPath string
	// Jobs bounds the number of files checked at once (GOMAXPROCS when <= 0).
	Jobs int
	// MaxDiagnostics caps the run's diagnostics (0 = unlimited).
	MaxDiagnostics int
	// Cache keeps per-file results in memory across runs of the same Runner.
	Cache bool
	// DiskCache persists per-file results between processes when set.
	DiskCache *DiskCache
	// SourceMaps resolves original positions for scripts that carry a map.
	SourceMaps bool
	// EnableTimings records per-phase durations in RunState.Timer.
	EnableTimings bool

	Progress pipeline.ProgressSink
	OnPhase  PhaseObserver
	Report   ReportFunc
}
