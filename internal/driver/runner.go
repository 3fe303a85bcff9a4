package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"escheck/internal/ecma"
	"escheck/internal/observ"
	"escheck/internal/pipeline"
	"escheck/internal/syntax"
	"escheck/internal/trace"
)

// Runner checks the output of one bundler configuration. A Runner outlives
// many runs (watch mode, rebuilds); each Run gets a fresh RunState and runs
// are serialised.
type Runner struct {
	opts    Options
	checker *syntax.Checker
	cache   *ResultCache

	mu    sync.Mutex
	phase phaseTracker
}

// NewRunner validates opts and creates a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if !opts.Version.Valid() {
		return nil, fmt.Errorf("%w: %d", ecma.ErrUnknownVersion, opts.Version)
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	r := &Runner{
		opts:    opts,
		checker: syntax.NewChecker(),
	}
	if opts.Cache {
		r.cache = NewResultCache(64)
	}
	r.phase.observer = opts.OnPhase
	return r, nil
}

// Version returns the grammar the Runner checks against.
func (r *Runner) Version() ecma.Version {
	return r.opts.Version
}

// Phase returns the current phase; PhaseIdle between runs.
func (r *Runner) Phase() Phase {
	return r.phase.load()
}

// Run checks every script in emit. Per-file problems become diagnostics;
// the returned error is non-nil only when ctx is cancelled or the report
// callback fails. The state is returned in both cases.
func (r *Runner) Run(ctx context.Context, emit Emit) (*RunState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.phase.enter(PhaseIdle)

	ctx, span := trace.Start(ctx, trace.ScopeRun, "run")
	root := emit.OutputRoot
	if root == "" {
		root = "."
	}
	root = resolveRoot(root)
	displayBase := r.opts.RootPath
	if displayBase == "" {
		displayBase = root
	}
	state := newRunState(r.opts.Version, root, displayBase, r.opts.MaxDiagnostics)
	if r.opts.EnableTimings {
		state.Timer = observ.NewTimer()
	}

	r.phase.enter(PhaseCollecting)
	started := time.Now()
	phaseCtx, phaseSpan := trace.Start(ctx, trace.ScopePhase, "collect")
	idx := state.Timer.Begin("collect")
	candidates := r.collect(phaseCtx, emit, state)
	note := fmt.Sprintf("files=%d skipped=%d ignored=%d", len(candidates), len(state.Skipped), state.Ignored)
	state.Timer.End(idx, note)
	phaseSpan.End(note)
	state.Timings.Set(pipeline.StageCollect, time.Since(started))

	r.phase.enter(PhaseChecking)
	started = time.Now()
	phaseCtx, phaseSpan = trace.Start(ctx, trace.ScopePhase, "check")
	idx = state.Timer.Begin("check")
	err := r.check(phaseCtx, candidates, state)
	note = fmt.Sprintf("diagnostics=%d", state.Bag.Len())
	state.Timer.End(idx, note)
	phaseSpan.End(note)
	state.Timings.Set(pipeline.StageCheck, time.Since(started))
	if err != nil {
		span.End("cancelled")
		return state, err
	}

	r.phase.enter(PhaseReporting)
	if r.opts.Report != nil {
		started = time.Now()
		phaseCtx, phaseSpan = trace.Start(ctx, trace.ScopePhase, "report")
		idx = state.Timer.Begin("report")
		err = r.opts.Report(phaseCtx, state)
		state.Timer.End(idx, "")
		phaseSpan.End("")
		state.Timings.Set(pipeline.StageReport, time.Since(started))
		if err != nil {
			span.End("report failed")
			return state, fmt.Errorf("report: %w", err)
		}
	}
	span.Set("version", state.Version.String()).
		Set("files", strconv.Itoa(len(state.Checked))).
		Set("diagnostics", strconv.Itoa(state.Bag.Len())).
		End("")
	return state, nil
}
