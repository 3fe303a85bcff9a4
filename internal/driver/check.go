package driver

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"escheck/internal/diag"
	"escheck/internal/htmlscript"
	"escheck/internal/pipeline"
	"escheck/internal/source"
	"escheck/internal/syntax"
	"escheck/internal/trace"
)

// checkMetrics are folded into the RunState once every file is done.
type checkMetrics struct {
	fragments  atomic.Int64
	suppressed atomic.Int64
	cacheHits  atomic.Int64
}

// check fans the candidates out over at most Jobs goroutines. Each file
// reports into its own bag; bags are merged after the join so the run's bag
// is never written concurrently.
func (r *Runner) check(ctx context.Context, candidates []candidate, state *RunState) error {
	if len(candidates) == 0 {
		return nil
	}
	base := state.FileSet.BaseDir()
	displays := make([]string, len(candidates))
	for i, c := range candidates {
		displays[i] = displayPath(c.path, base)
	}
	pipeline.EmitQueued(r.opts.Progress, displays)

	builder := &DiagnosticBuilder{Version: state.Version, Exclude: r.opts.Exclude}
	if r.opts.SourceMaps {
		builder.Maps = NewSourceMaps()
	}

	var metrics checkMetrics
	bags := make([]*diag.Bag, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.opts.Jobs, len(candidates)))
	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			bags[i] = diag.NewBag(r.opts.MaxDiagnostics)
			r.checkFile(gctx, c, displays[i], state, builder, bags[i], &metrics)
			return nil
		})
	}
	err := g.Wait()

	for _, bag := range bags {
		if bag != nil {
			state.Bag.Merge(bag)
		}
	}
	state.Bag.Dedup()
	state.Bag.Sort(state.FileSet)
	if r.opts.MaxDiagnostics > 0 {
		state.Bag.Truncate(r.opts.MaxDiagnostics)
	}
	state.Fragments = int(metrics.fragments.Load())
	state.Suppressed = int(metrics.suppressed.Load())
	state.CacheHits = int(metrics.cacheHits.Load())
	return err
}

func (r *Runner) checkFile(ctx context.Context, c candidate, display string, state *RunState, builder *DiagnosticBuilder, bag *diag.Bag, m *checkMetrics) {
	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+display)
	started := time.Now()
	sink := r.opts.Progress
	pipeline.Emit(sink, pipeline.Event{File: display, Stage: pipeline.StageCheck, Status: pipeline.StatusWorking})

	finish := func(status pipeline.Status, err error) {
		elapsed := time.Since(started)
		state.Timer.Add("check_file", elapsed)
		pipeline.Emit(sink, pipeline.Event{File: display, Stage: pipeline.StageCheck, Status: status, Err: err, Elapsed: elapsed})
		span.End(string(status))
	}

	file, err := loadCandidate(state.FileSet, c)
	if err != nil {
		// register the path so the warning still resolves to a file
		id := state.FileSet.Add(c.path, nil, source.FileVirtual)
		bag.Add(diag.NewWarning(diag.IOLoadFileError, source.Span{File: id},
			fmt.Sprintf("failed to read %s: %v", display, err)))
		finish(pipeline.StatusError, err)
		return
	}

	if builder.Maps != nil && c.kind == AssetScript {
		if mapErr := builder.Maps.Load(file); mapErr != nil {
			bag.Add(diag.NewWarning(diag.IOSourceMapError, source.Span{File: file.ID}, mapErr.Error()))
		}
	}

	res, cached, ok := r.analyze(ctx, c.kind, file)
	if !ok {
		finish(pipeline.StatusError, ctx.Err())
		return
	}
	if cached {
		m.cacheHits.Add(1)
	}
	m.fragments.Add(int64(res.Fragments))

	for i := range res.Findings {
		finding := &res.Findings[i]
		d := builder.Build(&finding.Failure, file, finding.Fragment)
		if d == nil {
			m.suppressed.Add(1)
			continue
		}
		bag.Add(d)
	}

	switch {
	case bag.HasErrors():
		finish(pipeline.StatusFailed, nil)
	case cached:
		finish(pipeline.StatusCached, nil)
	default:
		finish(pipeline.StatusDone, nil)
	}
}

// analyze returns the findings for file, from a cache when possible. ok is
// false only when ctx was cancelled before the file was fully parsed.
func (r *Runner) analyze(ctx context.Context, kind AssetKind, file *source.File) (res fileResult, cached, ok bool) {
	key := resultKey(file.Hash, r.opts.Version)
	if hit, found := r.cache.get(file.Path, key); found {
		return hit, true, true
	}
	if r.opts.DiskCache != nil {
		var payload DiskPayload
		found, err := r.opts.DiskCache.Get(key, &payload)
		if err != nil {
			trace.Fail(ctx, trace.ScopeFile, "disk_cache", err)
		}
		if found && payload.Version == uint8(r.opts.Version) {
			res = fromDiskPayload(&payload)
			r.cache.put(file.Path, key, res)
			return res, true, true
		}
	}

	var cacheable bool
	switch kind {
	case AssetHTML:
		res, cacheable, ok = r.checkHTML(ctx, file)
	default:
		res, cacheable, ok = r.checkScript(ctx, file.Content)
	}
	if !ok || !cacheable {
		return res, false, ok
	}
	r.cache.put(file.Path, key, fileResult{Findings: stripFragmentText(res.Findings), Fragments: res.Fragments})
	if r.opts.DiskCache != nil {
		if err := r.opts.DiskCache.Put(key, toDiskPayload(uint8(r.opts.Version), res)); err != nil {
			trace.Fail(ctx, trace.ScopeFile, "disk_cache", err)
		}
	}
	return res, false, true
}

func (r *Runner) checkScript(ctx context.Context, src []byte) (res fileResult, cacheable, ok bool) {
	f := r.checker.TryParse(ctx, src, r.opts.Version)
	if f == nil {
		return res, true, true
	}
	if f.Kind == syntax.KindAborted && ctx.Err() != nil {
		return res, false, false
	}
	res.Findings = append(res.Findings, Finding{Failure: *f})
	return res, f.Kind != syntax.KindAborted, true
}

func (r *Runner) checkHTML(ctx context.Context, file *source.File) (res fileResult, cacheable, ok bool) {
	frags, stats, err := htmlscript.Extract(ctx, file.Content)
	if err != nil {
		if ctx.Err() != nil {
			return res, false, false
		}
		// the document is skipped like any other unreadable boundary
		trace.Fail(ctx, trace.ScopeFile, "extract", err)
		return res, false, true
	}
	trace.Point(ctx, trace.ScopeFile, "extract",
		fmt.Sprintf("inline=%d external=%d foreign=%d unbalanced=%d", stats.Inline, stats.External, stats.NonScript, stats.Unbalanced))

	res.Fragments = len(frags)
	cacheable = true
	for i := range frags {
		frag := frags[i]
		_, fragSpan := trace.Start(ctx, trace.ScopeFragment, fmt.Sprintf("fragment:%d:%d", frag.Line, frag.Column))
		f := r.checker.TryParse(ctx, []byte(frag.Text), r.opts.Version)
		fragSpan.End(f.String())
		if f == nil {
			continue
		}
		if f.Kind == syntax.KindAborted {
			if ctx.Err() != nil {
				return res, false, false
			}
			cacheable = false
		}
		res.Findings = append(res.Findings, Finding{Failure: *f, Fragment: &frag})
	}
	return res, cacheable, true
}

func loadCandidate(fs *source.FileSet, c candidate) (*source.File, error) {
	if c.contents != nil {
		return fs.Get(fs.AddVirtual(c.path, c.contents)), nil
	}
	id, err := fs.Load(c.path)
	if err != nil {
		return nil, err
	}
	return fs.Get(id), nil
}

func displayPath(path, base string) string {
	if base == "" {
		return path
	}
	if rel, err := source.RelativePath(path, base); err == nil {
		return rel
	}
	return path
}
