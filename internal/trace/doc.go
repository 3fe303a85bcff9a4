// Package trace records what a check run is doing.
//
// Enable it from the CLI:
//
//	escheck check dist --trace=- --trace-level=detail
//
// Tracers: Nop (disabled), StreamTracer (text or NDJSON written as events
// happen), RingTracer (last N events kept in memory and dumped when a run
// fails) and MultiTracer (both).
//
// Levels map to scopes: phase shows run and phase boundaries
// (collect, check, report), detail adds one span per emitted asset and
// debug adds HTML fragments and skipped script elements.
//
// Tracers travel through the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePhase, "check")
//	defer span.End("")
package trace
