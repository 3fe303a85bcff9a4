package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var seq, spanIDs atomic.Uint64

func nextSeq() uint64 { return seq.Add(1) }

// Span is an operation with a begin and an end event. A span whose scope
// the tracer does not record is inert: every method is a no-op.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	attrs   []Attr
}

// Begin emits the begin event of a span under parent (0 for a root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if t == nil || !t.Level().Allows(scope) {
		return &Span{}
	}
	s := &Span{
		tracer:  t,
		id:      spanIDs.Add(1),
		parent:  parent,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(&Event{
		Time:   s.started,
		Seq:    nextSeq(),
		Kind:   KindSpanBegin,
		Scope:  scope,
		Span:   s.id,
		Parent: parent,
		Name:   name,
	})
	return s
}

// Set attaches an attribute reported with the end event.
func (s *Span) Set(key, value string) *Span {
	if s != nil && s.tracer != nil {
		s.attrs = append(s.attrs, Attr{Key: key, Value: value})
	}
	return s
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.tracer == nil {
		return 0
	}
	now := time.Now()
	dur := now.Sub(s.started)
	s.tracer.Emit(&Event{
		Time:   now,
		Seq:    nextSeq(),
		Kind:   KindSpanEnd,
		Scope:  s.scope,
		Span:   s.id,
		Parent: s.parent,
		Name:   s.name,
		Detail: detail,
		Dur:    dur,
		Attrs:  s.attrs,
	})
	return dur
}

// ID returns the span ID, zero for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

type tracerKey struct{}
type spanKey struct{}

// WithTracer attaches t to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx == nil {
		return Nop
	}
	if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
		return t
	}
	return Nop
}

// CurrentSpan returns the ID of the innermost span started through ctx.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx == nil {
		return 0
	}
	id, _ := ctx.Value(spanKey{}).(uint64)
	return id
}

// Start begins a span under the current one and returns a context in which
// it is current.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	span := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx))
	if span.id == 0 {
		return ctx, span
	}
	return context.WithValue(ctx, spanKey{}, span.id), span
}

// Point records an instant event, e.g. a skipped script element.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Level().Allows(scope) {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Seq:    nextSeq(),
		Kind:   KindPoint,
		Scope:  scope,
		Parent: CurrentSpan(ctx),
		Name:   name,
		Detail: detail,
	})
}

// Fail records a non-fatal failure. Failures are kept at every level
// except off.
func Fail(ctx context.Context, scope Scope, name string, err error) {
	t := FromContext(ctx)
	if err == nil || !t.Enabled() {
		return
	}
	t.Emit(&Event{
		Time:   time.Now(),
		Seq:    nextSeq(),
		Kind:   KindError,
		Scope:  scope,
		Parent: CurrentSpan(ctx),
		Name:   name,
		Detail: err.Error(),
	})
}
