package trace

import "time"

// Attr is a key/value pair attached to a span end.
type Attr struct {
	Key   string
	Value string
}

// Event is one record in a trace.
type Event struct {
	Time   time.Time
	Seq    uint64 // process-wide, increasing
	Kind   Kind
	Scope  Scope
	Span   uint64 // zero for points
	Parent uint64
	Name   string // e.g. "collect", "file:assets/app.js"
	Detail string
	Dur    time.Duration // span ends only
	Attrs  []Attr
}
