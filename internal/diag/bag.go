package diag

import (
	"slices"
	"sort"

	"escheck/internal/source"
)

// Bag collects diagnostics of one file or one run. A Bag is not safe for
// concurrent use; the driver gives every file its own bag and merges them
// once all checks have finished.
type Bag struct {
	items   []*Diagnostic
	max     int
	dropped int
}

// NewBag returns a bag holding at most limit diagnostics. limit <= 0 means unbounded.
func NewBag(limit int) *Bag {
	return &Bag{
		items: make([]*Diagnostic, 0, min(max(limit, 0), 64)),
		max:   limit,
	}
}

// Add appends d unless the limit is reached. It returns false for dropped
// diagnostics.
func (b *Bag) Add(d *Diagnostic) bool {
	if d == nil {
		return false
	}
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int {
	return b.max
}

// Dropped returns how many diagnostics were refused because of the limit.
func (b *Bag) Dropped() int {
	return b.dropped
}

// HasErrors reports whether at least one diagnostic has SevError.
func (b *Bag) HasErrors() bool {
	return b.Count(SevError) > 0
}

// HasWarnings reports whether at least one diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool {
	for _, d := range b.items {
		if d.Severity >= SevWarning {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics with exactly sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for _, d := range b.items {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns the backing slice. Callers must not modify it.
func (b *Bag) Items() []*Diagnostic {
	return b.items
}

// Merge appends every diagnostic of other, ignoring the limit. Use Truncate
// after sorting to apply it deterministically.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	b.dropped += other.dropped
}

// Truncate keeps the first n diagnostics and returns how many were cut.
func (b *Bag) Truncate(n int) int {
	if n <= 0 || len(b.items) <= n {
		return 0
	}
	cut := len(b.items) - n
	clear(b.items[n:])
	b.items = b.items[:n]
	b.dropped += cut
	return cut
}

// Partition splits diagnostics into syntax findings and I/O problems.
func (b *Bag) Partition() (syntax, io []*Diagnostic) {
	for _, d := range b.items {
		if d.Code.IsIO() {
			io = append(io, d)
		} else {
			syntax = append(syntax, d)
		}
	}
	return syntax, io
}

// Sort orders diagnostics by path, start, end, severity (desc) and code.
// File IDs are assigned in completion order, so the path taken from fs is
// what makes the order deterministic. With a nil fs the file ID is used.
func (b *Bag) Sort(fs *source.FileSet) {
	path := func(id source.FileID) string {
		if fs == nil {
			return ""
		}
		if f := fs.Get(id); f != nil {
			return f.Path
		}
		return ""
	}
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if pi, pj := path(di.Primary.File), path(dj.Primary.File); pi != pj {
			return pi < pj
		}
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Start != dj.Primary.Start {
			return di.Primary.Start < dj.Primary.Start
		}
		if di.Primary.End != dj.Primary.End {
			return di.Primary.End < dj.Primary.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}

// Dedup removes diagnostics repeating the code, primary span and message
// of an earlier one.
func (b *Bag) Dedup() {
	type key struct {
		code Code
		span source.Span
		msg  string
	}
	seen := make(map[key]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d *Diagnostic) bool {
		k := key{d.Code, d.Primary, d.Message}
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
