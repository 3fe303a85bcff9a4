package driver

import (
	"fmt"

	"fortio.org/safecast"

	"escheck/internal/diag"
	"escheck/internal/ecma"
	"escheck/internal/exclude"
	"escheck/internal/htmlscript"
	"escheck/internal/source"
	"escheck/internal/syntax"
)

// DiagnosticBuilder turns parse failures into diagnostics and applies the
// diagnostic-level exclusion rules.
type DiagnosticBuilder struct {
	Version ecma.Version
	Exclude exclude.Rules
	// Maps resolves original positions; nil disables source maps.
	Maps *SourceMaps
}

// Build maps f (relative to frag when frag is set) into file coordinates.
// It returns nil when f is nil or the result is excluded.
func (b *DiagnosticBuilder) Build(f *syntax.Failure, file *source.File, frag *htmlscript.Fragment) *diag.Diagnostic {
	if f == nil || file == nil {
		return nil
	}
	size, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		size = ^uint32(0)
	}

	span := source.Span{File: file.ID, Start: f.Offset, End: max(f.End, f.Offset)}
	if frag != nil {
		span = span.ShiftRight(frag.Offset)
	}
	span = span.Clamp(size)

	code := diag.SynGrammarError
	if f.Kind == syntax.KindUnsupported {
		code = diag.SynUnsupportedConstruct
	}
	d := diag.NewError(code, span, f.Message).WithVersion(b.Version, f.Construct)

	if frag != nil {
		anchor := source.Span{File: file.ID, Start: frag.Offset, End: frag.Offset}.Clamp(size)
		kind := "inline <script>"
		if frag.Module {
			kind = `inline <script type="module">`
		}
		d.WithNote(anchor, fmt.Sprintf("in %s starting at %d:%d", kind, frag.Line, frag.Column))
	}

	pos := file.Position(span.Start)
	if frag == nil {
		if origin := b.Maps.Origin(file, pos); origin != nil {
			d.WithOrigin(origin)
		}
	}

	subject := exclude.Subject{
		Path:       file.Path,
		Diagnostic: d,
		Excerpt:    file.GetLine(pos.Line),
	}
	if exclude.IsExcluded(subject, b.Exclude) {
		return nil
	}
	return d
}
