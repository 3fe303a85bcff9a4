package diagfmt

import (
	"encoding/json"
	"io"

	"escheck/internal/diag"
	"escheck/internal/driver"
	"escheck/internal/source"
)

// LocationJSON is a position inside an emitted file.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// OriginJSON is the pre-bundle position recovered from a source map.
type OriginJSON struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// NoteJSON is an auxiliary note.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// DiagnosticJSON is one diagnostic.
type DiagnosticJSON struct {
	Severity  string       `json:"severity"`
	Code      string       `json:"code"`
	Message   string       `json:"message"`
	Version   string       `json:"version,omitempty"`
	Construct string       `json:"construct,omitempty"`
	Location  LocationJSON `json:"location"`
	Excerpt   string       `json:"excerpt,omitempty"`
	Origin    *OriginJSON  `json:"origin,omitempty"`
	Notes     []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Version     string           `json:"version,omitempty"`
	Files       int              `json:"files,omitempty"`
	Skipped     int              `json:"skipped,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	Dropped     int              `json:"dropped,omitempty"`
}

func displayFilePath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if mode == PathModeRelative {
		return f.FormatPath("relative", fs.BaseDir())
	}
	return f.FormatPath(mode.name(), "")
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)
	if f == nil {
		return LocationJSON{StartByte: span.Start, EndByte: span.End}
	}
	loc := LocationJSON{
		File:      displayFilePath(f, fs, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions && len(f.Content) > 0 {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput builds the JSON structure without serialising it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	for _, d := range items[:maxItems] {
		dj := DiagnosticJSON{
			Severity:  d.Severity.String(),
			Code:      d.Code.ID(),
			Message:   d.Message,
			Construct: d.Construct,
			Location:  makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		if d.Version.Valid() {
			dj.Version = d.Version.String()
		}
		if f := fs.Get(d.Primary.File); f != nil && !d.Code.IsIO() {
			start, _ := fs.Resolve(d.Primary)
			dj.Excerpt = f.GetLine(start.Line)
		}
		if d.Origin != nil {
			dj.Origin = &OriginJSON{File: d.Origin.Path, Line: d.Origin.Line, Column: d.Origin.Column}
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		diagnostics = append(diagnostics, dj)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Errors:      bag.Count(diag.SevError),
		Warnings:    bag.Count(diag.SevWarning),
		Dropped:     bag.Dropped(),
	}
}

// JSON writes the diagnostics of bag as an indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	return encodeJSON(w, BuildDiagnosticsOutput(bag, fs, opts))
}

// RunJSON is JSON plus the run's version and file counts.
func RunJSON(w io.Writer, state *driver.RunState, opts JSONOpts) error {
	out := BuildDiagnosticsOutput(state.Bag, state.FileSet, opts)
	out.Version = state.Version.String()
	out.Files = len(state.Checked)
	out.Skipped = len(state.Skipped)
	return encodeJSON(w, out)
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
