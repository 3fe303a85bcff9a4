package diag

import (
	"testing"

	"escheck/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	page := fs.Add("/workspace/dist/index.html", []byte("a\nb\n"), 0)
	app := fs.Add("/workspace/dist/app.js", []byte("x\n"), 0)

	diags := []*Diagnostic{
		{
			Severity: SevError,
			Code:     SynUnsupportedConstruct,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: page, Start: 2, End: 3},
			Notes: []Note{
				{Span: source.Span{File: page, Start: 0, End: 0}, Msg: "note line"},
			},
		},
		{
			Severity: SevWarning,
			Code:     IOLoadFileError,
			Message:  "another",
			Primary:  source.Span{File: app, Start: 0, End: 0},
		},
	}

	expected := "warning IO2001 dist/app.js:1:1 another\n" +
		"note ES1001 dist/index.html:1:1 note line\n" +
		"error ES1001 dist/index.html:2:1 first line second"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected short diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}
