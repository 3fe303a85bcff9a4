package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"escheck/internal/diag"
	"escheck/internal/source"
)

type palette struct {
	err, warn, info *color.Color
	path, gutter    *color.Color
	caret, note     *color.Color
	ok, bold        *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		path:   mk(color.FgCyan),
		gutter: mk(color.FgBlue, color.Bold),
		caret:  mk(color.FgRed, color.Bold),
		note:   mk(color.FgWhite, color.Faint),
		ok:     mk(color.FgGreen, color.Bold),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty writes every diagnostic of bag in a human-readable layout:
//
//	error[ES1001]: <message>
//	  --> <path>:<line>:<col>
//	   |
//	 3 | <source line>
//	   |     ^^^ <construct>
//	   = note: <note>
//
// bag is expected to be sorted.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, renderDiagnostic(d, fs, opts, p)); err != nil {
			return err
		}
	}
	return nil
}

func renderDiagnostic(d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette) string {
	var b strings.Builder

	sevColor := p.severity(d.Severity)
	head := d.Severity.Label()
	if !opts.Hide.Has(HideCode) {
		head += "[" + d.Code.ID() + "]"
	}
	b.WriteString(sevColor.Sprint(head))
	if !opts.Hide.Has(HideReason) && d.Message != "" {
		b.WriteString(p.bold.Sprint(": " + d.Message))
	}
	b.WriteByte('\n')

	file := fs.Get(d.Primary.File)
	if file == nil {
		return b.String()
	}
	path := displayFilePath(file, fs, opts.PathMode)
	start, _ := fs.Resolve(d.Primary)

	ex, hasExcerpt := excerpt{}, false
	if !opts.Hide.Has(HideSource) && !d.Code.IsIO() {
		ex, hasExcerpt = buildExcerpt(fs, d.Primary, opts.Context, opts.Width)
	}
	gutterWidth := 1
	if hasExcerpt {
		gutterWidth = len(fmt.Sprint(ex.lines[len(ex.lines)-1].Number))
	}
	pad := strings.Repeat(" ", gutterWidth)

	location := path
	if start.Line > 0 && len(file.Content) > 0 {
		location = fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
	}
	fmt.Fprintf(&b, "%s%s %s\n", pad, p.gutter.Sprint("-->"), p.path.Sprint(location))

	if hasExcerpt {
		fmt.Fprintf(&b, "%s %s\n", pad, p.gutter.Sprint("|"))
		for _, line := range ex.lines {
			text := expandTabs(line.Text)
			if opts.Color && opts.Highlight {
				text = highlightLine(file.Path, text)
			}
			num := fmt.Sprintf("%*d", gutterWidth, line.Number)
			fmt.Fprintf(&b, "%s %s %s\n", p.gutter.Sprint(num), p.gutter.Sprint("|"), text)
			if line.Number == ex.line {
				marker := strings.Repeat(" ", ex.caretOffset) + p.caret.Sprint(strings.Repeat("^", ex.caretWidth))
				if d.Construct != "" && !opts.Hide.Has(HideReason) {
					marker += " " + p.caret.Sprint(d.Construct)
				}
				fmt.Fprintf(&b, "%s %s %s\n", pad, p.gutter.Sprint("|"), marker)
			}
		}
	}

	if opts.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(&b, "%s %s %s\n", pad, p.gutter.Sprint("="), p.note.Sprint("note: "+note.Msg))
		}
	}
	if d.Origin != nil && !opts.Hide.Has(HideOutput) {
		origin := fmt.Sprintf("original: %s:%d:%d", d.Origin.Path, d.Origin.Line, d.Origin.Column)
		fmt.Fprintf(&b, "%s %s %s\n", pad, p.gutter.Sprint("="), p.note.Sprint(origin))
	}
	return b.String()
}
