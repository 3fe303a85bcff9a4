package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"escheck/internal/diag"
	"escheck/internal/driver"
)

var titleCaser = cases.Title(language.English)

// Report renders a finished run with the format selected in opts. It only
// fails when writing to w fails; a run with diagnostics is not an error.
func Report(w io.Writer, state *driver.RunState, opts Options) error {
	if state == nil {
		return nil
	}
	switch opts.Format {
	case FormatJSON:
		return RunJSON(w, state, opts.JSON)
	case FormatSARIF:
		return Sarif(w, state.Bag, state.FileSet, opts.Sarif)
	case FormatShort:
		return Short(w, state.Bag, state.FileSet, opts.Pretty.ShowNotes)
	default:
		return reportPretty(w, state, opts)
	}
}

func reportPretty(w io.Writer, state *driver.RunState, opts Options) error {
	p := newPalette(opts.Pretty.Color)
	syntaxDiags, ioDiags := state.Partition()

	if len(syntaxDiags) == 0 && len(ioDiags) == 0 {
		if opts.Quiet {
			return nil
		}
		_, err := fmt.Fprintf(w, "%s %s\n", p.ok.Sprint("✓"), SuccessLine(state))
		return err
	}

	var b strings.Builder
	if len(syntaxDiags) > 0 {
		fmt.Fprintf(&b, "%s\n\n", p.bold.Sprint(titleCaser.String("syntax errors")+" ("+versionLabel(state)+")"))
		writeSection(&b, syntaxDiags, state, opts.Pretty, p)
	}
	if len(ioDiags) > 0 {
		if len(syntaxDiags) > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s\n\n", p.bold.Sprint(titleCaser.String("read failures")))
		writeSection(&b, ioDiags, state, opts.Pretty, p)
	}

	b.WriteByte('\n')
	if len(syntaxDiags) > 0 {
		fmt.Fprintf(&b, "%s %s\n", p.err.Sprint("✗"), FailureLine(state))
	} else if !opts.Quiet {
		fmt.Fprintf(&b, "%s %s\n", p.ok.Sprint("✓"), SuccessLine(state))
	}
	var extra []string
	if n := state.Suppressed; n > 0 {
		extra = append(extra, fmt.Sprintf("%s suppressed by exclude rules", plural(n, "diagnostic")))
	}
	if n := state.Bag.Dropped(); n > 0 {
		extra = append(extra, fmt.Sprintf("%s dropped by max-diagnostics", plural(n, "diagnostic")))
	}
	if len(extra) > 0 {
		fmt.Fprintf(&b, "  %s\n", p.note.Sprint(strings.Join(extra, "; ")))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSection(b *strings.Builder, diags []*diag.Diagnostic, state *driver.RunState, opts PrettyOpts, p palette) {
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderDiagnostic(d, state.FileSet, opts, p))
	}
}

func versionLabel(state *driver.RunState) string {
	return fmt.Sprintf("%s / %s", state.Version, state.Version.Edition())
}

// SuccessLine describes a run without syntax diagnostics.
func SuccessLine(state *driver.RunState) string {
	if len(state.Checked) == 0 {
		return fmt.Sprintf("no JavaScript or HTML files to check (%s)", versionLabel(state))
	}
	return fmt.Sprintf("%s conform to %s", plural(len(state.Checked), "file"), versionLabel(state))
}

// FailureLine describes a run with syntax diagnostics.
func FailureLine(state *driver.RunState) string {
	syntaxDiags, _ := state.Partition()
	files := make(map[uint32]struct{})
	for _, d := range syntaxDiags {
		files[uint32(d.Primary.File)] = struct{}{}
	}
	return fmt.Sprintf("%s in %d of %s (target %s)",
		plural(len(syntaxDiags), "syntax error"), len(files), plural(len(state.Checked), "file"), versionLabel(state))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
