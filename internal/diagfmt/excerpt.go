package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"escheck/internal/source"
)

const tabWidth = 4

// excerpt is a resolved source window around a diagnostic.
type excerpt struct {
	lines []source.ExcerptLine
	// line holding the primary span and the caret columns inside it
	line        uint32
	caretOffset int
	caretWidth  int
}

func buildExcerpt(fs *source.FileSet, span source.Span, context int8, maxWidth uint8) (excerpt, bool) {
	file := fs.Get(span.File)
	if file == nil || len(file.Content) == 0 {
		return excerpt{}, false
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return excerpt{}, false
	}
	text := file.GetLine(start.Line)
	lineStart := lineStartOffset(file, start.Line)

	prefixEnd := min(int(span.Start-lineStart), len(text))
	caretEnd := len(text)
	if end.Line == start.Line {
		caretEnd = min(int(span.End-lineStart), len(text))
	}
	caretEnd = max(caretEnd, prefixEnd)

	ex := excerpt{
		lines:       file.Excerpt(start.Line, int(context)),
		line:        start.Line,
		caretOffset: displayWidth(text[:prefixEnd]),
		caretWidth:  max(displayWidth(text[prefixEnd:caretEnd]), 1),
	}
	if maxWidth > 0 {
		ex.clip(int(maxWidth))
	}
	return ex, true
}

// clip shortens long lines (minified bundles) to a window around the caret.
func (ex *excerpt) clip(width int) {
	if width < 16 {
		width = 16
	}
	shift := 0
	if ex.caretOffset > width/2 {
		shift = ex.caretOffset - width/2
	}
	for i := range ex.lines {
		text := expandTabs(ex.lines[i].Text)
		if shift > 0 {
			text = "…" + trimLeftWidth(text, shift+1)
		}
		ex.lines[i].Text = runewidth.Truncate(text, width, "…")
	}
	ex.caretOffset -= shift
	ex.caretWidth = min(ex.caretWidth, max(width-ex.caretOffset, 1))
}

func trimLeftWidth(s string, w int) string {
	acc := 0
	for i, r := range s {
		if acc >= w {
			return s[i:]
		}
		acc += runewidth.RuneWidth(r)
	}
	return ""
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func displayWidth(s string) int {
	return runewidth.StringWidth(expandTabs(s))
}

func lineStartOffset(f *source.File, line uint32) uint32 {
	if line <= 1 {
		return 0
	}
	idx := line - 2
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}
