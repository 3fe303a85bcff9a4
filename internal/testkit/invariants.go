// Package testkit holds consistency checks shared by unit and fuzz tests.
package testkit

import (
	"bytes"
	"fmt"

	"fortio.org/safecast"

	"escheck/internal/htmlscript"
	"escheck/internal/syntax"
)

// CheckFailure verifies the position fields of a checker failure against
// the parsed source:
// 1) aborted failures carry no position and need a message
// 2) Offset <= End <= len(src)
// 3) Line and Column are 1-based and Line does not exceed the line count
func CheckFailure(src []byte, f *syntax.Failure) error {
	if f == nil {
		return nil
	}
	if f.Message == "" {
		return fmt.Errorf("failure without message: %+v", f)
	}
	if f.Kind == syntax.KindAborted {
		return nil
	}
	size, err := safecast.Conv[uint32](len(src))
	if err != nil {
		return fmt.Errorf("source length overflow: %w", err)
	}
	if f.Offset > f.End || f.End > size {
		return fmt.Errorf("failure span [%d,%d) outside source of %d bytes", f.Offset, f.End, size)
	}
	if f.Line == 0 || f.Column == 0 {
		return fmt.Errorf("failure position %d:%d is not 1-based", f.Line, f.Column)
	}
	lines, err := safecast.Conv[uint32](bytes.Count(src, []byte("\n")) + 1)
	if err != nil {
		return fmt.Errorf("line count overflow: %w", err)
	}
	if f.Line > lines {
		return fmt.Errorf("failure line %d beyond %d lines", f.Line, lines)
	}
	if f.Kind == syntax.KindUnsupported && (f.Construct == "" || !f.Introduced.Valid()) {
		return fmt.Errorf("unsupported failure without construct: %+v", f)
	}
	return nil
}

// CheckFragments verifies extracted scripts against their document:
// 1) every fragment's Text is the document slice starting at Offset
// 2) fragments appear in document order and do not overlap
// 3) Line and Column are 1-based
func CheckFragments(doc []byte, frags []htmlscript.Fragment) error {
	var prevEnd uint64
	for i, frag := range frags {
		start := uint64(frag.Offset)
		end := start + uint64(len(frag.Text))
		if end > uint64(len(doc)) {
			return fmt.Errorf("fragment %d [%d,%d) outside document of %d bytes", i, start, end, len(doc))
		}
		if string(doc[start:end]) != frag.Text {
			return fmt.Errorf("fragment %d text does not match document at offset %d", i, start)
		}
		if i > 0 && start < prevEnd {
			return fmt.Errorf("fragment %d starts at %d before previous end %d", i, start, prevEnd)
		}
		if frag.Line == 0 || frag.Column == 0 {
			return fmt.Errorf("fragment %d position %d:%d is not 1-based", i, frag.Line, frag.Column)
		}
		prevEnd = end
	}
	return nil
}
