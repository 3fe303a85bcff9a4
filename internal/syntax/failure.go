package syntax

import (
	"fmt"

	"escheck/internal/ecma"
)

// Kind classifies a Failure.
type Kind uint8

const (
	// KindGrammar is code no edition accepts (ERROR or MISSING node).
	KindGrammar Kind = iota + 1
	// KindUnsupported is valid code using syntax newer than the target.
	KindUnsupported
	// KindAborted means the parse did not finish (cancelled context,
	// invalid version). It carries no position.
	KindAborted
)

func (k Kind) String() string {
	switch k {
	case KindGrammar:
		return "grammar"
	case KindUnsupported:
		return "unsupported"
	case KindAborted:
		return "aborted"
	}
	return "unknown"
}

// Failure is the outcome of a rejected parse. Offsets are bytes into the
// parsed source; Line and Column are 1-based, Column counted in bytes.
type Failure struct {
	Kind    Kind
	Message string
	Offset  uint32
	End     uint32
	Line    uint32
	Column  uint32
	// Construct and Introduced are set for KindUnsupported.
	Construct  string
	Introduced ecma.Version
}

func (f *Failure) String() string {
	if f == nil {
		return "ok"
	}
	if f.Kind == KindAborted {
		return f.Message
	}
	return fmt.Sprintf("%d:%d: %s", f.Line, f.Column, f.Message)
}
