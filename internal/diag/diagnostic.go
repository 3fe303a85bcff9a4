package diag

import (
	"escheck/internal/ecma"
	"escheck/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Origin points into the pre-bundle source recovered from a source map.
type Origin struct {
	Path   string
	Line   uint32
	Column uint32
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	// Version is the grammar the code was checked against.
	Version ecma.Version
	// Construct names the rejected syntax ("optional chaining"); empty for
	// plain grammar errors and I/O problems.
	Construct string
	Origin    *Origin
	Notes     []Note
}
