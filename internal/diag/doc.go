// Package diag defines the diagnostic model shared by the checker, the
// driver and the output formats.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code: compact numeric identifier (see codes.go) with stable string
//     form: ES1000 for grammar errors, ES1001 for syntax newer than the
//     target, IO2001 for unreadable assets.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary span: the source.Span in the emitted asset. For scripts
//     embedded in HTML the span is already remapped to document offsets.
//   - Version and Construct: the grammar that rejected the code and the
//     name of the rejected syntax.
//   - Origin: optional pre-bundle position recovered from a source map.
//   - Notes: optional secondary spans/messages.
//
// # Emitting diagnostics
//
// Producers add diagnostics to a Bag. Bags are owned by a single goroutine;
// the driver merges per-file bags after the checking phase, drops repeats,
// sorts them by path and applies the diagnostic limit.
//
// Package diag performs no formatting beyond the one-line short form
// (short.go); rendering lives in internal/diagfmt.
package diag
