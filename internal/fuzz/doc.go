// Package fuzztests houses Go fuzz harnesses for the parsing front end:
// inline script extraction from HTML and the edition checker. They guard
// against panics, hangs and inconsistent positions on arbitrary input.
package fuzztests
