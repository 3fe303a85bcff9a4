// Package exclude decides whether an emitted asset or a finished diagnostic
// is suppressed. A rule is either a pattern (doublestar glob or /regexp/)
// matched against a path or source excerpt, or a caller supplied predicate.
package exclude

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"escheck/internal/diag"
)

// ErrInvalidRule is wrapped by every compile failure.
var ErrInvalidRule = errors.New("invalid exclusion rule")

// Kind tags the two rule shapes.
type Kind uint8

const (
	KindPattern Kind = iota + 1
	KindPredicate
)

func (k Kind) String() string {
	switch k {
	case KindPattern:
		return "pattern"
	case KindPredicate:
		return "predicate"
	}
	return "unknown"
}

// Target is the part of a Subject a pattern rule looks at.
type Target uint8

const (
	TargetPath Target = iota
	TargetSnippet
)

// Subject is what rules are matched against. Diagnostic and Excerpt are
// only set for diagnostic-level checks.
type Subject struct {
	Path       string
	Diagnostic *diag.Diagnostic
	Excerpt    string
}

// Predicate is a rule supplied as code.
type Predicate func(Subject) bool

// Rule is a compiled exclusion rule. The zero value matches nothing.
type Rule struct {
	kind   Kind
	target Target
	raw    string
	glob   string
	suffix bool
	re     *regexp.Regexp
	pred   Predicate
}

// Rules is an ordered rule set; nil and empty sets exclude nothing.
type Rules []Rule

func (r Rule) Kind() Kind { return r.kind }

func (r Rule) String() string {
	switch r.kind {
	case KindPredicate:
		return "<predicate>"
	case KindPattern:
		return r.raw
	}
	return "<empty>"
}

// Compile turns a path pattern into a rule. "/.../" is a regular expression,
// anything else a doublestar glob. A glob that is neither absolute nor starts
// with "**" also matches as a path suffix, so "vendor/*.js" matches
// "/abs/dist/vendor/a.js".
func Compile(pattern string) (Rule, error) {
	raw := strings.TrimSpace(pattern)
	if raw == "" {
		return Rule{}, fmt.Errorf("%w: empty pattern", ErrInvalidRule)
	}
	if expr, ok := regexLiteral(raw); ok {
		re, err := regexp.Compile(expr)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %q: %w", ErrInvalidRule, pattern, err)
		}
		return Rule{kind: KindPattern, target: TargetPath, raw: raw, re: re}, nil
	}

	glob := strings.ReplaceAll(raw, "\\", "/")
	suffix := !path.IsAbs(glob)
	if suffix && !strings.HasPrefix(glob, "**") {
		glob = "**/" + strings.TrimPrefix(glob, "./")
	}
	if !doublestar.ValidatePattern(glob) {
		return Rule{}, fmt.Errorf("%w: bad glob %q", ErrInvalidRule, pattern)
	}
	return Rule{kind: KindPattern, target: TargetPath, raw: raw, glob: glob, suffix: suffix}, nil
}

// CompileSnippet builds a rule matched against the source excerpt of a
// diagnostic. The expression may be written with or without slashes.
func CompileSnippet(expr string) (Rule, error) {
	raw := strings.TrimSpace(expr)
	if raw == "" {
		return Rule{}, fmt.Errorf("%w: empty snippet expression", ErrInvalidRule)
	}
	body := raw
	if inner, ok := regexLiteral(raw); ok {
		body = inner
	}
	re, err := regexp.Compile(body)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %q: %w", ErrInvalidRule, expr, err)
	}
	return Rule{kind: KindPattern, target: TargetSnippet, raw: raw, re: re}, nil
}

// Func wraps a predicate.
func Func(p Predicate) Rule {
	if p == nil {
		return Rule{}
	}
	return Rule{kind: KindPredicate, pred: p}
}

// CompileAll compiles path patterns in order and reports the first failure
// with its index.
func CompileAll(patterns []string) (Rules, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make(Rules, 0, len(patterns))
	for i, p := range patterns {
		r, err := Compile(p)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// CompileSnippets is CompileAll for snippet rules.
func CompileSnippets(exprs []string) (Rules, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	out := make(Rules, 0, len(exprs))
	for i, e := range exprs {
		r, err := CompileSnippet(e)
		if err != nil {
			return nil, fmt.Errorf("snippet rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func regexLiteral(s string) (string, bool) {
	if len(s) > 2 && s[0] == '/' && s[len(s)-1] == '/' {
		return s[1 : len(s)-1], true
	}
	return "", false
}
