package exclude

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IsExcluded reports whether any rule matches subject. Rules are tried in
// order and the first match wins.
func IsExcluded(subject Subject, rules Rules) bool {
	for _, r := range rules {
		if r.Match(subject) {
			return true
		}
	}
	return false
}

// Match reports whether the rule applies to subject. A panicking predicate
// counts as no match.
func (r Rule) Match(subject Subject) (matched bool) {
	switch r.kind {
	case KindPredicate:
		defer func() {
			if recover() != nil {
				matched = false
			}
		}()
		return r.pred(subject)
	case KindPattern:
		text := subject.Path
		if r.target == TargetSnippet {
			text = subject.Excerpt
			if text == "" {
				return false
			}
		} else {
			if text == "" {
				return false
			}
			text = filepath.ToSlash(text)
		}
		if r.re != nil {
			return r.re.MatchString(text)
		}
		if r.suffix {
			text = strings.TrimPrefix(text, "/")
		}
		ok, err := doublestar.Match(r.glob, text)
		return err == nil && ok
	}
	return false
}

// Append concatenates rule sets without aliasing either input.
func (rules Rules) Append(more ...Rule) Rules {
	out := make(Rules, 0, len(rules)+len(more))
	out = append(out, rules...)
	return append(out, more...)
}
