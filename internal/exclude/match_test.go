package exclude

import (
	"errors"
	"strings"
	"testing"

	"escheck/internal/diag"
)

func TestIsExcludedEmptyRules(t *testing.T) {
	subject := Subject{Path: "/out/app.js"}
	if IsExcluded(subject, nil) {
		t.Fatal("nil rules must not exclude")
	}
	if IsExcluded(subject, Rules{}) {
		t.Fatal("empty rules must not exclude")
	}
	if IsExcluded(subject, Rules{{}}) {
		t.Fatal("zero rule must not exclude")
	}
}

func TestCompileGlobAndRegex(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"vendor/*.js", "/abs/dist/vendor/a.js", true},
		{"vendor/*.js", "/abs/dist/vendor/sub/a.js", false},
		{"**/*.min.js", "/abs/dist/lib.min.js", true},
		{"*.html", "/abs/dist/index.html", true},
		{"/abs/dist/**", "/abs/dist/deep/x.js", true},
		{"/abs/dist/*.js", "/other/dist/x.js", false},
		{"./legacy/**", "/abs/legacy/a/b.js", true},
		{`/chunk-[0-9a-f]+\.js$/`, "/abs/dist/chunk-1f2e.js", true},
		{`/chunk-[0-9a-f]+\.js$/`, "/abs/dist/main.js", false},
	}
	for _, tt := range tests {
		r, err := Compile(tt.pattern)
		if err != nil {
			t.Fatalf("Compile(%q): %v", tt.pattern, err)
		}
		if r.Kind() != KindPattern {
			t.Fatalf("Compile(%q) kind = %s", tt.pattern, r.Kind())
		}
		if got := IsExcluded(Subject{Path: tt.path}, Rules{r}); got != tt.want {
			t.Errorf("pattern %q on %q = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}

func TestCompileRejectsMalformedRules(t *testing.T) {
	for _, bad := range []string{"", "   ", "/([a-z/", "dist/[abc.js"} {
		if _, err := Compile(bad); !errors.Is(err, ErrInvalidRule) {
			t.Errorf("Compile(%q): got %v, want ErrInvalidRule", bad, err)
		}
	}
	_, err := CompileAll([]string{"*.js", "/(/"})
	if !errors.Is(err, ErrInvalidRule) || !strings.Contains(err.Error(), "rule 1") {
		t.Fatalf("CompileAll error = %v", err)
	}
	if _, err := CompileSnippet("(unclosed"); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("CompileSnippet error = %v", err)
	}
}

func TestPredicateSeesDiagnostic(t *testing.T) {
	var seen *diag.Diagnostic
	rule := Func(func(s Subject) bool {
		seen = s.Diagnostic
		return s.Diagnostic != nil && s.Diagnostic.Construct == "optional chaining"
	})
	d := &diag.Diagnostic{Construct: "optional chaining"}
	if !IsExcluded(Subject{Path: "/x.js", Diagnostic: d}, Rules{rule}) {
		t.Fatal("predicate should exclude")
	}
	if seen != d {
		t.Fatal("predicate did not receive the diagnostic")
	}
	if IsExcluded(Subject{Path: "/x.js"}, Rules{rule}) {
		t.Fatal("predicate without diagnostic should not exclude")
	}
}

func TestPanickingPredicateDoesNotExclude(t *testing.T) {
	rule := Func(func(Subject) bool { panic("boom") })
	if IsExcluded(Subject{Path: "/x.js"}, Rules{rule}) {
		t.Fatal("panicking predicate must not exclude")
	}
	if Func(nil).Kind() == KindPredicate {
		t.Fatal("nil predicate should yield the zero rule")
	}
}

func TestShortCircuit(t *testing.T) {
	calls := 0
	counting := Func(func(Subject) bool { calls++; return false })
	glob, err := Compile("*.js")
	if err != nil {
		t.Fatal(err)
	}
	IsExcluded(Subject{Path: "/a.js"}, Rules{glob, counting})
	if calls != 0 {
		t.Fatalf("rules after the first match ran %d times", calls)
	}
	IsExcluded(Subject{Path: "/a.css"}, Rules{glob, counting})
	if calls != 1 {
		t.Fatalf("expected predicate to run once, got %d", calls)
	}
}

func TestSnippetRules(t *testing.T) {
	rules, err := CompileSnippets([]string{`/eval\(/`, "sourceMappingURL"})
	if err != nil {
		t.Fatal(err)
	}
	if !IsExcluded(Subject{Path: "/a.js", Excerpt: "x = eval(code)"}, rules) {
		t.Fatal("expected snippet match")
	}
	if IsExcluded(Subject{Path: "/a.js/eval(/"}, rules) {
		t.Fatal("snippet rules must not look at the path")
	}

	merged := rules.Append(Func(func(Subject) bool { return true }))
	if len(merged) != 3 || len(rules) != 2 {
		t.Fatalf("Append aliasing: %d %d", len(merged), len(rules))
	}
}
