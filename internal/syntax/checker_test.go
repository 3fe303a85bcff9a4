package syntax

import (
	"context"
	"strings"
	"testing"

	"escheck/internal/ecma"
)

func TestTryParseAcceptsES5(t *testing.T) {
	c := NewChecker()
	src := []byte(`var a = 1;
function f(x, y) { return x + y; }
var o = { get v() { return 1; }, set v(x) {}, "k": [1, 2, 3,], };
try { f(1, 2); } catch (e) { throw e; }
for (var k in o) { if (o.hasOwnProperty(k)) { continue; } }
var re = /ab+c/gi;
`)
	for _, v := range ecma.Versions() {
		if f := c.TryParse(context.Background(), src, v); f != nil {
			t.Fatalf("%s rejected ES5 source: %s", v, f)
		}
	}
}

func TestTryParseGatedConstructs(t *testing.T) {
	tests := []struct {
		src       string
		construct Construct
	}{
		{"var f = (a) => a;", ArrowFunction},
		{"class A {}", Class},
		{"var s = `x${1}`;", TemplateLiteral},
		{"let a = 1;", LetConst},
		{"const a = 1;", LetConst},
		{"f(...args);", SpreadElement},
		{"var [a, b] = c;", Destructuring},
		{"for (var x of y) {}", ForOf},
		{"function* g() { yield 1; }", Generator},
		{"var o = { m() {} };", ShorthandMethod},
		{"var o = { a };", ShorthandProperty},
		{"var o = { [k]: 1 };", ComputedProperty},
		{"import x from 'y';", ModuleSyntax},
		{"var n = 0b101;", BinaryOctalLiteral},
		{"var r = /a/u;", RegexpUnicodeSticky},
		{"var p = 2 ** 8;", Exponentiation},
		{"async function f() {}", AsyncFunction},
		{"function f(a, b,) {}", TrailingCommaParams},
		{"f(a, b,);", TrailingCommaArgs},
		{"async function* g() {}", AsyncGenerator},
		{"var o = { ...p };", ObjectSpread},
		{"var r = /a.b/s;", RegexpDotAll},
		{"var r = /(?<=a)b/;", RegexpLookbehind},
		{"var r = /(?<year>\\d+)/;", RegexpNamedGroup},
		{"try { f(); } catch { }", OptionalCatchBinding},
		{"var v = a?.b;", OptionalChaining},
		{"var v = a ?? b;", NullishCoalescing},
		{"var big = 10n;", BigIntLiteral},
		{"import('x');", DynamicImport},
		{"export * as ns from 'm';", ExportStarAs},
		{"a ||= b;", LogicalAssignment},
		{"var n = 1_000;", NumericSeparator},
		{"class A { x = 1; }", ClassField},
		{"class A { static { init(); } }", ClassStaticBlock},
		{"await load();", TopLevelAwait},
		{"var a; export { a as \"b c\" };", StringModuleName},
		{"import { \"b c\" as a } from 'm';", StringModuleName},
		{"export * as \"b c\" from 'm';", StringModuleName},
		{"#!/usr/bin/env node\nvar a;", Hashbang},
		{"var r = /[\\p{L}--[a-z]]/v;", RegexpUnicodeSets},
	}
	c := NewChecker()
	ctx := context.Background()
	for _, tt := range tests {
		before := tt.construct.Since - 1
		f := c.TryParse(ctx, []byte(tt.src), before)
		if f == nil {
			t.Errorf("%q accepted under %s, want %s failure", tt.src, before, tt.construct.Name)
			continue
		}
		if f.Kind != KindUnsupported || f.Introduced != tt.construct.Since {
			t.Errorf("%q under %s: got %s (%s, introduced %s), want %s", tt.src, before, f.Kind, f.Construct, f.Introduced, tt.construct.Name)
		}
		if got := c.TryParse(ctx, []byte(tt.src), tt.construct.Since); got != nil {
			t.Errorf("%q rejected under %s: %s", tt.src, tt.construct.Since, got)
		}
	}
}

func TestOptionalChainingIsMonotonic(t *testing.T) {
	c := NewChecker()
	src := []byte("const f = (a) => a?.b;")
	for _, v := range ecma.Versions() {
		f := c.TryParse(context.Background(), src, v)
		if v < ecma.ES2020 && f == nil {
			t.Errorf("%s accepted optional chaining", v)
		}
		if v >= ecma.ES2020 && f != nil {
			t.Errorf("%s rejected optional chaining: %s", v, f)
		}
	}
	f := c.TryParse(context.Background(), src, ecma.ES2019)
	if f.Construct != OptionalChaining.Name || f.Line != 1 || f.Column != 19 {
		t.Fatalf("unexpected failure %+v", f)
	}
}

func TestAcceptanceIsMonotonic(t *testing.T) {
	c := NewChecker()
	ctx := context.Background()
	snippets := []string{
		"let x = async () => { for await (const v of s) {} };",
		"class A { #p = 1; static m() { return this.#p ?? 0; } }",
		"const { a, ...rest } = obj; export default rest;",
		"var a = 1",
	}
	for _, s := range snippets {
		accepted := false
		for _, v := range ecma.Versions() {
			ok := c.TryParse(ctx, []byte(s), v) == nil
			if accepted && !ok {
				t.Fatalf("%q accepted below %s but rejected at %s", s, v-1, v)
			}
			accepted = accepted || ok
		}
		if !accepted {
			t.Fatalf("%q never accepted", s)
		}
	}
}

func TestTryParseIsIdempotent(t *testing.T) {
	c := NewChecker()
	ctx := context.Background()
	for _, src := range []string{"var a = (", "x = a?.b", "let ok = 1;"} {
		for _, v := range []ecma.Version{ecma.ES5, ecma.ES2019, ecma.Latest} {
			first := c.TryParse(ctx, []byte(src), v)
			second := c.TryParse(ctx, []byte(src), v)
			if (first == nil) != (second == nil) {
				t.Fatalf("%q/%s: outcome changed", src, v)
			}
			if first != nil && (first.Offset != second.Offset || first.Message != second.Message) {
				t.Fatalf("%q/%s: %+v vs %+v", src, v, first, second)
			}
		}
	}
}

func TestTryParseGrammarError(t *testing.T) {
	c := NewChecker()
	f := c.TryParse(context.Background(), []byte("var ok = 1;\nvar = ;\n"), ecma.Latest)
	if f == nil {
		t.Fatal("expected grammar failure")
	}
	if f.Kind != KindGrammar {
		t.Fatalf("kind = %s", f.Kind)
	}
	if f.Line != 2 {
		t.Fatalf("line = %d, want 2 (%s)", f.Line, f)
	}
}

func TestTryParseAcceptsJSX(t *testing.T) {
	c := NewChecker()
	src := []byte(`const App = () => <div className="x">{items.map(i => <Item key={i} />)}</div>;`)
	if f := c.TryParse(context.Background(), src, ecma.ES2015); f != nil {
		t.Fatalf("JSX rejected: %s", f)
	}
}

func TestTryParseReportsFirstFailure(t *testing.T) {
	c := NewChecker()
	src := "var a = 1;\nvar b = c ?? d;\nvar e = f?.g;\n"
	f := c.TryParse(context.Background(), []byte(src), ecma.ES2019)
	if f == nil || f.Construct != NullishCoalescing.Name {
		t.Fatalf("unexpected failure %+v", f)
	}
	if want := strings.Index(src, "c ?? d"); int(f.Offset) != want {
		t.Fatalf("offset = %d, want %d", f.Offset, want)
	}
}

func TestTryParseAbortsOnBadVersionOrContext(t *testing.T) {
	c := NewChecker()
	if f := c.TryParse(context.Background(), []byte("var a;"), ecma.Unknown); f == nil || f.Kind != KindAborted {
		t.Fatalf("expected aborted failure, got %+v", f)
	}
	if f := c.TryParse(context.Background(), nil, ecma.ES5); f != nil {
		t.Fatalf("empty source rejected: %s", f)
	}
}

func TestUnsupportedList(t *testing.T) {
	if got := Unsupported(ecma.Latest); len(got) != 0 {
		t.Fatalf("latest rejects %v", got)
	}
	list := Unsupported(ecma.ES2019)
	for _, c := range list {
		if c.Since <= ecma.ES2019 {
			t.Fatalf("%s listed for es2019", c.Name)
		}
	}
	if len(Unsupported(ecma.ES5)) != len(Constructs()) {
		t.Fatal("es5 must reject every construct")
	}
}
