package htmlscript

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestExtractSkipsExternalScripts(t *testing.T) {
	for _, tc := range []struct{ inline, external int }{{0, 0}, {1, 0}, {0, 2}, {3, 2}, {2, 5}} {
		var b strings.Builder
		b.WriteString("<!doctype html><html><head>\n")
		for i := range tc.external {
			fmt.Fprintf(&b, "<script src=\"/ext-%d.js\"></script>\n", i)
		}
		b.WriteString("</head><body>\n")
		for i := range tc.inline {
			fmt.Fprintf(&b, "<script>var inline%d = %d;</script>\n", i, i)
		}
		b.WriteString("</body></html>\n")

		frags, stats, err := Extract(context.Background(), []byte(b.String()))
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if len(frags) != tc.inline {
			t.Fatalf("inline=%d external=%d: got %d fragments", tc.inline, tc.external, len(frags))
		}
		if stats.External != tc.external {
			t.Fatalf("expected %d external scripts, got %d", tc.external, stats.External)
		}
		for i, f := range frags {
			if want := fmt.Sprintf("var inline%d = %d;", i, i); f.Text != want {
				t.Errorf("fragment %d = %q, want %q", i, f.Text, want)
			}
			if strings.Contains(f.Text, "ext-") {
				t.Errorf("fragment %d derived from an external script", i)
			}
		}
	}
}

func TestFragmentAnchors(t *testing.T) {
	doc := "<html>\n  <body>\n    <script type=\"module\">const f = (a) => a?.b;</script>\n  </body>\n</html>\n"
	var frags []Fragment
	for f := range Fragments([]byte(doc)) {
		frags = append(frags, f)
	}
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	f := frags[0]
	wantOffset := strings.Index(doc, "const f")
	if int(f.Offset) != wantOffset {
		t.Fatalf("offset = %d, want %d", f.Offset, wantOffset)
	}
	if f.Line != 3 || f.Column != 27 {
		t.Fatalf("anchor = %d:%d, want 3:27", f.Line, f.Column)
	}
	if !f.Module {
		t.Fatal("type=module not detected")
	}
	if doc[f.Offset:int(f.Offset)+len(f.Text)] != f.Text {
		t.Fatal("fragment text does not match document bytes at offset")
	}
}

func TestExtractSkipsForeignTypes(t *testing.T) {
	doc := `<script type="application/json">{"a": 1}</script>` +
		`<script type="text/template"><div>{{x}}</div></script>` +
		`<script type="text/javascript; charset=utf-8">var a;</script>` +
		`<script type="importmap">{"imports": {}}</script>`
	frags, stats, err := Extract(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "var a;" {
		t.Fatalf("unexpected fragments %+v", frags)
	}
	if stats.NonScript != 3 {
		t.Fatalf("expected 3 skipped non-script elements, got %d", stats.NonScript)
	}
}

func TestExtractRecoversFromUnterminatedScript(t *testing.T) {
	doc := "<p>ok</p><script>var ok = 1;</script>\n<script>let broken = "
	frags, stats, err := Extract(context.Background(), []byte(doc))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(frags) != 1 || frags[0].Text != "var ok = 1;" {
		t.Fatalf("unexpected fragments %+v", frags)
	}
	if stats.Inline != 1 || stats.Unbalanced != 1 {
		t.Fatalf("stats = %+v, want 1 inline and 1 unbalanced", stats)
	}
}

func TestStrayScriptTags(t *testing.T) {
	tests := []struct {
		doc  string
		seen []byteRange
		want int
	}{
		{"<script>a?.b", nil, 1},
		{"<SCRIPT type=module>", nil, 1},
		{"<scripts>", nil, 0},
		{"<noscript>x</noscript>", nil, 0},
		{"<script>var a=1;</script><script>a?.b", []byteRange{{0, 25}}, 1},
		{"<!-- <script> -->", []byteRange{{0, 17}}, 0},
	}
	for _, tt := range tests {
		if got := strayScriptTags([]byte(tt.doc), tt.seen); got != tt.want {
			t.Errorf("strayScriptTags(%q) = %d, want %d", tt.doc, got, tt.want)
		}
	}
}

func TestFragmentsStopsEarly(t *testing.T) {
	doc := "<script>a</script><script>b</script><script>c</script>"
	n := 0
	for range Fragments([]byte(doc)) {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("iterated %d times", n)
	}
	if frags, _, _ := Extract(context.Background(), nil); frags != nil {
		t.Fatal("empty document must yield nothing")
	}
}
