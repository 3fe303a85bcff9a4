// Package htmlscript pulls inline scripts out of HTML documents. Each
// fragment keeps its byte offset and line/column inside the document so
// positions found in the fragment can be mapped back.
package htmlscript

import (
	"bytes"
	"context"
	"iter"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

// Fragment is the body of one inline <script> element.
type Fragment struct {
	Text string
	// Offset is the byte offset of Text inside the document.
	Offset uint32
	// Line and Column (1-based, bytes) of the first byte of Text.
	Line   uint32
	Column uint32
	// Module is set for type="module" scripts.
	Module bool
}

// Stats counts what extraction skipped. Nothing here is an error: skipped
// elements are reported through traces only.
type Stats struct {
	Inline     int
	External   int
	NonScript  int
	Unbalanced int
}

// Fragments yields inline script fragments in document order. A parse that
// fails (only possible on cancellation) yields nothing.
func Fragments(content []byte) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		frags, _, err := Extract(context.Background(), content)
		if err != nil {
			return
		}
		for _, f := range frags {
			if !yield(f) {
				return
			}
		}
	}
}

// Extract parses the document and returns its inline scripts plus a count
// of the elements it skipped.
func Extract(ctx context.Context, content []byte) ([]Fragment, Stats, error) {
	var stats Stats
	if len(content) == 0 {
		return nil, stats, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(html.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, stats, err
	}
	defer tree.Close()

	var out []Fragment
	var seen []byteRange
	walk(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Type() {
		case "comment", "style_element":
			seen = append(seen, byteRange{n.StartByte(), n.EndByte()})
			return false
		case "script_element":
			seen = append(seen, byteRange{n.StartByte(), n.EndByte()})
		default:
			return true
		}
		frag, kind := scriptFragment(n, content)
		switch kind {
		case scriptInline:
			stats.Inline++
			out = append(out, frag)
		case scriptExternal:
			stats.External++
		case scriptForeign:
			stats.NonScript++
		case scriptUnbalanced:
			stats.Unbalanced++
		}
		return false
	})
	// an unclosed trailing <script> is folded into an error node and never
	// surfaces as a script_element
	stats.Unbalanced += strayScriptTags(content, seen)
	return out, stats, nil
}

type byteRange struct{ start, end uint32 }

// strayScriptTags counts "<script" openings outside the given ranges.
func strayScriptTags(content []byte, seen []byteRange) int {
	lower := bytes.ToLower(content)
	count := 0
	for at := 0; ; {
		i := bytes.Index(lower[at:], []byte("<script"))
		if i < 0 {
			return count
		}
		pos := at + i
		at = pos + len("<script")
		if at < len(lower) && !strings.ContainsRune(" \t\n\r\f/>", rune(lower[at])) {
			continue
		}
		inside := slices.ContainsFunc(seen, func(r byteRange) bool {
			return uint32(pos) >= r.start && uint32(pos) < r.end
		})
		if !inside {
			count++
		}
	}
}

type scriptKind uint8

const (
	scriptInline scriptKind = iota
	scriptExternal
	scriptForeign
	scriptUnbalanced
)

func scriptFragment(n *sitter.Node, content []byte) (Fragment, scriptKind) {
	var start, body, end *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "start_tag":
			start = child
		case "raw_text":
			body = child
		case "end_tag":
			end = child
		}
	}
	if start == nil || end == nil || end.IsMissing() || end.HasError() || end.StartByte() == end.EndByte() {
		return Fragment{}, scriptUnbalanced
	}

	attrs := attributes(start, content)
	if _, ok := attrs["src"]; ok {
		return Fragment{}, scriptExternal
	}
	typ, _, _ := strings.Cut(strings.ToLower(attrs["type"]), ";")
	typ = strings.TrimSpace(typ)
	if !isJavaScriptType(typ) {
		return Fragment{}, scriptForeign
	}

	frag := Fragment{Module: typ == "module"}
	if body != nil {
		frag.Text = body.Content(content)
		frag.Offset = body.StartByte()
		pt := body.StartPoint()
		frag.Line, frag.Column = pt.Row+1, pt.Column+1
	} else {
		// <script></script>: an empty fragment anchored after the start tag
		frag.Offset = start.EndByte()
		pt := start.EndPoint()
		frag.Line, frag.Column = pt.Row+1, pt.Column+1
	}
	return frag, scriptInline
}

func attributes(tag *sitter.Node, content []byte) map[string]string {
	out := make(map[string]string)
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		attr := tag.NamedChild(i)
		if attr == nil || attr.Type() != "attribute" {
			continue
		}
		var name, value string
		for j := 0; j < int(attr.NamedChildCount()); j++ {
			part := attr.NamedChild(j)
			switch part.Type() {
			case "attribute_name":
				name = strings.ToLower(part.Content(content))
			case "attribute_value":
				value = part.Content(content)
			case "quoted_attribute_value":
				value = strings.Trim(part.Content(content), `"'`)
			}
		}
		if name != "" {
			out[name] = value
		}
	}
	return out
}

var javaScriptTypes = map[string]bool{
	"":                         true,
	"module":                   true,
	"text/javascript":          true,
	"application/javascript":   true,
	"text/ecmascript":          true,
	"application/ecmascript":   true,
	"application/x-javascript": true,
	"text/jsx":                 true,
}

func isJavaScriptType(typ string) bool {
	if javaScriptTypes[typ] {
		return true
	}
	// text/javascript1.0 .. 1.5
	return strings.HasPrefix(typ, "text/javascript1.")
}

// walk visits nodes in pre-order; fn returns false to skip children.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), fn)
	}
}
