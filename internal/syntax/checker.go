// Package syntax decides whether JavaScript source is accepted by a given
// ECMAScript edition. The source is parsed once with the tree-sitter
// JavaScript grammar (which accepts the newest edition and JSX); the tree
// is then walked in document order and the first grammar error or the first
// construct newer than the requested edition becomes the Failure.
package syntax

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"escheck/internal/ecma"
)

// Checker parses sources under a grammar version. It is safe for concurrent
// use; tree-sitter parsers are not, so each call borrows one from a pool.
type Checker struct {
	parsers sync.Pool
}

func NewChecker() *Checker {
	c := &Checker{}
	c.parsers.New = func() any {
		p := sitter.NewParser()
		p.SetLanguage(javascript.GetLanguage())
		return p
	}
	return c
}

// TryParse returns nil when src is valid under version, otherwise the first
// failure in document order. The result depends only on (src, version).
func (c *Checker) TryParse(ctx context.Context, src []byte, version ecma.Version) (failure *Failure) {
	if !version.Valid() {
		return &Failure{Kind: KindAborted, Message: fmt.Sprintf("unknown grammar version %d", version)}
	}
	if len(src) == 0 {
		return nil
	}

	parser, _ := c.parsers.Get().(*sitter.Parser)
	defer c.parsers.Put(parser)

	defer func() {
		if r := recover(); r != nil {
			failure = &Failure{Kind: KindAborted, Message: fmt.Sprintf("parser panic: %v", r)}
		}
	}()

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		parser.Reset()
		return &Failure{Kind: KindAborted, Message: fmt.Sprintf("parse aborted: %v", err)}
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() && version == ecma.Latest {
		return nil
	}
	w := walker{src: src, version: version}
	w.visit(root, "", scope{})
	return w.failure
}

type walker struct {
	src     []byte
	version ecma.Version
	failure *Failure
}

// visit walks n in pre-order and stops at the first failure.
func (w *walker) visit(n *sitter.Node, parent string, sc scope) {
	if w.failure != nil || n == nil {
		return
	}
	typ := n.Type()
	switch {
	case n.IsMissing():
		w.fail(n, &Failure{Kind: KindGrammar, Message: fmt.Sprintf("missing %q", typ)})
		return
	case typ == "ERROR":
		w.fail(n, &Failure{Kind: KindGrammar, Message: w.unexpected(n)})
		return
	}
	if c, ok := detect(n, parent, w.src, sc); ok && c.Since > w.version {
		w.fail(n, &Failure{
			Kind:       KindUnsupported,
			Message:    fmt.Sprintf("%s is not supported in %s (requires %s)", c.Name, w.version, c.Since),
			Construct:  c.Name,
			Introduced: c.Since,
		})
		return
	}
	if !n.HasError() && w.version == ecma.Latest {
		return
	}

	if functionTypes[typ] {
		sc.functions++
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.visit(n.Child(i), typ, sc)
		if w.failure != nil {
			return
		}
	}
}

func (w *walker) fail(n *sitter.Node, f *Failure) {
	pt := n.StartPoint()
	f.Offset = n.StartByte()
	f.End = n.EndByte()
	f.Line = pt.Row + 1
	f.Column = pt.Column + 1
	w.failure = f
}

// unexpected describes the first token inside an ERROR node.
func (w *walker) unexpected(n *sitter.Node) string {
	leaf := n
	for leaf.ChildCount() > 0 {
		next := leaf.Child(0)
		if next == nil {
			break
		}
		leaf = next
	}
	text := strings.TrimSpace(leaf.Content(w.src))
	if text == "" {
		text = strings.TrimSpace(n.Content(w.src))
	}
	size, err := safecast.Conv[uint32](len(w.src))
	if text == "" && err == nil && n.StartByte() >= size {
		return "unexpected end of input"
	}
	if r := []rune(text); len(r) > 24 {
		text = string(r[:24]) + "…"
	}
	return fmt.Sprintf("unexpected token %q", text)
}
