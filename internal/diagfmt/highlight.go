package diagfmt

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fatih/color"
)

const highlightStyle = "dracula"

// highlightLine colours one excerpt line with the lexer matching filename.
// Lines the lexer cannot tokenise are returned unchanged.
func highlightLine(filename, line string) string {
	lexer := lexerForFile(filename)
	if lexer == nil || line == "" {
		return line
	}
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	var b strings.Builder
	for _, token := range iterator.Tokens() {
		value := strings.TrimRight(token.Value, "\n")
		if value == "" {
			continue
		}
		entry := style.Get(token.Type)
		if !entry.Colour.IsSet() {
			b.WriteString(value)
			continue
		}
		c := color.RGB(int(entry.Colour.Red()), int(entry.Colour.Green()), int(entry.Colour.Blue()))
		c.EnableColor()
		b.WriteString(c.Sprint(value))
	}
	return b.String()
}

func lexerForFile(filename string) chroma.Lexer {
	lexer := lexers.Match(filepath.Base(filename))
	if lexer == nil {
		if ext := filepath.Ext(filename); ext != "" {
			lexer = lexers.Match("file" + ext)
		}
	}
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	return lexer
}
