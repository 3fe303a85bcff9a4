package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Syntax
	SynGrammarError         Code = 1000
	SynUnsupportedConstruct Code = 1001

	// I/O
	IOInfo           Code = 2000
	IOLoadFileError  Code = 2001
	IOSourceMapError Code = 2002
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	SynGrammarError:         "Syntax error",
	SynUnsupportedConstruct: "Syntax not supported by the target version",
	IOInfo:                  "I/O information",
	IOLoadFileError:         "I/O load file error",
	IOSourceMapError:        "Source map could not be read",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ES%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

// IsIO reports whether the code belongs to the I/O group.
func (c Code) IsIO() bool {
	return c >= IOInfo && c < 3000
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
