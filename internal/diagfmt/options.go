package diagfmt

import (
	"errors"
	"fmt"
	"strings"
)

// Format selects the renderer used by Report.
type Format uint8

const (
	FormatPretty Format = iota
	FormatShort
	FormatJSON
	FormatSARIF
)

// ErrUnknownFormat is returned by ParseFormat and ParseHide.
var ErrUnknownFormat = errors.New("unknown output option")

func (f Format) String() string {
	switch f {
	case FormatShort:
		return "short"
	case FormatJSON:
		return "json"
	case FormatSARIF:
		return "sarif"
	default:
		return "pretty"
	}
}

// ParseFormat accepts pretty, short, json and sarif.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pretty":
		return FormatPretty, nil
	case "short":
		return FormatShort, nil
	case "json":
		return FormatJSON, nil
	case "sarif":
		return FormatSARIF, nil
	}
	return FormatPretty, fmt.Errorf("%w: format %q (want pretty|short|json|sarif)", ErrUnknownFormat, s)
}

// Hide is a set of pretty output sections to suppress.
type Hide uint8

const (
	// HideSource drops the excerpt under each diagnostic.
	HideSource Hide = 1 << iota
	// HideOutput drops the original (source-mapped) location.
	HideOutput
	// HideReason drops the message, leaving only the location.
	HideReason
	// HideCode drops the diagnostic code.
	HideCode
)

var hideNames = map[string]Hide{
	"source": HideSource,
	"output": HideOutput,
	"reason": HideReason,
	"code":   HideCode,
}

// Has reports whether every section in h is hidden.
func (h Hide) Has(section Hide) bool {
	return h&section == section
}

// ParseHide combines section names ("source", "output", "reason", "code").
func ParseHide(names []string) (Hide, error) {
	var h Hide
	for _, raw := range names {
		for name := range strings.SplitSeq(raw, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			bit, ok := hideNames[name]
			if !ok {
				return 0, fmt.Errorf("%w: hide %q (want source|output|reason|code)", ErrUnknownFormat, name)
			}
			h |= bit
		}
	}
	return h, nil
}

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto chooses relative or absolute path automatically.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

func (m PathMode) name() string {
	switch m {
	case PathModeAbsolute:
		return "absolute"
	case PathModeRelative:
		return "relative"
	case PathModeBasename:
		return "basename"
	default:
		return "auto"
	}
}

// ParsePathMode accepts auto, absolute, relative and basename.
func ParsePathMode(s string) (PathMode, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	if want == "" {
		return PathModeAuto, nil
	}
	for m := PathModeAuto; m <= PathModeBasename; m++ {
		if m.name() == want {
			return m, nil
		}
	}
	return PathModeAuto, fmt.Errorf("%w: paths %q (want auto|absolute|relative|basename)", ErrUnknownFormat, s)
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	Highlight bool // syntax-highlight excerpts (needs Color)
	Context   int8
	PathMode  PathMode
	Width     uint8 // maximum excerpt width, 0 = unlimited
	ShowNotes bool
	Hide      Hide
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool
	PathMode         PathMode
	Max              int // output cut-off, the bag is not touched
	IncludeNotes     bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}

// Options select and configure the renderer used by Report.
type Options struct {
	Format Format
	Pretty PrettyOpts
	JSON   JSONOpts
	Sarif  SarifRunMeta
	// Quiet suppresses the success line of the pretty renderer.
	Quiet bool
}
