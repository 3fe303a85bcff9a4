package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity. Levels from phase upward line up with
// scopes: a level records every scope whose value does not exceed its own.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // failures only
	LevelPhase               // run and phase boundaries
	LevelDetail              // plus one span per asset
	LevelDebug               // plus HTML fragments
)

// Allows reports whether spans and points of scope are recorded at l.
func (l Level) Allows(scope Scope) bool {
	return l >= LevelPhase && uint8(scope) <= uint8(l)
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeRun      Scope = iota + 1 // one check run
	ScopePhase                     // collect, check, report
	ScopeFile                      // one emitted asset
	ScopeFragment                  // one script inside an HTML document
)

// Kind is the type of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindError
	KindHeartbeat
)

// StorageMode selects where events go.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // written as they happen
	ModeRing                          // last N kept in memory
	ModeBoth
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto Format = iota // from the output path
	FormatText
	FormatNDJSON
)

var (
	levelNames  = []string{LevelOff: "off", LevelError: "error", LevelPhase: "phase", LevelDetail: "detail", LevelDebug: "debug"}
	scopeNames  = []string{ScopeRun: "run", ScopePhase: "phase", ScopeFile: "file", ScopeFragment: "fragment"}
	kindNames   = []string{KindSpanBegin: "begin", KindSpanEnd: "end", KindPoint: "point", KindError: "error", KindHeartbeat: "heartbeat"}
	modeNames   = []string{ModeStream: "stream", ModeRing: "ring", ModeBoth: "both"}
	formatNames = []string{FormatAuto: "auto", FormatText: "text", FormatNDJSON: "ndjson"}
)

func (l Level) String() string       { return nameOf(levelNames, uint8(l)) }
func (s Scope) String() string       { return nameOf(scopeNames, uint8(s)) }
func (k Kind) String() string        { return nameOf(kindNames, uint8(k)) }
func (m StorageMode) String() string { return nameOf(modeNames, uint8(m)) }
func (f Format) String() string      { return nameOf(formatNames, uint8(f)) }

// ParseLevel accepts off, error, phase, detail and debug.
func ParseLevel(s string) (Level, error) {
	return parseName[Level]("trace level", levelNames, s)
}

// ParseMode accepts stream, ring and both.
func ParseMode(s string) (StorageMode, error) {
	return parseName[StorageMode]("storage mode", modeNames, s)
}

// ParseFormat accepts auto, text and ndjson; an empty string means auto and
// json is an alias for ndjson.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatAuto, nil
	case "json":
		return FormatNDJSON, nil
	}
	return parseName[Format]("trace format", formatNames, s)
}

func nameOf(names []string, v uint8) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return "unknown"
}

func parseName[T ~uint8](what string, names []string, s string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	valid := make([]string, 0, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		if name == s {
			return T(i), nil
		}
		valid = append(valid, name)
	}
	return 0, fmt.Errorf("invalid %s: %q (expected: %s)", what, s, strings.Join(valid, "|"))
}
