package ecma

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ECMAScript edition. Editions are ordered, so a newer edition
// always compares greater than an older one.
type Version uint8

const (
	// Unknown is the zero value; it is never a valid grammar.
	Unknown Version = iota
	ES5
	ES2015
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ES2021
	ES2022
	ES2023
	ES2024
)

const (
	// Lowest is the oldest grammar the checker understands.
	Lowest = ES5
	// Latest is the newest grammar the checker understands.
	Latest = ES2024
)

// Versions lists every supported edition, oldest first.
func Versions() []Version {
	out := make([]Version, 0, int(Latest-Lowest)+1)
	for v := Lowest; v <= Latest; v++ {
		out = append(out, v)
	}
	return out
}

// Valid reports whether v is a supported edition.
func (v Version) Valid() bool {
	return v >= Lowest && v <= Latest
}

// Year returns the edition year (2009 for ES5).
func (v Version) Year() int {
	switch {
	case v == ES5:
		return 2009
	case v.Valid():
		return 2015 + int(v-ES2015)
	default:
		return 0
	}
}

func (v Version) String() string {
	switch {
	case v == ES5:
		return "es5"
	case v.Valid():
		return "es" + strconv.Itoa(v.Year())
	default:
		return "unknown"
	}
}

// Edition returns the conventional "ES<n>" edition number label, e.g. ES6 for ES2015.
func (v Version) Edition() string {
	switch {
	case v == ES5:
		return "ES5"
	case v.Valid():
		return "ES" + strconv.Itoa(6+int(v-ES2015))
	default:
		return "unknown"
	}
}

// ParseVersion accepts "es5", "es6".."es15", "es2015".."es2024", bare years
// and edition numbers ("2020", "11"). Matching is case-insensitive.
func ParseVersion(s string) (Version, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	digits := strings.TrimPrefix(raw, "es")
	n, err := strconv.Atoi(digits)
	if err != nil || digits == "" {
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}
	span := int(Latest - ES2015)
	var v Version
	switch {
	case n == 5, n == 2009:
		v = ES5
	case n >= 6 && n <= 6+span:
		v = ES2015 + Version(n-6)
	case n >= 2015 && n <= 2015+span:
		v = ES2015 + Version(n-2015)
	}
	if !v.Valid() {
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownVersion, s)
	}
	return v, nil
}

// MarshalText implements encoding.TextMarshaler so versions serialise as "es2020".
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
