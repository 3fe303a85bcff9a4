package ecma

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	tests := map[string]Version{
		"es5":      ES5,
		"ES5":      ES5,
		"es6":      ES2015,
		"es2015":   ES2015,
		"2017":     ES2017,
		"es11":     ES2020,
		" es2024 ": ES2024,
		"es15":     ES2024,
		"2009":     ES5,
	}
	for in, want := range tests {
		got, err := ParseVersion(in)
		if err != nil {
			t.Errorf("ParseVersion(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseVersion(%q) = %s, want %s", in, got, want)
		}
	}

	for _, bad := range []string{"", "es", "es3", "es2014", "es2025", "es16", "esnext", "es2271"} {
		if _, err := ParseVersion(bad); !errors.Is(err, ErrUnknownVersion) {
			t.Errorf("ParseVersion(%q): got %v, want ErrUnknownVersion", bad, err)
		}
	}
}

func TestVersionStrings(t *testing.T) {
	if ES5.String() != "es5" || ES2020.String() != "es2020" {
		t.Fatalf("unexpected strings %s %s", ES5, ES2020)
	}
	if ES2015.Edition() != "ES6" || ES2024.Edition() != "ES15" {
		t.Fatalf("unexpected editions %s %s", ES2015.Edition(), ES2024.Edition())
	}
	if Unknown.Valid() || Version(200).Valid() {
		t.Fatal("invalid versions reported valid")
	}
	if len(Versions()) != int(Latest-Lowest)+1 {
		t.Fatalf("Versions() length %d", len(Versions()))
	}
}

func TestVersionTextRoundTrip(t *testing.T) {
	var v Version
	if err := v.UnmarshalText([]byte("es2021")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, _ := v.MarshalText()
	if string(text) != "es2021" {
		t.Fatalf("MarshalText = %q", text)
	}
}
