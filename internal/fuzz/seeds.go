package fuzztests

import (
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 256 << 10
)

var scriptSeeds = []string{
	"",
	"var a = 1;",
	"const f = (a) => a?.b ?? 0;",
	"class A { #x = 1; static { init(); } }",
	"async function* g() { for await (const v of s) yield v; }",
	"let { a, ...rest } = obj;",
	"var r = /(?<year>\\d{4})/u;",
	"var n = 1_000n;",
	"#!/usr/bin/env node\nvar a;",
	"var a = (",
	"x = a?.b",
	"`${`${a}`}`",
	"label: for (;;) { break label; }",
	"var a = <div/>;",
	"\r\nvar a;\r\n",
}

var documentSeeds = []string{
	"",
	"<script>var a = 1;</script>",
	"<!doctype html><html><head><script type=\"module\">import x from './x.js';</script></head></html>",
	"<script src=\"a.js\"></script><script>let b;</script>",
	"<script type=\"text/template\"><p>{{x}}</p></script>",
	"<script>unterminated",
	"<script></script>",
	"<div><script>a()</script></div>\n<script type=\"application/json\">{}</script>",
	"<SCRIPT TYPE=\"TEXT/JAVASCRIPT\">a?.b</SCRIPT>",
}

func addScriptSeeds(f *testing.F) {
	for _, s := range scriptSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func addDocumentSeeds(f *testing.F) {
	for _, s := range documentSeeds {
		f.Add(clampSeed([]byte(s)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) > maxSeedBytes {
		return append([]byte(nil), src[:maxSeedBytes]...)
	}
	return src
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}
