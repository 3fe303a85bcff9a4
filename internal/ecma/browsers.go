package ecma

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

type browser struct {
	name    string
	es5Only bool
	// minimum release that fully supports the syntax of ES2015+i
	floors []*semver.Version
}

// supported returns the newest edition whose syntax the release fully supports.
func (b browser) supported(v *semver.Version) Version {
	result := ES5
	for i, floor := range b.floors {
		if v.LessThan(floor) {
			break
		}
		result = ES2015 + Version(i)
	}
	return result
}

// Minimum releases per edition, ES2015 first. Syntax features only: a browser
// counts for an edition once every construct the checker gates on that edition
// parses there (e.g. Safari reaches ES2018 only with regexp lookbehind in 16.4).
var compatTable = map[string][]string{
	//          2015   2016    2017    2018    2019    2020    2021    2022     2023     2024
	"chrome":  {"51", "52", "58", "64", "66", "80", "85", "94", "94", "112"},
	"edge":    {"15", "15", "16", "79", "79", "80", "85", "94", "94", "112"},
	"firefox": {"54", "54", "54", "78", "78", "78", "79", "93", "93", "116"},
	"safari":  {"10", "10.1", "11", "16.4", "16.4", "16.4", "16.4", "16.4", "16.4", "17"},
	"ios_saf": {"10", "10.3", "11", "16.4", "16.4", "16.4", "16.4", "16.4", "16.4", "17"},
	"opera":   {"38", "39", "45", "51", "53", "67", "71", "80", "80", "98"},
	"samsung": {"5", "6.2", "7.2", "9.2", "9.2", "13", "14", "17", "17", "22"},
	"node":    {"6.5", "7", "8.10", "10", "10", "14", "15", "16.11", "16.11", "20"},
}

var browserAliases = map[string]string{
	"chrome":         "chrome",
	"and_chr":        "chrome",
	"chromeandroid":  "chrome",
	"android":        "chrome",
	"edge":           "edge",
	"firefox":        "firefox",
	"ff":             "firefox",
	"and_ff":         "firefox",
	"firefoxandroid": "firefox",
	"safari":         "safari",
	"ios_saf":        "ios_saf",
	"ios":            "ios_saf",
	"opera":          "opera",
	"op":             "opera",
	"samsung":        "samsung",
	"node":           "node",
	"ie":             "ie",
	"explorer":       "ie",
	"ie_mob":         "ie",
	"op_mini":        "op_mini",
	"operamini":      "op_mini",
}

var browsers = buildBrowsers()

func buildBrowsers() map[string]browser {
	out := make(map[string]browser, len(compatTable)+2)
	for name, floors := range compatTable {
		if len(floors) != int(Latest-ES2015)+1 {
			panic(fmt.Sprintf("ecma: compat row %q has %d entries", name, len(floors)))
		}
		b := browser{name: name, floors: make([]*semver.Version, len(floors))}
		for i, f := range floors {
			b.floors[i] = semver.MustParse(f)
		}
		out[name] = b
	}
	out["ie"] = browser{name: "ie", es5Only: true}
	out["op_mini"] = browser{name: "op_mini", es5Only: true}
	return out
}

func lookupBrowser(name string) (browser, bool) {
	canonical, ok := browserAliases[name]
	if !ok {
		return browser{}, false
	}
	b, ok := browsers[canonical]
	return b, ok
}

// Browsers returns the canonical browser names the resolver understands.
func Browsers() []string {
	out := make([]string, 0, len(browsers))
	for name := range browsers {
		out = append(out, name)
	}
	return out
}
