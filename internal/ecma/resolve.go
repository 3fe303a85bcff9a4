package ecma

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNoTargets is returned when neither targets nor an explicit version are given.
	ErrNoTargets = errors.New("no targets configured")
	// ErrUnknownTarget is returned for a descriptor the resolver cannot interpret.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrUnknownVersion is returned for an unparsable ECMAScript version.
	ErrUnknownVersion = errors.New("unknown ECMAScript version")
)

// TargetVersion is the outcome for a single descriptor.
type TargetVersion struct {
	Target  string
	Browser string
	Version Version
}

// Resolve returns the newest edition that every target fully supports.
// When targets disagree the most conservative edition wins.
func Resolve(targets []string) (Version, error) {
	v, _, err := ResolveDetailed(targets)
	return v, err
}

// ResolveWithOverride returns override when it is set and otherwise derives
// the version from targets.
func ResolveWithOverride(override Version, targets []string) (Version, error) {
	if override != Unknown {
		if !override.Valid() {
			return Unknown, fmt.Errorf("%w: %d", ErrUnknownVersion, override)
		}
		return override, nil
	}
	return Resolve(targets)
}

// ResolveDetailed is Resolve plus the edition computed for each descriptor.
func ResolveDetailed(targets []string) (Version, []TargetVersion, error) {
	if len(targets) == 0 {
		return Unknown, nil, ErrNoTargets
	}
	result := Latest
	details := make([]TargetVersion, 0, len(targets))
	for _, t := range targets {
		tv, err := resolveTarget(t)
		if err != nil {
			return Unknown, nil, err
		}
		details = append(details, tv)
		result = min(result, tv.Version)
	}
	return result, details, nil
}

func resolveTarget(target string) (TargetVersion, error) {
	raw := strings.ToLower(strings.TrimSpace(target))
	if raw == "" {
		return TargetVersion{}, fmt.Errorf("%w: empty descriptor", ErrUnknownTarget)
	}
	if strings.HasPrefix(raw, "es") {
		v, err := ParseVersion(raw)
		if err != nil {
			return TargetVersion{}, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
		}
		return TargetVersion{Target: target, Browser: "ecmascript", Version: v}, nil
	}

	name, ver, ok := splitDescriptor(raw)
	if !ok {
		return TargetVersion{}, fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	browser, ok := lookupBrowser(name)
	if !ok {
		return TargetVersion{}, fmt.Errorf("%w: %q (unknown browser %q)", ErrUnknownTarget, target, name)
	}
	tv := TargetVersion{Target: target, Browser: browser.name}

	if browser.es5Only {
		tv.Version = ES5
		return tv, nil
	}
	if ver == "tp" || ver == "latest" {
		tv.Version = Latest
		return tv, nil
	}
	parsed, err := semver.NewVersion(ver)
	if err != nil {
		return TargetVersion{}, fmt.Errorf("%w: %q (bad version %q)", ErrUnknownTarget, target, ver)
	}
	tv.Version = browser.supported(parsed)
	return tv, nil
}

// splitDescriptor understands "chrome 58", "chrome >= 58", "chrome >=58",
// "safari 15.2-15.3" (lower bound wins) and "op_mini all".
func splitDescriptor(raw string) (name, ver string, ok bool) {
	fields := strings.Fields(raw)
	switch len(fields) {
	case 2:
		name, ver = fields[0], strings.TrimPrefix(fields[1], ">=")
	case 3:
		if fields[1] != ">=" {
			return "", "", false
		}
		name, ver = fields[0], fields[2]
	default:
		return "", "", false
	}
	if lo, _, found := strings.Cut(ver, "-"); found {
		ver = lo
	}
	if name == "" || ver == "" {
		return "", "", false
	}
	return name, ver, true
}
