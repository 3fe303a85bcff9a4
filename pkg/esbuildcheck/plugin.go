// Package esbuildcheck runs the ECMAScript syntax check as an esbuild
// plugin, after every build that produced output.
package esbuildcheck

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/evanw/esbuild/pkg/api"

	"escheck/internal/diag"
	"escheck/internal/driver"
	"escheck/internal/ecma"
	"escheck/internal/project"
	"escheck/internal/source"
)

// PluginName is reported as the origin of every message.
const PluginName = "escheck"

// Options mirror the configuration keys of escheck.toml.
type Options struct {
	Targets         []string
	ECMAVersion     string
	Exclude         []string
	ExcludeOutput   []string
	ExcludeSnippets []string
	// Root shortens the paths in messages; the output directory when empty.
	Root string
	// FailOnError reports incompatibilities as build errors instead of
	// warnings.
	FailOnError bool
	Jobs        int
}

// New validates opts and returns the plugin. Configuration problems are
// reported here, as a *project.ConfigError, not during the build.
func New(opts Options) (api.Plugin, error) {
	cfg := project.Default()
	cfg.Targets = opts.Targets
	cfg.ECMAVersion = opts.ECMAVersion
	cfg.Exclude = opts.Exclude
	cfg.ExcludeOutput = opts.ExcludeOutput
	cfg.ExcludeSnippets = opts.ExcludeSnippets
	cfg.Root = opts.Root
	cfg.Check.Jobs = opts.Jobs
	cfg.Output.MaxDiagnostics = 0
	settings, err := cfg.Settings()
	if err != nil {
		return api.Plugin{}, err
	}
	runner, err := driver.NewRunner(settings.Run)
	if err != nil {
		return api.Plugin{}, err
	}
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			initial := build.InitialOptions
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				if len(result.Errors) > 0 {
					return api.OnEndResult{}, nil
				}
				emit, err := emitFromResult(result, initial)
				if err != nil {
					return api.OnEndResult{}, err
				}
				state, err := runner.Run(context.Background(), emit)
				if err != nil {
					return api.OnEndResult{}, err
				}
				return toOnEndResult(state, opts.FailOnError), nil
			})
		},
	}, nil
}

// emitFromResult prefers the in-memory output files and falls back to
// scanning the output directory when esbuild wrote to disk without them.
func emitFromResult(result *api.BuildResult, opts *api.BuildOptions) (driver.Emit, error) {
	root := ""
	if opts != nil {
		switch {
		case opts.Outdir != "":
			root = opts.Outdir
		case opts.Outfile != "":
			root = filepath.Dir(opts.Outfile)
		}
		if root != "" && !filepath.IsAbs(root) && opts.AbsWorkingDir != "" {
			root = filepath.Join(opts.AbsWorkingDir, root)
		}
	}
	if len(result.OutputFiles) > 0 {
		emit := driver.Emit{OutputRoot: root, Assets: make([]driver.Asset, 0, len(result.OutputFiles))}
		for _, f := range result.OutputFiles {
			emit.Assets = append(emit.Assets, driver.Asset{Name: f.Path, Contents: f.Contents})
		}
		return emit, nil
	}
	if root == "" {
		return driver.Emit{}, nil
	}
	emit, err := driver.EmitFromDir(root)
	if err != nil {
		return driver.Emit{}, fmt.Errorf("escheck: scan %s: %w", root, err)
	}
	return emit, nil
}

func toOnEndResult(state *driver.RunState, failOnError bool) api.OnEndResult {
	var out api.OnEndResult
	for _, d := range state.Diagnostics() {
		msg := toMessage(d, state.FileSet)
		if d.Severity == diag.SevError && failOnError {
			out.Errors = append(out.Errors, msg)
		} else {
			out.Warnings = append(out.Warnings, msg)
		}
	}
	return out
}

func toMessage(d *diag.Diagnostic, fs *source.FileSet) api.Message {
	msg := api.Message{
		ID:         d.Code.ID(),
		PluginName: PluginName,
		Text:       d.Message,
		Location:   toLocation(d.Primary, fs),
	}
	for _, n := range d.Notes {
		msg.Notes = append(msg.Notes, api.Note{Text: n.Msg})
	}
	if d.Origin != nil {
		msg.Notes = append(msg.Notes, api.Note{
			Text: fmt.Sprintf("original source %s:%d:%d", d.Origin.Path, d.Origin.Line, d.Origin.Column),
		})
	}
	if d.Version.Valid() && d.Construct != "" {
		msg.Notes = append(msg.Notes, api.Note{
			Text: fmt.Sprintf("the build is checked against %s (%s)", d.Version, d.Version.Edition()),
		})
	}
	return msg
}

func toLocation(span source.Span, fs *source.FileSet) *api.Location {
	f := fs.Get(span.File)
	if f == nil {
		return nil
	}
	loc := &api.Location{File: f.FormatPath("relative", fs.BaseDir())}
	if len(f.Content) == 0 {
		return loc
	}
	start, end := fs.Resolve(span)
	loc.Line = int(start.Line)
	loc.Column = int(start.Col) - 1
	loc.LineText = f.GetLine(start.Line)
	if end.Line == start.Line && end.Col > start.Col {
		loc.Length = int(end.Col - start.Col)
	}
	return loc
}

// Target maps an edition name ("es2019", "es10") to the esbuild target of
// the same grammar.
func Target(version string) (api.Target, error) {
	v, err := ecma.ParseVersion(version)
	if err != nil {
		return api.DefaultTarget, err
	}
	return targets[v], nil
}

var targets = map[ecma.Version]api.Target{
	ecma.ES5:    api.ES5,
	ecma.ES2015: api.ES2015,
	ecma.ES2016: api.ES2016,
	ecma.ES2017: api.ES2017,
	ecma.ES2018: api.ES2018,
	ecma.ES2019: api.ES2019,
	ecma.ES2020: api.ES2020,
	ecma.ES2021: api.ES2021,
	ecma.ES2022: api.ES2022,
	ecma.ES2023: api.ES2023,
	ecma.ES2024: api.ES2024,
}
