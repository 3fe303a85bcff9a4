package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"escheck/internal/diagfmt"
	"escheck/internal/driver"
	"escheck/internal/ecma"
	"escheck/internal/exclude"
)

// Config is the on-disk configuration. Keys are the same in escheck.toml
// and .escheckrc.yaml.
type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`

	Targets         []string `toml:"targets" yaml:"targets"`
	ECMAVersion     string   `toml:"ecma_version" yaml:"ecma_version"`
	Exclude         []string `toml:"exclude" yaml:"exclude"`
	ExcludeOutput   []string `toml:"exclude_output" yaml:"exclude_output"`
	ExcludeSnippets []string `toml:"exclude_snippets" yaml:"exclude_snippets"`
	// ExcludeErrorLogs is an alias of output.hide.
	ExcludeErrorLogs []string `toml:"exclude_error_logs" yaml:"exclude_error_logs"`
	Root             string   `toml:"root" yaml:"root"`
	SourceMaps       bool     `toml:"source_maps" yaml:"source_maps"`

	Output OutputConfig `toml:"output" yaml:"output"`
	Check  CheckConfig  `toml:"check" yaml:"check"`
}

// OutputConfig is the [output] section.
type OutputConfig struct {
	Format         string   `toml:"format" yaml:"format"`
	Hide           []string `toml:"hide" yaml:"hide"`
	Paths          string   `toml:"paths" yaml:"paths"`
	MaxDiagnostics int      `toml:"max_diagnostics" yaml:"max_diagnostics"`
	Color          string   `toml:"color" yaml:"color"`
	Notes          bool     `toml:"notes" yaml:"notes"`
	Context        int      `toml:"context" yaml:"context"`
}

// CheckConfig is the [check] section.
type CheckConfig struct {
	Jobs        int    `toml:"jobs" yaml:"jobs"`
	FailOnError bool   `toml:"fail_on_error" yaml:"fail_on_error"`
	Cache       bool   `toml:"cache" yaml:"cache"`
	DiskCache   bool   `toml:"disk_cache" yaml:"disk_cache"`
	CacheDir    string `toml:"cache_dir" yaml:"cache_dir"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		SourceMaps: true,
		Output: OutputConfig{
			Format:         "pretty",
			Paths:          "relative",
			MaxDiagnostics: 100,
			Color:          "auto",
			Notes:          true,
		},
		Check: CheckConfig{
			FailOnError: true,
			Cache:       true,
		},
	}
}

// Load reads a configuration file on top of Default. Unknown keys are
// rejected so that a typo never silently disables a rule.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.Path = path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, configErr(path, "", fmt.Errorf("failed to parse TOML: %w", err))
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, configErr(path, undecoded[0].String(), errors.New("unknown key"))
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, configErr(path, "", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, configErr(path, "", fmt.Errorf("failed to parse YAML: %w", err))
		}
	default:
		return nil, configErr(path, "", fmt.Errorf("unsupported configuration format %q", filepath.Ext(path)))
	}
	return cfg, nil
}

// Discover loads the nearest configuration file above startDir, or Default
// when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return nil, configErr("", "", err)
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Dir is the directory relative paths in the configuration resolve against.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Settings is a validated configuration, ready to drive a check run.
type Settings struct {
	Targets     []string
	Run         driver.Options
	Output      diagfmt.Options
	Color       string
	FailOnError bool
	DiskCache   bool
	CacheDir    string
}

// Settings validates c and compiles its rules. Every failure is a
// *ConfigError naming the offending key.
func (c *Config) Settings() (Settings, error) {
	s := Settings{
		Targets:     c.Targets,
		FailOnError: c.Check.FailOnError,
		DiskCache:   c.Check.DiskCache,
		CacheDir:    c.resolve(c.Check.CacheDir),
	}

	override := ecma.Unknown
	if strings.TrimSpace(c.ECMAVersion) != "" {
		v, err := ecma.ParseVersion(c.ECMAVersion)
		if err != nil {
			return Settings{}, configErr(c.Path, "ecma_version", err)
		}
		override = v
	}
	version, err := ecma.ResolveWithOverride(override, c.Targets)
	if err != nil {
		return Settings{}, configErr(c.Path, "targets", err)
	}

	excl, err := exclude.CompileAll(c.Exclude)
	if err != nil {
		return Settings{}, configErr(c.Path, "exclude", err)
	}
	snippets, err := exclude.CompileSnippets(c.ExcludeSnippets)
	if err != nil {
		return Settings{}, configErr(c.Path, "exclude_snippets", err)
	}
	exclOutput, err := exclude.CompileAll(c.ExcludeOutput)
	if err != nil {
		return Settings{}, configErr(c.Path, "exclude_output", err)
	}

	if c.Check.Jobs < 0 {
		return Settings{}, configErr(c.Path, "check.jobs", fmt.Errorf("must not be negative, got %d", c.Check.Jobs))
	}
	if c.Output.MaxDiagnostics < 0 {
		return Settings{}, configErr(c.Path, "output.max_diagnostics", fmt.Errorf("must not be negative, got %d", c.Output.MaxDiagnostics))
	}
	s.Run = driver.Options{
		Version:        version,
		Exclude:        excl.Append(snippets...),
		ExcludeOutput:  exclOutput,
		RootPath:       c.resolve(c.Root),
		Jobs:           c.Check.Jobs,
		MaxDiagnostics: c.Output.MaxDiagnostics,
		Cache:          c.Check.Cache,
		SourceMaps:     c.SourceMaps,
	}

	format, err := diagfmt.ParseFormat(c.Output.Format)
	if err != nil {
		return Settings{}, configErr(c.Path, "output.format", err)
	}
	hide, err := diagfmt.ParseHide(slices.Concat(c.Output.Hide, c.ExcludeErrorLogs))
	if err != nil {
		return Settings{}, configErr(c.Path, "output.hide", err)
	}
	paths, err := diagfmt.ParsePathMode(c.Output.Paths)
	if err != nil {
		return Settings{}, configErr(c.Path, "output.paths", err)
	}
	switch strings.ToLower(c.Output.Color) {
	case "", "auto", "on", "off":
		s.Color = strings.ToLower(c.Output.Color)
	default:
		return Settings{}, configErr(c.Path, "output.color", fmt.Errorf("invalid value %q (expected auto|on|off)", c.Output.Color))
	}
	context, err := safecast.Conv[int8](c.Output.Context)
	if err != nil || context < 0 {
		return Settings{}, configErr(c.Path, "output.context", fmt.Errorf("must be a small non-negative number, got %d", c.Output.Context))
	}
	s.Output = diagfmt.Options{
		Format: format,
		Pretty: diagfmt.PrettyOpts{
			Context:   context,
			PathMode:  paths,
			ShowNotes: c.Output.Notes,
			Hide:      hide,
		},
		JSON: diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         paths,
			IncludeNotes:     c.Output.Notes,
		},
	}
	return s, nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), p)
}
