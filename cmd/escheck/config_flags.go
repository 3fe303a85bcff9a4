package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"escheck/internal/project"
)

// registerConfigFlags adds the flags that override configuration keys.
func registerConfigFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringSlice("targets", nil, "browser targets, e.g. \"chrome 79\" (overrides targets)")
	f.String("ecma-version", "", "check against this edition instead of resolving targets (es5, es2015..es2024)")
	f.StringSlice("exclude", nil, "drop diagnostics for files matching a glob or /regex/")
	f.StringSlice("exclude-output", nil, "skip emitted files matching a glob or /regex/")
	f.StringSlice("exclude-snippet", nil, "drop diagnostics whose source line matches a regex")
	f.String("root", "", "directory displayed paths are relative to")
	f.Int("jobs", 0, "max files checked in parallel (0=auto)")
}

// loadConfig reads --config, or discovers a configuration file above dir,
// and applies the command line on top of it.
func loadConfig(cmd *cobra.Command, dir string) (*project.Config, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg *project.Config
	if configPath != "" {
		cfg, err = project.Load(configPath)
	} else {
		cfg, err = project.Discover(dir)
	}
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *project.Config) error {
	flags := cmd.Flags()
	var err error
	strSlice := func(name string, dst *[]string) {
		if err != nil || flags.Lookup(name) == nil || !flags.Changed(name) {
			return
		}
		*dst, err = flags.GetStringSlice(name)
	}
	str := func(name string, dst *string) {
		if err != nil || flags.Lookup(name) == nil || !flags.Changed(name) {
			return
		}
		*dst, err = flags.GetString(name)
	}
	boolean := func(name string, dst *bool) {
		if err != nil || flags.Lookup(name) == nil || !flags.Changed(name) {
			return
		}
		*dst, err = flags.GetBool(name)
	}
	integer := func(name string, dst *int) {
		if err != nil || flags.Lookup(name) == nil || !flags.Changed(name) {
			return
		}
		*dst, err = flags.GetInt(name)
	}

	strSlice("targets", &cfg.Targets)
	str("ecma-version", &cfg.ECMAVersion)
	strSlice("exclude", &cfg.Exclude)
	strSlice("exclude-output", &cfg.ExcludeOutput)
	strSlice("exclude-snippet", &cfg.ExcludeSnippets)
	str("root", &cfg.Root)
	integer("jobs", &cfg.Check.Jobs)
	strSlice("hide", &cfg.Output.Hide)
	str("format", &cfg.Output.Format)
	str("paths", &cfg.Output.Paths)
	boolean("notes", &cfg.Output.Notes)
	boolean("fail-on-error", &cfg.Check.FailOnError)
	boolean("cache", &cfg.Check.Cache)
	boolean("disk-cache", &cfg.Check.DiskCache)
	str("cache-dir", &cfg.Check.CacheDir)
	if err != nil {
		return err
	}
	// command line paths are relative to the working directory, not the config file
	for name, dst := range map[string]*string{"root": &cfg.Root, "cache-dir": &cfg.Check.CacheDir} {
		if flags.Lookup(name) != nil && flags.Changed(name) && *dst != "" {
			if *dst, err = filepath.Abs(*dst); err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}
		}
	}

	root := cmd.Root().PersistentFlags()
	if root.Changed("max-diagnostics") {
		if cfg.Output.MaxDiagnostics, err = root.GetInt("max-diagnostics"); err != nil {
			return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if root.Changed("color") {
		if cfg.Output.Color, err = root.GetString("color"); err != nil {
			return fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Lookup("no-source-maps") != nil && flags.Changed("no-source-maps") {
		cfg.SourceMaps = false
	}
	return nil
}
