package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/spf13/cobra"

	"escheck/pkg/esbuildcheck"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle [flags] <entry...>",
	Short: "Bundle with esbuild and check the output",
	Long: `Bundle the entry points with esbuild, lowering syntax to the edition the
targets support, and check the written output with the escheck plugin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBundle,
}

func init() {
	registerConfigFlags(bundleCmd)
	f := bundleCmd.Flags()
	f.String("outdir", "dist", "output directory")
	f.Bool("minify", false, "minify the output")
	f.Bool("sourcemap", false, "write linked source maps")
	f.String("bundle-format", "esm", "bundle format (esm|iife|cjs)")
	f.Bool("fail-on-error", true, "fail the build when incompatible syntax is found")
}

func runBundle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	outdir, err := cmd.Flags().GetString("outdir")
	if err != nil {
		return fmt.Errorf("failed to get outdir flag: %w", err)
	}
	minify, err := cmd.Flags().GetBool("minify")
	if err != nil {
		return fmt.Errorf("failed to get minify flag: %w", err)
	}
	withMaps, err := cmd.Flags().GetBool("sourcemap")
	if err != nil {
		return fmt.Errorf("failed to get sourcemap flag: %w", err)
	}
	formatFlag, err := cmd.Flags().GetString("bundle-format")
	if err != nil {
		return fmt.Errorf("failed to get bundle-format flag: %w", err)
	}
	format, err := bundleFormat(formatFlag)
	if err != nil {
		return err
	}

	target, err := esbuildcheck.Target(settings.Run.Version.String())
	if err != nil {
		return err
	}
	plugin, err := esbuildcheck.New(esbuildcheck.Options{
		Targets:         cfg.Targets,
		ECMAVersion:     settings.Run.Version.String(),
		Exclude:         cfg.Exclude,
		ExcludeOutput:   cfg.ExcludeOutput,
		ExcludeSnippets: cfg.ExcludeSnippets,
		Root:            cfg.Root,
		FailOnError:     settings.FailOnError,
		Jobs:            cfg.Check.Jobs,
	})
	if err != nil {
		return err
	}

	sourcemap := api.SourceMapNone
	if withMaps {
		sourcemap = api.SourceMapLinked
	}
	result := api.Build(api.BuildOptions{
		EntryPoints:       args,
		Outdir:            outdir,
		Bundle:            true,
		Write:             true,
		Format:            format,
		Target:            target,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  minify,
		MinifyIdentifiers: minify,
		MinifySyntax:      minify,
		LogLevel:          api.LogLevelSilent,
		Plugins:           []api.Plugin{plugin},
	})

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	colored := useColor(colorFlag)
	printMessages(cmd.ErrOrStderr(), result.Warnings, api.WarningMessage, colored)
	printMessages(cmd.ErrOrStderr(), result.Errors, api.ErrorMessage, colored)
	if len(result.Errors) > 0 {
		return errCheckFailed
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "bundled %d entry point(s) into %s for %s (%s)\n",
			len(args), outdir, settings.Run.Version, settings.Run.Version.Edition())
	}
	return nil
}

func bundleFormat(s string) (api.Format, error) {
	switch strings.ToLower(s) {
	case "esm":
		return api.FormatESModule, nil
	case "iife":
		return api.FormatIIFE, nil
	case "cjs":
		return api.FormatCommonJS, nil
	}
	return api.FormatDefault, fmt.Errorf("invalid --bundle-format %q (expected esm|iife|cjs)", s)
}

func printMessages(out io.Writer, msgs []api.Message, kind api.MessageKind, colored bool) {
	if len(msgs) == 0 {
		return
	}
	for _, text := range api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind, Color: colored, TerminalWidth: 100}) {
		fmt.Fprint(out, text)
	}
}
