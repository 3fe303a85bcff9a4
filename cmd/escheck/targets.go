package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"escheck/internal/ecma"
	"escheck/internal/project"
)

var targetsCmd = &cobra.Command{
	Use:   "targets [descriptor...]",
	Short: "Show the ECMAScript edition a set of browser targets supports",
	Long: `Resolve browser targets such as "chrome 79" or "safari >= 13.1" to the newest
ECMAScript edition all of them support. Without arguments the targets of the
discovered configuration are used.`,
	RunE: runTargets,
}

func init() {
	targetsCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	targetsCmd.Flags().Bool("browsers", false, "list the browser names the resolver knows")
}

type targetJSON struct {
	Target  string `json:"target"`
	Browser string `json:"browser"`
	Version string `json:"version"`
}

type targetsPayload struct {
	Version string       `json:"version"`
	Edition string       `json:"edition"`
	Targets []targetJSON `json:"targets"`
}

func runTargets(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	listBrowsers, err := cmd.Flags().GetBool("browsers")
	if err != nil {
		return fmt.Errorf("failed to get browsers flag: %w", err)
	}
	out := cmd.OutOrStdout()
	if listBrowsers {
		for _, name := range ecma.Browsers() {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	targets := args
	if len(targets) == 0 {
		cfg, err := project.Discover(".")
		if err != nil {
			return err
		}
		targets = cfg.Targets
	}
	resolved, details, err := ecma.ResolveDetailed(targets)
	if err != nil {
		return err
	}
	if format == "json" {
		return renderTargetsJSON(out, resolved, details)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	renderTargetsPretty(out, resolved, details, useColor(colorFlag))
	return nil
}

func renderTargetsPretty(out io.Writer, resolved ecma.Version, details []ecma.TargetVersion, enableColor bool) {
	width := 0
	for _, d := range details {
		width = max(width, runewidth.StringWidth(d.Target))
	}
	bold := color.New(color.Bold)
	limiting := color.New(color.FgYellow)
	if enableColor {
		bold.EnableColor()
		limiting.EnableColor()
	} else {
		bold.DisableColor()
		limiting.DisableColor()
	}
	for _, d := range details {
		line := fmt.Sprintf("%s  %-10s %s (%s)", runewidth.FillRight(d.Target, width), d.Browser, d.Version, d.Version.Edition())
		if d.Version == resolved && len(details) > 1 {
			line = limiting.Sprint(line)
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%s %s (%s)\n", bold.Sprint("resolved:"), resolved, resolved.Edition())
}

func renderTargetsJSON(out io.Writer, resolved ecma.Version, details []ecma.TargetVersion) error {
	payload := targetsPayload{
		Version: resolved.String(),
		Edition: resolved.Edition(),
		Targets: make([]targetJSON, 0, len(details)),
	}
	for _, d := range details {
		payload.Targets = append(payload.Targets, targetJSON{Target: d.Target, Browser: d.Browser, Version: d.Version.String()})
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
