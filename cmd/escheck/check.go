package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"escheck/internal/diagfmt"
	"escheck/internal/driver"
	"escheck/internal/project"
	"escheck/internal/version"
	"escheck/internal/watch"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [dir]",
	Short: "Check bundler output against the targeted ECMAScript edition",
	Long: `Check every .js/.mjs/.cjs file and every inline <script> of the .html files
below dir (the current directory by default). The edition comes from
--ecma-version, or from the browser targets in the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	registerConfigFlags(checkCmd)
	f := checkCmd.Flags()
	f.String("format", "", "output format (pretty|short|json|sarif)")
	f.StringSlice("hide", nil, "pretty sections to hide (source,output,reason,code)")
	f.String("paths", "", "path display (auto|relative|absolute|basename)")
	f.Bool("notes", true, "include diagnostic notes")
	f.Bool("fail-on-error", true, "exit with status 1 when incompatible syntax is found")
	f.Bool("cache", true, "reuse results for unchanged files between watch runs")
	f.Bool("disk-cache", false, "persist results between invocations")
	f.String("cache-dir", "", "disk cache location (default: user cache dir)")
	f.Bool("clear-cache", false, "drop the disk cache before checking")
	f.Bool("no-source-maps", false, "do not resolve original positions from source maps")
	f.Bool("watch", false, "check again whenever the output changes")
	f.String("ui", "off", "progress UI (auto|on|off)")
}

// checkSession is everything one invocation of check needs across runs.
type checkSession struct {
	out      io.Writer
	settings project.Settings
	runner   *driver.Runner
	relay    *progressRelay
	useTUI   bool
	timings  bool
	dir      string
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	session, err := newCheckSession(cmd, dir)
	if err != nil {
		return err
	}
	watchMode, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}

	if !watchMode {
		state, err := session.run(cmd.Context())
		if err != nil {
			return err
		}
		if session.settings.FailOnError && state.Failed() {
			return errCheckFailed
		}
		return nil
	}

	opts := watch.Options{
		Filter: watchedAsset,
		OnError: func(err error) {
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		},
	}
	return watch.Run(cmd.Context(), dir, opts, func(ctx context.Context, changed []string) error {
		if changed != nil {
			fmt.Fprintf(session.out, "\n%d file(s) changed, checking again\n", len(changed))
		}
		_, err := session.run(ctx)
		return err
	})
}

func watchedAsset(path string) bool {
	return driver.Classify(path) != driver.AssetOther || strings.HasSuffix(path, ".map")
}

func newCheckSession(cmd *cobra.Command, dir string) (*checkSession, error) {
	cfg, err := loadConfig(cmd, dir)
	if err != nil {
		return nil, err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return nil, err
	}

	color := useColor(settings.Color)
	settings.Output.Quiet = quiet
	settings.Output.Pretty.Color = color
	settings.Output.Pretty.Highlight = color
	settings.Output.Sarif = diagfmt.SarifRunMeta{
		ToolName:       "escheck",
		ToolVersion:    version.Current().Version,
		InvocationArgs: os.Args[1:],
	}

	if settings.DiskCache {
		dc, err := driver.OpenDiskCache("escheck", settings.CacheDir)
		if err != nil {
			return nil, err
		}
		clearCache, err := cmd.Flags().GetBool("clear-cache")
		if err != nil {
			return nil, fmt.Errorf("failed to get clear-cache flag: %w", err)
		}
		if clearCache {
			if err := dc.DropAll(); err != nil {
				return nil, err
			}
		}
		settings.Run.DiskCache = dc
	}

	s := &checkSession{
		out:      cmd.OutOrStdout(),
		settings: settings,
		relay:    &progressRelay{},
		useTUI:   shouldUseTUI(mode) && settings.Output.Format == diagfmt.FormatPretty,
		timings:  timings,
		dir:      dir,
	}
	settings.Run.EnableTimings = timings
	if s.useTUI {
		settings.Run.Progress = s.relay
	} else {
		settings.Run.Report = func(_ context.Context, state *driver.RunState) error {
			return diagfmt.Report(s.out, state, s.settings.Output)
		}
	}
	s.runner, err = driver.NewRunner(settings.Run)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// run checks the directory once and prints the report.
func (s *checkSession) run(ctx context.Context) (*driver.RunState, error) {
	emit, err := driver.EmitFromDir(s.dir)
	if err != nil {
		return nil, err
	}
	var state *driver.RunState
	if s.useTUI {
		title := fmt.Sprintf("escheck %s", s.runner.Version())
		state, err = runCheckWithUI(ctx, title, s.runner, s.relay, emit)
		if err == nil {
			err = diagfmt.Report(s.out, state, s.settings.Output)
		}
	} else {
		state, err = s.runner.Run(ctx, emit)
	}
	if err != nil {
		return state, err
	}
	if s.timings {
		printTimings(os.Stderr, state)
	}
	return state, nil
}
