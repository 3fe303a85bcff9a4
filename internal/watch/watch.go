// Package watch reruns a check whenever the bundler rewrites its output.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"escheck/internal/trace"
)

// DefaultDebounce groups the burst of writes a bundler makes per rebuild.
const DefaultDebounce = 150 * time.Millisecond

// RunFunc performs one check. changed is nil for the initial run.
type RunFunc func(ctx context.Context, changed []string) error

// Options configure Run.
type Options struct {
	Debounce time.Duration
	// Filter selects the files whose changes trigger a run (all when nil).
	Filter func(path string) bool
	// OnError receives watcher errors; they never stop the loop.
	OnError func(error)
}

// Run calls run once, then again after every settled batch of changes
// below dir, until ctx is cancelled. Runs never overlap. An error returned
// by run stops the loop and is returned.
func Run(ctx context.Context, dir string, opts Options, run RunFunc) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := addTree(w, dir); err != nil {
		return err
	}

	if err := run(ctx, nil); err != nil {
		return err
	}

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addTree(w, ev.Name); err != nil {
						report(opts, err)
					}
					continue
				}
			}
			if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
				continue
			}
			if opts.Filter != nil && !opts.Filter(ev.Name) {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(opts.Debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			report(opts, err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			trace.Point(ctx, trace.ScopeRun, "rerun", strings.Join(changed, ","))
			if err := run(ctx, changed); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

func report(opts Options, err error) {
	if opts.OnError != nil {
		opts.OnError(err)
	}
}

// addTree watches dir and every directory below it, skipping hidden
// directories and node_modules.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch: %w", err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}
