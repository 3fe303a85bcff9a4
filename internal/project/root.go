package project

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// ConfigNames are the file names FindConfig looks for, in priority order.
var ConfigNames = []string{"escheck.toml", ".escheckrc.yaml", ".escheckrc.yml"}

// FindConfig returns the nearest configuration file in startDir or one of
// its parents. The search does not leave the enclosing git work tree.
func FindConfig(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	start, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for dir := range ancestors(start) {
		for _, name := range ConfigNames {
			candidate := filepath.Join(dir, name)
			found, err := exists(candidate)
			if err != nil {
				return "", false, err
			}
			if found {
				return candidate, true, nil
			}
		}
		if boundary, err := exists(filepath.Join(dir, ".git")); err != nil || boundary {
			return "", false, err
		}
	}
	return "", false, nil
}

// ancestors yields dir and then each parent up to the filesystem root.
func ancestors(dir string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for {
			if !yield(dir) {
				return
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				return
			}
			dir = parent
		}
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %q: %w", path, err)
}
