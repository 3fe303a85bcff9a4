package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRunRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan []string, 8)
	done := make(chan error, 1)
	opts := Options{
		Debounce: 20 * time.Millisecond,
		Filter:   func(p string) bool { return strings.HasSuffix(p, ".js") },
	}
	go func() {
		done <- Run(ctx, dir, opts, func(_ context.Context, changed []string) error {
			calls <- changed
			return nil
		})
	}()

	select {
	case changed := <-calls:
		if changed != nil {
			t.Fatalf("initial run got %v", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("initial run did not happen")
	}

	if err := os.WriteFile(filepath.Join(dir, "assets", "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "assets", "app.js")
	if err := os.WriteFile(target, []byte("var a = 1;"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case changed := <-calls:
		if len(changed) != 1 || changed[0] != target {
			t.Fatalf("changed = %v, want [%s]", changed, target)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no rerun after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunStopsOnRunError(t *testing.T) {
	dir := t.TempDir()
	boom := os.ErrPermission
	err := Run(context.Background(), dir, Options{}, func(context.Context, []string) error { return boom })
	if err != boom {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestSkipDir(t *testing.T) {
	for name, want := range map[string]bool{"node_modules": true, ".git": true, "assets": false, "js": false} {
		if got := skipDir(name); got != want {
			t.Errorf("skipDir(%q) = %v", name, got)
		}
	}
}
