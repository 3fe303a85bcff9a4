package esbuildcheck

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evanw/esbuild/pkg/api"

	"escheck/internal/project"
)

const entrySource = "export const get = (a) => a?.b ?? 0;\n"

func buildWith(t *testing.T, target api.Target, opts Options) api.BuildResult {
	t.Helper()
	dir := t.TempDir()
	entry := filepath.Join(dir, "entry.js")
	if err := os.WriteFile(entry, []byte(entrySource), 0o600); err != nil {
		t.Fatal(err)
	}
	plugin, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return api.Build(api.BuildOptions{
		EntryPoints:   []string{entry},
		Outdir:        filepath.Join(dir, "dist"),
		AbsWorkingDir: dir,
		Bundle:        true,
		Format:        api.FormatESModule,
		Target:        target,
		Write:         false,
		LogLevel:      api.LogLevelSilent,
		Plugins:       []api.Plugin{plugin},
	})
}

func TestPluginReportsIncompatibleOutput(t *testing.T) {
	result := buildWith(t, api.ESNext, Options{ECMAVersion: "es2019", FailOnError: true})
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %+v", result.Errors)
	}
	msg := result.Errors[0]
	if msg.PluginName != PluginName || !strings.Contains(msg.Text, "is not supported in es2019") {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Location == nil || msg.Location.File != filepath.Join("dist", "entry.js") && msg.Location.File != "entry.js" {
		t.Fatalf("unexpected location %+v", msg.Location)
	}
	if col := strings.Index(msg.Location.LineText, "?"); col < 0 || msg.Location.Column > col {
		t.Fatalf("column %d beyond construct in %q", msg.Location.Column, msg.Location.LineText)
	}
}

func TestPluginWarnsWithoutFailOnError(t *testing.T) {
	result := buildWith(t, api.ESNext, Options{ECMAVersion: "es2019"})
	if len(result.Errors) != 0 || len(result.Warnings) != 1 {
		t.Fatalf("errors=%d warnings=%d", len(result.Errors), len(result.Warnings))
	}
}

func TestPluginAcceptsLoweredOutput(t *testing.T) {
	target, err := Target("es2019")
	if err != nil {
		t.Fatalf("Target: %v", err)
	}
	result := buildWith(t, target, Options{Targets: []string{"chrome 79"}, FailOnError: true})
	if len(result.Errors) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("errors=%+v warnings=%+v", result.Errors, result.Warnings)
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	_, err := New(Options{})
	var cerr *project.ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "targets" {
		t.Fatalf("expected targets ConfigError, got %v", err)
	}
}

func TestEmitFromResultScansOutdir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.js"), []byte("var a;"), 0o600); err != nil {
		t.Fatal(err)
	}
	emit, err := emitFromResult(&api.BuildResult{}, &api.BuildOptions{Outdir: dir})
	if err != nil {
		t.Fatalf("emitFromResult: %v", err)
	}
	if len(emit.Assets) != 1 || emit.Assets[0].Name != "a.js" {
		t.Fatalf("assets = %+v", emit.Assets)
	}

	emit, err = emitFromResult(&api.BuildResult{}, &api.BuildOptions{})
	if err != nil || len(emit.Assets) != 0 {
		t.Fatalf("no outdir: %+v, %v", emit, err)
	}
}

func TestTarget(t *testing.T) {
	for in, want := range map[string]api.Target{"es5": api.ES5, "es6": api.ES2015, "ES2020": api.ES2020, "2024": api.ES2024} {
		got, err := Target(in)
		if err != nil || got != want {
			t.Errorf("Target(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := Target("es3"); err == nil {
		t.Fatal("expected error for es3")
	}
}
