package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"escheck/internal/diag"
	"escheck/internal/ecma"
	"escheck/internal/exclude"
	"escheck/internal/pipeline"
	"escheck/internal/syntax"
	"escheck/internal/trace"
)

const optionalChainHTML = "<script>const f = (a) => a?.b;</script>\n"

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func newRunner(t *testing.T, opts Options) *Runner {
	t.Helper()
	r, err := NewRunner(opts)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func emitOf(dir string, names ...string) Emit {
	emit := Emit{OutputRoot: dir}
	for _, n := range names {
		emit.Assets = append(emit.Assets, Asset{Name: n})
	}
	return emit
}

func TestRunReportsOptionalChainingInHTML(t *testing.T) {
	dir := writeFiles(t, map[string]string{"index.html": optionalChainHTML})
	r := newRunner(t, Options{Version: ecma.ES2019})

	state, err := r.Run(context.Background(), emitOf(dir, "index.html"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	diags := state.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Code != diag.SynUnsupportedConstruct || d.Severity != diag.SevError {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Construct != syntax.OptionalChaining.Name || !strings.Contains(d.Message, "optional chaining") {
		t.Fatalf("diagnostic does not name the construct: %q", d.Message)
	}
	if d.Version != ecma.ES2019 {
		t.Fatalf("version = %s", d.Version)
	}
	start, _ := state.FileSet.Resolve(d.Primary)
	wantCol := strings.Index(optionalChainHTML, "?.") + 1
	if start.Line != 1 || int(start.Col) != wantCol {
		t.Fatalf("position = %d:%d, want 1:%d", start.Line, start.Col, wantCol)
	}
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, "1:9") {
		t.Fatalf("missing fragment note: %+v", d.Notes)
	}
	if state.Fragments != 1 || !state.Failed() {
		t.Fatalf("fragments=%d failed=%v", state.Fragments, state.Failed())
	}
}

func TestRunAcceptsOptionalChainingWhenSupported(t *testing.T) {
	dir := writeFiles(t, map[string]string{"index.html": optionalChainHTML})
	r := newRunner(t, Options{Version: ecma.ES2020})

	state, err := r.Run(context.Background(), emitOf(dir, "index.html"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !state.Clean() {
		t.Fatalf("expected no diagnostics, got %d", state.Bag.Len())
	}
}

func TestRunSkipsExcludedOutputWithoutReading(t *testing.T) {
	dir := writeFiles(t, map[string]string{"ok.js": "var a = 1;\n"})
	rules, err := exclude.CompileAll([]string{"**/bad.js"})
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	r := newRunner(t, Options{Version: ecma.ES5, ExcludeOutput: rules})

	// bad.js does not exist: reading it would produce an I/O warning.
	state, err := r.Run(context.Background(), emitOf(dir, "bad.js", "ok.js"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Bag.Len() != 0 {
		t.Fatalf("expected no diagnostics, got %+v", state.Diagnostics())
	}
	if len(state.Skipped) != 1 || !strings.HasSuffix(state.Skipped[0], "/bad.js") {
		t.Fatalf("skipped = %v", state.Skipped)
	}
	if len(state.Checked) != 1 || !strings.HasSuffix(state.Checked[0], "/ok.js") {
		t.Fatalf("checked = %v", state.Checked)
	}
}

func TestRunCollectsEveryFileConcurrently(t *testing.T) {
	files := map[string]string{
		"a.js":         "var a = b ?? c;\n",
		"nested/b.mjs": "let x = 1;\nx **= 2;\n",
		"c.js":         "var ok = 1;\n",
		"d.cjs":        "var broken = ;\n",
	}
	dir := writeFiles(t, files)
	r := newRunner(t, Options{Version: ecma.ES5, Jobs: 4})

	for range 3 {
		state, err := r.Run(context.Background(), emitOf(dir, "a.js", "nested/b.mjs", "c.js", "d.cjs"))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		diags := state.Diagnostics()
		if len(diags) != 3 {
			t.Fatalf("expected 3 diagnostics, got %d", len(diags))
		}
		seen := make(map[string]bool)
		for _, d := range diags {
			path := state.FileSet.Get(d.Primary.File).Path
			if seen[path] {
				t.Fatalf("duplicate diagnostic for %s", path)
			}
			seen[path] = true
		}
		for _, want := range []string{"a.js", "nested/b.mjs", "d.cjs"} {
			found := false
			for p := range seen {
				found = found || strings.HasSuffix(p, "/"+want)
			}
			if !found {
				t.Fatalf("missing diagnostic for %s in %v", want, seen)
			}
		}
	}
}

func TestRunIgnoresOtherFilesAndStripsQueries(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"app.js":    "var a = () => 1;\n",
		"style.css": "body{}",
		"data.json": "{}",
	})
	r := newRunner(t, Options{Version: ecma.ES5})
	state, err := r.Run(context.Background(), emitOf(dir, "app.js?v=3", "app.js#x", "style.css", "data.json"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(state.Checked) != 1 || state.Ignored != 2 {
		t.Fatalf("checked=%v ignored=%d", state.Checked, state.Ignored)
	}
	if state.Bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", state.Bag.Len())
	}
}

func TestRunReportsUnreadableFilesAsWarnings(t *testing.T) {
	dir := writeFiles(t, map[string]string{"ok.js": "var a = b?.c;\n"})
	r := newRunner(t, Options{Version: ecma.ES2019})
	state, err := r.Run(context.Background(), emitOf(dir, "missing.js", "ok.js"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	syntaxDiags, ioDiags := state.Partition()
	if len(syntaxDiags) != 1 || len(ioDiags) != 1 {
		t.Fatalf("syntax=%d io=%d", len(syntaxDiags), len(ioDiags))
	}
	if ioDiags[0].Code != diag.IOLoadFileError || ioDiags[0].Severity != diag.SevWarning {
		t.Fatalf("unexpected io diagnostic %+v", ioDiags[0])
	}
	if p := state.FileSet.Get(ioDiags[0].Primary.File).Path; !strings.HasSuffix(p, "/missing.js") {
		t.Fatalf("io diagnostic points at %s", p)
	}
}

func TestRunDiagnosticExclusion(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"vendor/lib.js": "var a = b?.c;\n",
		"app.js":        "var a = b?.c;\n",
	})
	rules, err := exclude.CompileAll([]string{"vendor/*.js"})
	if err != nil {
		t.Fatalf("CompileAll: %v", err)
	}
	r := newRunner(t, Options{Version: ecma.ES2019, Exclude: rules})
	state, err := r.Run(context.Background(), emitOf(dir, "vendor/lib.js", "app.js"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if state.Bag.Len() != 1 || state.Suppressed != 1 {
		t.Fatalf("diagnostics=%d suppressed=%d", state.Bag.Len(), state.Suppressed)
	}
	// the excluded file is still parsed
	if len(state.Checked) != 2 {
		t.Fatalf("checked = %v", state.Checked)
	}
}

func TestRunUsesInMemoryContents(t *testing.T) {
	r := newRunner(t, Options{Version: ecma.ES2015})
	emit := Emit{OutputRoot: t.TempDir(), Assets: []Asset{{Name: "mem.js", Contents: []byte("async function f() {}\n")}}}
	state, err := r.Run(context.Background(), emit)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	diags := state.Diagnostics()
	if len(diags) != 1 || diags[0].Construct != syntax.AsyncFunction.Name {
		t.Fatalf("unexpected diagnostics %+v", diags)
	}
}

func TestRunPhasesAndFreshState(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "var a = b?.c;\n"})
	var (
		mu     sync.Mutex
		events []PhaseEvent
	)
	var reported []int
	r := newRunner(t, Options{
		Version: ecma.ES2019,
		OnPhase: func(ev PhaseEvent) {
			mu.Lock()
			events = append(events, ev)
			mu.Unlock()
		},
		Report: func(_ context.Context, state *RunState) error {
			reported = append(reported, state.Bag.Len())
			return nil
		},
	})
	first, err := r.Run(context.Background(), emitOf(dir, "a.js"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := r.Run(context.Background(), emitOf(dir, "a.js"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if first == second || first.Bag.Len() != 1 || second.Bag.Len() != 1 {
		t.Fatalf("runs share state: %d %d", first.Bag.Len(), second.Bag.Len())
	}
	if len(reported) != 2 || reported[0] != 1 || reported[1] != 1 {
		t.Fatalf("report callback saw %v", reported)
	}
	if r.Phase() != PhaseIdle {
		t.Fatalf("phase after run = %s", r.Phase())
	}

	want := []PhaseEvent{
		{Phase: PhaseCollecting, Status: PhaseStart},
		{Phase: PhaseCollecting, Status: PhaseEnd},
		{Phase: PhaseChecking, Status: PhaseStart},
		{Phase: PhaseChecking, Status: PhaseEnd},
		{Phase: PhaseReporting, Status: PhaseStart},
		{Phase: PhaseReporting, Status: PhaseEnd},
	}
	if len(events) != 2*len(want) {
		t.Fatalf("expected %d phase events, got %d", 2*len(want), len(events))
	}
	for i, ev := range events[:len(want)] {
		if ev.Phase != want[i].Phase || ev.Status != want[i].Status {
			t.Fatalf("event %d = %s/%d, want %s/%d", i, ev.Phase, ev.Status, want[i].Phase, want[i].Status)
		}
	}
}

func TestRunReportErrorIsReturned(t *testing.T) {
	boom := errors.New("boom")
	r := newRunner(t, Options{
		Version: ecma.ES5,
		Report:  func(context.Context, *RunState) error { return boom },
	})
	state, err := r.Run(context.Background(), Emit{OutputRoot: t.TempDir()})
	if !errors.Is(err, boom) || state == nil {
		t.Fatalf("expected report error with state, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "var a = 1;\n"})
	r := newRunner(t, Options{Version: ecma.ES5})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, emitOf(dir, "a.js")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunProgressEvents(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "var a = 1;\n", "b.js": "var b = c?.d;\n"})
	var rec pipeline.Recorder
	r := newRunner(t, Options{Version: ecma.ES2019, Progress: &rec})
	if _, err := r.Run(context.Background(), emitOf(dir, "a.js", "b.js")); err != nil {
		t.Fatalf("Run: %v", err)
	}
	final := make(map[string]pipeline.Status)
	for _, ev := range rec.Events() {
		final[ev.File] = ev.Status
	}
	if final["a.js"] != pipeline.StatusDone || final["b.js"] != pipeline.StatusFailed {
		t.Fatalf("final statuses %v", final)
	}
}

func TestNewRunnerRejectsUnknownVersion(t *testing.T) {
	if _, err := NewRunner(Options{}); !errors.Is(err, ecma.ErrUnknownVersion) {
		t.Fatalf("expected ErrUnknownVersion, got %v", err)
	}
}

func TestRunTimings(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.js": "var a = 1;\n"})
	r := newRunner(t, Options{Version: ecma.ES5, EnableTimings: true})
	state, err := r.Run(context.Background(), emitOf(dir, "a.js"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	p := state.TimingPayload()
	if p == nil || p.Files != 1 || len(p.Phases) < 3 {
		t.Fatalf("unexpected timing payload %+v", p)
	}
	if !strings.HasPrefix(p.Headline(), "timings (run)") {
		t.Fatalf("headline %q", p.Headline())
	}
}

func TestRunTraceTree(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"index.html": optionalChainHTML,
		"app.js":     "var a = 1;",
		"skip.js":    "var = ;",
	})
	rules, err := exclude.CompileAll([]string{"skip.js"})
	if err != nil {
		t.Fatal(err)
	}
	r := newRunner(t, Options{Version: ecma.ES2019, ExcludeOutput: rules})
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)
	if _, err := r.Run(ctx, emitOf(dir, "index.html", "app.js", "skip.js")); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var names []string
	var runEnd trace.Event
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin || ev.Kind == trace.KindPoint {
			names = append(names, ev.Name)
		}
		if ev.Kind == trace.KindSpanEnd && ev.Scope == trace.ScopeRun {
			runEnd = ev
		}
	}
	joined := strings.Join(names, " ")
	for _, want := range []string{"run", "collect", "skip", "check", "file:index.html", "extract", "fragment:1:9", "file:app.js"} {
		if !strings.Contains(joined, want) {
			t.Errorf("trace missing %q: %s", want, joined)
		}
	}
	attrs := map[string]string{}
	for _, a := range runEnd.Attrs {
		attrs[a.Key] = a.Value
	}
	if attrs["version"] != "es2019" || attrs["files"] != "2" || attrs["diagnostics"] != "1" {
		t.Fatalf("run attributes = %v", attrs)
	}
}
