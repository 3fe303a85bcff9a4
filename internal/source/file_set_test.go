package source

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("dist/main.js", []byte("var a = 1;"), 0)
	if id1 != 0 {
		t.Errorf("Expected first FileID to be 0, got %d", id1)
	}
	id2 := fs.Add("dist/main.js", []byte("var a = 2;"), 0)
	if id2 != 1 {
		t.Errorf("Expected second FileID to be 1, got %d", id2)
	}

	latest, ok := fs.GetByPath("dist/main.js")
	if !ok {
		t.Fatal("Expected file to exist after Add")
	}
	if latest.ID != id2 {
		t.Errorf("Expected latest ID to be %d, got %d", id2, latest.ID)
	}
	if string(fs.Get(id1).Content) != "var a = 1;" {
		t.Errorf("first version content changed: %q", fs.Get(id1).Content)
	}
	if fs.Get(FileID(99)) != nil {
		t.Errorf("expected nil for unknown id")
	}
}

func TestAddVirtualNormalizesLineEndings(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("inline.html", []byte("\xEF\xBB\xBFa\r\nb\r\n"))
	f := fs.Get(id)

	if string(f.Content) != "a\nb\n" {
		t.Fatalf("unexpected content %q", f.Content)
	}
	if f.Flags&FileVirtual == 0 || f.Flags&FileHadBOM == 0 || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("missing flags: %b", f.Flags)
	}
	expected := []uint32{1, 3}
	if len(f.LineIdx) != len(expected) {
		t.Fatalf("Expected LineIdx length %d, got %d", len(expected), len(f.LineIdx))
	}
	for i, val := range expected {
		if f.LineIdx[i] != val {
			t.Errorf("Expected LineIdx[%d] = %d, got %d", i, val, f.LineIdx[i])
		}
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("a.js", []byte("ab\ncd\n\nef"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{1, LineCol{1, 2}},
		{2, LineCol{1, 3}}, // the newline itself
		{3, LineCol{2, 1}},
		{4, LineCol{2, 2}},
		{6, LineCol{3, 1}},
		{7, LineCol{4, 1}},
		{8, LineCol{4, 2}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestGetLineAndExcerpt(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.AddVirtual("a.js", []byte("one\ntwo\nthree\nfour")))

	if got := f.GetLine(3); got != "three" {
		t.Errorf("GetLine(3) = %q", got)
	}
	if got := f.GetLine(9); got != "" {
		t.Errorf("GetLine(9) = %q, want empty", got)
	}
	if f.LineCount() != 4 {
		t.Errorf("LineCount = %d", f.LineCount())
	}

	ex := f.Excerpt(1, 1)
	if len(ex) != 2 || ex[0].Number != 1 || ex[1].Text != "two" {
		t.Errorf("unexpected excerpt %+v", ex)
	}
	ex = f.Excerpt(4, 2)
	if len(ex) != 3 || ex[0].Number != 2 || ex[2].Text != "four" {
		t.Errorf("unexpected excerpt %+v", ex)
	}
}

func TestLoadMissingFile(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.Load(filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConcurrentLoad(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 16)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".js")
		if err := os.WriteFile(paths[i], []byte("var x = 1;\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	fs := NewFileSetWithBase(dir)
	var wg sync.WaitGroup
	for _, p := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			if _, err := fs.Load(p); err != nil {
				t.Errorf("load %s: %v", p, err)
			}
		}(p)
	}
	wg.Wait()

	if fs.Len() != len(paths) {
		t.Fatalf("expected %d files, got %d", len(paths), fs.Len())
	}
	for _, p := range paths {
		if _, ok := fs.GetByPath(p); !ok {
			t.Errorf("missing %s", p)
		}
	}
}
