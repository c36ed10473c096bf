package fsutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/g5becks/apidox/internal/fsutil"
)

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "classes", "nested", "Core.Viewer.md")
	if err := fsutil.WriteFileAtomic(path, []byte("# Class: Viewer\n")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "# Class: Viewer\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestWriteFileAtomicReplacesAndLeavesNoTempFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")

	for _, content := range []string{"first", "second"} {
		if err := fsutil.WriteFileAtomic(path, []byte(content)); err != nil {
			t.Fatalf("WriteFileAtomic(%q) error = %v", content, err)
		}
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q, want second", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory holds %v, want only page.md", names)
	}
}

func TestWriteFileAtomicFailsWhenParentIsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := fsutil.WriteFileAtomic(filepath.Join(blocker, "page.md"), []byte("x"))
	if err == nil {
		t.Fatal("WriteFileAtomic() error = nil, want non-nil")
	}
	if !strings.Contains(err.Error(), "creating directory") {
		t.Fatalf("error = %q, want creating directory", err.Error())
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	if err := fsutil.WriteJSON(path, map[string]int{"pages": 2}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "{\n  \"pages\": 2\n}\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestWriteJSONUnsupportedValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.json")
	err := fsutil.WriteJSON(path, map[string]any{"fn": func() {}})
	if err == nil || !strings.Contains(err.Error(), "encoding out.json") {
		t.Fatalf("WriteJSON() error = %v, want encoding error", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Fatalf("file written despite encoding error")
	}
}
