package lockfile_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/g5becks/apidox/internal/lockfile"
)

func TestLoadReturnsEmptyLockWhenFileMissing(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()

	lock, err := lockfile.Load(outputDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if lock.Version != 1 {
		t.Fatalf("Version = %d, want 1", lock.Version)
	}

	if len(lock.Sources) != 0 {
		t.Fatalf("Sources len = %d, want 0", len(lock.Sources))
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	now := time.Now().UTC().Truncate(time.Second)

	lock := lockfile.New()
	lock.SetEntry("viewer", &lockfile.LockEntry{
		URL:      "https://example.com/docs/classes/Core.Viewer.md",
		Path:     "classes/Core.Viewer.md",
		SHA256:   "abc123",
		Size:     2048,
		SyncedAt: now,
	})
	lock.SetEntry("engine", &lockfile.LockEntry{
		Type:    "github",
		Ref:     "main",
		TreeSHA: "tree123",
		Files: map[string]string{
			"classes/Core.Viewer.md": "sha1",
			"modules/Core.md":        "sha2",
		},
		SyncedAt: now,
	})
	lock.SetEntry("camera", &lockfile.LockEntry{
		URL:      "https://example.com/docs/classes/Core.Camera.md",
		Path:     "classes/Core.Camera.md",
		ETag:     `"etag"`,
		LastMod:  "Tue, 15 Jan 2024 10:30:00 GMT",
		SyncedAt: now,
	})

	if err := lock.Save(outputDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := lockfile.Load(outputDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Version != 1 {
		t.Fatalf("Version = %d, want 1", loaded.Version)
	}

	viewer := loaded.GetEntry("viewer")
	if viewer == nil {
		t.Fatalf("GetEntry(viewer) = nil, want non-nil")
	}

	if viewer.SHA256 != "abc123" {
		t.Fatalf("SHA256 = %q, want %q", viewer.SHA256, "abc123")
	}

	if viewer.Path != "classes/Core.Viewer.md" {
		t.Fatalf("Path = %q, want %q", viewer.Path, "classes/Core.Viewer.md")
	}

	if !viewer.SyncedAt.Equal(now) {
		t.Fatalf("SyncedAt = %v, want %v", viewer.SyncedAt, now)
	}

	engine := loaded.GetEntry("engine")
	if engine == nil {
		t.Fatalf("GetEntry(engine) = nil, want non-nil")
	}

	if engine.TreeSHA != "tree123" {
		t.Fatalf("TreeSHA = %q, want %q", engine.TreeSHA, "tree123")
	}

	if engine.Files["modules/Core.md"] != "sha2" {
		t.Fatalf("Files[modules/Core.md] = %q, want %q", engine.Files["modules/Core.md"], "sha2")
	}

	camera := loaded.GetEntry("camera")
	if camera == nil {
		t.Fatalf("GetEntry(camera) = nil, want non-nil")
	}

	if camera.ETag != `"etag"` {
		t.Fatalf("ETag = %q, want %q", camera.ETag, `"etag"`)
	}
}

func TestSaveWritesAtomicallyWithoutTempFilesLeft(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	lock := lockfile.New()
	lock.SetEntry("docs", &lockfile.LockEntry{
		URL:      "https://example.com/index.md",
		SyncedAt: time.Now().UTC(),
	})

	if err := lock.Save(outputDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	tempMatches, err := filepath.Glob(filepath.Join(outputDir, lockfile.FileName+".*.tmp"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}

	if len(tempMatches) != 0 {
		t.Fatalf("temporary files left behind: %v", tempMatches)
	}

	lockPath := filepath.Join(outputDir, lockfile.FileName)
	if _, statErr := os.Stat(lockPath); statErr != nil {
		t.Fatalf("expected lock file at %q: %v", lockPath, statErr)
	}
}

func TestLoadInvalidJSONReturnsError(t *testing.T) {
	t.Parallel()

	outputDir := t.TempDir()
	lockPath := filepath.Join(outputDir, lockfile.FileName)
	if err := os.WriteFile(lockPath, []byte("{invalid"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	_, err := lockfile.Load(outputDir)
	if err == nil {
		t.Fatalf("Load() error = nil, want non-nil")
	}

	if !strings.Contains(err.Error(), "parsing lock file") {
		t.Fatalf("Load() error = %q, expected parsing message", err.Error())
	}
}

func TestEntryCRUD(t *testing.T) {
	t.Parallel()

	lock := lockfile.New()
	if entry := lock.GetEntry("missing"); entry != nil {
		t.Fatalf("GetEntry(missing) = %v, want nil", entry)
	}

	entry := &lockfile.LockEntry{
		URL:      "https://example.com/hono.md",
		SyncedAt: time.Now().UTC(),
	}
	lock.SetEntry("hono", entry)

	got := lock.GetEntry("hono")
	if got == nil {
		t.Fatalf("GetEntry(hono) = nil, want non-nil")
	}

	if got.URL != "https://example.com/hono.md" {
		t.Fatalf("URL = %q, want %q", got.URL, "https://example.com/hono.md")
	}

	lock.RemoveEntry("hono")
	if lock.GetEntry("hono") != nil {
		t.Fatalf("GetEntry(hono) after RemoveEntry() = non-nil, want nil")
	}
}

func TestSaveOnNilLockReturnsError(t *testing.T) {
	t.Parallel()

	var lock *lockfile.LockFile

	err := lock.Save(t.TempDir())
	if err == nil {
		t.Fatalf("Save() error = nil, want non-nil")
	}

	if !strings.Contains(err.Error(), "cannot save nil lock file") {
		t.Fatalf("Save() error = %q, expected nil-lock message", err.Error())
	}
}

func TestPrune(t *testing.T) {
	t.Parallel()

	lock := lockfile.New()
	for _, name := range []string{"a", "b", "c", "d"} {
		lock.SetEntry(name, &lockfile.LockEntry{URL: "https://example.com/" + name + ".md"})
	}

	removed := lock.Prune([]string{"b", "d", "z"})
	if !slices.Equal(removed, []string{"a", "c"}) {
		t.Fatalf("Prune() = %v, want [a c]", removed)
	}

	if len(lock.Sources) != 2 || lock.GetEntry("b") == nil || lock.GetEntry("d") == nil {
		t.Fatalf("Sources after Prune() = %v, want b and d", lock.Sources)
	}

	var nilLock *lockfile.LockFile
	if got := nilLock.Prune(nil); got != nil {
		t.Fatalf("Prune() on nil lock = %v, want nil", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	original := &lockfile.LockEntry{
		Type:  "github",
		Files: map[string]string{"a.md": "1"},
	}

	cloned := original.Clone()
	cloned.Files["a.md"] = "2"
	cloned.Type = "url"

	if original.Files["a.md"] != "1" || original.Type != "github" {
		t.Fatalf("Clone() shares state with original: %+v", original)
	}

	var nilEntry *lockfile.LockEntry
	if nilEntry.Clone() != nil {
		t.Fatalf("Clone() of nil = non-nil, want nil")
	}
}
