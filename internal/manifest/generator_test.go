package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	gosync "sync"
	"testing"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/manifest"
)

const viewerPage = `# Class: Viewer

Renders a **scene** into a canvas.

Defined in: viewer.ts:10

## Extends

[EventTarget](EventTarget.md)

## Constructors

### constructor

> **new Viewer**(` + "`canvas`" + `): [Viewer](Core.Viewer.md)

#### Parameters

##### canvas

` + "`HTMLCanvasElement`" + `

## Methods

### dispose

> **dispose**(): ` + "`void`" + `

Releases GPU resources.
`

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newConfig(t *testing.T) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		DocsDir:  filepath.Join(root, "docs"),
		Output:   filepath.Join(root, ".apidox"),
		Patterns: []string{"**/*.md"},
		Parallel: 2,
	}
	if err := os.MkdirAll(cfg.DocsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestGenerate_EmptyDirectory(t *testing.T) {
	cfg := newConfig(t)

	m, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(m.Groups) != 0 {
		t.Errorf("Groups count = %d, want 0", len(m.Groups))
	}

	if _, loadErr := manifest.Load(cfg.Output); loadErr != nil {
		t.Fatalf("Load() after Generate() error = %v", loadErr)
	}
}

func TestGenerate_ParsesAndGroups(t *testing.T) {
	cfg := newConfig(t)
	writeDoc(t, cfg.DocsDir, "classes/Core.Viewer.md", viewerPage)
	writeDoc(t, cfg.DocsDir, "modules/Core.md", "# Module: Core\n\nCore rendering types.\n")
	writeDoc(t, cfg.DocsDir, "interfaces/Options.md", "# Interface: Options\n\n## Properties\n\n### width\n\n> **width**: `number`\n")
	writeDoc(t, cfg.DocsDir, "modules.md", "# Index\n")

	m, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if m.DocCount != 3 {
		t.Errorf("DocCount = %d, want 3", m.DocCount)
	}

	groupNames := make([]string, 0, len(m.Groups))
	for _, g := range m.Groups {
		groupNames = append(groupNames, g.Name)
	}
	if !slices.Equal(groupNames, []string{"Core", "General"}) {
		t.Errorf("groups = %v, want [Core General]", groupNames)
	}

	core := m.Groups[0]
	if len(core.Docs) != 2 || core.Docs[0].Name != "Overview" {
		t.Fatalf("Core docs = %+v, want Overview first", core.Docs)
	}

	viewer, err := m.Find("Core", "Viewer")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if viewer.Title != "Viewer" {
		t.Errorf("Title = %q, want Viewer", viewer.Title)
	}
	if viewer.Description != "Renders a scene into a canvas." {
		t.Errorf("Description = %q", viewer.Description)
	}
	if viewer.Extends != "EventTarget" {
		t.Errorf("Extends = %q, want EventTarget", viewer.Extends)
	}
	if viewer.Constructors != 1 || viewer.Methods != 1 || viewer.Properties != 0 {
		t.Errorf("counts = %d/%d/%d, want 1/0/1", viewer.Constructors, viewer.Properties, viewer.Methods)
	}
	if len(viewer.Members) != 2 || viewer.Members[1].Name != "dispose" {
		t.Errorf("Members = %+v", viewer.Members)
	}
	if viewer.Size == 0 {
		t.Error("Size should be set")
	}
}

func TestGenerate_SkipsBinaryFiles(t *testing.T) {
	cfg := newConfig(t)
	writeDoc(t, cfg.DocsDir, "classes/Good.md", "# Class: Good\n")
	writeDoc(t, cfg.DocsDir, "classes/Bad.md", "# Class: Bad\x00\x01")

	var mu gosync.Mutex
	var skipped []string
	opts := manifest.GenerateOptions{
		OnSkip: func(path, _ string) {
			mu.Lock()
			defer mu.Unlock()
			skipped = append(skipped, path)
		},
	}

	m, err := manifest.Generate(context.Background(), cfg, opts)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if m.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", m.Skipped)
	}
	if !slices.Equal(skipped, []string{"classes/Bad.md"}) {
		t.Errorf("OnSkip paths = %v, want [classes/Bad.md]", skipped)
	}
	if m.DocCount != 1 {
		t.Errorf("DocCount = %d, want 1", m.DocCount)
	}
}

func TestGenerate_InvalidFrontMatterStillIndexed(t *testing.T) {
	cfg := newConfig(t)
	writeDoc(t, cfg.DocsDir, "classes/Broken.md", "---\ntitle: [unclosed\n---\n# Class: Broken\n")

	m, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	doc, err := m.Find("General", "Broken")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if doc.Warning == "" {
		t.Error("expected a warning for invalid front matter")
	}
}

func TestGenerate_FrontMatterTitleFallback(t *testing.T) {
	cfg := newConfig(t)
	writeDoc(t, cfg.DocsDir, "guides/Setup.md", "---\ntitle: Getting set up\ndescription: Install steps.\n---\nSome text.\n")

	m, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	doc, err := m.Find("General", "Setup")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if doc.Title != "Getting set up" {
		t.Errorf("Title = %q, want front matter title", doc.Title)
	}
	if doc.Description != "Install steps." {
		t.Errorf("Description = %q, want front matter description", doc.Description)
	}
}

func TestGenerate_ReportsParsed(t *testing.T) {
	cfg := newConfig(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		writeDoc(t, cfg.DocsDir, "classes/"+name+".md", "# Class: "+name+"\n")
	}

	var mu gosync.Mutex
	var parsed []string
	scanned := -1
	opts := manifest.GenerateOptions{
		OnScanned: func(total int) {
			scanned = total
		},
		OnParsed: func(path string) {
			mu.Lock()
			defer mu.Unlock()
			parsed = append(parsed, path)
		},
	}

	if _, err := manifest.Generate(context.Background(), cfg, opts); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(parsed) != 4 {
		t.Errorf("OnParsed calls = %d, want 4", len(parsed))
	}
	if scanned != 4 {
		t.Errorf("OnScanned total = %d, want 4", scanned)
	}
}

func TestGenerate_MissingDocsDir(t *testing.T) {
	cfg := newConfig(t)
	cfg.DocsDir = filepath.Join(cfg.DocsDir, "missing")

	_, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{})
	if err == nil {
		t.Fatal("Generate() should fail for a missing docs directory")
	}
	if !strings.Contains(err.Error(), "reading docs directory") {
		t.Errorf("error = %q, want 'reading docs directory'", err.Error())
	}
}

func TestGenerate_Canceled(t *testing.T) {
	cfg := newConfig(t)
	writeDoc(t, cfg.DocsDir, "classes/A.md", "# Class: A\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := manifest.Generate(ctx, cfg, manifest.GenerateOptions{}); err == nil {
		t.Fatal("Generate() should fail on a canceled context")
	}
}
