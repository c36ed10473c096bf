package manifest_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/manifest"
)

func BenchmarkManifestLoad1000Pages(b *testing.B) {
	cfg := setupBenchmarkDocs(b, 1000)
	if _, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{}); err != nil {
		b.Fatalf("generate failed: %v", err)
	}

	b.ResetTimer()
	for b.Loop() {
		if _, err := manifest.Load(cfg.Output); err != nil {
			b.Fatalf("load failed: %v", err)
		}
	}
}

func BenchmarkManifestGenerate100Pages(b *testing.B) {
	benchmarkGenerate(b, 100)
}

func BenchmarkManifestGenerate1000Pages(b *testing.B) {
	benchmarkGenerate(b, 1000)
}

func benchmarkGenerate(b *testing.B, pageCount int) {
	b.Helper()
	cfg := setupBenchmarkDocs(b, pageCount)

	b.ResetTimer()
	for b.Loop() {
		if _, err := manifest.Generate(context.Background(), cfg, manifest.GenerateOptions{}); err != nil {
			b.Fatalf("generate failed: %v", err)
		}
	}
}

func setupBenchmarkDocs(b *testing.B, pageCount int) *config.Config {
	b.Helper()

	root := b.TempDir()
	cfg := &config.Config{
		DocsDir:  filepath.Join(root, "docs"),
		Output:   filepath.Join(root, ".apidox"),
		Patterns: config.DefaultPatterns(),
		Parallel: config.DefaultParallel,
	}

	classesDir := filepath.Join(cfg.DocsDir, "classes")
	if err := os.MkdirAll(classesDir, 0o755); err != nil {
		b.Fatalf("failed to create dir: %v", err)
	}

	for i := range pageCount {
		name := fmt.Sprintf("Group%d.Viewer%d.md", i%10, i)
		if err := os.WriteFile(filepath.Join(classesDir, name), []byte(viewerPage), 0o644); err != nil {
			b.Fatalf("failed to write %s: %v", name, err)
		}
	}

	return cfg
}
