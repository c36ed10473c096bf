package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/g5becks/apidox/internal/config"
)

func TestLoadAppliesDefaultsAndResolvesDirs(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "apidox.toml")
	writeFile(t, configPath, `
[sources.viewer]
url = "https://example.com/docs/classes/Core.Viewer.md"
`)

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfigDir != tempDir {
		t.Fatalf("ConfigDir = %q, want %q", cfg.ConfigDir, tempDir)
	}

	if want := filepath.Join(tempDir, ".apidox"); cfg.Output != want {
		t.Fatalf("Output = %q, want %q", cfg.Output, want)
	}

	if want := filepath.Join(tempDir, "docs"); cfg.DocsDir != want {
		t.Fatalf("DocsDir = %q, want %q", cfg.DocsDir, want)
	}

	if !reflect.DeepEqual(cfg.Patterns, []string{"**/*.md"}) {
		t.Fatalf("Patterns = %v, want [**/*.md]", cfg.Patterns)
	}

	if cfg.Parallel != config.DefaultParallel {
		t.Fatalf("Parallel = %d, want %d", cfg.Parallel, config.DefaultParallel)
	}

	if cfg.Display.Format != "table" {
		t.Fatalf("Display.Format = %q, want table", cfg.Display.Format)
	}

	if _, ok := cfg.Sources["viewer"]; !ok {
		t.Fatalf("source viewer not found")
	}
}

func TestLoadUsesProvidedConfigPath(t *testing.T) {
	configDir := t.TempDir()
	configPath := filepath.Join(configDir, "custom.toml")
	writeFile(t, configPath, `
docs_dir = "reference"
output = "build/index"
parallel = 8

[display]
format = "json"
description_length = 120
`)

	t.Chdir(t.TempDir())

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(configDir, "reference"); cfg.DocsDir != want {
		t.Fatalf("DocsDir = %q, want %q", cfg.DocsDir, want)
	}
	if want := filepath.Join(configDir, "build", "index"); cfg.Output != want {
		t.Fatalf("Output = %q, want %q", cfg.Output, want)
	}
	if cfg.Parallel != 8 {
		t.Fatalf("Parallel = %d, want 8", cfg.Parallel)
	}
	if cfg.Display.Format != "json" || cfg.Display.DescriptionLength != 120 {
		t.Fatalf("Display = %+v", cfg.Display)
	}
	if cfg.Display.DefaultLimit != config.DefaultLimit {
		t.Fatalf("Display.DefaultLimit = %d, want %d", cfg.Display.DefaultLimit, config.DefaultLimit)
	}
}

func TestLoadKeepsAbsoluteDirs(t *testing.T) {
	configDir := t.TempDir()
	docsDir := t.TempDir()
	configPath := filepath.Join(configDir, "apidox.toml")
	writeFile(t, configPath, "docs_dir = "+quote(docsDir))

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DocsDir != filepath.Clean(docsDir) {
		t.Fatalf("DocsDir = %q, want %q", cfg.DocsDir, docsDir)
	}
}

func TestLoadReturnsErrorForMissingExplicitPath(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatalf("Load() error = nil, want non-nil")
	}

	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("Load() error = %q, expected missing-file message", err.Error())
	}
}

func TestLoadReturnsErrorForInvalidTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "apidox.toml")
	writeFile(t, configPath, `
[sources.bad
url = "https://example.com/Viewer.md"
`)

	_, err := config.Load(configPath)
	if err == nil {
		t.Fatalf("Load() error = nil, want non-nil")
	}

	if !strings.Contains(err.Error(), "loading config") {
		t.Fatalf("Load() error = %q, expected load failure message", err.Error())
	}
}

func TestFindConfigFileWalksParentDirectories(t *testing.T) {
	rootDir := t.TempDir()
	configPath := filepath.Join(rootDir, ".apidox.toml")
	writeFile(t, configPath, `docs_dir = "docs"`)

	nestedDir := filepath.Join(rootDir, "a", "b", "c")
	if err := os.MkdirAll(nestedDir, 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	t.Chdir(nestedDir)

	foundPath, err := config.FindConfigFile()
	if err != nil {
		t.Fatalf("FindConfigFile() error = %v", err)
	}

	foundPathEval, err := filepath.EvalSymlinks(foundPath)
	if err != nil {
		t.Fatalf("EvalSymlinks(foundPath) error = %v", err)
	}

	configPathEval, err := filepath.EvalSymlinks(configPath)
	if err != nil {
		t.Fatalf("EvalSymlinks(configPath) error = %v", err)
	}

	if foundPathEval != configPathEval {
		t.Fatalf("FindConfigFile() = %q, want %q", foundPathEval, configPathEval)
	}
}

func TestFindConfigFileReturnsErrorWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := config.FindConfigFile()
	if err == nil {
		t.Fatalf("FindConfigFile() error = nil, want non-nil")
	}

	if !strings.Contains(err.Error(), "no apidox.toml or .apidox.toml found") {
		t.Fatalf("FindConfigFile() error = %q, expected not-found message", err.Error())
	}
}

func TestWriteStarter(t *testing.T) {
	dir := t.TempDir()

	path, err := config.WriteStarter(dir)
	if err != nil {
		t.Fatalf("WriteStarter() error = %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(starter) error = %v", err)
	}
	if cfg.DocsDir != filepath.Join(dir, "docs") {
		t.Fatalf("DocsDir = %q", cfg.DocsDir)
	}

	if _, err := config.WriteStarter(dir); err == nil {
		t.Fatalf("second WriteStarter() error = nil, want already-exists error")
	}
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name            string
		cfg             *config.Config
		wantErrContains string
	}{
		{
			name: "valid source",
			cfg: &config.Config{
				Sources: map[string]config.Source{
					"viewer": {URL: "https://example.com/Viewer.md", Path: "classes/Core.Viewer.md"},
				},
			},
		},
		{
			name: "no sources",
			cfg:  &config.Config{},
		},
		{
			name: "missing url",
			cfg: &config.Config{
				Sources: map[string]config.Source{"viewer": {}},
			},
			wantErrContains: `missing url for source "viewer"`,
		},
		{
			name: "invalid url",
			cfg: &config.Config{
				Sources: map[string]config.Source{"viewer": {URL: "not a url"}},
			},
			wantErrContains: `invalid url "not a url"`,
		},
		{
			name: "path escapes docs dir",
			cfg: &config.Config{
				Sources: map[string]config.Source{
					"viewer": {URL: "https://example.com/Viewer.md", Path: "../Viewer.md"},
				},
			},
			wantErrContains: `invalid path "../Viewer.md"`,
		},
		{
			name: "path is not markdown",
			cfg: &config.Config{
				Sources: map[string]config.Source{
					"viewer": {URL: "https://example.com/Viewer.html", Path: "classes/Viewer.html"},
				},
			},
			wantErrContains: `invalid path "classes/Viewer.html"`,
		},
		{
			name: "valid github source",
			cfg: &config.Config{
				Sources: map[string]config.Source{
					"engine": {Type: "github", Repo: "acme/engine", Path: "docs/api", Out: "engine"},
				},
			},
		},
		{
			name: "github source inferred from repo",
			cfg: &config.Config{
				Sources: map[string]config.Source{"engine": {Repo: "acme/engine"}},
			},
		},
		{
			name: "unknown source type",
			cfg: &config.Config{
				Sources: map[string]config.Source{"engine": {Type: "svn", URL: "https://example.com"}},
			},
			wantErrContains: `unknown source type "svn"`,
		},
		{
			name: "missing repo",
			cfg: &config.Config{
				Sources: map[string]config.Source{"engine": {Type: "github"}},
			},
			wantErrContains: `missing repo for source "engine"`,
		},
		{
			name: "invalid repo",
			cfg: &config.Config{
				Sources: map[string]config.Source{"engine": {Type: "github", Repo: "acme"}},
			},
			wantErrContains: `invalid repo format "acme"`,
		},
		{
			name: "out escapes docs dir",
			cfg: &config.Config{
				Sources: map[string]config.Source{
					"engine": {Type: "github", Repo: "acme/engine", Out: "../elsewhere"},
				},
			},
			wantErrContains: `invalid out "../elsewhere"`,
		},
		{
			name: "github path is not checked locally",
			cfg: &config.Config{
				Sources: map[string]config.Source{
					"engine": {Type: "github", Repo: "acme/engine", Path: "/docs/api/"},
				},
			},
		},
		{
			name:            "parallel too high",
			cfg:             &config.Config{Parallel: 100},
			wantErrContains: "invalid parallel value 100",
		},
		{
			name:            "unknown display format",
			cfg:             &config.Config{Display: config.Display{Format: "yaml"}},
			wantErrContains: `unknown display format "yaml"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.ApplyDefaults()
			err := tc.cfg.Validate()

			if tc.wantErrContains == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatalf("Validate() error = nil, want %q", tc.wantErrContains)
			}

			if !strings.Contains(err.Error(), tc.wantErrContains) {
				t.Fatalf("Validate() error = %q, want substring %q", err.Error(), tc.wantErrContains)
			}
		})
	}
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func quote(s string) string {
	return "'" + s + "'"
}
