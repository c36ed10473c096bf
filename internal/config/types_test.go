//nolint:testpackage // Testing private helpers like isValidDocPath
package config

import (
	"slices"
	"testing"
)

func TestIsValidDocPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"classes/Core.Viewer.md", true},
		{"Viewer.markdown", true},
		{"modules/Core.MD", true},
		{"", false},
		{"/abs/Viewer.md", false},
		{"../Viewer.md", false},
		{"classes/../../Viewer.md", false},
		{"classes/Viewer.html", false},
		{"classes/Viewer", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isValidDocPath(tt.path); got != tt.want {
				t.Errorf("isValidDocPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		DocsDir:  "ref",
		Output:   "out",
		Patterns: []string{"classes/**/*.md"},
		Parallel: 2,
		Display:  Display{Format: "csv", DescriptionLength: 10, DefaultLimit: 5},
	}

	cfg.ApplyDefaults()

	if cfg.DocsDir != "ref" || cfg.Output != "out" || cfg.Parallel != 2 {
		t.Fatalf("ApplyDefaults() overwrote explicit values: %+v", cfg)
	}
	if len(cfg.Patterns) != 1 || cfg.Patterns[0] != "classes/**/*.md" {
		t.Fatalf("Patterns = %v", cfg.Patterns)
	}
	if cfg.Display != (Display{Format: "csv", DescriptionLength: 10, DefaultLimit: 5}) {
		t.Fatalf("Display = %+v", cfg.Display)
	}
}

func TestApplyDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.DocsDir != DefaultDocsDir || cfg.Output != DefaultOutput {
		t.Fatalf("dirs = %q, %q", cfg.DocsDir, cfg.Output)
	}
	if cfg.Parallel != DefaultParallel {
		t.Fatalf("Parallel = %d", cfg.Parallel)
	}
	if cfg.Display.Format != DefaultFormat ||
		cfg.Display.DescriptionLength != DefaultDescriptionLength ||
		cfg.Display.DefaultLimit != DefaultLimit {
		t.Fatalf("Display = %+v", cfg.Display)
	}
}

func TestIsValidRepo(t *testing.T) {
	tests := []struct {
		repo string
		want bool
	}{
		{"acme/engine", true},
		{"acme", false},
		{"acme/", false},
		{"/engine", false},
		{"acme/engine/docs", false},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			if got := isValidRepo(tt.repo); got != tt.want {
				t.Errorf("isValidRepo(%q) = %v, want %v", tt.repo, got, tt.want)
			}
		})
	}
}

func TestIsValidRelDir(t *testing.T) {
	tests := []struct {
		dir  string
		want bool
	}{
		{"engine", true},
		{"vendor/engine", true},
		{".", true},
		{"/abs", false},
		{"../up", false},
		{"a/../../up", false},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			if got := isValidRelDir(tt.dir); got != tt.want {
				t.Errorf("isValidRelDir(%q) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestApplyDefaultsSourceType(t *testing.T) {
	cfg := &Config{
		Sources: map[string]Source{
			"page":   {URL: "https://example.com/Viewer.md"},
			"repo":   {Repo: "acme/engine"},
			"empty":  {},
			"pinned": {Type: SourceTypeGitHub, Repo: "acme/engine", Patterns: []string{"*.md"}},
		},
	}

	cfg.ApplyDefaults()

	if got := cfg.Sources["page"].Type; got != SourceTypeURL {
		t.Errorf("page type = %q, want url", got)
	}
	if got := cfg.Sources["empty"].Type; got != SourceTypeURL {
		t.Errorf("empty type = %q, want url", got)
	}
	if got := cfg.Sources["repo"]; got.Type != SourceTypeGitHub || !slices.Equal(got.Patterns, DefaultPatterns()) {
		t.Errorf("repo = %+v, want github with default patterns", got)
	}
	if got := cfg.Sources["pinned"].Patterns; !slices.Equal(got, []string{"*.md"}) {
		t.Errorf("pinned patterns = %v, want [*.md]", got)
	}
}

func TestToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")

	cfg := &Config{}
	if got := cfg.Token(); got != "" {
		t.Fatalf("Token() = %q, want empty", got)
	}

	t.Setenv("GH_TOKEN", "gh")
	if got := cfg.Token(); got != "gh" {
		t.Fatalf("Token() = %q, want gh", got)
	}

	t.Setenv("GITHUB_TOKEN", "env")
	if got := cfg.Token(); got != "env" {
		t.Fatalf("Token() = %q, want env", got)
	}

	cfg.GitHubToken = "file"
	if got := cfg.Token(); got != "file" {
		t.Fatalf("Token() = %q, want file", got)
	}
}

func TestSourceNamesSorted(t *testing.T) {
	cfg := &Config{Sources: map[string]Source{"b": {}, "a": {}, "c": {}}}
	if got := cfg.SourceNames(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("SourceNames() = %v", got)
	}
}
