package config

import (
	"errors"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

const (
	DefaultDocsDir           = "docs"
	DefaultOutput            = ".apidox"
	DefaultParallel          = 4
	DefaultFormat            = "table"
	DefaultDescriptionLength = 60
	DefaultLimit             = 50

	SourceTypeURL    = "url"
	SourceTypeGitHub = "github"

	validationTagRequiredIf = "required_if"
	repoPartCount           = 2
)

func DefaultPatterns() []string {
	return []string{"**/*.md"}
}

type Config struct {
	DocsDir     string            `koanf:"docs_dir"`
	Output      string            `koanf:"output"`
	Patterns    []string          `koanf:"patterns"     validate:"dive,required"`
	Exclude     []string          `koanf:"exclude"      validate:"dive,required"`
	Parallel    int               `koanf:"parallel"     validate:"min=1,max=64"`
	GitHubToken string            `koanf:"github_token"`
	Sources     map[string]Source `koanf:"sources"`
	Display     Display           `koanf:"display"`
	ConfigDir   string            `koanf:"-"`
}

// Source is remote reference markdown fetched into the docs directory. A url
// source is a single page; Path is where it lands inside docs_dir. A github
// source mirrors a file or directory of a repository; Path is the location in
// the repository and Out the destination directory inside docs_dir.
type Source struct {
	Type     string   `koanf:"type"     validate:"oneof=url github"`
	URL      string   `koanf:"url"      validate:"required_if=Type url,omitempty,url"`
	Repo     string   `koanf:"repo"     validate:"required_if=Type github,omitempty,github_repo"`
	Ref      string   `koanf:"ref"`
	Path     string   `koanf:"path"`
	Patterns []string `koanf:"patterns"`
	Exclude  []string `koanf:"exclude"`
	Out      string   `koanf:"out"      validate:"omitempty,rel_dir"`
}

type Display struct {
	Format            string `koanf:"format"             validate:"oneof=table json csv"`
	DescriptionLength int    `koanf:"description_length" validate:"min=0"`
	DefaultLimit      int    `koanf:"default_limit"      validate:"min=0"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("github_repo", func(fl validator.FieldLevel) bool {
		return isValidRepo(fl.Field().String())
	})
	_ = v.RegisterValidation("rel_dir", func(fl validator.FieldLevel) bool {
		return isValidRelDir(fl.Field().String())
	})

	return v
}

func (c *Config) ApplyDefaults() {
	if c.DocsDir == "" {
		c.DocsDir = DefaultDocsDir
	}
	if c.Output == "" {
		c.Output = DefaultOutput
	}
	if len(c.Patterns) == 0 {
		c.Patterns = DefaultPatterns()
	}
	if c.Parallel == 0 {
		c.Parallel = DefaultParallel
	}
	if c.Display.Format == "" {
		c.Display.Format = DefaultFormat
	}
	if c.Display.DescriptionLength == 0 {
		c.Display.DescriptionLength = DefaultDescriptionLength
	}
	if c.Display.DefaultLimit == 0 {
		c.Display.DefaultLimit = DefaultLimit
	}

	for sourceName, sourceCfg := range c.Sources {
		if sourceCfg.Type == "" {
			sourceCfg.Type = SourceTypeURL
			if sourceCfg.URL == "" && sourceCfg.Repo != "" {
				sourceCfg.Type = SourceTypeGitHub
			}
		}

		if sourceCfg.Type == SourceTypeGitHub && len(sourceCfg.Patterns) == 0 {
			sourceCfg.Patterns = DefaultPatterns()
		}

		c.Sources[sourceName] = sourceCfg
	}
}

// Token returns the configured GitHub token, falling back to GITHUB_TOKEN
// and GH_TOKEN.
func (c *Config) Token() string {
	if c.GitHubToken != "" {
		return c.GitHubToken
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("GH_TOKEN")
}

// SourceNames returns the configured source names sorted.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (c *Config) Validate() error {
	v := newValidator()

	if valErr := v.Struct(c); valErr != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(valErr, &validationErrors) {
			return oops.
				Code("CONFIG_INVALID").
				Wrapf(valErr, "validating config")
		}

		for _, fe := range validationErrors {
			return mapSettingError(fe)
		}
	}

	for _, sourceName := range c.SourceNames() {
		sourceCfg := c.Sources[sourceName]
		valErr := v.Struct(sourceCfg)
		if valErr == nil {
			if pathErr := validateSourcePath(sourceName, sourceCfg); pathErr != nil {
				return pathErr
			}
			continue
		}

		var validationErrors validator.ValidationErrors
		if !errors.As(valErr, &validationErrors) {
			return oops.
				Code("CONFIG_INVALID").
				With("source", sourceName).
				Wrapf(valErr, "validating source %q", sourceName)
		}

		for _, fe := range validationErrors {
			return mapSourceError(sourceName, sourceCfg, fe)
		}
	}

	return nil
}

func mapSettingError(fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())

	switch {
	case field == "parallel":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "parallel").
			With("value", fe.Value()).
			Hint("Set parallel between 1 and 64").
			Errorf("invalid parallel value %v", fe.Value())

	case field == "format":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "display.format").
			With("value", fe.Value()).
			Hint("Supported formats: table, json, csv").
			Errorf("unknown display format %q", fe.Value())

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("field", fe.Namespace()).
			With("tag", fe.Tag()).
			Errorf("validation failed for field %q", fe.Namespace())
	}
}

func mapSourceError(sourceName string, sourceCfg Source, fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())

	switch {
	case fe.Tag() == "oneof" && field == "type":
		return oops.
			Code("UNKNOWN_SOURCE_TYPE").
			With("source", sourceName).
			With("type", sourceCfg.Type).
			Hint("Supported types: url, github").
			Errorf("unknown source type %q for source %q", sourceCfg.Type, sourceName)

	case fe.Tag() == validationTagRequiredIf && field == "url":
		return oops.
			Code("CONFIG_INVALID").
			With("source", sourceName).
			With("field", "url").
			Hint("Set url to the markdown page to fetch").
			Errorf("missing url for source %q", sourceName)

	case fe.Tag() == "url":
		return oops.
			Code("CONFIG_INVALID").
			With("source", sourceName).
			With("field", "url").
			With("value", sourceCfg.URL).
			Hint("Use an absolute http or https URL").
			Errorf("invalid url %q for source %q", sourceCfg.URL, sourceName)

	case fe.Tag() == validationTagRequiredIf && field == "repo":
		return oops.
			Code("CONFIG_INVALID").
			With("source", sourceName).
			With("field", "repo").
			Hint("Set repo in owner/repo format for github sources").
			Errorf("missing repo for source %q", sourceName)

	case fe.Tag() == "github_repo":
		return oops.
			Code("CONFIG_INVALID").
			With("source", sourceName).
			With("field", "repo").
			With("value", sourceCfg.Repo).
			Hint("Expected repo format: owner/repo").
			Errorf("invalid repo format %q for source %q", sourceCfg.Repo, sourceName)

	case fe.Tag() == "rel_dir":
		return oops.
			Code("CONFIG_INVALID").
			With("source", sourceName).
			With("field", "out").
			With("value", sourceCfg.Out).
			Hint("Use a relative directory inside docs_dir").
			Errorf("invalid out %q for source %q", sourceCfg.Out, sourceName)

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("source", sourceName).
			With("field", field).
			With("tag", fe.Tag()).
			Errorf("validation failed for field %q in source %q", field, sourceName)
	}
}

// validateSourcePath checks the destination of url sources; github paths
// point into the repository and are not checked locally.
func validateSourcePath(sourceName string, sourceCfg Source) error {
	if sourceCfg.Type != SourceTypeURL || sourceCfg.Path == "" || isValidDocPath(sourceCfg.Path) {
		return nil
	}

	return oops.
		Code("CONFIG_INVALID").
		With("source", sourceName).
		With("field", "path").
		With("value", sourceCfg.Path).
		Hint("Use a relative markdown path inside docs_dir, e.g. classes/Core.Viewer.md").
		Errorf("invalid path %q for source %q", sourceCfg.Path, sourceName)
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Clean(filepath.Join(c.ConfigDir, dir))
}

func isValidDocPath(p string) bool {
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) {
		return false
	}

	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return false
		}
	}

	ext := strings.ToLower(path.Ext(p))
	return ext == ".md" || ext == ".markdown"
}

func isValidRelDir(p string) bool {
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(p), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

func isValidRepo(repo string) bool {
	parts := strings.Split(repo, "/")
	if len(parts) != repoPartCount {
		return false
	}

	return parts[0] != "" && parts[1] != ""
}
