package catalog

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
)

// ScanOptions selects which files under the docs root are considered.
type ScanOptions struct {
	Patterns []string
	Exclude  []string
}

// Scan walks root and classifies every file matching the include patterns and
// none of the exclude patterns. Entries are sorted by path.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]Entry, error) {
	if err := validatePatterns(opts); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, oops.
			Code("DOCS_NOT_FOUND").
			With("path", root).
			Hint("Set docs_dir in the config or run 'apidox sync' first").
			Wrapf(err, "reading docs directory")
	}
	if !info.IsDir() {
		return nil, oops.
			Code("DOCS_NOT_FOUND").
			With("path", root).
			Errorf("docs path %q is not a directory", root)
	}

	var entries []Entry
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if !Matches(rel, opts) {
			return nil
		}

		if entry, ok := Classify(rel); ok {
			entries = append(entries, entry)
		}
		return nil
	})
	if walkErr != nil {
		return nil, oops.
			Code("DOCS_SCAN_ERROR").
			With("path", root).
			Wrapf(walkErr, "walking docs directory")
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	return entries, nil
}

// Matches reports whether a slash-separated relative path is selected by opts.
func Matches(rel string, opts ScanOptions) bool {
	for _, pattern := range opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}

	for _, pattern := range opts.Patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func validatePatterns(opts ScanOptions) error {
	for _, pattern := range slices.Concat(opts.Patterns, opts.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return oops.
				Code("INVALID_PATTERN").
				With("pattern", pattern).
				Hint("Check glob syntax in patterns and exclude").
				Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}
