package search

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/parser"
)

const maxContentSize = 10 * 1024 * 1024

// ContentResult is one matching line of a page.
type ContentResult struct {
	Group string `json:"group"`
	Path  string `json:"path"`
	Name  string `json:"name"`
	Line  int    `json:"line"`
	Text  string `json:"text"`
}

// ContentOptions configures content search. Matching is case-insensitive;
// DocsDir defaults to the manifest's docs directory.
type ContentOptions struct {
	DocsDir  string
	Query    string
	Group    string
	UseRegex bool
	Limit    int
}

// Content scans the markdown of every indexed page line by line. Missing,
// binary and oversized files are skipped.
func Content(m *manifest.Manifest, opts ContentOptions) ([]ContentResult, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, oops.
			Code("INVALID_ARGS").
			Hint("Provide a non-empty search query").
			Errorf("search query cannot be empty")
	}

	match, err := newMatcher(query, opts.UseRegex)
	if err != nil {
		return nil, err
	}

	groups, err := selectGroups(m, opts.Group)
	if err != nil {
		return nil, err
	}

	docsDir := opts.DocsDir
	if docsDir == "" {
		docsDir = m.DocsDir
	}

	var results []ContentResult
	for _, group := range groups {
		for _, doc := range group.Docs {
			content, ok := readSearchable(filepath.Join(docsDir, filepath.FromSlash(doc.File)))
			if !ok {
				continue
			}

			scanner := bufio.NewScanner(bytes.NewReader(content))
			scanner.Buffer(make([]byte, 0, 64*1024), maxContentSize)
			lineNum := 0
			for scanner.Scan() {
				lineNum++
				line := scanner.Text()
				if !match(line) {
					continue
				}

				results = append(results, ContentResult{
					Group: group.Name,
					Path:  doc.Path,
					Name:  doc.Name,
					Line:  lineNum,
					Text:  strings.TrimSpace(line),
				})

				if opts.Limit > 0 && len(results) >= opts.Limit {
					return results, nil
				}
			}
		}
	}

	return results, nil
}

func newMatcher(query string, useRegex bool) (func(string) bool, error) {
	if !useRegex {
		lowered := strings.ToLower(query)
		return func(line string) bool {
			return strings.Contains(strings.ToLower(line), lowered)
		}, nil
	}

	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, oops.
			Code("INVALID_ARGS").
			With("pattern", query).
			Hint("Check the regular expression syntax").
			Wrapf(err, "compiling search pattern")
	}
	return re.MatchString, nil
}

func readSearchable(path string) ([]byte, bool) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxContentSize {
		return nil, false
	}

	content, err := os.ReadFile(path)
	if err != nil || parser.IsBinary(content) {
		return nil, false
	}

	return parser.StripBOM(content), true
}
