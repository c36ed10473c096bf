package manifest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/apidox/internal/catalog"
	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/parser"
)

const (
	maxParseSize = 50 * 1024 * 1024 // 50MB

	warningTooLarge    = "file_too_large"
	warningFrontMatter = "invalid_front_matter"
	warningEmpty       = "no_structure"
)

// GenerateOptions carries optional progress callbacks. Callbacks may be
// invoked from several goroutines at once.
type GenerateOptions struct {
	// OnScanned receives the number of pages found before parsing starts.
	OnScanned func(total int)
	OnParsed  func(path string)
	OnSkip    func(path, reason string)
}

// Generate scans the docs directory, parses every page and saves the
// resulting manifest into the output directory.
func Generate(ctx context.Context, cfg *config.Config, opts GenerateOptions) (*Manifest, error) {
	entries, err := catalog.Scan(ctx, cfg.DocsDir, catalog.ScanOptions{
		Patterns: cfg.Patterns,
		Exclude:  cfg.Exclude,
	})
	if err != nil {
		return nil, err
	}

	if opts.OnScanned != nil {
		opts.OnScanned(len(entries))
	}

	results := make([]*DocInfo, len(entries))
	parallel := max(cfg.Parallel, 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, entry := range entries {
		g.Go(func() error {
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}

			info, reason := parseDoc(filepath.Join(cfg.DocsDir, filepath.FromSlash(entry.File)), entry)
			if info == nil {
				if opts.OnSkip != nil {
					opts.OnSkip(entry.File, reason)
				}
				return nil
			}

			results[i] = info
			if opts.OnParsed != nil {
				opts.OnParsed(entry.File)
			}
			return nil
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return nil, oops.
			Code("MANIFEST_GENERATION_ERROR").
			With("docs_dir", cfg.DocsDir).
			Wrapf(waitErr, "parsing docs")
	}

	m := New()
	m.DocsDir = cfg.DocsDir
	m.Groups = buildGroups(entries, results)
	for _, info := range results {
		if info == nil {
			m.Skipped++
			continue
		}
		m.DocCount++
	}

	if saveErr := m.Save(cfg.Output); saveErr != nil {
		return nil, saveErr
	}

	return m, nil
}

// parseDoc returns nil and a reason when the file cannot be indexed.
func parseDoc(absPath string, entry catalog.Entry) (*DocInfo, string) {
	stat, err := os.Stat(absPath)
	if err != nil {
		return nil, err.Error()
	}

	info := &DocInfo{
		Entry:    entry,
		Title:    entry.Name,
		Size:     stat.Size(),
		Modified: stat.ModTime(),
	}

	if stat.Size() > maxParseSize {
		info.Warning = warningTooLarge
		return info, ""
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err.Error()
	}

	if parser.IsBinary(content) {
		return nil, "binary file"
	}
	if !parser.IsValidUTF8(content) {
		return nil, "invalid UTF-8"
	}

	doc, err := parser.ParseFile(content)
	if err != nil {
		info.Warning = warningFrontMatter
		doc = &parser.Document{Page: parser.ParseDocument(string(parser.StripBOM(content)))}
	}

	summarize(info, doc)
	return info, ""
}

func summarize(info *DocInfo, doc *parser.Document) {
	page := doc.Page

	switch {
	case page.Title != "":
		info.Title = page.Title
	case doc.MetaString("title") != "":
		info.Title = doc.MetaString("title")
	}

	info.Description = parser.Summary(page.Description)
	if info.Description == "" {
		info.Description = doc.MetaString("description")
	}

	if page.Extends != nil {
		info.Extends = parser.PlainText(*page.Extends)
	}

	info.Constructors = len(page.Constructors)
	info.Properties = len(page.Properties)
	info.Methods = len(page.Methods)

	for _, section := range page.Others {
		info.Others = append(info.Others, section.Title)
	}

	for _, member := range page.Members() {
		info.Members = append(info.Members, MemberRef{
			Kind:      member.Kind,
			Name:      member.Item.Name,
			Signature: member.Item.Signature,
			Flags:     member.Item.Flags,
		})
	}

	if page.Title == "" && page.IsEmpty() && info.Warning == "" {
		info.Warning = warningEmpty
	}
}

func buildGroups(entries []catalog.Entry, results []*DocInfo) []Group {
	byPath := make(map[string]*DocInfo, len(results))
	indexed := make([]catalog.Entry, 0, len(entries))
	for i, info := range results {
		if info == nil {
			continue
		}
		byPath[entries[i].Path] = info
		indexed = append(indexed, entries[i])
	}

	catalogGroups := catalog.GroupEntries(indexed)
	groups := make([]Group, 0, len(catalogGroups))
	for _, cg := range catalogGroups {
		group := Group{Name: cg.Name, Docs: make([]DocInfo, 0, len(cg.Entries))}
		for _, e := range cg.Entries {
			group.Docs = append(group.Docs, *byPath[e.Path])
		}
		groups = append(groups, group)
	}
	return groups
}
