// Package search finds reference pages and their members in a manifest,
// either fuzzily by name or by scanning page content.
package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/parser"
)

const (
	FieldTitle       = "title"
	FieldPath        = "path"
	FieldDescription = "description"
	FieldExtends     = "extends"
	FieldMember      = "member"
)

// Result is a single page or member match. Member is empty for page-level
// matches.
type Result struct {
	Group       string            `json:"group"`
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Member      string            `json:"member,omitempty"`
	Kind        parser.MemberKind `json:"kind,omitempty"`
	Signature   string            `json:"signature,omitempty"`
	Description string            `json:"description,omitempty"`
	MatchField  string            `json:"match_field"`
	MatchValue  string            `json:"match_value"`
	Score       int               `json:"score"`
}

// Options configures member search. Kind restricts matches to members of
// that kind.
type Options struct {
	Query string
	Group string
	Kind  parser.MemberKind
	Limit int
}

type searchIndex struct {
	entries []Result
}

func (s searchIndex) String(i int) string {
	return s.entries[i].MatchValue
}

func (s searchIndex) Len() int {
	return len(s.entries)
}

// Members fuzzy matches the query against page titles, paths, descriptions,
// base types and member names. Each page or member appears once with its best
// score.
func Members(m *manifest.Manifest, opts Options) ([]Result, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return nil, oops.
			Code("INVALID_ARGS").
			Hint("Provide a non-empty search query").
			Errorf("search query cannot be empty")
	}

	groups, err := selectGroups(m, opts.Group)
	if err != nil {
		return nil, err
	}

	index := searchIndex{entries: buildIndex(groups, opts.Kind)}
	matches := fuzzy.FindFrom(query, index)

	deduped := make(map[string]Result)
	for _, match := range matches {
		if match.Score < 0 {
			continue
		}

		entry := index.entries[match.Index]
		entry.Score = match.Score
		key := entry.Group + "\x00" + entry.Path + "\x00" + entry.Member

		if existing, exists := deduped[key]; !exists || entry.Score > existing.Score {
			deduped[key] = entry
		}
	}

	results := make([]Result, 0, len(deduped))
	for _, result := range deduped {
		results = append(results, result)
	}

	slices.SortFunc(results, func(a, b Result) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(a.Group, b.Group),
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.Member, b.Member),
		)
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

func selectGroups(m *manifest.Manifest, name string) ([]manifest.Group, error) {
	if name == "" {
		return m.Groups, nil
	}

	group, err := m.Group(name)
	if err != nil {
		return nil, err
	}
	return []manifest.Group{*group}, nil
}

func buildIndex(groups []manifest.Group, kind parser.MemberKind) []Result {
	var entries []Result

	for _, group := range groups {
		for _, doc := range group.Docs {
			base := Result{
				Group:       group.Name,
				Path:        doc.Path,
				Name:        doc.Name,
				Title:       doc.Title,
				Description: doc.Description,
			}

			if kind == "" {
				entries = appendField(entries, base, FieldTitle, doc.Title)
				entries = appendField(entries, base, FieldPath, doc.Path)
				entries = appendField(entries, base, FieldDescription, doc.Description)
				entries = appendField(entries, base, FieldExtends, doc.Extends)
			}

			for _, member := range doc.Members {
				if kind != "" && member.Kind != kind {
					continue
				}

				entry := base
				entry.Member = member.Name
				entry.Kind = member.Kind
				entry.Signature = member.Signature
				entries = appendField(entries, entry, FieldMember, member.Name)
			}
		}
	}

	return entries
}

func appendField(entries []Result, base Result, field, value string) []Result {
	if value == "" {
		return entries
	}

	base.MatchField = field
	base.MatchValue = value
	return append(entries, base)
}
