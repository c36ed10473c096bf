// Package catalog locates reference pages in a docs tree and groups them by
// category, the way the generator names its output files.
package catalog

import (
	"path"
	"slices"
	"strings"
)

const (
	DefaultCategory = "General"
	OverviewName    = "Overview"
	modulesKind     = "modules"
)

// Entry is one reference page found in the docs tree.
type Entry struct {
	// Path is the slash-separated location without extension, e.g. "classes/Core.Viewer".
	Path     string `json:"path"`
	File     string `json:"file"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

type Group struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

func skippedNames() []string {
	return []string{"index", "hierarchy", "modules", "README"}
}

// Classify derives kind, category and display name from a path relative to
// the docs root. The first directory is the kind and everything below it,
// subdirectories included, is the file name. Files directly under the root
// and index pages are rejected.
func Classify(relPath string) (Entry, bool) {
	relPath = strings.TrimPrefix(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), "./")

	kind, file, found := strings.Cut(relPath, "/")
	if !found || kind == "" || kind == "." || file == "" {
		return Entry{}, false
	}

	base := strings.TrimSuffix(file, path.Ext(file))
	if base == "" || slices.Contains(skippedNames(), base) {
		return Entry{}, false
	}

	category := DefaultCategory
	name := base

	if before, after, found := strings.Cut(base, "."); found && before != "" {
		category = before
		name = after
	} else if kind == modulesKind {
		category = base
		name = OverviewName
	}

	return Entry{
		Path:     kind + "/" + base,
		File:     relPath,
		Kind:     kind,
		Category: category,
		Name:     name,
	}, true
}

// GroupEntries buckets entries by category. Groups are sorted by name and
// each group lists its Overview first, then entries by name.
func GroupEntries(entries []Entry) []Group {
	byCategory := make(map[string][]Entry)
	for _, e := range entries {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	slices.Sort(names)

	groups := make([]Group, 0, len(names))
	for _, name := range names {
		items := byCategory[name]
		slices.SortStableFunc(items, compareEntries)
		groups = append(groups, Group{Name: name, Entries: items})
	}

	return groups
}

func compareEntries(a, b Entry) int {
	aOverview := a.Name == OverviewName
	bOverview := b.Name == OverviewName

	switch {
	case aOverview && !bOverview:
		return -1
	case bOverview && !aOverview:
		return 1
	}

	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}
