package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/catalog"
	"github.com/g5becks/apidox/internal/fsutil"
	"github.com/g5becks/apidox/internal/parser"
)

const (
	CurrentVersion = "1.0.0"
	ManifestFile   = "manifest.json"
)

type Manifest struct {
	Version   string    `json:"version"`
	Generated time.Time `json:"generated"`
	DocsDir   string    `json:"docs_dir"`
	Groups    []Group   `json:"groups"`
	DocCount  int       `json:"doc_count"`
	Skipped   int       `json:"skipped,omitempty"`
}

type Group struct {
	Name string    `json:"name"`
	Docs []DocInfo `json:"docs"`
}

// DocInfo summarizes one parsed reference page.
type DocInfo struct {
	catalog.Entry

	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Extends      string      `json:"extends,omitempty"`
	Constructors int         `json:"constructors"`
	Properties   int         `json:"properties"`
	Methods      int         `json:"methods"`
	Others       []string    `json:"others,omitempty"`
	Members      []MemberRef `json:"members,omitempty"`
	Size         int64       `json:"size"`
	Modified     time.Time   `json:"modified"`
	Warning      string      `json:"warning,omitempty"`
}

type MemberRef struct {
	Kind      parser.MemberKind `json:"kind"`
	Name      string            `json:"name"`
	Signature string            `json:"signature,omitempty"`
	Flags     []parser.Flag     `json:"flags,omitempty"`
}

func New() *Manifest {
	return &Manifest{
		Version:   CurrentVersion,
		Generated: time.Now(),
		Groups:    []Group{},
	}
}

func Load(outputDir string) (*Manifest, error) {
	manifestPath := Path(outputDir)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, oops.
				Code("MANIFEST_NOT_FOUND").
				With("path", manifestPath).
				Hint("Run 'apidox index' to generate the manifest").
				Errorf("manifest not found at %q", manifestPath)
		}

		return nil, oops.
			Code("MANIFEST_READ_ERROR").
			With("path", manifestPath).
			Wrapf(err, "reading manifest file")
	}

	m := &Manifest{}
	if unmarshalErr := json.Unmarshal(data, m); unmarshalErr != nil {
		return nil, oops.
			Code("MANIFEST_CORRUPTED").
			With("path", manifestPath).
			Hint("Delete the manifest and run 'apidox index'").
			Wrapf(unmarshalErr, "parsing manifest file")
	}

	if m.Groups == nil {
		m.Groups = []Group{}
	}

	return m, nil
}

func (m *Manifest) Save(outputDir string) error {
	if m == nil {
		return oops.
			Code("MANIFEST_WRITE_ERROR").
			Hint("Initialize manifest before saving").
			Errorf("cannot save nil manifest")
	}

	manifestPath := Path(outputDir)
	if err := fsutil.WriteJSON(manifestPath, m); err != nil {
		return oops.
			Code("MANIFEST_WRITE_ERROR").
			With("path", manifestPath).
			Wrapf(err, "saving manifest")
	}

	return nil
}

// Group returns the named group.
func (m *Manifest) Group(name string) (*Group, error) {
	for i := range m.Groups {
		if m.Groups[i].Name == name {
			return &m.Groups[i], nil
		}
	}

	return nil, oops.
		Code("GROUP_NOT_FOUND").
		With("group", name).
		Hint("Run 'apidox groups' to see available groups").
		Errorf("group %q not found", name)
}

// Find locates a doc by group and display name, falling back to its path.
func (m *Manifest) Find(group, name string) (*DocInfo, error) {
	g, err := m.Group(group)
	if err != nil {
		return nil, err
	}

	for i := range g.Docs {
		if g.Docs[i].Name == name || g.Docs[i].Path == name {
			return &g.Docs[i], nil
		}
	}

	return nil, oops.
		Code("DOC_NOT_FOUND").
		With("group", group).
		With("name", name).
		Hint("Run 'apidox list " + group + "' to see available pages").
		Errorf("page %q not found in group %q", name, group)
}

// Docs returns every doc across groups in group order.
func (m *Manifest) Docs() []DocInfo {
	docs := []DocInfo{}
	for _, g := range m.Groups {
		docs = append(docs, g.Docs...)
	}
	return docs
}

// ReadDoc reads and parses the page behind info from the indexed docs
// directory. A page whose front matter no longer parses is read the way the
// indexer read it, as plain body.
func (m *Manifest) ReadDoc(info *DocInfo) (*parser.Document, error) {
	fullPath := filepath.Join(m.DocsDir, filepath.FromSlash(info.File))
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", fullPath).
			Hint("Run 'apidox index' to refresh the manifest").
			Wrapf(err, "reading page")
	}

	doc, err := parser.ParseFile(content)
	if err != nil {
		return &parser.Document{Page: parser.ParseDocument(string(parser.StripBOM(content)))}, nil //nolint:nilerr // front matter is optional
	}

	return doc, nil
}

func Path(outputDir string) string {
	return filepath.Join(outputDir, ManifestFile)
}
