package parser

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"github.com/samber/oops"
)

// Document is a reference page read from disk: optional front matter plus the
// structured page parsed from the body.
type Document struct {
	Meta map[string]any `json:"meta,omitempty"`
	Page DocPage        `json:"page"`
}

// ParseFile strips a BOM and any front matter block before structuring the
// body. Only a malformed front matter block is an error.
func ParseFile(content []byte) (*Document, error) {
	content = StripBOM(content)

	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(content), &meta)
	if err != nil {
		return nil, oops.
			Code("FRONTMATTER_INVALID").
			Hint("Fix or remove the front matter block at the top of the file").
			Wrapf(err, "parsing front matter")
	}

	doc := &Document{Page: ParseDocument(string(body))}
	if len(meta) > 0 {
		doc.Meta = meta
	}
	return doc, nil
}

// MetaString returns a string front matter value, or "".
func (d *Document) MetaString(key string) string {
	if d == nil || d.Meta == nil {
		return ""
	}
	value, _ := d.Meta[key].(string)
	return value
}
