package parser

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Summary returns the first paragraph of a markdown fragment as plain text,
// with inline markup removed and whitespace collapsed.
func Summary(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse([]byte(fragment))

	var first string
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering || first != "" {
			return ast.GoToNext
		}
		if para, ok := node.(*ast.Paragraph); ok {
			first = extractText(para)
			return ast.SkipChildren
		}
		return ast.GoToNext
	})

	return first
}

// PlainText flattens a markdown fragment to its text content.
func PlainText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	return extractText(mdParser.Parse([]byte(fragment)))
}

func extractText(node ast.Node) string {
	var buf strings.Builder
	ast.WalkFunc(node, func(n ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch leaf := n.(type) {
		case *ast.Text:
			buf.Write(leaf.Literal)
		case *ast.Code:
			buf.Write(leaf.Literal)
		case *ast.Softbreak, *ast.Hardbreak:
			buf.WriteByte(' ')
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			buf.WriteByte(' ')
		}
		return ast.GoToNext
	})
	// Collapse runs of spaces and newlines.
	return strings.Join(strings.Fields(buf.String()), " ")
}
