package render

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	mdparser "github.com/gomarkdown/markdown/parser"

	"github.com/g5becks/apidox/internal/parser"
)

// HTML renders page as a self-contained <article> fragment. Free text is
// treated as markdown with raw HTML removed; signatures and types are escaped
// and wrapped in <code>.
func HTML(page parser.DocPage) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<article class="apidox-page">` + "\n")
	if page.Title != "" {
		fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(page.Title))
	}

	if page.Extends != nil && *page.Extends != "" {
		fmt.Fprintf(&buf, "<p class=\"extends\">Extends %s</p>\n", inlineMarkdown(*page.Extends))
	}

	if page.Description != "" {
		buf.WriteString(`<section class="description">` + "\n")
		buf.Write(blockMarkdown(page.Description))
		buf.WriteString("</section>\n")
	}

	writeItems(&buf, "Constructors", parser.MemberConstructor, page.Constructors)
	writeItems(&buf, "Properties", parser.MemberProperty, page.Properties)
	writeItems(&buf, "Methods", parser.MemberMethod, page.Methods)

	for _, section := range page.Others {
		buf.WriteString(`<section class="other">` + "\n")
		fmt.Fprintf(&buf, "<h2>%s</h2>\n", html.EscapeString(section.Title))
		buf.Write(blockMarkdown(section.Content))
		buf.WriteString("</section>\n")
	}

	buf.WriteString("</article>\n")
	return buf.Bytes()
}

func writeItems(buf *bytes.Buffer, title string, kind parser.MemberKind, items []parser.DocItem) {
	if len(items) == 0 {
		return
	}

	fmt.Fprintf(buf, "<section class=\"%ss\">\n<h2>%s</h2>\n", kind, title)
	for _, item := range items {
		writeItem(buf, kind, item)
	}
	buf.WriteString("</section>\n")
}

func writeItem(buf *bytes.Buffer, kind parser.MemberKind, item parser.DocItem) {
	fmt.Fprintf(buf, "<div class=\"member\" id=\"%s-%s\">\n", kind, anchor(item.Name))

	fmt.Fprintf(buf, "<h3>%s", html.EscapeString(item.Name))
	for _, flag := range item.Flags {
		fmt.Fprintf(buf, ` <span class="badge badge-%s">%s</span>`, flag, flag)
	}
	buf.WriteString("</h3>\n")

	if item.Signature != "" {
		fmt.Fprintf(buf, "<pre class=\"signature\"><code>%s</code></pre>\n", html.EscapeString(stripTicks(item.Signature)))
	}

	if item.Description != "" {
		buf.Write(blockMarkdown(item.Description))
	}

	if len(item.Parameters) > 0 {
		buf.WriteString("<h4>Parameters</h4>\n<table class=\"parameters\">\n")
		buf.WriteString("<thead><tr><th>Name</th><th>Type</th><th>Description</th></tr></thead>\n<tbody>\n")
		for _, param := range item.Parameters {
			name := html.EscapeString(param.Name)
			if param.Optional {
				name += `<span class="optional">?</span>`
			}
			fmt.Fprintf(buf, "<tr><td><code>%s</code></td><td><code>%s</code></td><td>%s</td></tr>\n",
				name,
				html.EscapeString(stripTicks(param.Type)),
				inlineMarkdown(param.Description),
			)
		}
		buf.WriteString("</tbody>\n</table>\n")
	}

	if item.Returns != "" {
		buf.WriteString("<h4>Returns</h4>\n")
		buf.Write(blockMarkdown(item.Returns))
	}

	buf.WriteString("</div>\n")
}

// blockMarkdown renders a markdown fragment. A parser holds per-document
// state, so each call builds its own. Pages come from remote sources, so raw
// HTML in them is dropped and only safe link protocols are kept.
func blockMarkdown(fragment string) []byte {
	p := mdparser.NewWithExtensions(mdparser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink,
	})
	return markdown.ToHTML([]byte(fragment), p, renderer)
}

// inlineMarkdown renders a single-paragraph fragment without the <p> wrapper.
func inlineMarkdown(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}

	out := strings.TrimSpace(string(blockMarkdown(fragment)))
	if strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return out
}

func stripTicks(s string) string {
	return strings.ReplaceAll(s, "`", "")
}

func anchor(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	return b.String()
}
