package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/g5becks/apidox/internal/parser"
)

// TextOptions narrows the terminal view. Kind and Member filter the members
// shown; Brief hides item descriptions, parameters and returns.
type TextOptions struct {
	Kind   parser.MemberKind
	Member string
	Brief  bool
}

type textStyles struct {
	title   *color.Color
	section *color.Color
	item    *color.Color
	flag    *color.Color
	dim     *color.Color
}

func newTextStyles() textStyles {
	return textStyles{
		title:   color.New(color.Bold, color.FgCyan),
		section: color.New(color.Bold),
		item:    color.New(color.FgGreen),
		flag:    color.New(color.FgYellow),
		dim:     color.New(color.Faint),
	}
}

// Text writes a terminal view of page to w.
func Text(w io.Writer, page parser.DocPage, opts TextOptions) error {
	s := newTextStyles()
	tw := &textWriter{w: w}

	tw.printf("%s\n", s.title.Sprint(page.Title))
	if page.Extends != nil && *page.Extends != "" {
		tw.printf("%s %s\n", s.dim.Sprint("extends"), parser.PlainText(*page.Extends))
	}
	if page.Description != "" {
		tw.printf("\n%s\n", page.Description)
	}

	filtered := opts.Kind != "" || opts.Member != ""
	for _, group := range memberGroups(page) {
		items := filterItems(group.items, group.kind, opts)
		if len(items) == 0 {
			continue
		}

		tw.printf("\n%s\n", s.section.Sprint(group.title))
		for _, item := range items {
			writeTextItem(tw, s, item, opts.Brief)
		}
	}

	if !filtered {
		for _, section := range page.Others {
			tw.printf("\n%s\n%s\n", s.section.Sprint(section.Title), strings.TrimSpace(section.Content))
		}
	}

	return tw.err
}

type memberGroup struct {
	title string
	kind  parser.MemberKind
	items []parser.DocItem
}

func memberGroups(page parser.DocPage) []memberGroup {
	return []memberGroup{
		{title: "Constructors", kind: parser.MemberConstructor, items: page.Constructors},
		{title: "Properties", kind: parser.MemberProperty, items: page.Properties},
		{title: "Methods", kind: parser.MemberMethod, items: page.Methods},
	}
}

func filterItems(items []parser.DocItem, kind parser.MemberKind, opts TextOptions) []parser.DocItem {
	if opts.Kind != "" && opts.Kind != kind {
		return nil
	}
	if opts.Member == "" {
		return items
	}

	var out []parser.DocItem
	for _, item := range items {
		if strings.EqualFold(item.Name, opts.Member) {
			out = append(out, item)
		}
	}
	return out
}

func writeTextItem(tw *textWriter, s textStyles, item parser.DocItem, brief bool) {
	header := "  " + s.item.Sprint(item.Name)
	for _, flag := range item.Flags {
		header += " " + s.flag.Sprintf("[%s]", flag)
	}
	tw.printf("%s\n", header)

	if item.Signature != "" {
		tw.printf("    %s\n", stripTicks(item.Signature))
	}

	if brief {
		return
	}

	if item.Description != "" {
		tw.printf("%s\n", indent(item.Description, "    "))
	}

	if len(item.Parameters) > 0 {
		tw.printf("%s\n", indent(parameterTable(item.Parameters), "    "))
	}

	if item.Returns != "" {
		tw.printf("    %s %s\n", s.dim.Sprint("returns"), parser.PlainText(item.Returns))
	}
}

func parameterTable(params []parser.DocParameter) string {
	writer := table.NewWriter()
	writer.SetStyle(table.StyleLight)
	writer.AppendHeader(table.Row{"PARAMETER", "TYPE", "DEFAULT", "DESCRIPTION"})

	for _, param := range params {
		name := param.Name
		if param.Optional {
			name += "?"
		}

		typ, _, _ := strings.Cut(param.Type, " = ")
		writer.AppendRow(table.Row{
			name,
			stripTicks(typ),
			stripTicks(param.DefaultValue),
			parser.PlainText(param.Description),
		})
	}

	return writer.Render()
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// textWriter keeps the first write error so callers check once.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}
