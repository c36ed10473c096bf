package main

import (
	"context"
	"io"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/parser"
	"github.com/g5becks/apidox/internal/render"
	"github.com/g5becks/apidox/internal/ui"
)

const (
	showFormatText = "text"
	showFormatJSON = "json"
	showFormatHTML = "html"
)

func newGroupsCommand() *cli.Command {
	return &cli.Command{
		Name:   "groups",
		Usage:  "List indexed groups",
		Flags:  listFlags(),
		Action: groupsAction,
	}
}

func groupsAction(_ context.Context, cmd *cli.Command) error {
	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	summaries := make([]ui.GroupSummary, 0, len(m.Groups))
	for _, group := range m.Groups {
		summaries = append(summaries, ui.SummarizeGroup(group))
	}

	opts, err := listOptions(cmd, cfg, len(summaries))
	if err != nil {
		return err
	}

	return ui.RenderGroups(stdout(cmd), applyLimit(summaries, resolveLimit(cmd, cfg)), opts)
}

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List indexed pages, optionally within one group",
		ArgsUsage: "[group]",
		Flags:     listFlags(),
		Action:    listAction,
	}
}

func listAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: apidox list [group]").
			Errorf("expected at most 1 argument, got %d", cmd.Args().Len())
	}

	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	docs := m.Docs()
	if name := cmd.Args().First(); name != "" {
		group, groupErr := m.Group(name)
		if groupErr != nil {
			return groupErr
		}
		docs = group.Docs
	}

	opts, err := listOptions(cmd, cfg, len(docs))
	if err != nil {
		return err
	}

	return ui.RenderDocs(stdout(cmd), applyLimit(docs, resolveLimit(cmd, cfg)), opts)
}

func newShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a parsed reference page",
		ArgsUsage: "<group> <name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "Output format: text, json, html", Value: showFormatText},
			&cli.StringFlag{Name: "kind", Usage: "Only show members of one kind: constructor, property, method"},
			&cli.StringFlag{Name: "member", Usage: "Only show the named member"},
			&cli.BoolFlag{Name: "brief", Usage: "Only show member names and signatures"},
		},
		Action: showAction,
	}
}

type showOutput struct {
	Group string         `json:"group"`
	Path  string         `json:"path"`
	Meta  map[string]any `json:"meta,omitempty"`
	Page  parser.DocPage `json:"page"`
}

func showAction(_ context.Context, cmd *cli.Command) error {
	const requiredArgs = 2
	if cmd.Args().Len() != requiredArgs {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: apidox show <group> <name>").
			Errorf("expected %d arguments, got %d", requiredArgs, cmd.Args().Len())
	}

	kind, err := parser.ParseMemberKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	_, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	groupName := cmd.Args().Get(0)
	info, err := m.Find(groupName, cmd.Args().Get(1))
	if err != nil {
		return err
	}

	doc, err := m.ReadDoc(info)
	if err != nil {
		return err
	}

	if cmd.String("format") == showFormatJSON {
		return ui.WriteJSON(stdout(cmd), showOutput{
			Group: groupName,
			Path:  info.Path,
			Meta:  doc.Meta,
			Page:  doc.Page,
		})
	}

	return writePage(stdout(cmd), cmd.String("format"), doc, render.TextOptions{
		Kind:   kind,
		Member: cmd.String("member"),
		Brief:  cmd.Bool("brief"),
	})
}

// writePage prints a parsed page as text, html or the JSON document model.
func writePage(w io.Writer, format string, doc *parser.Document, opts render.TextOptions) error {
	switch format {
	case showFormatJSON:
		return ui.WriteJSON(w, doc)
	case showFormatHTML:
		_, err := w.Write(render.HTML(doc.Page))
		return err
	case showFormatText:
		return render.Text(w, doc.Page, opts)
	default:
		return oops.
			Code("INVALID_ARGS").
			With("format", format).
			Hint("Supported formats: text, json, html").
			Errorf("unknown format %q", format)
	}
}
