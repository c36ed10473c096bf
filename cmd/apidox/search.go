package main

import (
	"context"
	"strings"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/parser"
	"github.com/g5becks/apidox/internal/search"
	"github.com/g5becks/apidox/internal/ui"
)

func newSearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search pages and members, or page content",
		ArgsUsage: "<query>",
		Flags: append(listFlags(),
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "Search only within one group"},
			&cli.StringFlag{Name: "kind", Usage: "Only match members of one kind: constructor, property, method"},
			&cli.BoolFlag{Name: "content", Usage: "Search page contents instead of names"},
			&cli.BoolFlag{Name: "regex", Usage: "Treat query as regex (requires --content)"},
		),
		Action: searchAction,
	}
}

func searchAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: apidox search <query>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	query := strings.TrimSpace(cmd.Args().First())
	if query == "" {
		return oops.
			Code("INVALID_ARGS").
			Hint("Provide a non-empty search query").
			Errorf("search query cannot be empty")
	}

	if cmd.Bool("regex") && !cmd.Bool("content") {
		return oops.
			Code("INVALID_ARGS").
			Hint("--regex requires --content flag").
			Errorf("--regex can only be used with --content")
	}

	kind, err := parser.ParseMemberKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	cfg, m, err := loadManifest(cmd)
	if err != nil {
		return err
	}

	opts, err := listOptions(cmd, cfg, 0)
	if err != nil {
		return err
	}
	limit := resolveLimit(cmd, cfg)

	if cmd.Bool("content") {
		results, searchErr := search.Content(m, search.ContentOptions{
			DocsDir:  cfg.DocsDir,
			Query:    query,
			Group:    cmd.String("group"),
			UseRegex: cmd.Bool("regex"),
			Limit:    limit,
		})
		if searchErr != nil {
			return searchErr
		}
		return ui.RenderContentResults(stdout(cmd), results, opts)
	}

	results, err := search.Members(m, search.Options{
		Query: query,
		Group: cmd.String("group"),
		Kind:  kind,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	newLogger(cmd).Debug("%d match(es) for %q", len(results), query)
	return ui.RenderResults(stdout(cmd), results, opts)
}
