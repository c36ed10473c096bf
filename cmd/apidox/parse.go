package main

import (
	"context"
	"io"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/parser"
	"github.com/g5becks/apidox/internal/render"
)

func newParseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Parse a single markdown file, or stdin when the file is -",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output the page model as JSON"},
			&cli.StringFlag{Name: "format", Usage: "Output format: text, json, html", Value: showFormatText},
		},
		Action: parseAction,
	}
}

func parseAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: apidox parse <file>").
			Errorf("expected 1 argument, got %d", cmd.Args().Len())
	}

	path := cmd.Args().First()
	if path != "-" && !parser.IsMarkdown(path) {
		return oops.
			Code("INVALID_ARGS").
			With("path", path).
			Hint("Pass a .md or .markdown file, or - to read stdin").
			Errorf("%q is not a markdown file", path)
	}

	content, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	doc, err := parser.ParseFile(content)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if cmd.Bool("json") {
		format = showFormatJSON
	}

	return writePage(stdout(cmd), format, doc, render.TextOptions{})
}

func readInput(cmd *cli.Command, path string) ([]byte, error) {
	if path == "-" {
		reader := cmd.Root().Reader
		if reader == nil {
			reader = os.Stdin
		}

		content, err := io.ReadAll(reader)
		if err != nil {
			return nil, oops.
				Code("FILE_READ_ERROR").
				Wrapf(err, "reading stdin")
		}
		return content, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.
			Code("FILE_READ_ERROR").
			With("path", path).
			Hint("Check the file path").
			Wrapf(err, "reading %q", path)
	}
	return content, nil
}
