package main

import (
	"io"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/ui"
)

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func newLogger(cmd *cli.Command) *ui.Logger {
	return ui.NewLoggerWithWriter(stderr(cmd), cmd.Bool("verbose"))
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	newLogger(cmd).Debug("config loaded from %s (docs %s, output %s)", cfg.ConfigDir, cfg.DocsDir, cfg.Output)
	return cfg, nil
}

func loadManifest(cmd *cli.Command) (*config.Config, *manifest.Manifest, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	m, err := manifest.Load(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	return cfg, m, nil
}

// listFlags are shared by every command that prints a listing.
func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		&cli.StringFlag{Name: "format", Usage: "Output format: table, json, csv"},
		&cli.IntFlag{Name: "limit", Usage: "Show first N rows (0 = use config default)"},
		&cli.BoolFlag{Name: "all", Usage: "Show all rows (no limit)"},
		&cli.IntFlag{Name: "desc-length", Usage: "Max description length (0 = use config default)"},
	}
}

func resolveLimit(cmd *cli.Command, cfg *config.Config) int {
	if cmd.Bool("all") {
		return 0
	}
	if cmd.IsSet("limit") {
		return cmd.Int("limit")
	}
	return cfg.Display.DefaultLimit
}

func resolveFormat(cmd *cli.Command, cfg *config.Config) (string, error) {
	if cmd.Bool("json") {
		return ui.FormatJSON, nil
	}
	if !cmd.IsSet("format") {
		return cfg.Display.Format, nil
	}

	format := cmd.String("format")
	switch format {
	case ui.FormatTable, ui.FormatJSON, ui.FormatCSV:
		return format, nil
	default:
		return "", oops.
			Code("INVALID_ARGS").
			With("format", format).
			Hint("Supported formats: table, json, csv").
			Errorf("unknown format %q", format)
	}
}

func resolveDescLength(cmd *cli.Command, cfg *config.Config) int {
	if cmd.IsSet("desc-length") {
		return cmd.Int("desc-length")
	}
	return cfg.Display.DescriptionLength
}

func listOptions(cmd *cli.Command, cfg *config.Config, total int) (ui.ListOptions, error) {
	format, err := resolveFormat(cmd, cfg)
	if err != nil {
		return ui.ListOptions{}, err
	}

	return ui.ListOptions{
		Format:            format,
		DescriptionLength: resolveDescLength(cmd, cfg),
		Total:             total,
	}, nil
}

func applyLimit[T any](rows []T, limit int) []T {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
