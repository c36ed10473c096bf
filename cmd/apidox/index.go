package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/catalog"
	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/manifest"
	"github.com/g5becks/apidox/internal/ui"
	"github.com/g5becks/apidox/internal/watch"
)

func newIndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Parse the docs directory and rebuild the manifest",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "progress", Usage: "Show a progress bar while parsing"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Keep running and re-index when pages change"},
		},
		Action: indexAction,
	}
}

func indexAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := runIndex(ctx, cmd, cfg); err != nil {
		return err
	}

	if cmd.Bool("watch") {
		return watchIndex(ctx, cmd, cfg)
	}
	return nil
}

// watchIndex rebuilds the manifest after every batch of page changes until
// ctx is canceled. A failed rebuild is reported and the watch continues.
func watchIndex(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	w, err := watch.New(cfg.DocsDir, watch.Options{
		Scan: catalog.ScanOptions{Patterns: cfg.Patterns, Exclude: cfg.Exclude},
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	logger := newLogger(cmd)
	_, _ = fmt.Fprintf(stderr(cmd), "watching %s for changes (ctrl+c to stop)\n", cfg.DocsDir)

	return w.Run(ctx, func(batch []watch.Change) error {
		for _, change := range batch {
			logger.Debug("%s %s", change.Kind, change.Path)
		}
		_, _ = fmt.Fprintf(stderr(cmd), "%d page(s) changed, re-indexing\n", len(batch))

		if indexErr := runIndex(ctx, cmd, cfg); indexErr != nil {
			logger.Warn("re-index failed: %v", indexErr)
		}
		return nil
	})
}

func runIndex(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	logger := newLogger(cmd)

	var tracker *progress.Tracker
	rendered := make(chan struct{})
	if cmd.Bool("progress") {
		pw := ui.NewProgressWriter(stderr(cmd))
		tracker = ui.NewPageTracker("indexing pages", 0)
		pw.AppendTracker(tracker)
		go func() {
			defer close(rendered)
			pw.Render()
		}()
	}

	step := func() {
		if tracker != nil {
			tracker.Increment(1)
		}
	}

	m, err := manifest.Generate(ctx, cfg, manifest.GenerateOptions{
		OnScanned: func(total int) {
			logger.Debug("found %d pages in %s", total, cfg.DocsDir)
			if tracker != nil {
				tracker.UpdateTotal(int64(total))
			}
		},
		OnParsed: func(path string) {
			logger.Debug("parsed %s", path)
			step()
		},
		OnSkip: func(path, reason string) {
			logger.Warn("skipped %s: %s", path, reason)
			step()
		},
	})

	if tracker != nil {
		if err != nil {
			tracker.MarkAsErrored()
		} else {
			tracker.MarkAsDone()
		}
		<-rendered
	}

	if err != nil {
		return err
	}

	for _, doc := range m.Docs() {
		if doc.Warning != "" {
			logger.Warn("%s: %s", doc.File, doc.Warning)
		}
	}

	_, _ = fmt.Fprintf(stdout(cmd), "indexed %d page(s) in %d group(s)", m.DocCount, len(m.Groups))
	if m.Skipped > 0 {
		_, _ = fmt.Fprintf(stdout(cmd), ", %d skipped", m.Skipped)
	}
	_, _ = fmt.Fprintf(stdout(cmd), "\nmanifest written to %s\n", manifest.Path(cfg.Output))
	return nil
}
