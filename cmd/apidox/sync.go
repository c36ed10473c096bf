package main

import (
	"context"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/lockfile"
	apisync "github.com/g5becks/apidox/internal/sync"
	"github.com/g5becks/apidox/internal/ui"
)

func newSyncCommand() *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Fetch configured reference sources into the docs directory",
		ArgsUsage: "[source-name...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Refetch even when sources look unchanged"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Show planned changes without writing files"},
			&cli.BoolFlag{Name: "prune", Usage: "Remove pages of sources no longer in the config"},
			&cli.BoolFlag{Name: "index", Usage: "Rebuild the manifest after a successful sync"},
		},
		Action: syncAction,
	}
}

func syncAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	dryRun := cmd.Bool("dry-run")
	printer := ui.NewSyncPrinterWithWriter(stderr(cmd), dryRun)

	result, err := apisync.Run(ctx, cfg, apisync.Options{
		SourceNames: cmd.Args().Slice(),
		Force:       cmd.Bool("force"),
		DryRun:      dryRun,
		Prune:       cmd.Bool("prune"),
		OnEvent:     printer.HandleEvent,
	})
	printer.PrintSummary(result)
	if err != nil {
		return err
	}

	if cmd.Bool("index") && !dryRun {
		return runIndex(ctx, cmd, cfg)
	}

	return nil
}

func newSourcesCommand() *cli.Command {
	return &cli.Command{
		Name:   "sources",
		Usage:  "List configured sources and their sync status",
		Flags:  listFlags(),
		Action: sourcesAction,
	}
}

func sourcesAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	lock, err := lockfile.Load(cfg.Output)
	if err != nil {
		return err
	}

	statuses := sourceStatuses(cfg, lock)
	opts, err := listOptions(cmd, cfg, len(statuses))
	if err != nil {
		return err
	}

	return ui.RenderSources(stdout(cmd), applyLimit(statuses, resolveLimit(cmd, cfg)), opts)
}

// sourceStatuses lists configured sources first, then lock entries whose
// source was removed from the config.
func sourceStatuses(cfg *config.Config, lock *lockfile.LockFile) []ui.SourceStatus {
	names := cfg.SourceNames()
	statuses := make([]ui.SourceStatus, 0, len(names))

	for _, name := range names {
		src := cfg.Sources[name]
		status := ui.SourceStatus{
			Name:   name,
			Type:   src.Type,
			Repo:   src.Repo,
			Path:   src.Path,
			URL:    src.URL,
			Ref:    src.Ref,
			Out:    src.Out,
			Status: "not synced",
		}

		if entry := lock.GetEntry(name); entry != nil {
			status.Status = "synced"
			status.SyncedAt = entry.SyncedAt
			status.Pages = recordedPageCount(entry)
		}

		statuses = append(statuses, status)
	}

	var stale []string
	for name := range lock.Sources {
		if _, ok := cfg.Sources[name]; !ok {
			stale = append(stale, name)
		}
	}
	slices.Sort(stale)

	for _, name := range stale {
		entry := lock.GetEntry(name)
		statuses = append(statuses, ui.SourceStatus{
			Name:     name,
			Type:     entry.Type,
			URL:      entry.URL,
			Path:     entry.Path,
			Status:   "stale (run sync --prune)",
			Pages:    recordedPageCount(entry),
			SyncedAt: entry.SyncedAt,
		})
	}

	return statuses
}

func recordedPageCount(entry *lockfile.LockEntry) int {
	if entry.Type == config.SourceTypeURL {
		return 1
	}
	return len(entry.Files)
}
