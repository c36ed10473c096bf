// Package sync fetches the configured sources into the docs directory and
// keeps the lock file current.
package sync

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/lockfile"
	"github.com/g5becks/apidox/internal/source"
)

type EventKind int

const (
	EventSourceStart EventKind = iota + 1
	EventSourceDone
	EventSourcePruned
)

// Event reports progress for a single source. Result and Err are set on
// EventSourceDone only.
type Event struct {
	Kind   EventKind
	Source string
	Result *source.SyncResult
	Err    error
}

// Factory builds a source from its config.
type Factory func(name string, cfg config.Source, token string) (source.Source, error)

type Options struct {
	SourceNames []string
	Force       bool
	DryRun      bool
	// Prune removes pages of sources that are no longer configured.
	Prune   bool
	OnEvent func(Event)
	// Factory defaults to source.New.
	Factory Factory
}

// RunResult aggregates the outcome of all sources. Files lists pages written,
// relative to the docs directory.
type RunResult struct {
	Sources    int
	Downloaded int
	Deleted    int
	Skipped    int
	Errors     int
	Pruned     []string
	Files      []string
	Warnings   []string
}

type runState struct {
	result *source.SyncResult
	err    error
}

func Run(ctx context.Context, cfg *config.Config, opts Options) (*RunResult, error) {
	if cfg == nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			Errorf("config is required")
	}

	lock, err := lockfile.Load(cfg.Output)
	if err != nil {
		return nil, err
	}

	sourceNames, err := resolveSourceNames(cfg.Sources, opts.SourceNames)
	if err != nil {
		return nil, err
	}

	factory := opts.Factory
	if factory == nil {
		factory = source.New
	}

	emit := func(e Event) {
		if opts.OnEvent != nil {
			opts.OnEvent(e)
		}
	}

	states := make([]runState, len(sourceNames))
	token := cfg.Token()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(cfg.Parallel, 1))

	for i, sourceName := range sourceNames {
		sourceCfg := cfg.Sources[sourceName]
		previousLock := lock.GetEntry(sourceName)

		group.Go(func() error {
			emit(Event{Kind: EventSourceStart, Source: sourceName})

			state := syncOne(groupCtx, factory, sourceName, sourceCfg, token, cfg.DocsDir, previousLock, opts)
			states[i] = state

			emit(Event{
				Kind:   EventSourceDone,
				Source: sourceName,
				Result: state.result,
				Err:    state.err,
			})
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, oops.Wrapf(err, "waiting for source sync workers")
	}

	result := &RunResult{Sources: len(sourceNames)}
	for i, sourceName := range sourceNames {
		state := states[i]
		if state.err != nil {
			result.Errors++
			continue
		}

		if state.result == nil {
			continue
		}

		result.Downloaded += state.result.Downloaded
		result.Deleted += state.result.Deleted
		result.Files = append(result.Files, state.result.Files...)
		result.Warnings = append(result.Warnings, state.result.Warnings...)
		if state.result.Skipped {
			result.Skipped++
		}

		if !opts.DryRun && state.result.LockEntry != nil {
			lock.SetEntry(sourceName, state.result.LockEntry)
		}
	}
	slices.Sort(result.Files)

	if opts.Prune {
		pruned, pruneErr := pruneSources(cfg, lock, opts.DryRun)
		if pruneErr != nil {
			return nil, pruneErr
		}
		for _, name := range pruned {
			emit(Event{Kind: EventSourcePruned, Source: name})
		}
		result.Pruned = pruned
	}

	if !opts.DryRun {
		if err := lock.Save(cfg.Output); err != nil {
			return nil, err
		}
	}

	if result.Errors > 0 {
		return result, oops.
			Code("DOWNLOAD_FAILED").
			With("failed_sources", result.Errors).
			Errorf("%d source(s) failed during sync", result.Errors)
	}

	return result, nil
}

func syncOne(
	ctx context.Context,
	factory Factory,
	name string,
	cfg config.Source,
	token string,
	docsDir string,
	prev *lockfile.LockEntry,
	opts Options,
) runState {
	src, err := factory(name, cfg, token)
	if err != nil {
		return runState{err: err}
	}
	defer func() {
		_ = src.Close()
	}()

	result, err := src.Sync(ctx, docsDir, prev, source.SyncOptions{
		Force:  opts.Force,
		DryRun: opts.DryRun,
	})
	return runState{result: result, err: err}
}

func resolveSourceNames(
	sourceConfigs map[string]config.Source,
	requestedNames []string,
) ([]string, error) {
	if len(requestedNames) == 0 {
		sourceNames := make([]string, 0, len(sourceConfigs))
		for sourceName := range sourceConfigs {
			sourceNames = append(sourceNames, sourceName)
		}

		slices.Sort(sourceNames)
		return sourceNames, nil
	}

	sourceNames := make([]string, 0, len(requestedNames))
	seen := make(map[string]struct{}, len(requestedNames))

	for _, sourceName := range requestedNames {
		if _, ok := sourceConfigs[sourceName]; !ok {
			return nil, oops.
				Code("SOURCE_NOT_FOUND").
				With("source", sourceName).
				Hint("Check the [sources] table in apidox.toml").
				Errorf("source %q not found in config", sourceName)
		}

		if _, exists := seen[sourceName]; exists {
			continue
		}

		seen[sourceName] = struct{}{}
		sourceNames = append(sourceNames, sourceName)
	}

	return sourceNames, nil
}

// pruneSources deletes the pages recorded for lock entries whose source was
// removed from the config, then drops those entries.
func pruneSources(cfg *config.Config, lock *lockfile.LockFile, dryRun bool) ([]string, error) {
	configured := cfg.SourceNames()

	var stale []string
	for name := range lock.Sources {
		if !slices.Contains(configured, name) {
			stale = append(stale, name)
		}
	}
	slices.Sort(stale)

	if dryRun {
		return stale, nil
	}

	for _, name := range stale {
		for _, rel := range recordedPages(lock.GetEntry(name)) {
			target := filepath.Join(cfg.DocsDir, filepath.FromSlash(rel))
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return nil, oops.
					Code("WRITE_FAILED").
					With("source", name).
					With("path", target).
					Wrapf(err, "removing page of pruned source")
			}
		}
	}

	return lock.Prune(configured), nil
}

// recordedPages returns the docs-relative pages a lock entry accounts for.
// Github entries key their files below the destination directory in Path.
func recordedPages(entry *lockfile.LockEntry) []string {
	if entry == nil {
		return nil
	}

	if entry.Type == config.SourceTypeURL && entry.Path != "" {
		return []string{path.Clean(entry.Path)}
	}

	pages := make([]string, 0, len(entry.Files))
	for rel := range entry.Files {
		pages = append(pages, path.Join(entry.Path, rel))
	}
	slices.Sort(pages)
	return pages
}
