package source

import (
	"context"
	"os"

	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/fsutil"
	"github.com/g5becks/apidox/internal/lockfile"
)

// SyncResult reports what happened during a sync. Files lists the pages
// written, relative to the docs directory and slash-separated.
type SyncResult struct {
	Downloaded int
	Deleted    int
	Skipped    bool
	Files      []string
	Warnings   []string
	LockEntry  *lockfile.LockEntry
}

// SyncOptions controls behavior for source sync operations.
type SyncOptions struct {
	Force  bool
	DryRun bool
}

// Source fetches remote reference markdown into a docs directory.
type Source interface {
	Sync(
		ctx context.Context,
		docsDir string,
		prevLock *lockfile.LockEntry,
		opts SyncOptions,
	) (*SyncResult, error)
	Close() error
}

// New creates a Source from config. The source type is expected to be set,
// see config.Config.ApplyDefaults.
func New(name string, cfg config.Source, token string) (Source, error) {
	switch cfg.Type {
	case config.SourceTypeGitHub:
		return newGitHubSource(name, cfg, token)
	case config.SourceTypeURL:
		return NewURL(name, cfg)
	default:
		return nil, oops.
			Code("UNKNOWN_SOURCE_TYPE").
			With("type", cfg.Type).
			Hint("Supported types: url, github").
			Errorf("unknown source type %q for source %q", cfg.Type, name)
	}
}

func writeFileAtomic(path string, content []byte) error {
	if err := fsutil.WriteFileAtomic(path, content); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", path).
			Wrapf(err, "writing page")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
