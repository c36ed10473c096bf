// Package watch reports changes to reference pages below a docs directory.
// Events are filtered through the same include/exclude globs the catalog
// scan uses and delivered in debounced batches.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/catalog"
)

const DefaultDebounce = 300 * time.Millisecond

type ChangeKind string

const (
	ChangeUpdated ChangeKind = "updated"
	ChangeRemoved ChangeKind = "removed"
)

// Change is one page that was written or removed, or a watched directory that
// was removed or moved away together with its pages. Path is slash-separated
// and relative to the watched root.
type Change struct {
	Path string
	Kind ChangeKind
}

type Options struct {
	Scan     catalog.ScanOptions
	Debounce time.Duration
}

type Watcher struct {
	root     string
	opts     Options
	notifier *fsnotify.Watcher
	// dirs is every watched directory; only touched from New and Run.
	dirs map[string]struct{}
}

// New watches root and every directory below it.
func New(root string, opts Options) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, oops.
			Code("DOCS_NOT_FOUND").
			With("path", root).
			Hint("Check docs_dir in your config").
			Errorf("docs directory %q does not exist", root)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	notifier, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, oops.
			Code("WATCH_ERROR").
			Wrapf(err, "creating file watcher")
	}

	w := &Watcher{
		root:     filepath.Clean(root),
		opts:     opts,
		notifier: notifier,
		dirs:     make(map[string]struct{}),
	}
	if _, err := w.addTree(w.root); err != nil {
		_ = notifier.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) Close() error {
	return w.notifier.Close()
}

// Run blocks until ctx is done, calling onBatch with the pages changed during
// each quiet period. An error from onBatch stops the watch and is returned.
func (w *Watcher) Run(ctx context.Context, onBatch func([]Change) error) error {
	pending := make(map[string]ChangeKind)
	timer := time.NewTimer(w.opts.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.notifier.Events:
			if !ok {
				return nil
			}
			changes := w.handleEvent(event)
			for _, change := range changes {
				pending[change.Path] = change.Kind
			}
			if len(changes) > 0 {
				timer.Reset(w.opts.Debounce)
			}

		case err, ok := <-w.notifier.Errors:
			if !ok {
				return nil
			}
			return oops.
				Code("WATCH_ERROR").
				With("path", w.root).
				Wrapf(err, "watching docs directory")

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := drain(pending)
			if err := onBatch(batch); err != nil {
				return err
			}
		}
	}
}

// handleEvent turns a file system event into page changes. A directory
// created or moved into the tree joins the watch and reports the pages already
// inside it; a watched directory that goes away is reported as removed.
func (w *Watcher) handleEvent(event fsnotify.Event) []Change {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return nil
	}
	rel = filepath.ToSlash(rel)
	if isHidden(rel) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if !event.Has(fsnotify.Create) {
				return nil
			}
			pages, _ := w.addTree(event.Name)
			changes := make([]Change, 0, len(pages))
			for _, page := range pages {
				changes = append(changes, Change{Path: page, Kind: ChangeUpdated})
			}
			return changes
		}
		if !catalog.Matches(rel, w.opts.Scan) {
			return nil
		}
		return []Change{{Path: rel, Kind: ChangeUpdated}}

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		if w.forgetTree(filepath.Clean(event.Name)) {
			return []Change{{Path: rel, Kind: ChangeRemoved}}
		}
		if !catalog.Matches(rel, w.opts.Scan) {
			return nil
		}
		return []Change{{Path: rel, Kind: ChangeRemoved}}
	}

	return nil
}

// addTree watches dir and every non-hidden directory below it, returning the
// pages found on the way as root-relative slash paths.
func (w *Watcher) addTree(dir string) ([]string, error) {
	var pages []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if path != w.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if rel, relErr := filepath.Rel(w.root, path); relErr == nil {
				rel = filepath.ToSlash(rel)
				if catalog.Matches(rel, w.opts.Scan) {
					pages = append(pages, rel)
				}
			}
			return nil
		}
		if addErr := w.notifier.Add(path); addErr != nil {
			return oops.
				Code("WATCH_ERROR").
				With("path", path).
				Wrapf(addErr, "watching directory")
		}
		w.dirs[filepath.Clean(path)] = struct{}{}
		return nil
	})
	return pages, err
}

// forgetTree drops dir and its subdirectories from the watch. It reports
// whether dir was a watched directory.
func (w *Watcher) forgetTree(dir string) bool {
	if _, ok := w.dirs[dir]; !ok {
		return false
	}
	prefix := dir + string(filepath.Separator)
	for watched := range w.dirs {
		if watched == dir || strings.HasPrefix(watched, prefix) {
			_ = w.notifier.Remove(watched)
			delete(w.dirs, watched)
		}
	}
	return true
}

func drain(pending map[string]ChangeKind) []Change {
	batch := make([]Change, 0, len(pending))
	for path, kind := range pending {
		batch = append(batch, Change{Path: path, Kind: kind})
		delete(pending, path)
	}
	slices.SortFunc(batch, func(a, b Change) int {
		return strings.Compare(a.Path, b.Path)
	})
	return batch
}

func isHidden(rel string) bool {
	for part := range strings.SplitSeq(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
