package lockfile

import (
	"encoding/json"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/samber/oops"

	"github.com/g5becks/apidox/internal/fsutil"
)

const (
	FileName       = ".apidox.lock"
	currentVersion = 1
)

// LockFile records what each source last delivered so the next sync can ask
// the server for changes only.
type LockFile struct {
	Version int                   `json:"version"`
	Sources map[string]*LockEntry `json:"sources"`
}

// LockEntry is the state of one source. Path is relative to the docs
// directory: the page of a url source, the destination directory of a github
// source. Github entries key blob SHAs in Files by path below Path.
type LockEntry struct {
	Type     string            `json:"type"`
	URL      string            `json:"url,omitempty"`
	Path     string            `json:"path,omitempty"`
	ETag     string            `json:"etag,omitempty"`
	LastMod  string            `json:"last_modified,omitempty"`
	SHA256   string            `json:"sha256,omitempty"`
	Size     int64             `json:"size,omitempty"`
	Ref      string            `json:"ref,omitempty"`
	TreeSHA  string            `json:"tree_sha,omitempty"`
	Files    map[string]string `json:"files,omitempty"`
	SyncedAt time.Time         `json:"synced_at"`
}

// Clone returns a deep copy of the entry.
func (e *LockEntry) Clone() *LockEntry {
	if e == nil {
		return nil
	}

	cloned := *e
	if e.Files != nil {
		cloned.Files = maps.Clone(e.Files)
	}
	return &cloned
}

func Load(outputDir string) (*LockFile, error) {
	lockPath := filepath.Join(outputDir, FileName)
	data, err := os.ReadFile(lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return New(), nil
		}

		return nil, oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Wrapf(err, "reading lock file")
	}

	lock := &LockFile{}
	if unmarshalErr := json.Unmarshal(data, lock); unmarshalErr != nil {
		return nil, oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Hint("Delete the lock file and run 'apidox sync' to regenerate it").
			Wrapf(unmarshalErr, "parsing lock file")
	}

	if lock.Version == 0 {
		lock.Version = currentVersion
	}

	if lock.Sources == nil {
		lock.Sources = map[string]*LockEntry{}
	}

	return lock, nil
}

func New() *LockFile {
	return &LockFile{
		Version: currentVersion,
		Sources: map[string]*LockEntry{},
	}
}

func (l *LockFile) Save(outputDir string) error {
	if l == nil {
		return oops.
			Code("LOCK_ERROR").
			Hint("Initialize lock file state before saving").
			Errorf("cannot save nil lock file")
	}

	if l.Version == 0 {
		l.Version = currentVersion
	}

	if l.Sources == nil {
		l.Sources = map[string]*LockEntry{}
	}

	lockPath := filepath.Join(outputDir, FileName)
	if err := fsutil.WriteJSON(lockPath, l); err != nil {
		return oops.
			Code("LOCK_ERROR").
			With("path", lockPath).
			Wrapf(err, "saving lock file")
	}

	return nil
}

func (l *LockFile) GetEntry(name string) *LockEntry {
	if l == nil {
		return nil
	}

	return l.Sources[name]
}

func (l *LockFile) SetEntry(name string, entry *LockEntry) {
	if l == nil {
		return
	}

	if l.Sources == nil {
		l.Sources = map[string]*LockEntry{}
	}

	l.Sources[name] = entry
}

func (l *LockFile) RemoveEntry(name string) {
	if l == nil || l.Sources == nil {
		return
	}

	delete(l.Sources, name)
}

// Prune drops entries for sources not in keep and returns their names sorted.
func (l *LockFile) Prune(keep []string) []string {
	if l == nil || l.Sources == nil {
		return nil
	}

	var removed []string
	for name := range l.Sources {
		if !slices.Contains(keep, name) {
			removed = append(removed, name)
		}
	}
	slices.Sort(removed)

	for _, name := range removed {
		delete(l.Sources, name)
	}

	return removed
}
