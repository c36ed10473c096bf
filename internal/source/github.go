package source

import (
	"context"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/g5becks/apidox/internal/catalog"
	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/lockfile"
)

const blobParallel = 4

// githubSource mirrors reference pages from a repository into
// <docs_dir>/<out>. Path is either a single markdown file or a directory whose
// files are selected by the source patterns.
type githubSource struct {
	name string
	cfg  config.Source
	api  *githubAPI
	ref  string
}

// mirrorPlan is what a sync has to change locally. Keys are paths relative to
// the destination directory.
type mirrorPlan struct {
	fetch  map[string]string
	remove []string
}

func newGitHubSource(name string, cfg config.Source, token string) (Source, error) {
	api, err := newGitHubAPI(cfg.Repo, newGitHubClient(token))
	if err != nil {
		return nil, err
	}
	return &githubSource{name: name, cfg: cfg, api: api}, nil
}

func (s *githubSource) Close() error {
	return s.api.client.Close()
}

func (s *githubSource) Sync(
	ctx context.Context,
	docsDir string,
	prevLock *lockfile.LockEntry,
	opts SyncOptions,
) (*SyncResult, error) {
	ref, err := s.resolveRef(ctx)
	if err != nil {
		return nil, err
	}

	out := filepath.ToSlash(s.cfg.Out)
	destDir := filepath.Join(docsDir, filepath.FromSlash(out))

	remote, treeSHA, err := s.listRemote(ctx, ref)
	if err != nil {
		return nil, err
	}

	var previous map[string]string
	if prevLock != nil {
		previous = prevLock.Files
	}

	if !opts.Force && prevLock != nil && upToDate(destDir, prevLock, remote, treeSHA) {
		entry := prevLock.Clone()
		entry.Ref = ref
		entry.Path = out
		entry.SyncedAt = time.Now().UTC()
		return s.withWarnings(&SyncResult{Skipped: true, LockEntry: entry}), nil
	}

	plan := planMirror(destDir, remote, previous, opts.Force)
	if !opts.DryRun {
		if err := s.apply(ctx, destDir, plan); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(plan.fetch))
	for _, rel := range slices.Sorted(maps.Keys(plan.fetch)) {
		files = append(files, path.Join(out, rel))
	}

	return s.withWarnings(&SyncResult{
		Downloaded: len(plan.fetch),
		Deleted:    len(plan.remove),
		Files:      files,
		LockEntry: &lockfile.LockEntry{
			Type:     config.SourceTypeGitHub,
			Path:     out,
			Ref:      ref,
			TreeSHA:  treeSHA,
			Files:    remote,
			SyncedAt: time.Now().UTC(),
		},
	}), nil
}

func (s *githubSource) resolveRef(ctx context.Context) (string, error) {
	if s.ref == "" {
		s.ref = s.cfg.Ref
	}
	if s.ref == "" {
		branch, err := s.api.defaultBranch(ctx)
		if err != nil {
			return "", err
		}
		s.ref = branch
	}
	return s.ref, nil
}

// listRemote maps each selected file to its blob SHA. treeSHA is empty for a
// single-file source.
func (s *githubSource) listRemote(ctx context.Context, ref string) (map[string]string, string, error) {
	repoPath := normalizeRepoPath(s.cfg.Path)

	if isSingleFilePath(s.cfg.Path) {
		sha, err := s.api.fileSHA(ctx, ref, repoPath)
		if err != nil {
			return nil, "", err
		}
		return map[string]string{path.Base(repoPath): sha}, "", nil
	}

	tree, err := s.api.tree(ctx, ref)
	if err != nil {
		return nil, "", err
	}

	selected, err := s.selectFiles(repoPath, tree.Entries)
	if err != nil {
		return nil, "", err
	}
	return selected, tree.SHA, nil
}

func (s *githubSource) selectFiles(base string, entries []gitTreeEntry) (map[string]string, error) {
	scan := catalog.ScanOptions{Patterns: s.cfg.Patterns, Exclude: s.cfg.Exclude}
	if len(scan.Patterns) == 0 {
		scan.Patterns = config.DefaultPatterns()
	}
	for _, pattern := range slices.Concat(scan.Patterns, scan.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, oops.
				Code("INVALID_PATTERN").
				With("source", s.name).
				With("pattern", pattern).
				Errorf("invalid glob pattern %q", pattern)
		}
	}

	files := make(map[string]string)
	for _, entry := range entries {
		if entry.Type != "blob" || entry.SHA == "" {
			continue
		}
		rel, ok := relativePathWithinBase(entry.Path, base)
		if ok && catalog.Matches(rel, scan) {
			files[rel] = entry.SHA
		}
	}
	return files, nil
}

// upToDate reports whether the previous sync already matches the remote and
// every recorded file is still on disk.
func upToDate(destDir string, prev *lockfile.LockEntry, remote map[string]string, treeSHA string) bool {
	same := maps.Equal(prev.Files, remote)
	if treeSHA != "" && prev.TreeSHA == treeSHA {
		same = true
	}
	if !same {
		return false
	}

	for rel := range prev.Files {
		if !fileExists(filepath.Join(destDir, filepath.FromSlash(rel))) {
			return false
		}
	}
	return true
}

func planMirror(destDir string, remote, previous map[string]string, force bool) mirrorPlan {
	plan := mirrorPlan{fetch: make(map[string]string)}

	for rel, sha := range remote {
		stale := previous[rel] != sha ||
			!fileExists(filepath.Join(destDir, filepath.FromSlash(rel)))
		if force || stale {
			plan.fetch[rel] = sha
		}
	}

	for rel := range previous {
		if _, kept := remote[rel]; !kept {
			plan.remove = append(plan.remove, rel)
		}
	}
	slices.Sort(plan.remove)

	return plan
}

func (s *githubSource) apply(ctx context.Context, destDir string, plan mirrorPlan) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(blobParallel)

	for rel, sha := range plan.fetch {
		g.Go(func() error {
			content, err := s.api.blob(gctx, sha)
			if err != nil {
				return err
			}
			return writeFileAtomic(filepath.Join(destDir, filepath.FromSlash(rel)), content)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, rel := range plan.remove {
		localPath := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			return oops.
				Code("WRITE_FAILED").
				With("source", s.name).
				With("path", localPath).
				Wrapf(err, "removing page no longer in %s", s.cfg.Repo)
		}
		removeEmptyParents(filepath.Dir(localPath), destDir)
	}

	return nil
}

func (s *githubSource) withWarnings(result *SyncResult) *SyncResult {
	if s.api.lowQuota.Load() {
		result.Warnings = append(result.Warnings, "github API rate limit is nearly exhausted")
	}
	return result
}

// relativePathWithinBase strips base from a repository path. A path equal to
// base is reduced to its file name.
func relativePathWithinBase(remotePath, base string) (string, bool) {
	remote := normalizeRepoPath(remotePath)
	base = normalizeRepoPath(base)

	switch {
	case remote == "":
		return "", false
	case base == "":
		return remote, true
	case remote == base:
		return path.Base(remote), true
	}

	rel, found := strings.CutPrefix(remote, base+"/")
	return rel, found && rel != ""
}

// removeEmptyParents deletes empty directories from dir upward, stopping at
// root.
func removeEmptyParents(dir, root string) {
	root = filepath.Clean(root)
	for dir = filepath.Clean(dir); strings.HasPrefix(dir, root+string(filepath.Separator)); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
	}
}

func isSingleFilePath(repoPath string) bool {
	repoPath = strings.TrimSpace(repoPath)
	if strings.HasSuffix(repoPath, "/") {
		return false
	}
	ext := strings.ToLower(path.Ext(repoPath))
	return ext == ".md" || ext == ".markdown"
}

func normalizeRepoPath(repoPath string) string {
	cleaned := path.Clean("/" + strings.TrimSpace(repoPath))
	return strings.TrimPrefix(cleaned, "/")
}
