package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/g5becks/apidox/internal/config"
	"github.com/g5becks/apidox/internal/lockfile"
)

type urlSource struct {
	name     string
	source   config.Source
	filename string
	client   *resty.Client
}

func NewURL(name string, cfg config.Source) (Source, error) {
	filename := cfg.Path
	if filename == "" {
		filename = filenameFromURL(name, cfg.URL)
	}

	client := resty.New()
	client.SetHeader("User-Agent", userAgent)

	return &urlSource{
		name:     name,
		source:   cfg,
		filename: filename,
		client:   client,
	}, nil
}

func (s *urlSource) Close() error {
	return s.client.Close()
}

func (s *urlSource) Sync(
	ctx context.Context,
	docsDir string,
	prevLock *lockfile.LockEntry,
	opts SyncOptions,
) (*SyncResult, error) {
	filePath := filepath.Join(docsDir, filepath.FromSlash(s.filename))

	// Only ask for a conditional response when the page is still on disk.
	conditional := !opts.Force && prevLock != nil &&
		prevLock.URL == s.source.URL && prevLock.Path == s.filename && fileExists(filePath)

	request := s.client.R().SetContext(ctx)
	if conditional {
		if prevLock.ETag != "" {
			request.SetHeader("If-None-Match", prevLock.ETag)
		}
		if prevLock.LastMod != "" {
			request.SetHeader("If-Modified-Since", prevLock.LastMod)
		}
	}

	response, err := request.Get(s.source.URL)
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("source", s.name).
			With("url", s.source.URL).
			Wrapf(err, "downloading url source")
	}

	if conditional && response.StatusCode() == http.StatusNotModified {
		lock := prevLock.Clone()
		lock.SyncedAt = time.Now().UTC()

		return &SyncResult{
			Skipped:   true,
			LockEntry: lock,
		}, nil
	}

	if !response.IsSuccess() {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("source", s.name).
			With("url", s.source.URL).
			With("status", response.StatusCode()).
			Errorf("url source returned non-success status %d", response.StatusCode())
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, oops.
			Code("DOWNLOAD_FAILED").
			With("source", s.name).
			With("url", s.source.URL).
			Wrapf(err, "reading response body")
	}

	digest := sha256.Sum256(content)

	lock := &lockfile.LockEntry{
		Type:     config.SourceTypeURL,
		URL:      s.source.URL,
		Path:     s.filename,
		ETag:     response.Header().Get("ETag"),
		LastMod:  response.Header().Get("Last-Modified"),
		SHA256:   hex.EncodeToString(digest[:]),
		Size:     int64(len(content)),
		SyncedAt: time.Now().UTC(),
	}

	if !opts.Force && prevLock != nil && prevLock.SHA256 == lock.SHA256 &&
		prevLock.Path == s.filename && fileExists(filePath) {
		return &SyncResult{
			Skipped:   true,
			LockEntry: lock,
		}, nil
	}

	result := &SyncResult{
		Downloaded: 1,
		Files:      []string{s.filename},
		LockEntry:  lock,
	}

	stale := ""
	if prevLock != nil && prevLock.Path != "" && prevLock.Path != s.filename {
		stale = filepath.Join(docsDir, filepath.FromSlash(prevLock.Path))
		result.Deleted = 1
	}

	if opts.DryRun {
		return result, nil
	}

	if err := writeFileAtomic(filePath, content); err != nil {
		return nil, err
	}

	if stale != "" {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return nil, oops.
				Code("WRITE_FAILED").
				With("source", s.name).
				With("path", stale).
				Wrapf(err, "deleting stale page")
		}
		removeEmptyParents(filepath.Dir(stale), docsDir)
	}

	return result, nil
}

// filenameFromURL derives a markdown file name from the last URL path
// segment, falling back to the source name.
func filenameFromURL(sourceName string, rawURL string) string {
	baseName := sourceName
	parsed, err := neturl.Parse(rawURL)
	if err == nil {
		if candidate := path.Base(parsed.Path); candidate != "" && candidate != "." && candidate != "/" {
			baseName = candidate
		}
	}

	switch strings.ToLower(path.Ext(baseName)) {
	case ".md", ".markdown":
		return baseName
	default:
		return baseName + ".md"
	}
}
