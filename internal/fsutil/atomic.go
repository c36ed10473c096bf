// Package fsutil holds the file writing helpers shared by the manifest, the
// lock file and the sources.
package fsutil

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const dirPerm = 0o750

// WriteFileAtomic writes data to a temporary file in the destination directory
// and renames it over path. Readers see either the old or the new content.
// Missing parent directories are created.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return oops.
			With("path", dir).
			Wrapf(err, "creating directory")
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return oops.
			With("path", dir).
			Wrapf(err, "creating temporary file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return oops.
			With("path", tempPath).
			Wrapf(err, "writing temporary file")
	}

	if err := tempFile.Close(); err != nil {
		return oops.
			With("path", tempPath).
			Wrapf(err, "closing temporary file")
	}

	if err := os.Rename(tempPath, path); err != nil {
		return oops.
			With("from", tempPath).
			With("to", path).
			Wrapf(err, "replacing %s", filepath.Base(path))
	}

	return nil
}

// WriteJSON encodes v indented with a trailing newline and writes it
// atomically.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return oops.
			With("path", path).
			Wrapf(err, "encoding %s", filepath.Base(path))
	}

	return WriteFileAtomic(path, append(data, '\n'))
}
