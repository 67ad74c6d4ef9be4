package vfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fracta-app/fracta/internal/ferr"
)

// atomicWrite writes content to path via a temp file in the same directory,
// fsyncs it, then renames it onto path. On any failure the target is left
// untouched.
func atomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return ferr.Wrap(ferr.KindAtomicWriteFailed, path, fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return ferr.Wrap(ferr.KindAtomicWriteFailed, path, fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return ferr.Wrap(ferr.KindAtomicWriteFailed, path, fmt.Errorf("fsync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return ferr.Wrap(ferr.KindAtomicWriteFailed, path, fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return ferr.Wrap(ferr.KindAtomicWriteFailed, path, fmt.Errorf("rename temp file: %w", err))
	}
	return nil
}

// ensureDir recursively creates dir and all missing parents.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ferr.Wrap(ferr.KindIO, dir, fmt.Errorf("ensure dir: %w", err))
	}
	return nil
}
