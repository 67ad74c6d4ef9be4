package vfs

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/fracta-app/fracta/internal/ferr"
)

// CreateFile creates a new file at path with content, failing if path
// already exists or lies outside the Location / inside its system
// directory.
func (l *Location) CreateFile(path string, content []byte) error {
	if err := l.checkWritable(path); err != nil {
		return err
	}
	if _, err := os.Lstat(path); err == nil {
		return ferr.New(ferr.KindAlreadyExists, path)
	}
	parent := filepath.Dir(path)
	if info, err := os.Stat(parent); err != nil || !info.IsDir() {
		return ferr.New(ferr.KindNotFound, parent)
	}
	return atomicWrite(path, content)
}

// CreateFolder creates path, failing if path already exists as a file or if
// its parent directory does not already exist.
func (l *Location) CreateFolder(path string) error {
	if err := l.checkWritable(path); err != nil {
		return err
	}
	if info, err := os.Lstat(path); err == nil {
		if !info.IsDir() {
			return ferr.New(ferr.KindAlreadyExists, path)
		}
		return nil
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		if os.IsNotExist(err) {
			return ferr.New(ferr.KindNotFound, filepath.Dir(path))
		}
		return ferr.Wrap(ferr.KindIO, path, err)
	}
	return nil
}

// WriteFile overwrites path's content atomically, failing if path does not
// already exist as a file. Use CreateFile to create new files.
func (l *Location) WriteFile(path string, content []byte) error {
	if err := l.checkWritable(path); err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return ferr.New(ferr.KindNotFound, path)
	}
	if info.IsDir() {
		return ferr.New(ferr.KindInvalidState, path)
	}
	return atomicWrite(path, content)
}

// ReadFile returns the raw content of path.
func (l *Location) ReadFile(path string) ([]byte, error) {
	if !l.Contains(path) {
		return nil, ferr.New(ferr.KindOutsideLocation, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferr.New(ferr.KindNotFound, path)
		}
		return nil, ferr.Wrap(ferr.KindIO, path, err)
	}
	return data, nil
}

// ReadFileString returns the content of path decoded as UTF-8 text. Content
// that is not valid UTF-8 is rejected with KindIO.
func (l *Location) ReadFileString(path string) (string, error) {
	data, err := l.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", &ferr.Error{Kind: ferr.KindIO, Path: path, Reason: "content is not valid UTF-8"}
	}
	return string(data), nil
}

// Rename renames oldPath to a sibling with newName, preserving its parent
// directory. It fails if the destination already exists.
func (l *Location) Rename(oldPath, newName string) (string, error) {
	newPath := filepath.Join(filepath.Dir(oldPath), newName)
	return newPath, l.MoveEntry(oldPath, newPath)
}

// MoveEntry moves src to dst, both of which must remain inside the
// Location outside its system directory. Fails if dst already exists.
func (l *Location) MoveEntry(src, dst string) error {
	if err := l.checkWritable(src); err != nil {
		return err
	}
	if err := l.checkWritable(dst); err != nil {
		return err
	}
	if _, err := os.Lstat(src); err != nil {
		return ferr.New(ferr.KindNotFound, src)
	}
	if _, err := os.Lstat(dst); err == nil {
		return ferr.New(ferr.KindAlreadyExists, dst)
	}
	if err := ensureDir(filepath.Dir(dst)); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		return ferr.Wrap(ferr.KindIO, src, err)
	}
	return nil
}

// DeleteFile removes path, failing if it is a directory.
func (l *Location) DeleteFile(path string) error {
	if err := l.checkWritable(path); err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return ferr.New(ferr.KindNotFound, path)
	}
	if info.IsDir() {
		return ferr.New(ferr.KindInvalidState, path)
	}
	if err := os.Remove(path); err != nil {
		return ferr.Wrap(ferr.KindIO, path, err)
	}
	return nil
}

// DeleteFolder removes path and everything beneath it.
func (l *Location) DeleteFolder(path string) error {
	if err := l.checkWritable(path); err != nil {
		return err
	}
	info, err := os.Lstat(path)
	if err != nil {
		return ferr.New(ferr.KindNotFound, path)
	}
	if !info.IsDir() {
		return ferr.New(ferr.KindInvalidState, path)
	}
	if err := os.RemoveAll(path); err != nil {
		return ferr.Wrap(ferr.KindIO, path, err)
	}
	return nil
}
