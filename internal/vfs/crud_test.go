package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fracta-app/fracta/internal/ferr"
)

// TestCreateFileThenReadIsAtomic asserts P1: a successful write is
// immediately visible on read.
func TestCreateFileThenReadIsAtomic(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	path := filepath.Join(loc.Root, "a.md")

	if err := loc.CreateFile(path, []byte("hello world")); err != nil {
		t.Fatalf("CreateFile() error: %v", err)
	}

	got, err := loc.ReadFileString(path)
	if err != nil {
		t.Fatalf("ReadFileString() error: %v", err)
	}
	if got != "hello world" {
		t.Errorf("ReadFileString() = %q, want %q", got, "hello world")
	}
}

func TestCreateFileRejectsExisting(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	path := filepath.Join(loc.Root, "a.md")
	mustWrite(t, path, "first")

	err := loc.CreateFile(path, []byte("second"))
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindAlreadyExists {
		t.Errorf("CreateFile(existing) error = %v, want KindAlreadyExists", err)
	}
}

func TestCreateFileRejectsMissingParent(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	path := filepath.Join(loc.Root, "no-such-dir", "a.md")

	err := loc.CreateFile(path, []byte("x"))
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindNotFound {
		t.Errorf("CreateFile(missing parent) error = %v, want KindNotFound", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("CreateFile(missing parent) should not fabricate the parent directory")
	}
}

func TestCreateFolderRejectsMissingParent(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	path := filepath.Join(loc.Root, "no-such-dir", "sub")

	err := loc.CreateFolder(path)
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindNotFound {
		t.Errorf("CreateFolder(missing parent) error = %v, want KindNotFound", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("CreateFolder(missing parent) should not fabricate the parent directory")
	}
}

func TestCreateFolderIdempotent(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	dir := filepath.Join(loc.Root, "folder")

	if err := loc.CreateFolder(dir); err != nil {
		t.Fatalf("first CreateFolder() error: %v", err)
	}
	if err := loc.CreateFolder(dir); err != nil {
		t.Errorf("second CreateFolder() on an existing directory should succeed, got: %v", err)
	}
}

func TestWriteFileRequiresExisting(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	path := filepath.Join(loc.Root, "missing.md")

	err := loc.WriteFile(path, []byte("x"))
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindNotFound {
		t.Errorf("WriteFile(missing) error = %v, want KindNotFound", err)
	}
}

func TestWriteFileLeavesTargetUnchangedOnFailure(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	dir := filepath.Join(loc.Root, "folder")
	if err := loc.CreateFolder(dir); err != nil {
		t.Fatalf("CreateFolder() error: %v", err)
	}

	// WriteFile on a directory should fail and the directory should remain
	// a directory (atomicWrite's rename never executes).
	err := loc.WriteFile(dir, []byte("x"))
	if err == nil {
		t.Fatal("WriteFile() on a directory should fail")
	}
	info, statErr := os.Stat(dir)
	if statErr != nil || !info.IsDir() {
		t.Error("failed WriteFile() should leave the target unchanged")
	}
}

func TestMoveEntryRejectsExistingDestination(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	src := filepath.Join(loc.Root, "src.md")
	dst := filepath.Join(loc.Root, "dst.md")
	mustWrite(t, src, "src")
	mustWrite(t, dst, "dst")

	err := loc.MoveEntry(src, dst)
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindAlreadyExists {
		t.Errorf("MoveEntry(existing dst) error = %v, want KindAlreadyExists", err)
	}
}

func TestRename(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	src := filepath.Join(loc.Root, "old.md")
	mustWrite(t, src, "content")

	newPath, err := loc.Rename(src, "new.md")
	if err != nil {
		t.Fatalf("Rename() error: %v", err)
	}
	if filepath.Base(newPath) != "new.md" {
		t.Errorf("Rename() newPath = %q, want basename new.md", newPath)
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Errorf("Rename() destination missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("Rename() should remove the source path")
	}
}

func TestDeleteFileRejectsDirectory(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	dir := filepath.Join(loc.Root, "folder")
	if err := loc.CreateFolder(dir); err != nil {
		t.Fatalf("CreateFolder() error: %v", err)
	}

	err := loc.DeleteFile(dir)
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindInvalidState {
		t.Errorf("DeleteFile(directory) error = %v, want KindInvalidState", err)
	}
}

func TestDeleteFolderRemovesContents(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)
	dir := filepath.Join(loc.Root, "folder")
	if err := loc.CreateFolder(dir); err != nil {
		t.Fatalf("CreateFolder() error: %v", err)
	}
	mustWrite(t, filepath.Join(dir, "a.md"), "a")

	if err := loc.DeleteFolder(dir); err != nil {
		t.Fatalf("DeleteFolder() error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("DeleteFolder() should remove the directory and its contents")
	}
}
