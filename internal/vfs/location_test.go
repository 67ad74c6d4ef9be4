package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fracta-app/fracta/internal/ferr"
)

func TestOpenAndInit(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	loc, err := Open("notes", root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := loc.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if !loc.Managed {
		t.Error("Init() should mark the Location managed")
	}

	for _, sub := range initDirs {
		info, err := os.Stat(filepath.Join(root, SystemDirName, sub))
		if err != nil || !info.IsDir() {
			t.Errorf("Init() did not create %s", sub)
		}
	}

	if _, err := os.Stat(filepath.Join(root, SystemDirName, "config", "ignore")); err != nil {
		t.Error("Init() did not write default ignore file")
	}
}

func TestInitIdempotent(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	loc, err := Open("notes", root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := loc.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	ignorePath := filepath.Join(root, SystemDirName, "config", "ignore")
	custom := []byte("custom-rule/\n")
	if err := os.WriteFile(ignorePath, custom, 0o644); err != nil {
		t.Fatalf("overwrite ignore file: %v", err)
	}

	if err := loc.Init(); err != nil {
		t.Fatalf("second Init() error: %v", err)
	}

	data, err := os.ReadFile(ignorePath)
	if err != nil {
		t.Fatalf("read ignore file: %v", err)
	}
	if string(data) != string(custom) {
		t.Error("Init() overwrote an existing ignore file")
	}
}

func TestOpenPersistsIdentity(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	first, err := Open("notes", root)
	if err != nil {
		t.Fatalf("first Open() error: %v", err)
	}

	second, err := Open("notes", root)
	if err != nil {
		t.Fatalf("second Open() error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Open() identity not stable across calls: %s != %s", first.ID, second.ID)
	}
}

func TestOpenRejectsMissingRoot(t *testing.T) {
	t.Parallel()
	_, err := Open("notes", filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("Open() on a missing directory should error")
	}
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindNotFound {
		t.Errorf("Open() error = %v, want KindNotFound", err)
	}
}

// TestContainment asserts P2: Location.Contains(p) implies p's canonical
// resolution is a prefix of the canonical root, and both ".." traversal and
// symlink escapes are rejected.
func TestContainment(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	loc := New("notes", root)

	if !loc.Contains(filepath.Join(root, "a.md")) {
		t.Error("Contains() should accept a plain child path")
	}
	if !loc.Contains(filepath.Join(root, "sub", "deep", "b.md")) {
		t.Error("Contains() should accept a nested non-existent path")
	}

	outside := t.TempDir()
	if loc.Contains(outside) {
		t.Error("Contains() should reject a sibling directory")
	}
	if loc.Contains(filepath.Join(root, "..", filepath.Base(outside))) {
		t.Error("Contains() should reject '..' traversal")
	}

	link := filepath.Join(root, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if loc.Contains(link) {
		t.Error("Contains() should reject a symlink pointing outside the root")
	}
}

func TestScopeOf(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	loc, err := Open("notes", root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := loc.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	plain := filepath.Join(t.TempDir(), "elsewhere.md")
	if scope, ok := loc.ScopeOf(plain); ok || scope != ScopePlain {
		t.Errorf("ScopeOf(outside) = (%v, %v), want (Plain, false)", scope, ok)
	}

	managed := filepath.Join(root, "a.md")
	if err := os.WriteFile(managed, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write a.md: %v", err)
	}
	if scope, ok := loc.ScopeOf(managed); !ok || scope != ScopeManaged {
		t.Errorf("ScopeOf(managed file) = (%v, %v), want (Managed, true)", scope, ok)
	}

	system := filepath.Join(root, SystemDirName, "config", "ignore")
	if scope, ok := loc.ScopeOf(system); !ok || scope != ScopeManaged {
		t.Errorf("ScopeOf(system dir) = (%v, %v), want (Managed, true)", scope, ok)
	}

	ignoreFile := filepath.Join(root, "config", "ignore")
	if err := os.MkdirAll(filepath.Dir(ignoreFile), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	gitDir := filepath.Join(root, ".git")
	if err := os.Mkdir(gitDir, 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	if scope, ok := loc.ScopeOf(gitDir); !ok || scope != ScopeIgnored {
		t.Errorf("ScopeOf(.git) = (%v, %v), want (Ignored, true), per the default ignore rules", scope, ok)
	}
}

func TestCheckWritableRejectsSystemDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	loc, err := Open("notes", root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := loc.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	evil := filepath.Join(root, SystemDirName, "evil.txt")
	err = loc.CreateFile(evil, []byte("x"))
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindPermissionDenied {
		t.Errorf("CreateFile(system dir) error = %v, want KindPermissionDenied", err)
	}

	outside := filepath.Join(t.TempDir(), "outside.txt")
	err = loc.CreateFile(outside, []byte("x"))
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindOutsideLocation {
		t.Errorf("CreateFile(outside root) error = %v, want KindOutsideLocation", err)
	}
}
