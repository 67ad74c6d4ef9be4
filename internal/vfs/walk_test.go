package vfs

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestLocation(t *testing.T) *Location {
	t.Helper()
	root := t.TempDir()
	loc, err := Open("notes", root)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := loc.Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	return loc
}

func TestListDirectory(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)

	mustWrite(t, filepath.Join(loc.Root, "b.md"), "b")
	mustWrite(t, filepath.Join(loc.Root, "a.md"), "a")
	if err := os.Mkdir(filepath.Join(loc.Root, "folder"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	entries, err := loc.ListDirectory(loc.Root)
	if err != nil {
		t.Fatalf("ListDirectory() error: %v", err)
	}

	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}

	// Folders sort before files; names are case-insensitive within a kind.
	want := []string{"folder", "a.md", "b.md"}
	if len(names) != len(want) {
		t.Fatalf("ListDirectory() names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListDirectory() names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestListDirectorySkipsSystemDir(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)

	entries, err := loc.ListDirectory(loc.Root)
	if err != nil {
		t.Fatalf("ListDirectory() error: %v", err)
	}
	for _, e := range entries {
		if e.Name == SystemDirName {
			t.Error("ListDirectory() should not surface the system directory")
		}
	}
}

func TestWalkPrunesIgnoredByDefault(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)

	mustWrite(t, filepath.Join(loc.Root, "a.md"), "a")
	if err := os.MkdirAll(filepath.Join(loc.Root, ".git", "objects"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	mustWrite(t, filepath.Join(loc.Root, ".git", "objects", "pack"), "x")

	var seen []string
	err := loc.Walk(loc.Root, WalkOptions{}, func(e Entry) error {
		seen = append(seen, e.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}

	for _, p := range seen {
		if filepath.Base(filepath.Dir(p)) == ".git" || filepath.Base(p) == ".git" {
			t.Errorf("Walk() should prune ignored .git contents, saw %s", p)
		}
	}
}

func TestWalkIncludeIgnored(t *testing.T) {
	t.Parallel()
	loc := newTestLocation(t)

	if err := os.Mkdir(filepath.Join(loc.Root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	found := false
	err := loc.Walk(loc.Root, WalkOptions{IncludeIgnored: true}, func(e Entry) error {
		if e.Name == ".git" {
			found = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	if !found {
		t.Error("Walk() with IncludeIgnored should still yield ignored entries")
	}
}

// TestWalkSkipsUnreadableSubdirectory asserts that a permission-denied
// subdirectory is soft-failed: Walk skips it and continues over its
// siblings instead of aborting the whole traversal.
func TestWalkSkipsUnreadableSubdirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced when running as root")
	}
	t.Parallel()
	loc := newTestLocation(t)

	locked := filepath.Join(loc.Root, "locked")
	if err := os.Mkdir(locked, 0o755); err != nil {
		t.Fatalf("mkdir locked: %v", err)
	}
	mustWrite(t, filepath.Join(locked, "secret.md"), "secret")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("chmod locked: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	mustWrite(t, filepath.Join(loc.Root, "visible.md"), "visible")

	var seen []string
	err := loc.Walk(loc.Root, WalkOptions{}, func(e Entry) error {
		seen = append(seen, e.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() should soft-fail an unreadable subdirectory, got error: %v", err)
	}

	foundVisible := false
	for _, p := range seen {
		if filepath.Base(p) == "secret.md" {
			t.Error("Walk() should not descend into the unreadable directory")
		}
		if filepath.Base(p) == "visible.md" {
			foundVisible = true
		}
	}
	if !foundVisible {
		t.Error("Walk() should still visit siblings of the unreadable directory")
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
