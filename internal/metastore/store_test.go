package metastore

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/fracta-app/fracta/internal/ferr"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGetFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	entry := FileEntry{Path: "a.md", Mtime: time.Now().UTC().Truncate(time.Second), Size: 42}
	if err := s.UpsertFile(entry); err != nil {
		t.Fatalf("UpsertFile() error: %v", err)
	}

	got, found, err := s.GetFile("a.md")
	if err != nil || !found {
		t.Fatalf("GetFile() = (_, %v, %v), want found", found, err)
	}
	if got.Size != 42 || !got.Mtime.Equal(entry.Mtime) {
		t.Errorf("GetFile() = %+v, want Size=42 Mtime=%v", got, entry.Mtime)
	}

	if _, found, err := s.GetFile("missing.md"); err != nil || found {
		t.Errorf("GetFile(missing) = (_, %v, %v), want not found", found, err)
	}
}

// TestGetFileRejectsUnparseableMtime asserts that a row whose stored mtime
// cannot be rehydrated surfaces KindCorruptedData rather than being
// silently replaced with the current time.
func TestGetFileRejectsUnparseableMtime(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if _, err := s.DB().Exec(
		`INSERT INTO files (path, mtime, size, indexed) VALUES (?, ?, ?, ?)`,
		"a.md", "not-a-timestamp", 0, false,
	); err != nil {
		t.Fatalf("seed insert error: %v", err)
	}

	_, _, err := s.GetFile("a.md")
	var ferrErr *ferr.Error
	if !errors.As(err, &ferrErr) || ferrErr.Kind != ferr.KindCorruptedData {
		t.Errorf("GetFile() with an unparseable mtime error = %v, want KindCorruptedData", err)
	}
}

func TestUpsertFileUpdatesInPlace(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	base := time.Now().UTC().Truncate(time.Second)
	if err := s.UpsertFile(FileEntry{Path: "a.md", Mtime: base, Size: 1}); err != nil {
		t.Fatalf("UpsertFile() error: %v", err)
	}
	if err := s.UpsertFile(FileEntry{Path: "a.md", Mtime: base.Add(time.Hour), Size: 2}); err != nil {
		t.Fatalf("second UpsertFile() error: %v", err)
	}

	got, found, err := s.GetFile("a.md")
	if err != nil || !found {
		t.Fatalf("GetFile() error: %v, found=%v", err, found)
	}
	if got.Size != 2 {
		t.Errorf("GetFile().Size = %d, want 2 (updated, not duplicated)", got.Size)
	}
	n, err := s.FileCount()
	if err != nil || n != 1 {
		t.Errorf("FileCount() = (%d, %v), want 1", n, err)
	}
}

func TestUpsertAndGetMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.UpsertFile(FileEntry{Path: "a.md", Mtime: time.Now().UTC()}); err != nil {
		t.Fatalf("UpsertFile() error: %v", err)
	}
	meta := FileMetadata{Title: "Rust Guide", Tags: []string{"rust", "programming"}, Area: "library", Date: "2026-01-01"}
	if err := s.UpsertMetadata("a.md", meta); err != nil {
		t.Fatalf("UpsertMetadata() error: %v", err)
	}

	got, found, err := s.GetMetadata("a.md")
	if err != nil || !found {
		t.Fatalf("GetMetadata() error: %v, found=%v", err, found)
	}
	if got.Title != meta.Title || got.Area != meta.Area || len(got.Tags) != 2 {
		t.Errorf("GetMetadata() = %+v, want %+v", got, meta)
	}
}

func TestMetadataCascadesOnFileDelete(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.UpsertFile(FileEntry{Path: "a.md", Mtime: time.Now().UTC()}); err != nil {
		t.Fatalf("UpsertFile() error: %v", err)
	}
	if err := s.UpsertMetadata("a.md", FileMetadata{Title: "x"}); err != nil {
		t.Fatalf("UpsertMetadata() error: %v", err)
	}

	if _, err := s.RemoveFile("a.md"); err != nil {
		t.Fatalf("RemoveFile() error: %v", err)
	}

	if _, found, err := s.GetMetadata("a.md"); err != nil || found {
		t.Errorf("GetMetadata() after cascade = found=%v, err=%v, want not found", found, err)
	}
}

func TestListDirectoryDirectChildrenOnly(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, p := range []string{"a.md", "sub/b.md", "sub/deep/c.md", "other/d.md"} {
		if err := s.UpsertFile(FileEntry{Path: p, Mtime: time.Now().UTC()}); err != nil {
			t.Fatalf("UpsertFile(%s) error: %v", p, err)
		}
	}

	rootEntries, err := s.ListDirectory("")
	if err != nil {
		t.Fatalf("ListDirectory(\"\") error: %v", err)
	}
	if len(rootEntries) != 1 || rootEntries[0].Path != "a.md" {
		t.Errorf("ListDirectory(\"\") = %+v, want only a.md", rootEntries)
	}

	subEntries, err := s.ListDirectory("sub")
	if err != nil {
		t.Fatalf("ListDirectory(sub) error: %v", err)
	}
	if len(subEntries) != 1 || subEntries[0].Path != "sub/b.md" {
		t.Errorf("ListDirectory(sub) = %+v, want only sub/b.md (not sub/deep/c.md)", subEntries)
	}
}

// TestRemoveStaleFiles asserts P5: stale pruning removes exactly the rows
// absent from currentPaths, and reports that count.
func TestRemoveStaleFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	for _, p := range []string{"a.md", "b.md", "c.md"} {
		if err := s.UpsertFile(FileEntry{Path: p, Mtime: time.Now().UTC()}); err != nil {
			t.Fatalf("UpsertFile(%s) error: %v", p, err)
		}
	}

	removed, err := s.RemoveStaleFiles([]string{"a.md", "c.md"})
	if err != nil {
		t.Fatalf("RemoveStaleFiles() error: %v", err)
	}
	if removed != 1 {
		t.Errorf("RemoveStaleFiles() removed = %d, want 1", removed)
	}

	remaining, err := s.ListAllPaths()
	if err != nil {
		t.Fatalf("ListAllPaths() error: %v", err)
	}
	sort.Strings(remaining)
	if len(remaining) != 2 || remaining[0] != "a.md" || remaining[1] != "c.md" {
		t.Errorf("ListAllPaths() = %v, want [a.md c.md]", remaining)
	}
}

func TestRemoveStaleFilesEmptyCurrentRemovesAll(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	if err := s.UpsertFile(FileEntry{Path: "a.md", Mtime: time.Now().UTC()}); err != nil {
		t.Fatalf("UpsertFile() error: %v", err)
	}

	removed, err := s.RemoveStaleFiles(nil)
	if err != nil {
		t.Fatalf("RemoveStaleFiles(nil) error: %v", err)
	}
	if removed != 1 {
		t.Errorf("RemoveStaleFiles(nil) removed = %d, want 1", removed)
	}
	n, _ := s.FileCount()
	if n != 0 {
		t.Errorf("FileCount() after RemoveStaleFiles(nil) = %d, want 0", n)
	}
}

func TestListByMetadata(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	seed := []struct {
		path string
		meta FileMetadata
	}{
		{"rust.md", FileMetadata{Area: "library", Tags: []string{"rust", "programming"}, Date: "2026-01-02"}},
		{"python.md", FileMetadata{Area: "scripting", Tags: []string{"python", "programming"}, Date: "2026-01-01"}},
	}
	for _, s2 := range seed {
		if err := s.UpsertFile(FileEntry{Path: s2.path, Mtime: time.Now().UTC()}); err != nil {
			t.Fatalf("UpsertFile(%s) error: %v", s2.path, err)
		}
		if err := s.UpsertMetadata(s2.path, s2.meta); err != nil {
			t.Fatalf("UpsertMetadata(%s) error: %v", s2.path, err)
		}
	}

	byArea, err := s.ListByMetadata(MetadataQuery{Area: "library"})
	if err != nil {
		t.Fatalf("ListByMetadata(area) error: %v", err)
	}
	if len(byArea) != 1 || byArea[0] != "rust.md" {
		t.Errorf("ListByMetadata(area=library) = %v, want [rust.md]", byArea)
	}

	byTag, err := s.ListByMetadata(MetadataQuery{Tag: "programming"})
	if err != nil {
		t.Fatalf("ListByMetadata(tag) error: %v", err)
	}
	if len(byTag) != 2 {
		t.Errorf("ListByMetadata(tag=programming) = %v, want both files", byTag)
	}
}

// TestListByMetadataInjectionSafety asserts P7: known SQL injection payloads
// never error and never mutate file_count()/indexed_count().
func TestListByMetadataInjectionSafety(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	if err := s.UpsertFile(FileEntry{Path: "a.md", Mtime: time.Now().UTC(), Indexed: true}); err != nil {
		t.Fatalf("UpsertFile() error: %v", err)
	}
	if err := s.UpsertMetadata("a.md", FileMetadata{Area: "library"}); err != nil {
		t.Fatalf("UpsertMetadata() error: %v", err)
	}

	wantFiles, err := s.FileCount()
	if err != nil {
		t.Fatalf("FileCount() error: %v", err)
	}
	wantIndexed, err := s.IndexedCount()
	if err != nil {
		t.Fatalf("IndexedCount() error: %v", err)
	}

	payloads := []string{
		"'; DROP TABLE files; --",
		"' OR '1'='1",
		"x' UNION SELECT path FROM files --",
		"library'; DELETE FROM metadata; --",
		"\"; DROP TABLE metadata; --",
		"' OR 1=1 --",
		"library' AND '1'='1",
	}

	for _, p := range payloads {
		p := p
		t.Run(p, func(t *testing.T) {
			if _, err := s.ListByMetadata(MetadataQuery{Area: p}); err != nil {
				t.Errorf("ListByMetadata(area=%q) error: %v", p, err)
			}
			if _, err := s.ListByMetadata(MetadataQuery{Tag: p}); err != nil {
				t.Errorf("ListByMetadata(tag=%q) error: %v", p, err)
			}
		})
	}

	gotFiles, err := s.FileCount()
	if err != nil || gotFiles != wantFiles {
		t.Errorf("FileCount() after injection payloads = (%d, %v), want %d unchanged", gotFiles, err, wantFiles)
	}
	gotIndexed, err := s.IndexedCount()
	if err != nil || gotIndexed != wantIndexed {
		t.Errorf("IndexedCount() after injection payloads = (%d, %v), want %d unchanged", gotIndexed, err, wantIndexed)
	}
}
