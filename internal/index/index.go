// Package index is fracta's unified cache orchestrator: it scans a
// vfs.Location, extracts metadata and plain text from every Markdown file,
// and keeps a metastore.Store and search.Index in sync with the filesystem.
// Both layers are cache — deleting them and rebuilding always recovers the
// same state, since the filesystem remains the sole source of truth.
package index

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fracta-app/fracta/internal/ferr"
	"github.com/fracta-app/fracta/internal/metastore"
	"github.com/fracta-app/fracta/internal/note"
	"github.com/fracta-app/fracta/internal/search"
	"github.com/fracta-app/fracta/internal/vfs"
)

// mtimeTolerance is the slack allowed when comparing a file's on-disk mtime
// against its cached value before treating the file as changed. Filesystems
// commonly truncate mtime precision to the second.
const mtimeTolerance = 1 * time.Second

// Index combines a metastore.Store and a search.Index behind one build/query
// surface.
type Index struct {
	Metadata    *metastore.Store
	SearchIndex *search.Index
}

// BuildStats reports what a BuildFull or UpdateIncremental pass did.
type BuildStats struct {
	FilesScanned    int
	MarkdownIndexed int
	MetadataUpdated int
	StaleRemoved    int
	Duration        time.Duration
}

// Open opens or creates an index rooted at cacheDir, with index.sqlite for
// metadata and search/ for the full-text index.
func Open(cacheDir string) (*Index, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, ferr.Wrap(ferr.KindIO, cacheDir, err)
	}

	metaStore, err := metastore.Open(filepath.Join(cacheDir, "index.sqlite"))
	if err != nil {
		return nil, err
	}

	searchIdx, err := search.Open(filepath.Join(cacheDir, "search"))
	if err != nil {
		metaStore.Close()
		return nil, err
	}

	return &Index{Metadata: metaStore, SearchIndex: searchIdx}, nil
}

// OpenInMemory opens a transient index for tests.
func OpenInMemory() (*Index, error) {
	metaStore, err := metastore.OpenInMemory()
	if err != nil {
		return nil, err
	}
	searchIdx, err := search.OpenInMemory()
	if err != nil {
		metaStore.Close()
		return nil, err
	}
	return &Index{Metadata: metaStore, SearchIndex: searchIdx}, nil
}

// Close releases both underlying stores.
func (ix *Index) Close() error {
	searchErr := ix.SearchIndex.Close()
	metaErr := ix.Metadata.Close()
	if searchErr != nil {
		return searchErr
	}
	return metaErr
}

// BuildFull scans every managed file in loc and (re)indexes it from
// scratch, then prunes any cached path no longer present on disk.
func (ix *Index) BuildFull(loc *vfs.Location) (BuildStats, error) {
	return ix.build(loc, nil)
}

// UpdateIncremental re-indexes only files whose on-disk mtime has diverged
// from the cached value by more than mtimeTolerance, or that are entirely
// new, then prunes stale cached paths. build's needsUpdate argument is nil
// for a full rebuild and ix.needsUpdate for an incremental one.
func (ix *Index) UpdateIncremental(loc *vfs.Location) (BuildStats, error) {
	return ix.build(loc, ix.needsUpdate)
}

func (ix *Index) build(loc *vfs.Location, needsUpdate func(relPath string, modified *time.Time) (bool, error)) (BuildStats, error) {
	start := time.Now()
	var stats BuildStats

	var managedFiles []vfs.Entry
	walkErr := loc.Walk(loc.Root, vfs.WalkOptions{}, func(entry vfs.Entry) error {
		if entry.Kind == vfs.KindFile && entry.Scope == vfs.ScopeManaged {
			managedFiles = append(managedFiles, entry)
		}
		return nil
	})
	if walkErr != nil {
		return stats, walkErr
	}
	stats.FilesScanned = len(managedFiles)

	currentPaths := make([]string, 0, len(managedFiles))
	for _, entry := range managedFiles {
		if rel, ok := relativePath(loc.Root, entry.Path); ok {
			currentPaths = append(currentPaths, rel)
		}
	}

	ix.SearchIndex.BeginWrite()

	for _, entry := range managedFiles {
		rel, ok := relativePath(loc.Root, entry.Path)
		if !ok {
			continue
		}

		if needsUpdate != nil {
			changed, err := needsUpdate(rel, entry.Modified)
			if err != nil {
				ix.SearchIndex.Rollback()
				return stats, err
			}
			if !changed {
				continue
			}
		}

		if err := ix.indexFile(loc, entry, rel, &stats); err != nil {
			ix.SearchIndex.Rollback()
			return stats, err
		}
	}

	// Drop search documents of indexed paths that are no longer on disk, so
	// the search layer is pruned along with the metadata rows below.
	indexedPaths, err := ix.Metadata.ListIndexedPaths()
	if err != nil {
		ix.SearchIndex.Rollback()
		return stats, err
	}
	alive := make(map[string]bool, len(currentPaths))
	for _, p := range currentPaths {
		alive[p] = true
	}
	for _, p := range indexedPaths {
		if !alive[p] {
			_ = ix.SearchIndex.RemoveDocument(p) // batch is open, so this cannot fail
		}
	}

	staleRemoved, err := ix.Metadata.RemoveStaleFiles(currentPaths)
	if err != nil {
		ix.SearchIndex.Rollback()
		return stats, err
	}
	stats.StaleRemoved = staleRemoved

	if err := ix.SearchIndex.Commit(); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// needsUpdate implements UpdateIncremental's staleness check: a file needs
// re-indexing if it has no cached entry yet, or its on-disk mtime diverges
// from the cached mtime by more than mtimeTolerance. A missing mtime is
// treated conservatively as needing an update.
func (ix *Index) needsUpdate(relPath string, modified *time.Time) (bool, error) {
	if modified == nil {
		return true, nil
	}
	existing, found, err := ix.Metadata.GetFile(relPath)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	delta := modified.Sub(existing.Mtime)
	return math.Abs(delta.Seconds()) > mtimeTolerance.Seconds(), nil
}

func (ix *Index) indexFile(loc *vfs.Location, entry vfs.Entry, relPath string, stats *BuildStats) error {
	mtime := time.Now().UTC()
	if entry.Modified != nil {
		mtime = *entry.Modified
	}

	fileEntry := metastore.FileEntry{
		Path:  relPath,
		Mtime: mtime,
		Size:  entry.Size,
	}

	if !isMarkdown(relPath) {
		if err := ix.Metadata.UpsertFile(fileEntry); err != nil {
			return err
		}
		stats.MetadataUpdated++
		return nil
	}

	content, err := loc.ReadFileString(entry.Path)
	if err != nil {
		// Unreadable file: keep the registry row so it's still listed, but
		// leave it unindexed.
		if upsertErr := ix.Metadata.UpsertFile(fileEntry); upsertErr != nil {
			return upsertErr
		}
		stats.MetadataUpdated++
		return nil
	}

	doc := note.Parse(content)

	meta := metastore.FileMetadata{}
	if doc.FrontMatter != nil {
		meta.Title, _ = doc.FrontMatter.String("title")
		meta.Tags, _ = doc.FrontMatter.StringList("tags")
		meta.Date, _ = doc.FrontMatter.String("date")
		meta.Area, _ = doc.FrontMatter.String("area")
	}
	if meta.Title == "" {
		if title, ok := doc.Title(); ok {
			meta.Title = title
		}
	}

	fileEntry.Indexed = true
	if err := ix.Metadata.UpsertFile(fileEntry); err != nil {
		return err
	}
	if err := ix.Metadata.UpsertMetadata(relPath, meta); err != nil {
		return err
	}

	if err := ix.SearchIndex.AddDocument(relPath, meta.Title, doc.PlainText()); err != nil {
		return err
	}

	stats.MarkdownIndexed++
	stats.MetadataUpdated++
	return nil
}

func isMarkdown(relPath string) bool {
	ext := strings.ToLower(filepath.Ext(relPath))
	return ext == ".md" || ext == ".markdown"
}

func relativePath(root, abs string) (string, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Search runs a full-text query over the search layer.
func (ix *Index) Search(query string, limit int) ([]search.Hit, error) {
	return ix.SearchIndex.Search(query, limit)
}

// SearchByMetadata runs a structural query over the metadata layer.
func (ix *Index) SearchByMetadata(q metastore.MetadataQuery) ([]string, error) {
	return ix.Metadata.ListByMetadata(q)
}

// GetMetadata returns a file's extracted front-matter metadata.
func (ix *Index) GetMetadata(path string) (metastore.FileMetadata, bool, error) {
	return ix.Metadata.GetMetadata(path)
}

// GetFile returns a file's registry row.
func (ix *Index) GetFile(path string) (metastore.FileEntry, bool, error) {
	return ix.Metadata.GetFile(path)
}

// ListDirectory lists a directory's direct children from the cache, with no
// disk access.
func (ix *Index) ListDirectory(dir string) ([]metastore.FileEntry, error) {
	return ix.Metadata.ListDirectory(dir)
}

// FileCount returns the total number of registered files.
func (ix *Index) FileCount() (int, error) {
	return ix.Metadata.FileCount()
}

// IndexedCount returns the number of files searchable in the full-text
// index.
func (ix *Index) IndexedCount() (int, error) {
	return ix.Metadata.IndexedCount()
}

// SearchDocumentCount returns the number of documents committed to the
// search layer.
func (ix *Index) SearchDocumentCount() (uint64, error) {
	return ix.SearchIndex.DocumentCount()
}
