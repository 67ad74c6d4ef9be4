// Package search is the inverted-index half of fracta's two-tier cache: a
// bleve-backed, CJK-aware full-text index over the plain-text projection of
// every document, ranked with bleve's default TF-IDF scoring.
package search

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"

	"github.com/fracta-app/fracta/internal/ferr"
)

// indexDocument is the shape committed to bleve for each file. Path is
// stored redundantly as a field (in addition to being the document ID) so
// search results can report it without a second lookup.
type indexDocument struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Hit is a single search result.
type Hit struct {
	Path  string
	Title string
	Score float64
}

// Index is a CJK-aware full-text search index over Markdown documents.
// Writes are batched: BeginWrite starts a batch, AddDocument/RemoveDocument
// stage changes into it, and Commit applies them atomically. Reads always
// see the last committed state until Commit runs, matching the deferred-
// visibility model the rest of fracta's cache uses.
type Index struct {
	idx   bleve.Index
	batch *bleve.Batch
}

// Open opens or creates a search index rooted at dir.
func Open(dir string) (*Index, error) {
	if _, err := os.Stat(dir); err == nil {
		idx, err := bleve.Open(dir)
		if err != nil {
			return nil, ferr.Wrap(ferr.KindCorruptedData, dir, fmt.Errorf("open search index: %w", err))
		}
		return &Index{idx: idx}, nil
	}

	idx, err := bleve.New(dir, documentMapping())
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, dir, fmt.Errorf("create search index: %w", err))
	}
	return &Index{idx: idx}, nil
}

// OpenInMemory opens a transient search index for tests and scratch
// rebuilds.
func OpenInMemory() (*Index, error) {
	idx, err := bleve.NewMemOnly(documentMapping())
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, "", fmt.Errorf("create in-memory search index: %w", err))
	}
	return &Index{idx: idx}, nil
}

// Close releases the index's underlying resources.
func (x *Index) Close() error {
	return x.idx.Close()
}

// BeginWrite starts a batch of staged changes. Calling it again before
// Commit or Rollback discards the prior batch.
func (x *Index) BeginWrite() {
	x.batch = x.idx.NewBatch()
}

// AddDocument stages path's (title, content) into the open batch, replacing
// any prior version of the same path. BeginWrite must be called first.
func (x *Index) AddDocument(path, title, content string) error {
	if x.batch == nil {
		return ferr.WithReason(ferr.KindInvalidState, "search index: AddDocument called without BeginWrite")
	}
	doc := indexDocument{Path: path, Title: title, Content: content}
	if err := x.batch.Index(path, doc); err != nil {
		return ferr.Wrap(ferr.KindIO, path, fmt.Errorf("stage document: %w", err))
	}
	return nil
}

// RemoveDocument stages path's removal into the open batch. BeginWrite must
// be called first.
func (x *Index) RemoveDocument(path string) error {
	if x.batch == nil {
		return ferr.WithReason(ferr.KindInvalidState, "search index: RemoveDocument called without BeginWrite")
	}
	x.batch.Delete(path)
	return nil
}

// Commit applies the open batch atomically and discards it. A nil batch
// (no BeginWrite since the last Commit/Rollback) is a no-op.
func (x *Index) Commit() error {
	if x.batch == nil {
		return nil
	}
	err := x.idx.Batch(x.batch)
	x.batch = nil
	if err != nil {
		return ferr.Wrap(ferr.KindIO, "", fmt.Errorf("commit search index batch: %w", err))
	}
	return nil
}

// Rollback discards the open batch without applying it.
func (x *Index) Rollback() {
	x.batch = nil
}

// Search runs a full-text query over title and content, ranked by bleve's
// default TF-IDF scoring, returning at most limit hits.
func (x *Index) Search(queryStr string, limit int) ([]Hit, error) {
	query := bleve.NewQueryStringQuery(queryStr)
	req := bleve.NewSearchRequestOptions(query, limit, 0, false)
	req.Fields = []string{"path", "title"}

	result, err := x.idx.Search(req)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindQueryParse, queryStr, err)
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		hits = append(hits, Hit{
			Path:  fieldString(h.Fields, "path", h.ID),
			Title: fieldString(h.Fields, "title", ""),
			Score: h.Score,
		})
	}
	return hits, nil
}

func fieldString(fields map[string]any, key, fallback string) string {
	if v, ok := fields[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

// DocumentCount returns the number of documents currently committed to the
// index.
func (x *Index) DocumentCount() (uint64, error) {
	n, err := x.idx.DocCount()
	if err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}
	return n, nil
}

// Clear removes every document from the index in a single atomic batch,
// discarding any batch that was already open.
func (x *Index) Clear() error {
	x.batch = nil

	// bleve has no bulk delete-all operation; enumerate and delete by ID.
	ids, err := x.allDocIDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	batch := x.idx.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := x.idx.Batch(batch); err != nil {
		return ferr.Wrap(ferr.KindIO, "", fmt.Errorf("clear search index: %w", err))
	}
	return nil
}

func (x *Index) allDocIDs() ([]string, error) {
	query := bleve.NewMatchAllQuery()
	req := bleve.NewSearchRequestOptions(query, int(mustDocCount(x.idx)), 0, false)
	result, err := x.idx.Search(req)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, "", err)
	}
	ids := make([]string, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

func mustDocCount(idx bleve.Index) uint64 {
	n, err := idx.DocCount()
	if err != nil {
		return 0
	}
	if n == 0 {
		return 1 // bleve requires size > 0 even for an empty result set
	}
	return n
}
