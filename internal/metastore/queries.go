package metastore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fracta-app/fracta/internal/ferr"
)

// FileEntry is a file's registry row: identity, freshness, and whether its
// content has been committed to the search index.
type FileEntry struct {
	Path        string
	Mtime       time.Time
	Size        int64
	ContentHash string
	Indexed     bool
}

// FileMetadata is the front-matter-derived metadata for one file.
type FileMetadata struct {
	Title string
	Tags  []string
	Date  string
	Area  string
}

// MetadataQuery narrows ListByMetadata results. Zero-value fields are
// unconstrained.
type MetadataQuery struct {
	Area     string
	Tag      string
	DateFrom string
	DateTo   string
	Limit    int
}

// mtimeLayout is RFC 3339 with a fixed-width nanosecond fraction, so stored
// mtimes sort as strings in time order.
const mtimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// UpsertFile inserts or updates a file's registry row.
func (s *Store) UpsertFile(entry FileEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO files (path, mtime, size, content_hash, indexed)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			size = excluded.size,
			content_hash = excluded.content_hash,
			indexed = excluded.indexed
	`, entry.Path, entry.Mtime.UTC().Format(mtimeLayout), entry.Size, nullableString(entry.ContentHash), entry.Indexed)
	if err != nil {
		return ferr.Wrap(ferr.KindIO, entry.Path, fmt.Errorf("upsert file: %w", err))
	}
	return nil
}

// UpsertMetadata inserts or updates a file's extracted front-matter
// metadata. The referenced file row must already exist.
func (s *Store) UpsertMetadata(path string, meta FileMetadata) error {
	tagsJSON, err := json.Marshal(meta.Tags)
	if err != nil {
		tagsJSON = []byte("[]")
	}
	_, err = s.db.Exec(`
		INSERT INTO metadata (path, title, tags, date, area)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			tags = excluded.tags,
			date = excluded.date,
			area = excluded.area
	`, path, nullableString(meta.Title), string(tagsJSON), nullableString(meta.Date), nullableString(meta.Area))
	if err != nil {
		return ferr.Wrap(ferr.KindIO, path, fmt.Errorf("upsert metadata: %w", err))
	}
	return nil
}

// GetFile returns a file's registry row, or (zero, false) if not found.
func (s *Store) GetFile(path string) (FileEntry, bool, error) {
	var entry FileEntry
	var mtimeStr string
	var hash sql.NullString

	row := s.db.QueryRow(`SELECT path, mtime, size, content_hash, indexed FROM files WHERE path = ?`, path)
	if err := row.Scan(&entry.Path, &mtimeStr, &entry.Size, &hash, &entry.Indexed); err != nil {
		if err == sql.ErrNoRows {
			return FileEntry{}, false, nil
		}
		return FileEntry{}, false, ferr.Wrap(ferr.KindIO, path, err)
	}

	mtime, err := parseTime(mtimeStr)
	if err != nil {
		return FileEntry{}, false, err
	}
	entry.Mtime = mtime
	entry.ContentHash = hash.String
	return entry, true, nil
}

// GetMetadata returns a file's extracted metadata, or (zero, false) if not
// found.
func (s *Store) GetMetadata(path string) (FileMetadata, bool, error) {
	var title, date, area sql.NullString
	var tagsJSON sql.NullString

	row := s.db.QueryRow(`SELECT title, tags, date, area FROM metadata WHERE path = ?`, path)
	if err := row.Scan(&title, &tagsJSON, &date, &area); err != nil {
		if err == sql.ErrNoRows {
			return FileMetadata{}, false, nil
		}
		return FileMetadata{}, false, ferr.Wrap(ferr.KindIO, path, err)
	}

	var tags []string
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &tags)
	}

	return FileMetadata{Title: title.String, Tags: tags, Date: date.String, Area: area.String}, true, nil
}

// ListIndexedPaths returns the paths of every file marked indexed.
func (s *Store) ListIndexedPaths() ([]string, error) {
	return s.queryPaths(`SELECT path FROM files WHERE indexed = 1`)
}

// ListAllPaths returns every registered path.
func (s *Store) ListAllPaths() ([]string, error) {
	return s.queryPaths(`SELECT path FROM files`)
}

func (s *Store) queryPaths(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, "", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, ferr.Wrap(ferr.KindIO, "", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ListDirectory returns registry rows for the direct children (not deeper
// descendants) of dir. dir == "" lists the root.
func (s *Store) ListDirectory(dir string) ([]FileEntry, error) {
	pattern := "%"
	excludePattern := "%/%"
	if dir != "" {
		pattern = dir + "/%"
		excludePattern = dir + "/%/%"
	}

	rows, err := s.db.Query(`
		SELECT path, mtime, size, content_hash, indexed FROM files
		WHERE path LIKE ? AND path NOT LIKE ?
	`, pattern, excludePattern)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, dir, err)
	}
	defer rows.Close()

	var entries []FileEntry
	for rows.Next() {
		var entry FileEntry
		var mtimeStr string
		var hash sql.NullString
		if err := rows.Scan(&entry.Path, &mtimeStr, &entry.Size, &hash, &entry.Indexed); err != nil {
			return nil, ferr.Wrap(ferr.KindIO, dir, err)
		}
		mtime, err := parseTime(mtimeStr)
		if err != nil {
			return nil, err
		}
		entry.Mtime = mtime
		entry.ContentHash = hash.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RemoveFile deletes a file's registry row (and, via cascade, its metadata
// row). It reports whether a row was actually removed.
func (s *Store) RemoveFile(path string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return false, ferr.Wrap(ferr.KindIO, path, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// RemoveStaleFiles deletes every registry row whose path is not present in
// currentPaths, returning the count removed. Every comparison is
// parameter-bound; currentPaths content is never interpolated into SQL
// text.
func (s *Store) RemoveStaleFiles(currentPaths []string) (int, error) {
	if len(currentPaths) == 0 {
		res, err := s.db.Exec(`DELETE FROM files`)
		if err != nil {
			return 0, ferr.Wrap(ferr.KindIO, "", err)
		}
		n, err := res.RowsAffected()
		return int(n), err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TEMP TABLE IF NOT EXISTS current_paths (path TEXT PRIMARY KEY)`); err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}
	if _, err := tx.Exec(`DELETE FROM current_paths`); err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO current_paths (path) VALUES (?)`)
	if err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}
	for _, p := range currentPaths {
		if _, err := stmt.Exec(p); err != nil {
			stmt.Close()
			return 0, ferr.Wrap(ferr.KindIO, p, err)
		}
	}
	stmt.Close()

	res, err := tx.Exec(`DELETE FROM files WHERE path NOT IN (SELECT path FROM current_paths)`)
	if err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}

	if _, err := tx.Exec(`DROP TABLE IF EXISTS current_paths`); err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}

	return int(n), tx.Commit()
}

// FileCount returns the total number of registered files.
func (s *Store) FileCount() (int, error) {
	return s.scalarCount(`SELECT COUNT(*) FROM files`)
}

// IndexedCount returns the number of files marked indexed.
func (s *Store) IndexedCount() (int, error) {
	return s.scalarCount(`SELECT COUNT(*) FROM files WHERE indexed = 1`)
}

func (s *Store) scalarCount(query string) (int, error) {
	var n int64
	if err := s.db.QueryRow(query).Scan(&n); err != nil {
		return 0, ferr.Wrap(ferr.KindIO, "", err)
	}
	return int(n), nil
}

// ListByMetadata returns paths matching q's criteria, most recently
// modified first. Every predicate is a bound parameter; the only
// query-shaped string is the filter's own SQL skeleton, which never
// contains caller-supplied content — this is the structural defense behind
// the injection-safety property tested in metastore's test suite.
func (s *Store) ListByMetadata(q MetadataQuery) ([]string, error) {
	var sql strings.Builder
	sql.WriteString(`
		SELECT f.path FROM files f
		LEFT JOIN metadata m ON f.path = m.path
		WHERE 1=1
	`)
	var args []any

	if q.Area != "" {
		sql.WriteString(" AND m.area = ?")
		args = append(args, q.Area)
	}
	if q.Tag != "" {
		sql.WriteString(" AND m.tags LIKE ?")
		args = append(args, "%\""+q.Tag+"%")
	}
	if q.DateFrom != "" {
		sql.WriteString(" AND m.date >= ?")
		args = append(args, q.DateFrom)
	}
	if q.DateTo != "" {
		sql.WriteString(" AND m.date <= ?")
		args = append(args, q.DateTo)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	sql.WriteString(" ORDER BY f.mtime DESC LIMIT ?")
	args = append(args, limit)

	rows, err := s.db.Query(sql.String(), args...)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindQueryParse, "", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, ferr.Wrap(ferr.KindIO, "", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ferr.Wrap(ferr.KindCorruptedData, "", fmt.Errorf("parse stored mtime %q: %w", s, err))
	}
	return t, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
