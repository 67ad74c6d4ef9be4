package vfs

import (
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/fracta-app/fracta/internal/ferr"
)

// WalkOptions controls recursive traversal depth and ignored-entry
// visibility.
type WalkOptions struct {
	// IncludeIgnored visits entries under ScopeIgnored paths instead of
	// pruning them. The system directory is always pruned regardless.
	IncludeIgnored bool
	// MaxDepth limits recursion below the starting directory; 0 means
	// unlimited. Depth 1 yields only the immediate children.
	MaxDepth int
}

// ListDirectory returns the immediate children of dir, sorted
// case-insensitively by name with folders first, with no recursion.
func (l *Location) ListDirectory(dir string) ([]Entry, error) {
	if !l.Contains(dir) {
		return nil, ferr.New(ferr.KindOutsideLocation, dir)
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, dir, err)
	}

	entries := make([]Entry, 0, len(children))
	for _, child := range children {
		childPath := filepath.Join(dir, child.Name())
		if rel, ok := l.relativePath(childPath); ok && rel == SystemDirName {
			continue
		}
		info, err := child.Info()
		if err != nil {
			continue // vanished between readdir and stat; skip rather than fail the whole listing
		}
		entries = append(entries, l.buildEntry(childPath, info))
	}

	sortEntries(entries)
	return entries, nil
}

// Walk recursively visits dir and its descendants depth-first, each
// directory's children in ListDirectory order (folders first, then
// case-insensitively by name), invoking fn for each entry. Returning an error from
// fn aborts the walk and propagates that error. Ignored subtrees are pruned
// (not descended into) unless opts.IncludeIgnored is set; the system
// directory is always pruned.
func (l *Location) Walk(dir string, opts WalkOptions, fn func(Entry) error) error {
	if !l.Contains(dir) {
		return ferr.New(ferr.KindOutsideLocation, dir)
	}
	return l.walkRecursive(dir, opts, 1, fn)
}

func (l *Location) walkRecursive(dir string, opts WalkOptions, depth int, fn func(Entry) error) error {
	entries, err := l.ListDirectory(dir)
	if err != nil {
		var ferrErr *ferr.Error
		if errors.As(err, &ferrErr) && os.IsPermission(ferrErr.Err) {
			return nil // unreadable subdirectory: skip it, keep walking siblings
		}
		return err
	}

	for _, entry := range entries {
		if entry.Scope == ScopeIgnored && !opts.IncludeIgnored {
			continue
		}

		if err := fn(entry); err != nil {
			return err
		}

		if entry.Kind != KindFolder {
			continue
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			continue
		}
		if err := l.walkRecursive(entry.Path, opts, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// sortEntries orders folders before files, then case-insensitively by name.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Kind != b.Kind {
			return a.Kind == KindFolder
		}
		return lowerLess(a.Name, b.Name)
	})
}

func lowerLess(a, b string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := toLowerByte(a[i]), toLowerByte(b[i])
		if ca != cb {
			return ca < cb
		}
	}
	return len(a) < len(b)
}

func toLowerByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
