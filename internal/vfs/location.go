// Package vfs implements the filesystem-rooted core of fracta: a Location
// facade (scope classification, atomic writes, recursive traversal, CRUD)
// plus the IgnoreRules matcher and a debounced change Watcher built on
// fsnotify. Plain Markdown files on disk are the single source of truth;
// everything in this package is re-derivable from them.
package vfs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fracta-app/fracta/internal/ferr"
)

// SystemDirName is the hidden directory at a managed Location's root that
// holds configuration, caches, and state.
const SystemDirName = systemDirName

var initDirs = []string{
	"config",
	"config/schemas",
	"config/views",
	"meta",
	"cache",
	"state",
}

// Location is a rooted, user-granted directory tree. It owns scope
// classification, atomic CRUD, and recursive traversal for everything under
// Root.
type Location struct {
	ID      uuid.UUID
	Label   string
	Root    string
	Managed bool

	ignoreRules IgnoreRules
}

// New creates an unmanaged Location stub. It touches nothing on disk.
func New(label, root string) *Location {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Location{
		ID:          id,
		Label:       label,
		Root:        root,
		Managed:     false,
		ignoreRules: emptyIgnoreRules(),
	}
}

// Open rehydrates a managed Location from its persisted settings, generating
// and writing back an identity if one is not already stored. root must
// already exist as a directory.
func Open(label, root string) (*Location, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, ferr.New(ferr.KindNotFound, root)
	}

	ignorePath := filepath.Join(root, SystemDirName, "config", "ignore")
	rules, err := loadIgnoreRules(ignorePath)
	if err != nil {
		return nil, ferr.Wrap(ferr.KindIO, ignorePath, err)
	}

	settings, err := loadLocationSettings(root)
	if err != nil {
		return nil, err
	}
	id := settings.getOrCreateID()
	if err := settings.save(root); err != nil {
		return nil, err
	}

	return &Location{
		ID:          id,
		Label:       label,
		Root:        root,
		Managed:     true,
		ignoreRules: rules,
	}, nil
}

// Init materializes the .fracta/ directory tree at the Location's root,
// writes default config files if absent, persists identity and label, and
// marks the Location managed. Safe to call more than once: an existing
// ignore file is never overwritten, while settings.json is rewritten with
// the Location's current ID and Label.
func (l *Location) Init() error {
	fracta := filepath.Join(l.Root, SystemDirName)
	for _, sub := range initDirs {
		if err := ensureDir(filepath.Join(fracta, sub)); err != nil {
			return err
		}
	}

	ignorePath := filepath.Join(fracta, "config", "ignore")
	if _, err := os.Stat(ignorePath); os.IsNotExist(err) {
		if err := atomicWrite(ignorePath, []byte(defaultIgnore)); err != nil {
			return err
		}
	}

	settingsPath := filepath.Join(fracta, "config", settingsFile)
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		if err := atomicWrite(settingsPath, []byte("{}\n")); err != nil {
			return err
		}
	}

	l.Managed = true
	if err := l.ReloadIgnoreRules(); err != nil {
		return err
	}

	settings, err := loadLocationSettings(l.Root)
	if err != nil {
		return err
	}
	id := l.ID
	settings.ID = &id
	label := l.Label
	settings.Label = &label
	return settings.save(l.Root)
}

// ReloadIgnoreRules re-reads config/ignore from disk, picking up hand edits
// made since Open/Init without requiring a fresh Location.
func (l *Location) ReloadIgnoreRules() error {
	ignorePath := filepath.Join(l.Root, SystemDirName, "config", "ignore")
	rules, err := loadIgnoreRules(ignorePath)
	if err != nil {
		return ferr.Wrap(ferr.KindIO, ignorePath, err)
	}
	l.ignoreRules = rules
	return nil
}

// FractaDir returns the absolute path to this Location's system directory.
func (l *Location) FractaDir() string {
	return filepath.Join(l.Root, SystemDirName)
}

// Contains reports whether path lies within this Location after resolving
// symlinks, rejecting both symlink escapes and ".." traversal.
func (l *Location) Contains(path string) bool {
	_, ok := l.resolveAndCheck(path)
	return ok
}

// resolveAndCheck canonicalizes path and verifies it stays within the
// canonicalized Location root: canonicalize the root; if the candidate
// exists, canonicalize it directly; otherwise walk up to the nearest
// existing ancestor, canonicalize that, and re-append the pending
// (non-existent) components, rejecting any ".." among them.
func (l *Location) resolveAndCheck(path string) (string, bool) {
	canonicalRoot, err := filepath.EvalSymlinks(l.Root)
	if err != nil {
		return "", false
	}

	if canonicalPath, err := filepath.EvalSymlinks(path); err == nil {
		if isPrefixPath(canonicalRoot, canonicalPath) {
			return canonicalPath, true
		}
		return "", false
	}

	existing := path
	var pending []string
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		name := filepath.Base(existing)
		parent := filepath.Dir(existing)
		if parent == existing {
			return "", false // reached filesystem root with nothing existing
		}
		pending = append(pending, name)
		existing = parent
	}

	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return "", false
	}

	for i := len(pending) - 1; i >= 0; i-- {
		component := pending[i]
		if component == ".." {
			return "", false
		}
		resolved = filepath.Join(resolved, component)
	}

	if isPrefixPath(canonicalRoot, resolved) {
		return resolved, true
	}
	return "", false
}

// isPrefixPath reports whether candidate is root or a descendant of root,
// comparing path components rather than raw strings so "/a/bfoo" is not
// considered a descendant of "/a/b".
func isPrefixPath(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)
	if root == candidate {
		return true
	}
	return strings.HasPrefix(candidate, root+string(filepath.Separator))
}

// relativePath returns path relative to the Location root, or ("", false)
// if path is not rooted inside it.
func (l *Location) relativePath(path string) (string, bool) {
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return rel, true
}

// ScopeOf classifies path's scope within this Location. It returns
// (ScopePlain, false) when path is not inside the Location at all.
func (l *Location) ScopeOf(path string) (Scope, bool) {
	if !l.Contains(path) {
		return ScopePlain, false
	}
	if !l.Managed {
		return ScopePlain, true
	}

	rel, ok := l.relativePath(path)
	if !ok || rel == "" {
		return ScopeManaged, true
	}

	if rel == SystemDirName || strings.HasPrefix(rel, SystemDirName+string(filepath.Separator)) {
		return ScopeManaged, true
	}

	info, err := os.Stat(path)
	isDir := err == nil && info.IsDir()

	if l.ignoreRules.IsIgnored(filepath.ToSlash(rel), isDir) {
		return ScopeIgnored, true
	}
	return ScopeManaged, true
}

// checkWritable verifies path is inside the Location and not within the
// system directory; every CRUD operation calls this first.
func (l *Location) checkWritable(path string) error {
	if !l.Contains(path) {
		return ferr.New(ferr.KindOutsideLocation, path)
	}
	if rel, ok := l.relativePath(path); ok {
		if rel == SystemDirName || strings.HasPrefix(rel, SystemDirName+string(filepath.Separator)) {
			return ferr.New(ferr.KindPermissionDenied, path)
		}
	}
	return nil
}

// buildEntry constructs an Entry from a path and its already-fetched
// filesystem info.
func (l *Location) buildEntry(path string, info os.FileInfo) Entry {
	kind := KindFile
	if info.IsDir() {
		kind = KindFolder
	}

	var ext string
	if kind == KindFile {
		ext = strings.ToLower(filepath.Ext(path))
		ext = strings.TrimPrefix(ext, ".")
	}

	scope, ok := l.ScopeOf(path)
	if !ok {
		scope = ScopePlain
	}

	modified := info.ModTime()
	entry := Entry{
		Path:      path,
		Kind:      kind,
		Name:      info.Name(),
		Extension: ext,
		Size:      info.Size(),
		Modified:  &modified,
		Scope:     scope,
	}
	if created, ok := creationTime(info); ok {
		entry.Created = &created
	}
	return entry
}
