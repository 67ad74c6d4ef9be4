package vfs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnore is applied to every newly-initialized Location, covering
// version control metadata, platform junk files, common build outputs, and
// editor state.
const defaultIgnore = `# fracta default ignore rules
# Syntax follows .gitignore conventions

# Version control
.git/

# macOS system files
.DS_Store
.Spotlight-V100/
.Trashes/
.fseventsd/
._*

# Common build artifacts
node_modules/
target/
build/
dist/
.cache/

# IDE and editor
.idea/
.vscode/
*.swp
*.swo
*~
`

// ignoreRule is one compiled line from a gitignore-dialect ignore file.
type ignoreRule struct {
	pattern  string // glob pattern, already rewritten with a **/ prefix when unanchored
	negated  bool
	dirOnly  bool
	anchored bool
}

// IgnoreRules is a compiled, ordered gitignore-dialect ruleset.
type IgnoreRules struct {
	rules []ignoreRule
}

// emptyIgnoreRules returns a ruleset that ignores nothing.
func emptyIgnoreRules() IgnoreRules {
	return IgnoreRules{}
}

// defaultIgnoreRules returns the built-in ruleset described above.
func defaultIgnoreRules() IgnoreRules {
	return parseIgnoreRules(defaultIgnore)
}

// loadIgnoreRules reads a gitignore-dialect file. A missing file yields an
// empty ruleset, not an error.
func loadIgnoreRules(path string) (IgnoreRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptyIgnoreRules(), nil
		}
		return IgnoreRules{}, err
	}
	return parseIgnoreRules(string(data)), nil
}

// parseIgnoreRules compiles a gitignore-dialect text blob into a ruleset.
// Empty lines and '#'-prefixed lines are skipped.
func parseIgnoreRules(content string) IgnoreRules {
	var rules []ignoreRule
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimRight(line, " \t")
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		rule, ok := compileIgnoreLine(trimmed)
		if ok {
			rules = append(rules, rule)
		}
	}
	return IgnoreRules{rules: rules}
}

func compileIgnoreLine(line string) (ignoreRule, bool) {
	var rule ignoreRule

	if strings.HasPrefix(line, "!") {
		rule.negated = true
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	if line == "" {
		return ignoreRule{}, false
	}

	anchored := strings.HasPrefix(line, "/")
	stripped := strings.TrimPrefix(line, "/")
	if !anchored && strings.Contains(stripped, "/") {
		anchored = true
	}

	rule.anchored = anchored
	if anchored {
		rule.pattern = stripped
	} else {
		rule.pattern = "**/" + stripped
	}

	return rule, true
}

// IsIgnored reports whether relPath (forward-slash separated, relative to a
// Location root) is ignored. isDir describes relPath itself; ancestors are
// always evaluated as directories, so ignoring a directory implicitly
// ignores everything beneath it even when the descendant itself doesn't
// literally match any rule.
func (r IgnoreRules) IsIgnored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	segments := strings.Split(relPath, "/")

	accumulated := ""
	for i, seg := range segments {
		if accumulated == "" {
			accumulated = seg
		} else {
			accumulated = accumulated + "/" + seg
		}
		isLast := i == len(segments)-1
		checkIsDir := isDir
		if !isLast {
			checkIsDir = true
		}
		if r.matches(accumulated, checkIsDir) {
			return true
		}
	}
	return false
}

// matches evaluates every rule against a single accumulated path prefix,
// in order, so a later negated rule can un-ignore an earlier match.
func (r IgnoreRules) matches(path string, isDir bool) bool {
	ignored := false
	for _, rule := range r.rules {
		if rule.dirOnly && !isDir {
			continue
		}
		ok, err := doublestar.Match(rule.pattern, path)
		if err != nil {
			continue
		}
		if ok {
			ignored = !rule.negated
		}
	}
	return ignored
}
