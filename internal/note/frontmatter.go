package note

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// FrontMatter is a document's parsed YAML front matter. Fields is a generic
// mapping; this package only extracts it, leaving interpretation of
// individual keys to callers.
type FrontMatter struct {
	Raw    string
	Fields map[string]any
}

// parseFrontMatter parses a front matter block already stripped of its
// delimiter lines by splitFrontMatter. A block that doesn't parse as a YAML
// mapping is rejected entirely — scalar or sequence front matter is not
// supported.
func parseFrontMatter(raw string) (*FrontMatter, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	var fields map[string]any
	if err := yaml.Unmarshal([]byte(trimmed), &fields); err != nil {
		return nil, false
	}
	if fields == nil {
		return nil, false
	}

	return &FrontMatter{Raw: trimmed, Fields: fields}, true
}

// String returns the string field at key, and whether it was present and a
// string.
func (fm *FrontMatter) String(key string) (string, bool) {
	v, ok := fm.Fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int64 returns the integer field at key.
func (fm *FrontMatter) Int64(key string) (int64, bool) {
	v, ok := fm.Fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}

// Float64 returns the floating-point field at key.
func (fm *FrontMatter) Float64(key string) (float64, bool) {
	v, ok := fm.Fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Bool returns the boolean field at key.
func (fm *FrontMatter) Bool(key string) (bool, bool) {
	v, ok := fm.Fields[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// StringList returns a sequence field at key as a slice of strings. It fails
// (returns ok=false) if any element of the sequence is not itself a string.
func (fm *FrontMatter) StringList(key string) ([]string, bool) {
	v, ok := fm.Fields[key]
	if !ok {
		return nil, false
	}
	seq, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(seq))
	for _, item := range seq {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
