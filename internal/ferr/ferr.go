// Package ferr defines the error kinds shared by every core package
// (vfs, note, metastore, search, index). Every operation that can fail
// returns one of these so callers can recover the kind with errors.As
// instead of string-matching messages.
package ferr

import "fmt"

// Kind classifies a core error so callers can branch on failure category
// without string-matching a message.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyExists
	KindPermissionDenied
	KindOutsideLocation
	KindIgnoredScope
	KindAtomicWriteFailed
	KindWatcherError
	KindIO
	KindQueryParse
	KindInvalidState
	KindCorruptedData
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindAlreadyExists:
		return "AlreadyExists"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindOutsideLocation:
		return "OutsideLocation"
	case KindIgnoredScope:
		return "IgnoredScope"
	case KindAtomicWriteFailed:
		return "AtomicWriteFailed"
	case KindWatcherError:
		return "WatcherError"
	case KindIO:
		return "Io"
	case KindQueryParse:
		return "QueryParse"
	case KindInvalidState:
		return "InvalidState"
	case KindCorruptedData:
		return "CorruptedData"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned across the core. Path is the
// offending path, when there is one; Reason carries extra context for
// AtomicWriteFailed/WatcherError. Err wraps the underlying cause, if any.
type Error struct {
	Kind   Kind
	Path   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	var base string
	switch {
	case e.Path != "" && e.Reason != "":
		base = fmt.Sprintf("%s: %s (%s)", e.Kind, e.Path, e.Reason)
	case e.Path != "":
		base = fmt.Sprintf("%s: %s", e.Kind, e.Path)
	case e.Reason != "":
		base = fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	default:
		base = e.Kind.String()
	}
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ferr.NotFound) read naturally: it matches any
// target *Error of the same Kind, ignoring the target's other fields.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, path string) *Error {
	return &Error{Kind: kind, Path: path}
}

func Wrap(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func WithReason(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

// Sentinel values for errors.Is(err, ferr.NotFound) style comparisons.
var (
	NotFound          = &Error{Kind: KindNotFound}
	AlreadyExists     = &Error{Kind: KindAlreadyExists}
	PermissionDenied  = &Error{Kind: KindPermissionDenied}
	OutsideLocation   = &Error{Kind: KindOutsideLocation}
	IgnoredScope      = &Error{Kind: KindIgnoredScope}
	AtomicWriteFailed = &Error{Kind: KindAtomicWriteFailed}
	WatcherError      = &Error{Kind: KindWatcherError}
	IO                = &Error{Kind: KindIO}
	QueryParse        = &Error{Kind: KindQueryParse}
	InvalidState      = &Error{Kind: KindInvalidState}
	CorruptedData     = &Error{Kind: KindCorruptedData}
)
