package vfs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fracta-app/fracta/internal/ferr"
)

// debounceWindow coalesces rapid successive filesystem events into a single
// queued event per path.
const debounceWindow = 500 * time.Millisecond

// EventKind classifies a queued filesystem change.
type EventKind int

const (
	EventCreated EventKind = iota
	EventModified
	EventDeleted
	EventRenamed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is a single debounced change to a Location's tree. From is only set
// for EventRenamed.
type Event struct {
	Kind EventKind
	Path string
	From string
}

// Watcher watches a Location's root for changes, debouncing rapid bursts
// into a queue that consumers drain on their own schedule. Events under the
// system directory are never queued.
type Watcher struct {
	root   string
	logger *log.Logger

	fsw *fsnotify.Watcher

	mu     sync.Mutex
	events []Event
	timers map[string]*time.Timer

	cancel context.CancelFunc
	done   chan struct{}
}

// StartWatcher begins watching a Location's root recursively. The returned
// Watcher must be stopped with Stop to release its background goroutine and
// OS-level watch descriptors.
func (l *Location) StartWatcher() (*Watcher, error) {
	return StartWatcherWithLogger(l.Root, log.Default())
}

// StartWatcherWithLogger is StartWatcher with an injectable logger, for
// callers that want watch errors routed somewhere other than the default
// logger (tests, CLI with structured output).
func StartWatcherWithLogger(root string, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferr.Wrap(ferr.KindWatcherError, root, err)
	}

	if err := walkAndWatch(fsw, root, logger); err != nil {
		fsw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		root:   root,
		logger: logger,
		fsw:    fsw,
		timers: make(map[string]*time.Timer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go w.loop(ctx)
	return w, nil
}

// walkAndWatch registers fsnotify watches on dir and every subdirectory,
// skipping the system directory entirely. fsnotify does not recurse, so new
// subdirectories created later are picked up lazily in loop when a Create
// event for a directory arrives.
func walkAndWatch(fsw *fsnotify.Watcher, dir string, logger *log.Logger) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr
		}
		if !info.IsDir() {
			return nil
		}
		if filepath.Base(path) == SystemDirName {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			logger.Printf("fracta: failed to watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Printf("fracta: watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if w.isInSystemDir(ev.Name) {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if filepath.Base(ev.Name) != SystemDirName {
				if err := w.fsw.Add(ev.Name); err != nil {
					w.logger.Printf("fracta: failed to watch %s: %v", ev.Name, err)
				}
			}
		}
	}

	w.scheduleFlush(ev.Name)
}

// isInSystemDir reports whether path has a path component equal to the
// system directory name.
func (w *Watcher) isInSystemDir(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == SystemDirName {
			return true
		}
	}
	return false
}

// scheduleFlush (re)starts a per-path debounce timer. When it fires, the
// path's current disk state decides whether the queued event is Modified
// (path still exists) or Deleted (path is gone) — notify's raw op stream is
// too noisy to trust directly (editors commonly emit several ops per save).
// A newly created file is therefore queued as Modified; EventCreated and
// EventRenamed are never queued.
func (w *Watcher) scheduleFlush(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(debounceWindow, func() {
		w.flush(path)
	})
}

func (w *Watcher) flush(path string) {
	w.mu.Lock()
	delete(w.timers, path)

	kind := EventModified
	if _, err := os.Stat(path); err != nil {
		kind = EventDeleted
	}
	w.events = append(w.events, Event{Kind: kind, Path: path})
	w.mu.Unlock()
}

// DrainEvents returns all events queued since the last drain, clearing the
// queue.
func (w *Watcher) DrainEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	drained := w.events
	w.events = nil
	return drained
}

// HasPendingEvents reports whether any events are queued without consuming
// them.
func (w *Watcher) HasPendingEvents() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.events) > 0
}

// Root returns the path being watched.
func (w *Watcher) Root() string {
	return w.root
}

// Stop halts the watcher's background goroutine and releases its OS watch
// descriptors. Safe to call once; blocks until the goroutine has exited.
func (w *Watcher) Stop() {
	w.cancel()
	<-w.done

	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	w.mu.Unlock()
}
