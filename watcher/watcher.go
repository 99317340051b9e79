// Package watcher monitors a drop folder for new regulatory documents.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Event signals a document file that appeared or changed in the
// watched directory.
type Event struct {
	Path string
}

// Watcher emits events for new or rewritten files with watched
// extensions.
type Watcher struct {
	watcher    *fsnotify.Watcher
	extensions []string
}

// New creates a Watcher. With no extensions given, the document
// formats the parsers understand are watched.
func New(extensions []string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".pdf", ".txt", ".md", ".xlsx"}
	}
	return &Watcher{watcher: w, extensions: extensions}, nil
}

// Watch starts monitoring dir and emits events until ctx is cancelled.
// Only create and write operations are reported; removals are not
// interesting to an ingest feed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan Event, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.isWatchedExtension(ev.Name) {
					continue
				}
				if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
					continue
				}
				select {
				case events <- Event{Path: ev.Name}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watcher: error", "dir", dir, "error", err)
			}
		}
	}()

	return events, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) isWatchedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
