package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when NewBoardWatcher gets a zero window.
const DefaultDebounce = 300 * time.Millisecond

// BoardEvent describes the last change in a settled burst.
type BoardEvent struct {
	Path       string
	ChangeType string // "create", "write", "remove", "rename"
}

// BoardWatcher reports changes to one board document. The containing directory is
// watched because saves replace the document by rename.
type BoardWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(BoardEvent)
}

// NewBoardWatcher watches the document at path.
func NewBoardWatcher(path string, debounce time.Duration, onChange func(BoardEvent)) (*BoardWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &BoardWatcher{
		watcher:  w,
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *BoardWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close() //nolint:errcheck // shutdown path

	d := newDebouncer(w.debounce, func(ev BoardEvent) {
		if w.onChange != nil {
			w.onChange(ev)
		}
	})
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			changeType := opToChangeType(event.Op)
			if changeType == "" {
				continue
			}
			d.trigger(BoardEvent{Path: event.Name, ChangeType: changeType})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func opToChangeType(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	default:
		return ""
	}
}
