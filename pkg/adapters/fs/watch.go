package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/knowhub/pkg/core"
)

// debounceWindow groups the burst of events an editor or an atomic rename
// produces into a single notification per collection.
const debounceWindow = 50 * time.Millisecond

// Watch reports changes made to the collection files by other processes.
// pattern is matched against the file base name (e.g. "notices.*"); an
// empty pattern watches every collection. Writes made through this
// repository are not reported. The channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Path, err)
	}

	events := make(chan core.Event, 16)
	r.setWatcherActive(true)

	w := &watchLoop{
		repo:    r,
		pattern: pattern,
		watcher: watcher,
		events:  events,
		fire:    make(chan core.Kind, len(core.Kinds())),
		pending: make(map[core.Kind]*pendingChange),
	}

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		if r.config.ErrorHandler != nil {
			r.config.ErrorHandler(fmt.Errorf("watcher failed: %w", err))
		} else {
			r.config.Logger.Error("watcher failed", "error", err)
		}
	}))

	return events, nil
}

type pendingChange struct {
	timer *time.Timer
	op    fsnotify.Op
}

type watchLoop struct {
	repo    *Repository
	pattern string
	watcher *fsnotify.Watcher
	events  chan core.Event
	fire    chan core.Kind
	pending map[core.Kind]*pendingChange
}

func (w *watchLoop) run(ctx context.Context) (err error) {
	logger := w.repo.config.Logger
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if logger.Enabled(ctx, slog.LevelDebug) {
				logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()
	defer close(w.events)
	defer w.repo.setWatcherActive(false)
	defer w.watcher.Close()
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.schedule(ctx, event)

		case kind := <-w.fire:
			change, ok := w.pending[kind]
			if !ok {
				continue
			}
			delete(w.pending, kind)
			if e, ok := w.repo.reconcile(kind, change.op); ok {
				select {
				case w.events <- e:
				case <-ctx.Done():
					return nil
				}
			}

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("fsnotify error", "error", wErr)
			if w.repo.config.ErrorHandler != nil {
				w.repo.config.ErrorHandler(wErr)
			}
		}
	}
}

// schedule (re)arms the debounce timer of the collection behind event.
func (w *watchLoop) schedule(ctx context.Context, event fsnotify.Event) {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, TempFilePrefix) {
		return
	}
	kind, ok := w.repo.kindOf(base)
	if !ok {
		return
	}
	if matched, _ := doublestar.Match(w.pattern, base); !matched {
		return
	}
	w.repo.config.Logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if change, ok := w.pending[kind]; ok {
		change.op = event.Op
		change.timer.Reset(debounceWindow)
		return
	}
	w.pending[kind] = &pendingChange{
		op: event.Op,
		timer: time.AfterFunc(debounceWindow, func() {
			select {
			case w.fire <- kind:
			case <-ctx.Done():
			}
		}),
	}
}

func (w *watchLoop) stopTimers() {
	for _, change := range w.pending {
		change.timer.Stop()
	}
}

// kindOf maps a file base name to its collection.
func (r *Repository) kindOf(base string) (core.Kind, bool) {
	for _, kind := range core.Kinds() {
		if base == r.Filename(kind) {
			return kind, true
		}
	}
	return "", false
}

// reconcile drops stale cache state for kind and builds the event to report.
// It reports false for changes this repository wrote itself.
func (r *Repository) reconcile(kind core.Kind, op fsnotify.Op) (core.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := core.Event{Kind: kind, Timestamp: time.Now().Unix()}

	info, err := os.Stat(r.fullPath(kind))
	switch {
	case os.IsNotExist(err):
		e.Type = core.EventDelete
	case err != nil:
		e.Type = core.EventModify
	default:
		if _, fresh := r.cache.get(kind, info); fresh {
			return core.Event{}, false
		}
		e.Type = core.EventModify
		if op.Has(fsnotify.Create) {
			e.Type = core.EventCreate
		}
	}

	r.cache.invalidate(kind)
	r.recordExternalChange()
	return e, true
}
