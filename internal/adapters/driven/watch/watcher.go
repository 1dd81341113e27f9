// Package watch keeps the knowledge index in sync with the markdown
// directory on disk. File events are debounced so a burst of writes
// triggers a single reload.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/recall-labs/recall/internal/core/ports/driving"
	"github.com/recall-labs/recall/internal/logger"
)

// DefaultDebounce is the minimum interval between reloads.
const DefaultDebounce = 2 * time.Second

// Watcher reloads the knowledge base when markdown files change.
type Watcher struct {
	knowledge driving.KnowledgeService
	input     driving.ReloadInput
	watcher   *fsnotify.Watcher
	limiter   *rate.Limiter
	trigger   chan struct{}
}

// NewWatcher creates a watcher over the directory named in input.
// A zero debounce uses DefaultDebounce.
func NewWatcher(knowledge driving.KnowledgeService, input driving.ReloadInput, debounce time.Duration) (*Watcher, error) {
	if input.KBDirectory == "" {
		return nil, fmt.Errorf("watch: kb directory is required")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	return &Watcher{
		knowledge: knowledge,
		input:     input,
		watcher:   fsWatcher,
		limiter:   rate.NewLimiter(rate.Every(debounce), 1),
		trigger:   make(chan struct{}, 1),
	}, nil
}

// Run watches for changes until the context is cancelled. Reload failures
// are logged, not fatal: a broken file should not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addDirs(); err != nil {
		return err
	}

	logger.Info("Watching %s for markdown changes", w.input.KBDirectory)

	go w.reloadLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error: %v", err)
		}
	}
}

// Close stops the underlying file watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// addDirs registers the KB directory, and its subdirectories when the
// reload is recursive.
func (w *Watcher) addDirs() error {
	if !w.input.Recursive {
		if err := w.watcher.Add(w.input.KBDirectory); err != nil {
			return fmt.Errorf("watching %s: %w", w.input.KBDirectory, err)
		}
		return nil
	}

	return filepath.WalkDir(w.input.KBDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if addErr := w.watcher.Add(path); addErr != nil {
			return fmt.Errorf("watching %s: %w", path, addErr)
		}
		return nil
	})
}

// handleEvent schedules a reload for relevant events and picks up new
// subdirectories.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if w.input.Recursive && event.Op.Has(fsnotify.Create) {
		// New directories need their own watch. Add is harmless for files
		// that disappear before we get here.
		if !isMarkdown(event.Name) {
			if err := w.watcher.Add(event.Name); err == nil {
				logger.Debug("Watching new directory %s", event.Name)
			}
		}
	}

	if !isMarkdown(event.Name) {
		return
	}

	logger.Debug("Markdown change: %s %s", event.Op, event.Name)

	select {
	case w.trigger <- struct{}{}:
	default: // a reload is already pending
	}
}

// reloadLoop serializes reloads, rate-limited by the debounce interval.
func (w *Watcher) reloadLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return
		}

		// Collapse triggers that accumulated while waiting.
		select {
		case <-w.trigger:
		default:
		}

		result, err := w.knowledge.Reload(ctx, w.input)
		if err != nil {
			logger.Warn("Knowledge base reload failed: %v", err)
			continue
		}
		logger.Info("Knowledge base reloaded: %d segments", result.DocumentsLoaded)
	}
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}
