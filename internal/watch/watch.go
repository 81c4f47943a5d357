// SPDX-License-Identifier: MIT

// Package watch triggers rescans when documents under the docs root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/adrkit/adrkit/internal/log"
	"github.com/adrkit/adrkit/internal/metrics"
)

// DefaultDebounce is the quiet period after the last filesystem event before
// the change callback runs. Editors write several times per save; one scan
// per burst is enough.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a documents tree and invokes a callback once per burst of
// changes. fsnotify does not recurse, so subdirectories are added as they
// appear.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func()
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a watcher for the documents under dir. onChange runs on its
// own goroutine after the debounce window closes. A non-positive debounce
// selects DefaultDebounce.
func New(dir string, debounce time.Duration, onChange func()) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   log.WithComponent("watch"),
	}
}

// Start begins watching the tree and returns once the watcher is armed. The
// watch loop runs until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	w.watcher = watcher

	if err := w.addTree(w.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch docs dir: %w", err)
	}

	w.logger.Info().
		Str("event", "watch.started").
		Str(log.FieldDocsDir, w.dir).
		Msg("watching documents for changes")

	go w.watchLoop(ctx)

	return nil
}

// Stop closes the underlying watcher (if running).
func (w *Watcher) Stop() {
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
}

// addTree registers the root and every existing subdirectory, skipping
// hidden directories the same way the scan walk does.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// watchLoop is the main event loop.
func (w *Watcher) watchLoop(ctx context.Context) {
	// Debounce so a burst of writes triggers one rescan.
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("event", "watch.stopped").Msg("docs watcher stopped")
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// New subdirectories join the watch before filtering so the
			// documents inside them are seen.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !strings.HasPrefix(filepath.Base(event.Name), ".") {
						if err := w.watcher.Add(event.Name); err != nil {
							w.logger.Warn().
								Err(err).
								Str("event", "watch.add_failed").
								Str(log.FieldPath, event.Name).
								Msg("could not watch new directory")
						}
					}
					continue
				}
			}

			if !relevant(event) {
				continue
			}

			metrics.IncWatchEvent()
			w.logger.Debug().
				Str("event", "watch.file_changed").
				Str("op", event.Op.String()).
				Str(log.FieldPath, event.Name).
				Msg("document changed")

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().
				Err(err).
				Str("event", "watch.error").
				Msg("docs watcher error")
		}
	}
}

// relevant reports whether an event should trigger a rescan: markdown
// documents only, hidden files (editor swap and lock files) ignored. The
// generated index.md is ignored too, so a data dir nested inside the docs
// tree cannot feed scan output back into the trigger.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.EqualFold(name, "index.md") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".md")
}
