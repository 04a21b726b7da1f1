// Package watch re-runs checks when wireframes change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/wirecheck/internal/parser"
)

// Batch is the set of screens touched during one debounce window. Full is
// set when a shared include changed, since every screen may render
// differently.
type Batch struct {
	Paths []string
	Full  bool
}

// Watcher watches a wireframe tree and reports debounced batches.
type Watcher struct {
	fsw      *fsnotify.Watcher
	debounce time.Duration
	onChange func(Batch)
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]bool
	full    bool

	// runMu keeps one onChange in flight. Changes recorded meanwhile are
	// delivered together in the next batch.
	runMu sync.Mutex
}

func New(debounce time.Duration, onChange func(Batch), log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		fsw:      fsw,
		debounce: debounce,
		onChange: onChange,
		log:      log,
		pending:  map[string]bool{},
	}, nil
}

// AddRecursive watches root and every directory below it. Template
// directories are skipped; includes are watched.
func (w *Watcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && d.Name() == "templates" {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Run blocks, dispatching batches, until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	debouncer := NewDebouncer(w.debounce, w.flush)
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.AddRecursive(event.Name)
					continue
				}
			}
			if w.record(event.Name) {
				debouncer.Trigger()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// record queues path and reports whether it is worth a re-run. Issues logs
// are written by the checks themselves and never queue anything.
func (w *Watcher) record(path string) bool {
	if !parser.IsSupportedExtension(path) {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if isInclude(path) {
		w.full = true
	} else {
		w.pending[path] = true
	}
	return true
}

func (w *Watcher) flush() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	w.mu.Lock()
	b := Batch{Full: w.full}
	for p := range w.pending {
		b.Paths = append(b.Paths, p)
	}
	w.pending = map[string]bool{}
	w.full = false
	w.mu.Unlock()

	if len(b.Paths) == 0 && !b.Full {
		return
	}
	slices.Sort(b.Paths)
	w.log.Debug("wireframes changed", "files", len(b.Paths), "full", b.Full)
	if w.onChange != nil {
		w.onChange(b)
	}
}

func isInclude(path string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(filepath.Dir(path)), "/"), "includes")
}
