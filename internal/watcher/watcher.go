package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a corpus for changes with debouncing and pause/resume support.
type Watcher interface {
	// Start begins watching, calling callback with the debounced set of changed paths.
	Start(ctx context.Context, callback func(paths []string)) error

	// Stop stops the watcher and cleans up resources. Safe to call more than once.
	Stop() error

	// Pause stops firing callbacks but keeps accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Options configures a corpus watcher.
type Options struct {
	// Debounce is the quiet period before the callback fires.
	Debounce time.Duration

	// Ignore reports whether a root-relative, slash-separated path should be
	// dropped. Ignored directories are not watched at all.
	Ignore func(relPath string) bool
}

// corpusWatcher implements Watcher over one directory tree.
type corpusWatcher struct {
	fs       *fsnotify.Watcher
	root     string
	debounce time.Duration
	ignore   func(relPath string) bool
	callback func(paths []string)
	cancel   context.CancelFunc

	paused  bool
	pending map[string]struct{} // changed paths not yet delivered
	mu      sync.Mutex          // guards paused and pending

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{} // closed when the event loop exits
}

// New creates a watcher for root and every directory below it that is not
// ignored.
func New(root string, opts Options) (Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &corpusWatcher{
		fs:       fsw,
		root:     root,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		pending:  make(map[string]struct{}),
		doneCh:   make(chan struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.ignore == nil {
		w.ignore = func(string) bool { return false }
	}

	if err := w.watchTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins watching for changes.
func (w *corpusWatcher) Start(ctx context.Context, callback func(paths []string)) error {
	if callback == nil {
		return nil
	}

	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)

	go w.loop(ctx)
	return nil
}

// Stop stops the watcher.
func (w *corpusWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fs.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (w *corpusWatcher) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paused = true
}

// Resume resumes firing callbacks and delivers anything accumulated while paused.
func (w *corpusWatcher) Resume() {
	w.mu.Lock()
	wasPaused := w.paused
	w.paused = false
	w.mu.Unlock()

	if wasPaused {
		w.flush()
	}
}

// loop is the main event loop.
func (w *corpusWatcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.record(event) {
				w.resetTimer(fire)
			}

		case <-fire:
			w.mu.Lock()
			paused := w.paused
			w.mu.Unlock()
			if !paused {
				w.flush()
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// record adds a relevant event to the pending set and starts watching newly
// created directories. It reports whether the event was kept.
func (w *corpusWatcher) record(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if w.ignored(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(event.Name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
			}
		}
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()
	return true
}

// flush hands the pending paths, sorted, to the callback.
func (w *corpusWatcher) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	sort.Strings(paths)
	if w.callback != nil {
		w.callback(paths)
	}
}

func (w *corpusWatcher) resetTimer(fire chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *corpusWatcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// ignored maps path onto the root and asks the ignore func.
func (w *corpusWatcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	return w.ignore(filepath.ToSlash(rel))
}

// watchTree adds dir and its non-ignored subdirectories to the watcher.
func (w *corpusWatcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.ignored(path) {
			return filepath.SkipDir
		}

		if err := w.fs.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
