package shader

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-sprite/engine/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads programs whose source files change on disk. File events are collected on a
// background goroutine; the reloads themselves happen in Poll, which must be called from the thread
// that owns the graphics device.
type Watcher struct {
	fw     *fsnotify.Watcher
	logger *log.Logger

	mu    sync.Mutex
	dirty map[string]struct{}

	// programs and dirs are only touched from the render thread.
	programs map[string][]Program
	dirs     map[string]bool

	wg sync.WaitGroup
}

// NewWatcher starts a file watcher.
//
// Parameters:
//   - logger: logger for reload results; may be nil
//
// Returns:
//   - *Watcher: the watcher
//   - error: error if the platform watcher cannot be created
func NewWatcher(logger *log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}
	w := &Watcher{
		fw:       fw,
		logger:   logger,
		dirty:    make(map[string]struct{}),
		programs: make(map[string][]Program),
		dirs:     make(map[string]bool),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			w.mu.Lock()
			w.dirty[filepath.Clean(ev.Name)] = struct{}{}
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("shader watcher error", "error", err)
		}
	}
}

// Watch registers a program built with BuildFromFiles. The directories holding its stage files and
// every file they include are watched so editors that replace files on save are seen too.
//
// Parameters:
//   - p: the program to reload on change
//
// Returns:
//   - error: error if the program has no source files or a directory cannot be watched
func (w *Watcher) Watch(p Program) error {
	vs, fs := p.Paths()
	if vs == "" || fs == "" {
		return fmt.Errorf("shader program %q was not built from files", p.Label())
	}
	return w.track(p, append([]string{vs, fs}, p.Sources()...))
}

// track adds p to the watch list of each path it is not yet registered under.
func (w *Watcher) track(p Program, paths []string) error {
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		dir := filepath.Dir(abs)
		if !w.dirs[dir] {
			if err := w.fw.Add(dir); err != nil {
				return fmt.Errorf("failed to watch %s: %w", dir, err)
			}
			w.dirs[dir] = true
		}
		if !slices.Contains(w.programs[abs], p) {
			w.programs[abs] = append(w.programs[abs], p)
		}
	}
	return nil
}

// Poll reloads every watched program whose sources changed since the last call. Released programs
// are dropped from the watch list.
//
// Returns:
//   - int: number of programs reloaded successfully
func (w *Watcher) Poll() int {
	w.mu.Lock()
	if len(w.dirty) == 0 {
		w.mu.Unlock()
		return 0
	}
	changed := w.dirty
	w.dirty = make(map[string]struct{})
	w.mu.Unlock()

	seen := make(map[Program]bool)
	reloaded := 0
	for path := range changed {
		live := w.programs[path][:0]
		for _, p := range w.programs[path] {
			if p.RefCount() == 0 {
				continue
			}
			live = append(live, p)
			if seen[p] {
				continue
			}
			seen[p] = true
			if err := p.Reload(); err != nil {
				w.logger.Warn("shader hot reload failed", "path", path, "error", err)
				continue
			}
			reloaded++
			// A reload may have added includes.
			if err := w.track(p, p.Sources()); err != nil {
				w.logger.Warn("shader watcher could not track includes", "label", p.Label(), "error", err)
			}
		}
		w.programs[path] = live
	}
	return reloaded
}

// Close stops watching and waits for the event goroutine to exit.
func (w *Watcher) Close() error {
	err := w.fw.Close()
	w.wg.Wait()
	return err
}
