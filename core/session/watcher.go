package session

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// defaultWatchExcludes are directory patterns never watched.
var defaultWatchExcludes = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
}

// Watcher monitors a repository root recursively and invalidates session
// state when source files change.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	excludes []glob.Glob
	onChange func(path string)

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher creates a recursive watcher over root. onChange is called with
// the changed path for every non-excluded event.
func NewWatcher(root string, onChange func(path string)) (*Watcher, error) {
	excludes := make([]glob.Glob, 0, len(defaultWatchExcludes))
	for _, pattern := range defaultWatchExcludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		excludes = append(excludes, g)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:     root,
		watcher:  fw,
		excludes: excludes,
		onChange: onChange,
		done:     make(chan struct{}),
	}, nil
}

// Start registers the directory tree and begins dispatching events until the
// context is canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addRecursive(w.root); err != nil {
		w.watcher.Close()
		return err
	}

	go w.loop(ctx)
	return nil
}

// Stop ends watching and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(filepath.ToSlash(path)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if w.excluded(filepath.ToSlash(event.Name)) {
		return
	}

	// New directories join the watch set so nested changes keep arriving.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}

	if w.onChange != nil {
		w.onChange(event.Name)
	}
}

func (w *Watcher) excluded(path string) bool {
	for _, g := range w.excludes {
		if g.Match(path) {
			return true
		}
	}
	return false
}
