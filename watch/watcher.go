// Package watch notices when photos of the collection disappear from disk
package watch

import (
	"context"
	"path/filepath"
	"sync"

	"bitbucket.org/kleinnic74/geosnap/logging"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// RemovedFunc is called with the path of a removed or renamed file
type RemovedFunc func(ctx context.Context, path string)

// Watcher watches the directories of the added files
type Watcher struct {
	w         *fsnotify.Watcher
	onRemoved RemovedFunc

	lock sync.Mutex
	dirs map[string]struct{}
}

func New(onRemoved RemovedFunc) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{w: w, onRemoved: onRemoved, dirs: make(map[string]struct{})}, nil
}

// Add starts watching the directories containing the given files
func (w *Watcher) Add(ctx context.Context, paths ...string) {
	log := logging.From(ctx).Named("watch")
	w.lock.Lock()
	defer w.lock.Unlock()
	for _, p := range paths {
		dir := filepath.Dir(p)
		if _, found := w.dirs[dir]; found {
			continue
		}
		if err := w.w.Add(dir); err != nil {
			log.Warn("Cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.dirs[dir] = struct{}{}
		log.Debug("Watching directory", zap.String("dir", dir))
	}
}

// Reset stops watching all directories
func (w *Watcher) Reset() {
	w.lock.Lock()
	defer w.lock.Unlock()
	for dir := range w.dirs {
		w.w.Remove(dir)
	}
	w.dirs = make(map[string]struct{})
}

// Dirs returns the number of watched directories
func (w *Watcher) Dirs() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return len(w.dirs)
}

// Run delivers removals until ctx is done or the watcher is closed
func (w *Watcher) Run(ctx context.Context) {
	log := logging.From(ctx).Named("watch")
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Info("File removed", zap.String("path", event.Name), zap.Stringer("op", event.Op))
				w.onRemoved(ctx, event.Name)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Warn("Watch error", zap.Error(err))
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) Close() error {
	return w.w.Close()
}
