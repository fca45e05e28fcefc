package lesson

import (
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to one unit file at a time. Editors often replace
// files instead of writing them, so the parent directory is watched.
type Watcher struct {
	w       *fsnotify.Watcher
	logger  *log.Logger
	changes chan string
	done    chan struct{}

	mu   sync.Mutex
	file string
	dir  string
}

// NewWatcher starts a watcher.
func NewWatcher(logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		w:       fw,
		logger:  logger,
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch switches to path, dropping any previously watched file.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dir != "" && w.dir != dir {
		if err := w.w.Remove(w.dir); err != nil {
			w.logger.Debug("fsnotify fail to unwatch dir", "dir", w.dir, "err", err)
		}
	}
	if w.dir != dir {
		if err := w.w.Add(dir); err != nil {
			return err
		}
	}
	w.file, w.dir = abs, dir
	w.logger.Debug("watching unit", "file", abs)
	return nil
}

// Unwatch stops watching.
func (w *Watcher) Unwatch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dir != "" {
		_ = w.w.Remove(w.dir)
	}
	w.file, w.dir = "", ""
}

// Changes delivers the path of the watched file after each write.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops the watcher. Changes is not closed.
func (w *Watcher) Close() error {
	close(w.done)
	return w.w.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			file := w.file
			w.mu.Unlock()
			if file == "" || filepath.Clean(event.Name) != file {
				continue
			}
			w.logger.Debug("fsnotify event", "file", event.Name, "event", event.Op)
			select {
			case w.changes <- file:
			default:
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.logger.Debug("fsnotify error", "err", err)
		}
	}
}
