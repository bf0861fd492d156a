package snapshot

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the entries of one directory at a time.
type Watcher struct {
	fsw     *fsnotify.Watcher
	changes chan string
	errs    chan error

	mu  sync.Mutex
	dir string

	done chan struct{}
	once sync.Once
}

func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		fsw:     fsw,
		changes: make(chan string, 1),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch switches the watcher to dir, dropping the previous directory.
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dir == dir {
		return nil
	}
	if w.dir != "" {
		_ = w.fsw.Remove(w.dir)
	}
	w.dir = ""
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dir = dir
	return nil
}

// Changes delivers the watched directory whenever an entry is created,
// removed or renamed. Bursts are coalesced into one notification.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) Errors() <-chan error {
	return w.errs
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

// loop closes Changes and Errors when it returns, which releases any reader
// still waiting after Close.
func (w *Watcher) loop() {
	defer close(w.errs)
	defer close(w.changes)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.mu.Lock()
			dir := w.dir
			w.mu.Unlock()
			if dir == "" {
				continue
			}
			select {
			case w.changes <- dir:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
