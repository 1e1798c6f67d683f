// ABOUTME: Change watcher for the token file
// ABOUTME: Signals when another process of the same user alters stored tokens

package tokenstore

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports external changes to a file-backed token store.
// Changes made through this process also fire; consumers re-derive
// session state from the store either way, so that is harmless.
type Watcher struct {
	fw      *fsnotify.Watcher
	path    string
	changes chan struct{}
	done    chan struct{}
}

// NewWatcher watches the store's backing file. The parent directory is
// watched rather than the file itself so replace-style writes are seen.
func NewWatcher(store *FileStore) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		fw:      fw,
		path:    store.Path(),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers one signal per observed change, coalescing bursts
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
				// a signal is already pending
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}
