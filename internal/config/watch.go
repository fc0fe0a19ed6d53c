package config

import (
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// ReloadMsg carries a config re-read after its file changed on disk.
type ReloadMsg struct {
	Config *Config
	Err    error
}

// Watcher reloads the config file when it changes.
type Watcher struct {
	path   string
	fsw    *fsnotify.Watcher
	events chan ReloadMsg
	once   sync.Once
}

// Watch starts watching path. The parent directory is watched so that
// editors which save by rename are still seen.
func Watch(path string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{path: path, fsw: fsw, events: make(chan ReloadMsg, 1)}
	go w.loop(debounce)
	return w, nil
}

func (w *Watcher) loop(debounce time.Duration) {
	var (
		mu     sync.Mutex
		timer  *time.Timer
		closed bool
	)
	defer func() {
		mu.Lock()
		closed = true
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		close(w.events)
	}()

	target := filepath.Clean(w.path)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				mu.Lock()
				defer mu.Unlock()
				if closed {
					return
				}
				cfg, err := LoadFrom(w.path)
				select {
				case w.events <- ReloadMsg{Config: cfg, Err: err}:
				default:
				}
			})
			mu.Unlock()

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Events delivers one ReloadMsg per debounced change.
func (w *Watcher) Events() <-chan ReloadMsg { return w.events }

// Next returns a command that waits for the next reload. It returns nil
// once the watcher is closed.
func (w *Watcher) Next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.events
		if !ok {
			return nil
		}
		return msg
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() { err = w.fsw.Close() })
	return err
}
