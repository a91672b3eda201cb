// Package clip watches the system clipboard for new text.
//
// Linux, macOS and Windows all go through golang.design/x/clipboard with a
// polling loop; the library's native change notification is not reliable
// across Wayland/X11 so polling is used everywhere. On headless hosts
// (no display server) the watcher degrades to a no-op whose channel never
// fires.
package clip

import (
	"bytes"
	"log/slog"
	"sync"
	"time"

	"golang.design/x/clipboard"
)

const pollInterval = 250 * time.Millisecond

// Watcher delivers clipboard text changes on Changes. Writes made through
// Write are not reported back as changes.
type Watcher struct {
	ch   chan string
	done chan struct{}

	mu   sync.Mutex
	last []byte

	available bool
	closeOnce sync.Once
}

// New initialises the system clipboard and starts the polling loop.
// clipboard.Init is called here rather than in init() so that CLI
// sub-commands which never touch the clipboard don't trigger the warning.
func New() *Watcher {
	w := &Watcher{
		ch:   make(chan string, 1),
		done: make(chan struct{}),
	}
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return w
	}
	w.available = true
	// Seed with the current contents so a stale clipboard is not captured
	// as a "new" snippet on startup.
	w.last = clipboard.Read(clipboard.FmtText)
	go w.poll()
	return w
}

// Available reports whether a system clipboard could be initialised.
func (w *Watcher) Available() bool { return w.available }

// Changes returns the channel on which new clipboard text is delivered.
// The channel is never closed.
func (w *Watcher) Changes() <-chan string { return w.ch }

// Write replaces the clipboard contents. The written text is remembered so
// the polling loop does not report it back as a change.
func (w *Watcher) Write(text string) {
	if !w.available {
		return
	}
	data := []byte(text)
	w.mu.Lock()
	w.last = data
	w.mu.Unlock()
	clipboard.Write(clipboard.FmtText, data)
}

// Close stops the polling loop.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() { close(w.done) })
}

func (w *Watcher) poll() {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-t.C:
			text := clipboard.Read(clipboard.FmtText)
			if len(text) == 0 {
				continue
			}
			w.mu.Lock()
			changed := !bytes.Equal(text, w.last)
			if changed {
				w.last = text
			}
			w.mu.Unlock()
			if !changed {
				continue
			}
			select {
			case w.ch <- string(text):
			default:
			}
		}
	}
}
