package watch

import "github.com/fsnotify/fsnotify"

var IsHidden = isHidden

func (w *Watcher) HandleEvent(event fsnotify.Event) []Change {
	return w.handleEvent(event)
}
