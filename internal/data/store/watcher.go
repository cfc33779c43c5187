package store

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// SettingsWatcher reloads the settings store when its file is rewritten by
// another process (an editor, a concurrent import).
type SettingsWatcher struct {
	watcher  *fsnotify.Watcher
	settings *SettingsStore
	done     chan struct{}
}

// NewSettingsWatcher watches the directory containing the settings file.
// Watching the directory rather than the file survives the rename-based
// atomic writes the store itself performs.
func NewSettingsWatcher(settings *SettingsStore) (*SettingsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(settings.Path())); err != nil {
		watcher.Close()
		return nil, err
	}

	sw := &SettingsWatcher{
		watcher:  watcher,
		settings: settings,
		done:     make(chan struct{}),
	}
	go sw.processEvents()
	return sw, nil
}

func (sw *SettingsWatcher) processEvents() {
	target := sw.settings.Path()
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Name != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			util.LogDebug("Settings file changed, reloading: " + event.Name)
			sw.settings.Reload()

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Settings watch error: " + err.Error())

		case <-sw.done:
			return
		}
	}
}

func (sw *SettingsWatcher) Close() error {
	close(sw.done)
	return sw.watcher.Close()
}
