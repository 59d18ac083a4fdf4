package api

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/modpack-dev/modpack/internal/logger"
)

// notifyWatcher watches every directory under root and reports changed file
// paths to onChange. Directories created while watching are added on the
// fly; node_modules and dot directories are skipped.
type notifyWatcher struct {
	root     string
	onChange func(path string)

	mutex           sync.Mutex
	internalWatcher *fsnotify.Watcher
}

func shouldSkipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

func (n *notifyWatcher) addDirTree(dir string) {
	filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != dir && shouldSkipDir(entry.Name()) {
			return filepath.SkipDir
		}
		if addErr := n.internalWatcher.Add(path); addErr != nil {
			logger.Warnf("watch %s: %s", path, addErr.Error())
		}
		return nil
	})
}

func (n *notifyWatcher) start() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	n.internalWatcher = watcher
	n.addDirTree(n.root)

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					// A new directory needs its own watch before anything
					// inside it can be seen.
					n.maybeWatchNewDir(event.Name)
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					n.onChange(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Errorf("watcher: %s", err.Error())
			}
		}
	}()
	return nil
}

func (n *notifyWatcher) maybeWatchNewDir(path string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.internalWatcher == nil {
		return
	}
	if shouldSkipDir(filepath.Base(path)) {
		return
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		n.addDirTree(path)
	}
}

func (n *notifyWatcher) stop() {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	if n.internalWatcher != nil {
		n.internalWatcher.Close()
		n.internalWatcher = nil
	}
}
