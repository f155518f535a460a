package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/nodegridgo/internal/fsutil"
)

// watchDebounce collapses the burst of events an editor save produces into
// one reload.
const watchDebounce = 100 * time.Millisecond

// watch reloads the graphs whenever an .hcl file under the graph path
// changes, until ctx is done. A failed reload is logged and the previous
// graphs stay attached.
func (a *App) watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer w.Close()

	root := filepath.Clean(a.config.GraphPath)
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("error accessing path %s: %w", root, err)
	}
	// A single file is watched through its directory so that editors which
	// replace the file on save do not drop the watch.
	single := !info.IsDir()
	if single {
		err = w.Add(filepath.Dir(root))
	} else {
		err = addRecursive(w, root)
	}
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", root, err)
	}
	a.logger.Info("👀 Watching for graph file changes.", "path", root)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("🏁 Watch stopped.")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) && !single {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := addRecursive(w, ev.Name); err != nil {
						a.logger.Warn("Failed to watch new directory.", "path", ev.Name, "error", err)
					}
				}
			}
			if !relevant(ev, root, single) {
				continue
			}
			a.logger.Debug("Graph file changed.", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerC = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("File watcher error.", "error", err)

		case <-timerC:
			timerC = nil
			a.logger.Info("🔄 Reloading graphs.")
			if _, err := a.Load(ctx); err != nil {
				a.logger.Error("Reload failed, keeping the previous graphs.", "error", err)
			}
		}
	}
}

func relevant(ev fsnotify.Event, root string, single bool) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	if single {
		return filepath.Clean(ev.Name) == root
	}
	return filepath.Ext(ev.Name) == ".hcl"
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	dirs, err := fsutil.Dirs(root)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return err
		}
	}
	return nil
}
