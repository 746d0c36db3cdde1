package catalog

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/pontos/internal/search"
	"github.com/starford/pontos/internal/storage"
)

const (
	reconcileDelay = 200 * time.Millisecond
	rebuildDelay   = 500 * time.Millisecond
)

// EventCallback is called after a watcher-driven catalog change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watcher keeps the catalog in sync with the docs tree.
type Watcher struct {
	DB      *DB
	Store   storage.Provider
	BaseURL string
	Logger  *slog.Logger
	// OnChange is called after each catalog mutation.
	OnChange EventCallback
	// OnBatch is called once a burst of changes has settled. The serve
	// command rebuilds the search JSON here.
	OnBatch func()
}

// Watch starts an fsnotify watcher on the docs root and processes change
// events until ctx is cancelled.
//
// New directories are added to the watch list. Rename events trigger a
// reconciliation pass that removes rows whose files no longer exist.
func (wt *Watcher) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := wt.Store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	wt.Logger.Info("watcher: started", slog.String("root", root))

	reconcile := newDebounce(reconcileDelay)
	rebuild := newDebounce(rebuildDelay)
	defer reconcile.stop()
	defer rebuild.stop()

	for {
		select {
		case <-ctx.Done():
			wt.Logger.Info("watcher: stopped")
			return nil

		case <-reconcile.c():
			if wt.reconcile() {
				rebuild.schedule()
			}

		case <-rebuild.c():
			if wt.OnBatch != nil {
				wt.OnBatch()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if wt.handle(w, ev, reconcile) {
				rebuild.schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			wt.Logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies a single event and reports whether the catalog changed.
func (wt *Watcher) handle(w *fsnotify.Watcher, ev fsnotify.Event, reconcile *debounce) bool {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if addErr := addDirsRecursive(w, absPath); addErr != nil {
				wt.Logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			} else {
				wt.Logger.Debug("watcher: watching new dir", slog.String("path", absPath))
			}
			return wt.indexNewDir(absPath)
		}
	}

	if !storage.HasExtension(absPath, search.Extensions...) {
		return false
	}

	rel, relErr := filepath.Rel(wt.Store.Root(), absPath)
	if relErr != nil {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		data, readErr := wt.Store.Read(rel)
		if readErr != nil {
			wt.Logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return false
		}
		existed, _ := wt.DB.GetChecksum(rel)
		indexed, idxErr := indexFile(wt.DB, wt.BaseURL, rel, data)
		if idxErr != nil {
			wt.Logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
			return false
		}
		kind := "updated"
		switch {
		case !indexed && existed != "":
			kind = "deleted"
		case !indexed:
			return false
		case existed == "":
			kind = "created"
		}
		wt.Logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
		wt.notify(kind, rel)
		return true

	case ev.Op&fsnotify.Remove != 0:
		if delErr := wt.DB.Delete(rel); delErr != nil {
			wt.Logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
			return false
		}
		wt.Logger.Debug("watcher: deleted", slog.String("path", rel))
		wt.notify("deleted", rel)
		return true

	case ev.Op&fsnotify.Rename != 0:
		// Rename fires on the old path only; the new path arrives as a
		// Create if it stays inside a watched dir.
		if delErr := wt.DB.Delete(rel); delErr != nil {
			wt.Logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
		} else {
			wt.notify("deleted", rel)
		}
		reconcile.schedule()
		return true
	}
	return false
}

// reconcile removes rows without a file on disk and indexes files whose
// checksum differs from the catalog.
func (wt *Watcher) reconcile() bool {
	checksums, err := wt.DB.AllChecksums()
	if err != nil {
		wt.Logger.Warn("watcher: reconcile checksums failed", slog.String("error", err.Error()))
		return false
	}

	metas, err := wt.Store.List("", search.Extensions...)
	if err != nil {
		wt.Logger.Warn("watcher: reconcile list failed", slog.String("error", err.Error()))
		return false
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	changed := false
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if delErr := wt.DB.Delete(p); delErr == nil {
				wt.Logger.Debug("watcher: removed stale", slog.String("path", p))
				wt.notify("deleted", p)
				changed = true
			}
		}
	}

	for _, m := range metas {
		if checksums[m.Path] == m.Checksum {
			continue
		}
		data, readErr := wt.Store.Read(m.Path)
		if readErr != nil {
			continue
		}
		if indexed, idxErr := indexFile(wt.DB, wt.BaseURL, m.Path, data); idxErr == nil && indexed {
			wt.Logger.Debug("watcher: reconciled", slog.String("path", m.Path))
			wt.notify("created", m.Path)
			changed = true
		}
	}
	return changed
}

// indexNewDir indexes documents already present in a newly created directory.
func (wt *Watcher) indexNewDir(dirPath string) bool {
	changed := false
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.HasExtension(path, search.Extensions...) {
			return nil
		}
		rel, relErr := filepath.Rel(wt.Store.Root(), path)
		if relErr != nil {
			return nil
		}
		data, readErr := wt.Store.Read(rel)
		if readErr != nil {
			return nil
		}
		if indexed, idxErr := indexFile(wt.DB, wt.BaseURL, rel, data); idxErr == nil && indexed {
			wt.Logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			wt.notify("created", rel)
			changed = true
		}
		return nil
	})
	return changed
}

func (wt *Watcher) notify(kind, path string) {
	if wt.OnChange != nil {
		wt.OnChange(kind, path)
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// debounce is a resettable one-shot timer usable from a select loop.
type debounce struct {
	delay time.Duration
	timer *time.Timer
}

func newDebounce(d time.Duration) *debounce { return &debounce{delay: d} }

func (d *debounce) schedule() {
	if d.timer == nil {
		d.timer = time.NewTimer(d.delay)
		return
	}
	d.timer.Reset(d.delay)
}

// c returns the timer channel, or nil (blocks forever) when unscheduled.
func (d *debounce) c() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

func (d *debounce) stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
}
