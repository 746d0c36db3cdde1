package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/pontos/internal/storage"
)

// watcherTestEnv sets up a docs dir, storage, and DB for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB) {
	t.Helper()
	docsDir := t.TempDir()
	store, err := storage.NewFS(docsDir)
	if err != nil {
		t.Fatal(err)
	}
	return docsDir, store, testDB(t)
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Watch(ctx) //nolint:errcheck
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)

	var mu sync.Mutex
	var events []string
	var batches atomic.Int32

	startWatcher(t, &Watcher{
		DB:     db,
		Store:  store,
		Logger: quietLogger(),
		OnChange: func(kind, path string) {
			mu.Lock()
			events = append(events, kind+":"+path)
			mu.Unlock()
		},
		OnBatch: func() { batches.Add(1) },
	})

	_ = os.WriteFile(filepath.Join(docsDir, "new.mdx"), []byte(song("Ogum", "Novo", "Ogum yê")), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new.mdx")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.mdx" {
				return true
			}
		}
		return false
	}, "expected created:new.mdx callback")

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		return batches.Load() > 0
	}, "expected a batch callback after changes settled")
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	var batches atomic.Int32
	startWatcher(t, &Watcher{DB: db, Store: store, Logger: quietLogger(), OnBatch: func() { batches.Add(1) }})

	_ = os.WriteFile(filepath.Join(docsDir, "notes.txt"), []byte(song("Ogum", "Texto", "x")), 0o644)
	time.Sleep(time.Second)

	sums, _ := db.AllChecksums()
	if len(sums) != 0 {
		t.Errorf("unexpected catalog rows: %v", sums)
	}
	if batches.Load() != 0 {
		t.Error("batch callback fired for ignored file")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)
	startWatcher(t, &Watcher{DB: db, Store: store, Logger: quietLogger()})

	subDir := filepath.Join(docsDir, "oxum")
	_ = os.Mkdir(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte(song("Oxum", "Fundo", "Ora yê yê")), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum(filepath.Join("oxum", "deep.md"))
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromCatalog(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(docsDir, "del.mdx"), []byte(song("Exu", "Apagar", "Laroyê")), 0o644)
	_ = Sync(db, store, "", quietLogger())

	cs, _ := db.GetChecksum("del.mdx")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	startWatcher(t, &Watcher{DB: db, Store: store, Logger: quietLogger()})
	_ = os.Remove(filepath.Join(docsDir, "del.mdx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del.mdx")
		return cs == ""
	}, "deleted file still in catalog")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	docsDir, store, db := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(docsDir, "old.mdx"), []byte(song("Iansã", "Renomear", "Eparrei")), 0o644)
	_ = Sync(db, store, "", quietLogger())

	startWatcher(t, &Watcher{DB: db, Store: store, Logger: quietLogger()})
	_ = os.Rename(filepath.Join(docsDir, "old.mdx"), filepath.Join(docsDir, "renamed.mdx"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old.mdx")
		newCS, _ := db.GetChecksum("renamed.mdx")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old path should be removed and new path indexed")
}
