package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cesargomez89/gtstats/internal/constants"
	"github.com/cesargomez89/gtstats/internal/logger"
)

// Snapshot holds the last successfully parsed contents of a watched file.
// Read routes serve this snapshot until the next change event; a failed
// re-read never clears it.
type Snapshot struct {
	mu   sync.RWMutex
	data []byte
}

// Bytes returns the cached document, or nil before the first successful load.
func (s *Snapshot) Bytes() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Snapshot) set(data []byte) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

// Watch keeps a snapshot of rel in sync with the file on disk. The containing
// directory is watched so the file may not exist yet; change events are
// debounced to avoid reacting to partial writes. The initial read happens
// before Watch returns.
func (s *Store) Watch(ctx context.Context, rel string, log *logger.Logger) (*Snapshot, error) {
	path := s.Path(rel)
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	reload := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("watch read failed", "file", rel, "error", err)
			return
		}
		if !json.Valid(data) {
			log.Warn("watch parse failed", "file", rel)
			return
		}
		snap.set(data)
	}
	reload()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	var pending atomic.Bool
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Op.Has(fsnotify.Write | fsnotify.Create | fsnotify.Rename) {
					continue
				}
				// Coalesce bursts: one reload per debounce window.
				if !pending.CompareAndSwap(false, true) {
					continue
				}
				time.AfterFunc(constants.WatchDebounce, func() {
					defer pending.Store(false)
					reload()
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", "file", rel, "error", err)
			}
		}
	}()

	return snap, nil
}
