package player

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"music-board/internal/storage"
)

type settingsJob struct {
	key storage.Key
	upd storage.MusicUpdate
}

// settingsWriter applies settings updates off the playback path. Failures
// are logged and never reach the user.
type settingsWriter struct {
	store   SettingsStore
	timeout time.Duration
	log     *log.Logger

	mu     sync.RWMutex
	closed bool
	jobs   chan settingsJob
	wg     sync.WaitGroup
}

func newSettingsWriter(store SettingsStore, timeout time.Duration, logger *log.Logger) *settingsWriter {
	w := &settingsWriter{
		store:   store,
		timeout: timeout,
		log:     logger,
		jobs:    make(chan settingsJob, 64),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *settingsWriter) enqueue(key storage.Key, upd storage.MusicUpdate) {
	if w.store == nil || upd.IsZero() {
		return
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.jobs <- settingsJob{key: key, upd: upd}:
	default:
		w.log.Warn("Settings queue full, dropping update", "key", key.String())
	}
}

func (w *settingsWriter) run() {
	defer w.wg.Done()

	for job := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.store.UpdateMany(ctx, job.key, job.upd)
		cancel()
		if err != nil {
			w.log.Error("Settings write failed", "err", &PersistenceError{Key: job.key, Err: err})
		}
	}
}

// close drains pending writes.
func (w *settingsWriter) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()

	w.wg.Wait()
}

func storageVolume(level int) storage.MusicUpdate {
	return storage.MusicUpdate{Volume: &level}
}
