package storage

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
)

const (
	walPrefix           = "kv_"
	walSegmentThreshold = 10000
	walMaxSegments      = 100
)

// WAL is a Store backed by an append-only log. The full key set is replayed
// into memory on open; writes append a new log entry, deletes append a
// tombstone (empty payload).
type WAL struct {
	wal   *gowal.Wal
	mu    sync.RWMutex
	state map[string][]byte
}

// NewWAL opens (or creates) a WAL-backed store under dir and replays it.
func NewWAL(dir string) (*WAL, error) {
	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           walPrefix,
		SegmentThreshold: walSegmentThreshold,
		MaxSegments:      walMaxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init kv WAL")
	}

	state := make(map[string][]byte)
	for idx := uint64(1); idx <= wal.CurrentIndex(); idx++ {
		key, payload, err := wal.Get(idx)
		if err != nil || key == "" {
			continue
		}
		if len(payload) == 0 {
			delete(state, key)
			continue
		}
		state[key] = payload
	}

	return &WAL{wal: wal, state: state}, nil
}

func (w *WAL) Get(key string) ([]byte, bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	value, ok := w.state[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (w *WAL) Set(key string, value []byte) error {
	if len(value) == 0 {
		return errors.New("empty values are reserved for tombstones")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.wal.Write(w.wal.CurrentIndex()+1, key, value); err != nil {
		return errors.Wrap(err, "append kv entry")
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	w.state[key] = stored
	return nil
}

func (w *WAL) Delete(key string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.state[key]; !ok {
		return nil
	}
	if err := w.wal.Write(w.wal.CurrentIndex()+1, key, nil); err != nil {
		return errors.Wrap(err, "append kv tombstone")
	}
	delete(w.state, key)
	return nil
}

// Close closes the underlying log.
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.wal.Close()
}
