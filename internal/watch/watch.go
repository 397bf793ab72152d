// Package watch reports changes to directories the analyzer is showing.
//
// fsnotify events are noisy (metadata touches, repeated writes), so every
// event for a watched directory is confirmed by re-listing it and comparing
// a fingerprint of the listing before the change callback runs.
package watch

import (
	"context"
	"encoding/binary"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tw93/mole/internal/lister"
)

// Watcher calls onChange when the listing of a watched directory changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	lister   lister.Lister
	onChange func(dir string)
	log      *zap.Logger

	mu     sync.Mutex
	prints map[string]uint64
}

// New creates a watcher. onChange runs on the watcher's goroutine.
func New(l lister.Lister, onChange func(dir string), logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		fsw:      fsw,
		lister:   l,
		onChange: onChange,
		log:      logger.Named("watch"),
		prints:   make(map[string]uint64),
	}, nil
}

// Watch starts watching dir (not recursively).
func (w *Watcher) Watch(dir string) error {
	dir = filepath.Clean(dir)
	entries, err := w.lister.List(dir)
	if err != nil {
		return err
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.mu.Lock()
	w.prints[dir] = Fingerprint(entries)
	w.mu.Unlock()
	return nil
}

// Unwatch stops watching dir.
func (w *Watcher) Unwatch(dir string) error {
	dir = filepath.Clean(dir)
	w.mu.Lock()
	_, ok := w.prints[dir]
	delete(w.prints, dir)
	w.mu.Unlock()
	if !ok {
		return nil
	}
	return w.fsw.Remove(dir)
}

// Run delivers change callbacks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.fsw.Events:
				if !ok {
					return nil
				}
				w.handle(ev)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return nil
				}
				w.log.Warn("watch error", zap.Error(err))
			}
		}
	})
	return g.Wait()
}

// Close releases the underlying watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)

	w.mu.Lock()
	dir := name
	old, ok := w.prints[dir]
	if !ok {
		dir = filepath.Dir(name)
		old, ok = w.prints[dir]
	}
	w.mu.Unlock()
	if !ok {
		return
	}

	var sum uint64
	entries, err := w.lister.List(dir)
	if err == nil {
		sum = Fingerprint(entries)
	}
	if err == nil && sum == old {
		return
	}

	w.mu.Lock()
	if _, still := w.prints[dir]; still {
		w.prints[dir] = sum
	}
	w.mu.Unlock()

	w.log.Debug("directory changed", zap.String("path", dir), zap.Stringer("op", ev.Op))
	w.onChange(dir)
}

// Fingerprint hashes the parts of a listing that affect directory totals.
// Entry order does not matter.
func Fingerprint(entries []lister.Entry) uint64 {
	sorted := append([]lister.Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	d := xxhash.New()
	var buf [8]byte
	for _, e := range sorted {
		_, _ = d.WriteString(e.Name)
		kind := byte(0)
		if e.IsDir {
			kind = 1
		}
		_, _ = d.Write([]byte{0, kind})
		binary.LittleEndian.PutUint64(buf[:], uint64(e.Size))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(e.ModTime.UnixNano()))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
