package dirstats

import (
	"go.uber.org/zap"

	"github.com/tw93/mole/internal/lister"
	"github.com/tw93/mole/internal/metrics"
)

// walk scans path and its subdirectories depth-first on the calling
// goroutine. On cancellation it returns without releasing its claims;
// CancelTraversal does that once every worker has unwound.
func (e *Engine) walk(path string, epoch uint64) {
	if e.stopped(epoch) {
		return
	}
	if !e.StartTraversal(path) {
		e.log.Debug("traversal refused", zap.String("path", path))
		return
	}

	entries, err := e.lister.List(path)
	metrics.RecordDirListed()
	if err != nil {
		e.fail(path, err)
		return
	}
	if e.stopped(epoch) {
		return
	}

	e.filePass(path, entries)
	if e.stopped(epoch) {
		return
	}

	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		if e.stopped(epoch) {
			return
		}
		e.walk(lister.ChildPath(path, entry), epoch)
	}
	if e.stopped(epoch) {
		return
	}
	e.release(path)
}

// filePass folds the immediate entries of path into its totals and those of
// every ancestor, then completes the node if no child directory is pending.
func (e *Engine) filePass(path string, entries []lister.Entry) {
	c := e.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.getOrCreateLocked(path)
	if n.filePassDone {
		// Resumed after a cancellation; the totals are already in.
		return
	}

	var count, size int64
	pending := make(map[string]struct{})
	for _, entry := range entries {
		count++
		if entry.IsDir {
			child := c.getOrCreateLocked(lister.ChildPath(path, entry))
			if !child.complete {
				pending[entry.Name] = struct{}{}
			}
			continue
		}
		size += entry.Size
	}

	c.foldLocked(n, count, size)
	n.pending = pending
	if len(pending) == 0 {
		c.completeLocked(n)
	}
}

// fail completes path with whatever totals it has. Listing errors never
// reach the caller of RequestTraversal.
func (e *Engine) fail(path string, err error) {
	if lister.IsPermission(err) {
		metrics.RecordPermissionDenied()
		e.log.Debug("directory not readable", zap.String("path", path))
	} else {
		metrics.RecordListError()
		e.log.Warn("directory listing failed", zap.String("path", path), zap.Error(err))
	}

	c := e.cache
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.getOrCreateLocked(path)
	n.pending = nil
	c.completeLocked(n)
	n.inProgress = false
}

func (e *Engine) release(path string) {
	e.cache.mu.Lock()
	defer e.cache.mu.Unlock()
	e.cache.getOrCreateLocked(path).inProgress = false
}
