package dirstats

import (
	"time"

	"go.uber.org/zap"

	"github.com/tw93/mole/internal/metrics"
)

// CancelTraversal stops all traversals and blocks until every running
// worker has returned. Totals gathered so far are kept; only claims are
// released, so a later RequestTraversal resumes where the walk stopped.
//
// A worker stuck inside a directory listing delays the return until the
// listing finishes.
func (e *Engine) CancelTraversal() {
	e.barrier.Lock()
	defer e.barrier.Unlock()
	e.cancelLocked()
}

// Invalidate cancels all traversals and clears the cache. Call it after
// any change to the filesystem.
func (e *Engine) Invalidate() {
	e.barrier.Lock()
	defer e.barrier.Unlock()

	e.cancelLocked()
	e.cache.Invalidate()
	metrics.RecordInvalidate()
	e.log.Info("cache invalidated")
}

// cancelLocked runs the drain with e.barrier held.
func (e *Engine) cancelLocked() {
	start := time.Now()
	e.cancelling.Store(true)
	e.epoch.Add(1)

	e.wmu.Lock()
	for e.inflight > 0 {
		e.idle.Wait()
	}
	e.wmu.Unlock()

	e.cache.mu.Lock()
	e.cache.releaseClaimsLocked()
	e.cache.mu.Unlock()

	e.cancelling.Store(false)

	drain := time.Since(start)
	metrics.RecordCancel(drain)
	e.log.Debug("traversal cancelled", zap.Duration("drain", drain))
}
