// Package dirstats keeps recursive file counts and sizes per directory.
//
// An Engine owns a Cache and a pool of traversal workers. Callers request a
// traversal of a directory and then read node state at any time; totals only
// grow within a generation, and a directory becomes Complete once it and
// every directory below it have been scanned.
//
// Each directory is claimed by at most one worker at a time (StartTraversal),
// which is what keeps the additive totals from being applied twice when
// traversals of overlapping subtrees run concurrently.
package dirstats

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/tw93/mole/internal/lister"
	"github.com/tw93/mole/internal/metrics"
)

const (
	minWorkers    = 8
	maxWorkers    = 64
	cpuMultiplier = 2
)

// Options configures an Engine.
type Options struct {
	// Workers bounds the number of traversals running at once.
	// Zero picks a default based on the CPU count.
	Workers int
	// Logger receives engine diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Engine schedules traversal workers over a shared Cache.
type Engine struct {
	cache  *Cache
	lister lister.Lister
	log    *zap.Logger
	sem    *semaphore.Weighted

	ctx  context.Context
	stop context.CancelFunc

	// barrier serializes new requests against a running cancellation.
	barrier    sync.Mutex
	cancelling atomic.Bool
	// epoch advances on every cancellation; queued jobs from an older
	// epoch are dropped when they reach the pool.
	epoch atomic.Uint64

	wmu      sync.Mutex
	idle     *sync.Cond
	inflight int
	queued   int
}

// New creates an engine reading directories through l.
func New(l lister.Lister, opts Options) *Engine {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, stop := context.WithCancel(context.Background())
	e := &Engine{
		cache:  NewCache(),
		lister: l,
		log:    logger.Named("dirstats"),
		sem:    semaphore.NewWeighted(int64(workers)),
		ctx:    ctx,
		stop:   stop,
	}
	e.idle = sync.NewCond(&e.wmu)
	return e
}

// DefaultWorkers returns the pool size used when Options.Workers is zero.
func DefaultWorkers() int {
	n := runtime.NumCPU() * cpuMultiplier
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}

// Cache returns the engine's path cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// GetOrCreate returns the node for path.
func (e *Engine) GetOrCreate(path string) *Node {
	return e.cache.GetOrCreate(path)
}

// Snapshot returns the current stats for path.
func (e *Engine) Snapshot(path string) Stats {
	return e.cache.GetOrCreate(path).Stats()
}

// RequestTraversal queues a traversal of path and returns immediately.
//
// Requests for directories that are already complete or claimed end up as
// no-ops when the worker is refused admission.
func (e *Engine) RequestTraversal(path string) {
	path = cleanPath(path)

	// Wait out any cancellation in progress.
	e.barrier.Lock()
	epoch := e.epoch.Load()
	e.barrier.Unlock()

	if e.ctx.Err() != nil {
		return
	}

	e.wmu.Lock()
	e.queued++
	e.wmu.Unlock()

	go func() {
		defer e.dequeue()
		if err := e.sem.Acquire(e.ctx, 1); err != nil {
			return
		}
		defer e.sem.Release(1)
		e.run(path, epoch)
	}()
}

// StartTraversal claims path for the calling worker. It returns false when
// the node is already complete or claimed; the caller must then leave it alone.
func (e *Engine) StartTraversal(path string) bool {
	e.cache.mu.Lock()
	defer e.cache.mu.Unlock()

	n := e.cache.getOrCreateLocked(cleanPath(path))
	if n.complete || n.inProgress {
		metrics.RecordClaim(false)
		return false
	}
	n.inProgress = true
	metrics.RecordClaim(true)
	return true
}

// Inflight returns the number of running traversal workers.
func (e *Engine) Inflight() int {
	e.wmu.Lock()
	defer e.wmu.Unlock()
	return e.inflight
}

// WaitIdle blocks until no traversal is queued or running.
func (e *Engine) WaitIdle() {
	e.wmu.Lock()
	defer e.wmu.Unlock()
	for e.inflight > 0 || e.queued > 0 {
		e.idle.Wait()
	}
}

// Close stops accepting requests and drains running workers.
func (e *Engine) Close() {
	e.stop()
	e.CancelTraversal()
}

func (e *Engine) dequeue() {
	e.wmu.Lock()
	e.queued--
	e.idle.Broadcast()
	e.wmu.Unlock()
}

func (e *Engine) run(path string, epoch uint64) {
	e.wmu.Lock()
	e.inflight++
	metrics.SetWorkersInflight(e.inflight)
	e.wmu.Unlock()

	defer func() {
		e.wmu.Lock()
		e.inflight--
		metrics.SetWorkersInflight(e.inflight)
		e.idle.Broadcast()
		e.wmu.Unlock()
	}()

	if e.stopped(epoch) {
		return
	}
	e.walk(path, epoch)
}

func (e *Engine) stopped(epoch uint64) bool {
	return e.cancelling.Load() || e.epoch.Load() != epoch || e.ctx.Err() != nil
}
