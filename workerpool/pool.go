// Package workerpool implements the bounded worker pool that fetches and
// decodes tiles off the render thread. It is the Go translation of
// osymandias's threadpool.c: a fixed number of long-lived workers consuming
// a bounded job queue, where enqueue fails fast (never blocks the caller)
// once the queue is full.
//
// osymandias represents the queue as a fixed array of job_size-byte slots
// guarded by a mutex and condition variable, with workers compacting the
// queue by swapping the last slot into the one they just took — an
// intentionally non-FIFO "bag", because by the time a worker gets to a job
// the tile it names may no longer be visible, so no ordering is more
// valuable than any other. spec.md's own Design Notes say a FIFO
// implementation is equally valid since no caller depends on order
// (SPEC_FULL.md §9 / spec.md §9 "Worker job-queue ordering"). This package
// takes that option: the queue is a buffered Go channel, which is FIFO, and
// the worker loop selects between it and a stop channel — the idiomatic Go shape for a
// bounded producer/consumer pool, also the shape df07/go-progressive-
// raytracer's own WorkerPool uses for the same producer/consumer need.
package workerpool

import (
	"context"
	"sync"

	"github.com/osymandias-go/slippymap/tile"
)

// ProcessFunc is bound once at pool construction and invoked for every job
// popped from the queue. It runs with no pool-internal locks held.
type ProcessFunc func(tile.Address)

// Pool is a fixed-size set of worker goroutines draining a bounded job
// queue of tile addresses.
type Pool struct {
	jobs    chan tile.Address
	stop    chan struct{}
	process ProcessFunc

	wg       sync.WaitGroup
	closeOne sync.Once
}

// New starts numWorkers long-lived goroutines, each invoking process for
// every job it pops from a queue capacity deep. Worker lifetime equals pool
// lifetime: they exit only when the pool is closed.
func New(numWorkers, capacity int, process ProcessFunc) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if capacity < 1 {
		capacity = 1
	}

	p := &Pool{
		jobs:    make(chan tile.Address, capacity),
		stop:    make(chan struct{}),
		process: process,
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			// Shutdown: any job still sitting in the queue is discarded,
			// matching spec.md §4.C. tile.Address carries no resources, so
			// there is nothing to leak by dropping it unprocessed.
			return
		case addr := <-p.jobs:
			// select picks pseudo-randomly between ready cases, so this
			// branch can still fire after Close has already closed p.stop
			// while p.jobs had buffered entries. Re-check p.stop here,
			// immediately before running the job, so Close always wins that
			// race instead of leaving it to chance which case got picked.
			select {
			case <-p.stop:
				return
			default:
				p.process(addr)
			}
		}
	}
}

// Enqueue attempts to add a job to the queue. It returns false immediately,
// without blocking, if the queue is at capacity — this is the pool's
// backpressure mechanism, and the caller (the bitmap-cache procurement
// façade) treats false as "try again on a future frame" rather than an
// error. A ctx that is already canceled also returns false without
// enqueuing; this lets the render-thread caller time-box enqueue attempts
// without ever blocking on the pool, matching spec.md §5's "the render
// thread never blocks on the worker pool."
func (p *Pool) Enqueue(ctx context.Context, addr tile.Address) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.stop:
		return false
	default:
	}

	select {
	case p.jobs <- addr:
		return true
	default:
		return false
	}
}

// Close sets the shutdown flag, lets any job a worker has already popped run
// to completion, and waits for every worker goroutine to exit. Jobs still
// sitting in the queue when Close is called are discarded, per spec.md §4.C
// ("Any jobs still pending at shutdown are discarded") — tile.Address
// carries no resources, so the caller's obligation to ensure discarded jobs
// don't leak is trivially satisfied.
func (p *Pool) Close() {
	p.closeOne.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()
}
