// Package bitmapcache wraps a cache.Cache of decoded bitmaps with the
// procurement protocol described in spec.md §4.D.3: on a miss, or a hit at a
// coarser zoom than requested, it dispatches a worker-pool job to fetch and
// decode the exact tile, using a nil-valued placeholder entry in the same
// cache to ensure at most one job is ever in flight per address. This is a
// direct translation of osymandias's bitmap_cache.c.
package bitmapcache

import (
	"context"
	"io"
	"sync"

	"github.com/osymandias-go/slippymap/cache"
	"github.com/osymandias-go/slippymap/decode"
	"github.com/osymandias-go/slippymap/store"
	"github.com/osymandias-go/slippymap/tile"
	"github.com/osymandias-go/slippymap/workerpool"
)

// entry is the value type stored in the underlying cache.Cache. A nil Bitmap
// marks a placeholder: "a worker is already procuring this address." The
// destructor registered with cache.New must treat that as a no-op — there is
// nothing to free.
type entry struct {
	bitmap *decode.Bitmap
}

// RepaintNotifier is called every time a worker successfully inserts a real
// bitmap, so the render loop knows it may have new data to draw. It mirrors
// osymandias's framerate_repaint(): an edge-triggered signal where spurious
// calls are harmless. Cache itself never blocks on it.
type RepaintNotifier interface {
	Notify()
}

// Cache is the bitmap-cache procurement façade.
type Cache struct {
	c    *cache.Cache[entry]
	pool *workerpool.Pool

	// mu additionally guards "is a job already enqueued for this address"
	// bookkeeping implicit in the placeholder pattern: all cache access in
	// Lookup and in the worker's completion callback happens under this
	// same lock, per spec.md §5's single-mutex requirement.
	mu sync.Mutex

	store   store.Store
	repaint RepaintNotifier
}

// Config bundles the dependencies a Cache needs to procure tiles.
type Config struct {
	Capacity        int
	NumWorkers      int
	QueueCapacity   int
	Store           store.Store
	RepaintNotifier RepaintNotifier
}

// New builds a bitmap cache backed by a worker pool that opens, decodes, and
// inserts tiles from store. The worker pool's process function runs with no
// cache lock held across the I/O and decode steps, per spec.md §5's
// requirement that "one slow decode does not stall the render thread's
// cache lookups."
func New(cfg Config) *Cache {
	c := &Cache{
		store:   cfg.Store,
		repaint: cfg.RepaintNotifier,
	}
	c.c = cache.New[entry](cfg.Capacity, func(entry) {
		// The destructor is a no-op: entry.bitmap is either nil (a
		// placeholder) or a *decode.Bitmap, and Go's GC reclaims the
		// backing []byte once nothing references it. The hook exists so
		// cache.Cache stays generic over value types whose destruction
		// does matter (texturecache's GPU handles).
	})
	c.pool = workerpool.New(cfg.NumWorkers, cfg.QueueCapacity, c.process)
	return c
}

// process is the worker pool's bound process_fn: store.Open -> decode.Decode
// -> lock -> cache.Insert -> unlock -> notify-repaint, exactly the sequence
// spec.md §6 names for the tile picker's contract with the worker.
func (c *Cache) process(addr tile.Address) {
	rc, err := c.store.Open(addr)
	if err != nil {
		// StoreMiss / StoreIOError: no bitmap produced, placeholder stands
		// until evicted by pressure (spec.md §4.D.5, §7).
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return
	}

	bmp, err := decode.Decode(data)
	if err != nil {
		// DecodeError / WrongSize: same as a store failure, collapse to
		// "no bitmap produced."
		return
	}

	c.mu.Lock()
	c.c.Insert(addr, entry{bitmap: bmp})
	c.mu.Unlock()

	if c.repaint != nil {
		c.repaint.Notify()
	}
}

// Lookup implements the procurement façade of spec.md §4.D.3: it returns the
// best available bitmap for in — possibly an ancestor's — dispatching at
// most one in-flight worker job per address, and recursing via ascend(in)
// (never ascend(out)) once a placeholder is found, per the resolved Open
// Question in spec.md §9 / SPEC_FULL.md §13.
func (c *Cache) Lookup(ctx context.Context, in tile.Address) (bmp *decode.Bitmap, out tile.Address, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(ctx, in, in)
}

// WithLock runs fn while holding the bitmap cache's mutex. It exists for
// texturecache's resolution walk (spec.md §4.D.4), which must search and
// upload a bitmap to a texture without the bitmap being evicted in between;
// fn should call LookupLocked, never Lookup, to avoid self-deadlock.
func (c *Cache) WithLock(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// LookupLocked is Lookup without acquiring the mutex itself. The caller must
// already hold it, typically via WithLock.
func (c *Cache) LookupLocked(ctx context.Context, in tile.Address) (bmp *decode.Bitmap, out tile.Address, ok bool) {
	return c.lookupLocked(ctx, in, in)
}

// lookupLocked does the recursive work of Lookup. `origin` is the address
// the caller originally asked for — the one any procurement job is always
// filed under, however deep the recursion goes — while `in` is the address
// the current recursive step searches from. On a placeholder hit the next
// step searches from ascend(in), one zoom level above *this frame's* in:
// never ascend(out), which would jump straight to one level above wherever
// the placeholder actually sits, skipping the empty levels between in and
// out (spec.md §9 / SPEC_FULL.md §13's resolution of the
// ascend(in)-vs-ascend(out) question). Using a
// fixed, never-advancing origin here instead of in would also be wrong: it
// ascends by the same single level every call and can recurse forever
// against its own immediate parent.
func (c *Cache) lookupLocked(ctx context.Context, origin, in tile.Address) (*decode.Bitmap, tile.Address, bool) {
	e, out, found := c.c.Search(in)

	switch {
	case !found:
		// search fell off the root: nothing cached at all. Procure origin
		// and report no data.
		c.procureLocked(ctx, origin)
		return nil, origin, false

	case e.bitmap != nil && out.Z == in.Z:
		// Exact hit.
		return e.bitmap, out, true

	case e.bitmap != nil:
		// A real ancestor, strictly coarser than requested: serve it, and
		// make sure a job is in flight for the original address.
		c.procureLocked(ctx, origin)
		return e.bitmap, out, true

	default:
		// e.bitmap == nil: we landed on a placeholder. A worker is already
		// procuring `out`; do not enqueue again. Restart the search one
		// zoom level above this frame's `in`, looking for a real ancestor.
		up, ascendOK := in.Ascend()
		if !ascendOK {
			return nil, tile.Address{}, false
		}
		return c.lookupLocked(ctx, origin, up)
	}
}

// procureLocked enqueues a worker job for addr unless a placeholder (or a
// real entry) already exists at that exact address, then installs a nil
// placeholder to prevent duplicate procurement. Must be called with mu held.
func (c *Cache) procureLocked(ctx context.Context, addr tile.Address) {
	if hasExactNode(c.c, addr) {
		return
	}

	if !c.pool.Enqueue(ctx, addr) {
		// QueueFull: no placeholder installed, caller retries next frame
		// (spec.md §4.D.5, §7).
		return
	}

	c.c.Insert(addr, entry{bitmap: nil})
}

// hasExactNode reports whether the cache already holds a node (real value
// or placeholder) at exactly addr, without touching atime beyond what
// Search already does.
func hasExactNode(c *cache.Cache[entry], addr tile.Address) bool {
	_, out, found := c.Search(addr)
	return found && out.Z == addr.Z
}

// Stats exposes the underlying cache's live-node accounting.
func (c *Cache) Stats() cache.Stats {
	return c.c.Stats()
}

// Close shuts down the worker pool and releases cache resources. Any
// in-flight jobs complete; queued-but-undispatched ones are discarded.
func (c *Cache) Close() {
	c.pool.Close()
	c.c.Close()
}
