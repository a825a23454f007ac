package cache

import (
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/osymandias-go/slippymap/tile"
)

// destroyCounter builds a destroy func that records every destroyed value,
// for assertions about exactly-once destruction (invariant 3, scenario 4, 6-8).
func destroyCounter() (func(int), *[]int, *sync.Mutex) {
	var mu sync.Mutex
	var destroyed []int
	return func(v int) {
		mu.Lock()
		destroyed = append(destroyed, v)
		mu.Unlock()
	}, &destroyed, &mu
}

func TestInsertThenSearchImmediate(t *testing.T) {
	destroy, _, _ := destroyCounter()
	c := New[int](4, destroy)

	a := tile.Address{Z: 2, X: 1, Y: 1}
	c.Insert(a, 42)

	v, out, ok := c.Search(a)
	if !ok || v != 42 || out != a {
		t.Fatalf("Search() = (%v, %v, %v), want (42, %v, true)", v, out, ok, a)
	}
}

func TestInsertOverwriteDestroysPreviousKeepsUsed(t *testing.T) {
	destroy, destroyed, mu := destroyCounter()
	c := New[int](4, destroy)

	a := tile.Address{Z: 1, X: 0, Y: 0}
	c.Insert(a, 1)
	c.Insert(a, 2)

	if got := c.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}

	v, _, ok := c.Search(a)
	if !ok || v != 2 {
		t.Fatalf("Search() = (%v, %v), want (2, true)", v, ok)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(*destroyed) != 1 || (*destroyed)[0] != 1 {
		t.Fatalf("destroyed = %v, want [1]", *destroyed)
	}
}

func TestEvictionPicksGloballyStalestNode(t *testing.T) {
	destroy, destroyed, mu := destroyCounter()
	c := New[int](2, destroy)

	t0 := tile.Address{Z: 0, X: 0, Y: 0}
	t1 := tile.Address{Z: 1, X: 0, Y: 0}
	t2 := tile.Address{Z: 1, X: 1, Y: 1}

	c.Insert(t0, 100)
	c.Insert(t1, 101)

	// Touch t0 so t1 becomes the stalest node.
	if _, _, ok := c.Search(t0); !ok {
		t.Fatal("expected hit on t0")
	}

	c.Insert(t2, 102)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	mu.Lock()
	if len(*destroyed) != 1 || (*destroyed)[0] != 101 {
		t.Fatalf("destroyed = %v, want [101] (the stalest node, t1)", *destroyed)
	}
	mu.Unlock()

	// Search(t1) still succeeds through its ancestor t0; only a hit at t1
	// itself would mean t1 survived eviction.
	if _, out, ok := c.Search(t1); ok && out == t1 {
		t.Fatal("t1 should have been evicted")
	}
	if _, _, ok := c.Search(t0); !ok {
		t.Fatal("t0 should still be present")
	}
	if _, _, ok := c.Search(t2); !ok {
		t.Fatal("t2 should be present")
	}
}

func TestInsertOutOfRangeDestroysAndChangesNothing(t *testing.T) {
	destroy, destroyed, mu := destroyCounter()
	c := New[int](4, destroy)

	bad := tile.Address{Z: 2, X: 9, Y: 0} // x >= 2^2
	c.Insert(bad, 7)

	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
	mu.Lock()
	if len(*destroyed) != 1 || (*destroyed)[0] != 7 {
		t.Fatalf("destroyed = %v, want [7]", *destroyed)
	}
	mu.Unlock()
}

func TestSearchMissAtZoomZeroDoesNotAscendFurther(t *testing.T) {
	destroy, _, _ := destroyCounter()
	c := New[int](4, destroy)

	_, out, ok := c.Search(tile.Address{Z: 0, X: 0, Y: 0})
	if ok {
		t.Fatal("expected miss on empty cache")
	}
	if out != (tile.Address{}) {
		t.Fatalf("out = %+v, want zero value", out)
	}
}

func TestSearchReturnsAncestorAndZoomDelta(t *testing.T) {
	destroy, _, _ := destroyCounter()
	c := New[int](8, destroy)

	ancestor := tile.Address{Z: 2, X: 1, Y: 1}
	c.Insert(ancestor, 55)

	child := tile.Address{Z: 5, X: 9, Y: 9} // descends from (2,1,1) via repeated halving
	v, out, ok := c.Search(child)
	if !ok || v != 55 || out != ancestor {
		t.Fatalf("Search(child) = (%v, %+v, %v), want (55, %+v, true)", v, out, ok, ancestor)
	}
	if child.Z-out.Z != 3 {
		t.Fatalf("zoom delta = %d, want 3", child.Z-out.Z)
	}
}

func TestCapacityPlusOneInsertsEvictExactlyOnce(t *testing.T) {
	destroy, destroyed, mu := destroyCounter()
	cap := 4
	c := New[int](cap, destroy)

	for i := 0; i < cap+1; i++ {
		c.Insert(tile.Address{Z: 3, X: uint32(i), Y: 0}, i)
	}

	if c.Len() != cap {
		t.Fatalf("Len() = %d, want %d", c.Len(), cap)
	}
	mu.Lock()
	if len(*destroyed) != 1 {
		t.Fatalf("destroyed count = %d, want 1", len(*destroyed))
	}
	mu.Unlock()
}

func TestConcurrentInsertSearchStaysConsistent(t *testing.T) {
	destroy, _, _ := destroyCounter()
	c := New[int](50, destroy)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		i := i
		g.Go(func() error {
			addr := tile.Address{Z: 4, X: uint32(i % 16), Y: uint32(i / 16)}
			c.Insert(addr, i)
			c.Search(addr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("errgroup returned error: %v", err)
	}

	if c.Len() > 50 {
		t.Fatalf("Len() = %d exceeds capacity 50", c.Len())
	}
}
