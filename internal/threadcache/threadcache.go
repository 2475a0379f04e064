// Package threadcache implements the per-worker front tier. Each cache keeps
// one intrusive free list and a length counter per size class; on the fast
// path an allocation is a single pointer pop and a release a single push,
// with no synchronization of any kind.
//
// A ThreadCache is goroutine-confined: it must only ever be used by the
// worker that owns it. All cross-thread traffic goes through the central
// cache in batches.
package threadcache

import (
	"unsafe"

	"github.com/memkit/memkit/internal/centralcache"
	"github.com/memkit/memkit/internal/freelist"
	"github.com/memkit/memkit/internal/sizeclass"
	"github.com/memkit/memkit/internal/stats"
)

// ThreadCache satisfies most allocation traffic from thread-local free
// lists, refilling from and overflowing to the central cache in batches.
type ThreadCache struct {
	freeList [sizeclass.NumClasses]unsafe.Pointer
	freeLen  [sizeclass.NumClasses]int
	central  *centralcache.CentralCache
}

// New returns an empty thread cache backed by the given central cache.
func New(central *centralcache.CentralCache) *ThreadCache {
	return &ThreadCache{central: central}
}

// Allocate returns a block of at least RoundUp(size) bytes aligned to the
// word alignment, or nil when memory cannot be obtained. A zero size is
// served as the minimum block size; sizes above MaxBytes bypass the tiers
// and map pages directly.
func (tc *ThreadCache) Allocate(size uintptr) unsafe.Pointer {
	if size == 0 {
		size = sizeclass.Alignment
	}
	if size > sizeclass.MaxBytes {
		return allocLarge(size)
	}

	index := sizeclass.Index(size)
	if p := tc.freeList[index]; p != nil {
		tc.freeList[index] = freelist.Next(p)
		tc.freeLen[index]--
		stats.Allocs.Add(1)
		return p
	}
	return tc.refill(index)
}

// Deallocate releases a block previously obtained from Allocate with the
// same size. A nil ptr is a no-op. When the class list grows past the
// threshold, three quarters of it is handed back to the central cache.
func (tc *ThreadCache) Deallocate(ptr unsafe.Pointer, size uintptr) {
	if ptr == nil {
		return
	}
	if size == 0 {
		size = sizeclass.Alignment
	}
	if size > sizeclass.MaxBytes {
		freeLarge(ptr, size)
		return
	}

	index := sizeclass.Index(size)
	freelist.Push(&tc.freeList[index], ptr)
	tc.freeLen[index]++
	stats.Frees.Add(1)

	if tc.freeLen[index] > sizeclass.ThreadMaxFree {
		tc.overflow(index)
	}
}

// Flush hands every cached block back to the central cache, leaving the
// cache empty. A worker that is about to retire calls this so its blocks
// stay reachable for other workers.
func (tc *ThreadCache) Flush() {
	for index := 0; index < sizeclass.NumClasses; index++ {
		head := tc.freeList[index]
		if head == nil {
			continue
		}
		tc.central.ReturnRange(head, tc.freeLen[index], index)
		tc.freeList[index] = nil
		tc.freeLen[index] = 0
	}
}

// Cached returns the number of blocks currently held for the given class.
func (tc *ThreadCache) Cached(index int) int {
	if index < 0 || index >= sizeclass.NumClasses {
		return 0
	}
	return tc.freeLen[index]
}

// refill fetches a batch from the central cache, keeps the chain tail as the
// new class list, and returns the chain head to the caller.
func (tc *ThreadCache) refill(index int) unsafe.Pointer {
	batch := sizeclass.BatchFor(sizeclass.BlockSize(index))
	head, got := tc.central.FetchRange(index, batch)
	if head == nil {
		return nil
	}

	tc.freeList[index] = freelist.Next(head)
	tc.freeLen[index] += got - 1
	stats.Allocs.Add(1)
	return head
}

// overflow keeps a quarter of the class list (at least one block) and hands
// the rest back to the central cache. When the list ends before the keep
// boundary the counter is trued up to what was actually walked.
func (tc *ThreadCache) overflow(index int) {
	length := tc.freeLen[index]
	if length <= 1 {
		return
	}

	keep := length / 4
	if keep < 1 {
		keep = 1
	}

	split := tc.freeList[index]
	kept := 1
	for kept < keep && freelist.Next(split) != nil {
		split = freelist.Next(split)
		kept++
	}

	rest := freelist.Next(split)
	freelist.SetNext(split, nil)
	tc.freeLen[index] = kept

	if rest != nil {
		tc.central.ReturnRange(rest, length-kept, index)
	}
}
