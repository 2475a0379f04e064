// Package fixedpool is the allocator's earlier-generation design: one fixed
// slot size per pool, slots carved bump-pointer style from slabs, and a
// lock-free Treiber stack as the free list. The tiered allocator replaced it
// because batch slicing does not fit a single compare-and-swap, but the pool
// remains useful when a workload allocates one hot object size.
package fixedpool

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

const (
	// SlotBase is the smallest slot size and the spacing between pools.
	SlotBase = 8

	// MaxSlotSize is the largest slot size a bucket routes to a pool.
	MaxSlotSize = 512

	// NumPools is the number of pools in a bucket, one per slot size.
	NumPools = MaxSlotSize / SlotBase

	// slabSize is how much memory a pool grabs at a time to carve slots
	// from.
	slabSize = 4096
)

// slot overlays the first word of a free slot; slots double as list nodes
// exactly like the tiered allocator's blocks, so every slot size is at least
// one pointer wide.
type slot struct {
	next *slot
}

// Pool hands out fixed-size slots. Free slots are recycled through a
// lock-free stack; carving fresh slots from the current slab takes a mutex,
// but that path runs once per slabSize/slotSize allocations.
type Pool struct {
	slotSize uintptr
	free     atomic.Pointer[slot]

	mu    sync.Mutex
	slabs [][]byte // pins carved memory for the pool's lifetime
	cur   uintptr  // next slot to carve
	end   uintptr  // one past the last carvable slot
}

// Init prepares the pool for the given slot size. size must be a positive
// multiple of SlotBase.
func (p *Pool) Init(size int) {
	p.slotSize = uintptr(size)
}

// Allocate returns one slot. The free stack is tried first; when it is empty
// a slot is carved from the current slab, growing the slab list as needed.
func (p *Pool) Allocate() unsafe.Pointer {
	if s := p.popFree(); s != nil {
		return unsafe.Pointer(s)
	}

	p.mu.Lock()
	if p.cur+p.slotSize > p.end {
		p.grow()
	}
	addr := p.cur
	p.cur += p.slotSize
	p.mu.Unlock()
	return unsafe.Pointer(addr)
}

// Deallocate pushes a slot back onto the free stack. A nil ptr is a no-op.
func (p *Pool) Deallocate(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	p.pushFree((*slot)(ptr))
}

// grow carves a fresh slab. Callers hold p.mu.
func (p *Pool) grow() {
	slab := make([]byte, slabSize)
	p.slabs = append(p.slabs, slab)
	p.cur = uintptr(unsafe.Pointer(&slab[0]))
	p.end = p.cur + slabSize
}

func (p *Pool) pushFree(s *slot) {
	for {
		old := p.free.Load()
		s.next = old
		if p.free.CompareAndSwap(old, s) {
			return
		}
	}
}

func (p *Pool) popFree() *slot {
	for {
		old := p.free.Load()
		if old == nil {
			return nil
		}
		if p.free.CompareAndSwap(old, old.next) {
			return old
		}
	}
}

// Bucket routes sizes to the pool with the smallest sufficient slot.
type Bucket struct {
	pools [NumPools]Pool
}

// NewBucket returns a bucket with one initialized pool per slot size.
func NewBucket() *Bucket {
	b := &Bucket{}
	for i := range b.pools {
		b.pools[i].Init((i + 1) * SlotBase)
	}
	return b
}

// poolIndex returns the pool serving size bytes, or -1 for sizes outside the
// bucket's range.
func poolIndex(size int) int {
	if size <= 0 || size > MaxSlotSize {
		return -1
	}
	return (size + SlotBase - 1) / SlotBase
}

// Alloc returns a slot of at least size bytes, or nil when the size is
// outside the bucket's range.
func (b *Bucket) Alloc(size int) unsafe.Pointer {
	i := poolIndex(size)
	if i < 0 {
		return nil
	}
	return b.pools[i-1].Allocate()
}

// Free releases a slot obtained from Alloc with the same size.
func (b *Bucket) Free(ptr unsafe.Pointer, size int) {
	i := poolIndex(size)
	if i < 0 || ptr == nil {
		return
	}
	b.pools[i-1].Deallocate(ptr)
}
