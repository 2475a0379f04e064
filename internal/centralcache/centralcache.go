// Package centralcache implements the shared middle tier. For each size
// class it keeps one intrusive free list of equally sized blocks behind its
// own spinlock, so hot classes never contend with cold ones. When a class
// runs dry the cache cuts a fresh span from the page cache into blocks,
// hands the requested batch to the caller, and parks the remainder.
//
// Spans are never handed back to the page cache: reclaiming one would
// require knowing when every block cut from it is free, which this design
// does not track.
package centralcache

import (
	"unsafe"

	"github.com/memkit/memkit/internal/freelist"
	"github.com/memkit/memkit/internal/logger"
	"github.com/memkit/memkit/internal/pagecache"
	"github.com/memkit/memkit/internal/sizeclass"
	"github.com/memkit/memkit/internal/spinlock"
	"github.com/memkit/memkit/internal/stats"
)

// CentralCache is the process-wide shared tier between thread caches and the
// page cache. All methods are safe for concurrent use.
type CentralCache struct {
	// heads and locks are parallel arrays; heads[i] is only read or
	// written while locks[i] is held, so the lists need no atomics of
	// their own.
	heads [sizeclass.NumClasses]unsafe.Pointer
	locks [sizeclass.NumClasses]spinlock.Lock
	pages *pagecache.PageCache
}

// New returns a central cache backed by the given page cache.
func New(pages *pagecache.PageCache) *CentralCache {
	return &CentralCache{pages: pages}
}

// FetchRange returns a nil-terminated chain of at most batchNum blocks of
// the given class together with its actual length. The request is advisory:
// a partially stocked class yields a shorter chain. A nil head means memory
// could not be obtained.
func (cc *CentralCache) FetchRange(index, batchNum int) (unsafe.Pointer, int) {
	if index < 0 || index >= sizeclass.NumClasses || batchNum <= 0 {
		return nil, 0
	}

	cc.locks[index].Acquire()
	defer cc.locks[index].Release()

	head := cc.heads[index]
	if head == nil {
		return cc.refill(index, batchNum)
	}

	rest, taken := freelist.Take(head, batchNum)
	cc.heads[index] = rest
	stats.Refills.Add(1)
	return head, taken
}

// ReturnRange prepends a chain of count blocks of the given class to the
// class list. The chain must be nil-terminated; when its length disagrees
// with count a diagnostic is emitted and whatever was found is linked.
func (cc *CentralCache) ReturnRange(head unsafe.Pointer, count, index int) {
	if head == nil || index < 0 || index >= sizeclass.NumClasses || count <= 0 {
		return
	}

	cc.locks[index].Acquire()
	defer cc.locks[index].Release()

	tail := head
	n := 1
	for n < count && freelist.Next(tail) != nil {
		tail = freelist.Next(tail)
		n++
	}
	if n < count {
		logger.Warn("centralcache: returned chain shorter than declared",
			"class", index, "declared", count, "found", n)
	}

	freelist.SetNext(tail, cc.heads[index])
	cc.heads[index] = head
	stats.Returns.Add(1)
}

// refill cuts a fresh span into blocks of the class size, chains the first
// min(batchNum, total) blocks for the caller, and installs any remainder as
// the new class list. Callers hold the class lock.
func (cc *CentralCache) refill(index, batchNum int) (unsafe.Pointer, int) {
	size := sizeclass.BlockSize(index)
	spanPages := sizeclass.SpanPagesFor(size)

	base := cc.pages.AllocateSpan(spanPages)
	if base == nil {
		return nil, 0
	}

	total := spanPages * sizeclass.PageSize / int(size)
	serve := batchNum
	if serve > total {
		serve = total
	}

	head := freelist.Carve(base, size, serve)
	if total > serve {
		remain := unsafe.Pointer(uintptr(base) + uintptr(serve)*size)
		cc.heads[index] = freelist.Carve(remain, size, total-serve)
	}

	stats.SpansCut.Add(1)
	stats.Refills.Add(1)
	return head, serve
}
