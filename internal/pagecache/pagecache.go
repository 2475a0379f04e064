// Package pagecache owns every byte the allocator obtains from the OS. It
// serves whole spans, contiguous runs of fixed-size pages, to the central
// cache, splitting larger free spans best-fit and merging a freed span with
// a free right neighbor. Spans, once mapped, are retained until Release.
//
// Two indices reference the same span records and must be updated together:
// freeSpans keyed by page count (for best-fit lookup) and spans keyed by page
// address (for deallocation and adjacency checks). A span record persists in
// the address index for its whole lifetime, whether free or handed out.
package pagecache

import (
	"sort"
	"sync"
	"unsafe"

	"github.com/memkit/memkit/internal/logger"
	"github.com/memkit/memkit/internal/sizeclass"
	"github.com/memkit/memkit/internal/stats"
	"github.com/memkit/memkit/internal/sysmem"
)

// span describes a contiguous run of numPages pages starting at pageAddr.
// next links spans of equal size on a free list.
type span struct {
	pageAddr uintptr
	numPages int
	next     *span
}

// PageCache hands out page spans and reclaims them. All methods are safe for
// concurrent use; span requests are rare (one per span's worth of block
// traffic), so a single mutex covers both indices.
type PageCache struct {
	mu        sync.Mutex
	freeSpans map[int]*span      // page count -> list of free spans of that size
	freeSizes []int              // sorted keys of freeSpans, for best-fit search
	spans     map[uintptr]*span  // page address -> span record
	mappings  map[uintptr][]byte // OS mapping base -> region, for Release
}

// New returns an empty page cache.
func New() *PageCache {
	return &PageCache{
		freeSpans: make(map[int]*span),
		spans:     make(map[uintptr]*span),
		mappings:  make(map[uintptr][]byte),
	}
}

// AllocateSpan returns the start address of a span of exactly numPages pages,
// or nil when the OS refuses more memory. The smallest free span that fits is
// used; oversized spans are split and the tail stays free.
func (pc *PageCache) AllocateSpan(numPages int) unsafe.Pointer {
	if numPages <= 0 {
		return nil
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	if s := pc.takeBestFit(numPages); s != nil {
		if s.numPages > numPages {
			pc.splitSpan(s, numPages)
		}
		return unsafe.Pointer(s.pageAddr)
	}

	b, err := sysmem.Map(numPages * sizeclass.PageSize)
	if err != nil {
		logger.Warn("pagecache: system allocation failed", "pages", numPages, "err", err)
		return nil
	}
	stats.OSMaps.Add(1)

	addr := uintptr(unsafe.Pointer(&b[0]))
	pc.mappings[addr] = b
	s := &span{pageAddr: addr, numPages: numPages}
	pc.spans[addr] = s
	logger.Debug("pagecache: mapped span", "pages", numPages, "addr", addr)
	return unsafe.Pointer(addr)
}

// DeallocateSpan marks the span starting at addr free and merges it with a
// free right neighbor when one exists. Addresses the page cache never handed
// out are ignored.
func (pc *PageCache) DeallocateSpan(addr unsafe.Pointer, numPages int) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	s, ok := pc.spans[uintptr(addr)]
	if !ok {
		return
	}
	if s.numPages != numPages {
		logger.Warn("pagecache: span size mismatch on free",
			"addr", s.pageAddr, "recorded", s.numPages, "claimed", numPages)
	}

	nextAddr := s.pageAddr + uintptr(s.numPages)*sizeclass.PageSize
	if next, ok := pc.spans[nextAddr]; ok && pc.removeFree(next) {
		s.numPages += next.numPages
		delete(pc.spans, next.pageAddr)
		stats.Coalesces.Add(1)
	}

	pc.insertFree(s)
}

// Release unmaps every region obtained from the OS and empties both indices.
// Callers must guarantee no block cut from any span is still in use.
func (pc *PageCache) Release() error {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	var firstErr error
	for addr, b := range pc.mappings {
		if err := sysmem.Unmap(b); err != nil && firstErr == nil {
			firstErr = err
		} else if err == nil {
			stats.OSUnmaps.Add(1)
		}
		delete(pc.mappings, addr)
	}
	pc.freeSpans = make(map[int]*span)
	pc.freeSizes = pc.freeSizes[:0]
	pc.spans = make(map[uintptr]*span)
	return firstErr
}

// takeBestFit detaches and returns the head span of the smallest free size
// that can hold numPages, or nil when nothing fits. Callers hold pc.mu.
func (pc *PageCache) takeBestFit(numPages int) *span {
	i := sort.SearchInts(pc.freeSizes, numPages)
	if i == len(pc.freeSizes) {
		return nil
	}
	size := pc.freeSizes[i]
	s := pc.freeSpans[size]
	if s.next != nil {
		pc.freeSpans[size] = s.next
	} else {
		delete(pc.freeSpans, size)
		pc.freeSizes = append(pc.freeSizes[:i], pc.freeSizes[i+1:]...)
	}
	s.next = nil
	return s
}

// splitSpan shrinks s to numPages and returns the tail to the free index as
// a new span record. Callers hold pc.mu.
func (pc *PageCache) splitSpan(s *span, numPages int) {
	tail := &span{
		pageAddr: s.pageAddr + uintptr(numPages)*sizeclass.PageSize,
		numPages: s.numPages - numPages,
	}
	s.numPages = numPages
	pc.spans[tail.pageAddr] = tail
	pc.insertFree(tail)
	stats.SpanSplits.Add(1)
}

// insertFree prepends s to the free list for its size, registering the size
// in the sorted key slice when the list was empty. Callers hold pc.mu.
func (pc *PageCache) insertFree(s *span) {
	head, ok := pc.freeSpans[s.numPages]
	if !ok {
		i := sort.SearchInts(pc.freeSizes, s.numPages)
		pc.freeSizes = append(pc.freeSizes, 0)
		copy(pc.freeSizes[i+1:], pc.freeSizes[i:])
		pc.freeSizes[i] = s.numPages
	}
	s.next = head
	pc.freeSpans[s.numPages] = s
}

// removeFree unlinks s from the free list for its size and reports whether it
// was found there. A span absent from its free list is currently handed out.
// Callers hold pc.mu.
func (pc *PageCache) removeFree(s *span) bool {
	head, ok := pc.freeSpans[s.numPages]
	if !ok {
		return false
	}
	if head == s {
		if s.next != nil {
			pc.freeSpans[s.numPages] = s.next
		} else {
			delete(pc.freeSpans, s.numPages)
			i := sort.SearchInts(pc.freeSizes, s.numPages)
			pc.freeSizes = append(pc.freeSizes[:i], pc.freeSizes[i+1:]...)
		}
		s.next = nil
		return true
	}
	for prev := head; prev.next != nil; prev = prev.next {
		if prev.next == s {
			prev.next = s.next
			s.next = nil
			return true
		}
	}
	return false
}
