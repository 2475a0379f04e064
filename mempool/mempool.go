package mempool

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/memkit/memkit/internal/centralcache"
	"github.com/memkit/memkit/internal/pagecache"
	"github.com/memkit/memkit/internal/sizeclass"
	"github.com/memkit/memkit/internal/stats"
	"github.com/memkit/memkit/internal/threadcache"
	"github.com/memkit/memkit/pkg/types"
)

// ErrOutOfMemory indicates the OS refused to provide more memory.
var ErrOutOfMemory = errors.New("mempool: out of memory")

// The central and page caches are process-wide. They are built on first use
// and live until Teardown.
var (
	setupMu sync.Mutex
	pages   *pagecache.PageCache
	central *centralcache.CentralCache
)

func ensure() *centralcache.CentralCache {
	setupMu.Lock()
	defer setupMu.Unlock()
	if central == nil {
		pages = pagecache.New()
		central = centralcache.New(pages)
	}
	return central
}

// Cache is a per-worker allocation handle. A Cache must only be used by one
// goroutine at a time; workers that allocate concurrently each take their
// own. The zero value is not usable; call NewCache.
type Cache struct {
	tc *threadcache.ThreadCache
}

// NewCache returns a fresh per-worker cache bound to the process-wide
// central cache.
func NewCache() *Cache {
	return &Cache{tc: threadcache.New(ensure())}
}

// Allocate returns a block of at least size bytes, aligned to the word
// alignment, or nil when memory cannot be obtained. A zero size yields the
// minimum block size.
func (c *Cache) Allocate(size int) unsafe.Pointer {
	if size < 0 {
		return nil
	}
	return c.tc.Allocate(uintptr(size))
}

// Deallocate releases a block previously obtained from Allocate with the
// same size. A nil ptr is a no-op. Passing a different size than at
// allocation is a contract violation.
func (c *Cache) Deallocate(ptr unsafe.Pointer, size int) {
	if size < 0 {
		return
	}
	c.tc.Deallocate(ptr, uintptr(size))
}

// AllocBytes returns a byte slice of length n backed by the allocator.
// Release it with FreeBytes.
func (c *Cache) AllocBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.New("mempool: negative length")
	}
	if n == 0 {
		return []byte{}, nil
	}
	p := c.Allocate(n)
	if p == nil {
		return nil, ErrOutOfMemory
	}
	return unsafe.Slice((*byte)(p), n), nil
}

// FreeBytes releases a slice obtained from AllocBytes. The slice must have
// its original length.
func (c *Cache) FreeBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	c.Deallocate(unsafe.Pointer(&b[0]), len(b))
}

// Flush hands every block the cache holds back to the central tier.
func (c *Cache) Flush() {
	c.tc.Flush()
}

// Close flushes the cache. The Cache must not be used afterwards.
func (c *Cache) Close() {
	c.Flush()
}

// cachePool recycles caches for the package-level entry points so callers
// without a per-worker handle still hit thread-cache fast paths most of the
// time instead of taking the central cache's locks on every call.
var cachePool = sync.Pool{
	New: func() any { return NewCache() },
}

// Alloc is a package-level convenience for callers that do not manage their
// own Cache. See Cache.Allocate.
func Alloc(size int) unsafe.Pointer {
	c := cachePool.Get().(*Cache)
	p := c.Allocate(size)
	cachePool.Put(c)
	return p
}

// Free is the package-level counterpart of Alloc. See Cache.Deallocate.
func Free(ptr unsafe.Pointer, size int) {
	c := cachePool.Get().(*Cache)
	c.Deallocate(ptr, size)
	cachePool.Put(c)
}

// Stats returns a snapshot of the allocator's activity counters.
func Stats() types.Stats {
	return stats.Snapshot()
}

// Config reports the constants the allocator was compiled with.
func Config() types.Config {
	return types.Config{
		Alignment:     sizeclass.Alignment,
		MaxBytes:      sizeclass.MaxBytes,
		SizeClasses:   sizeclass.NumClasses,
		PageSize:      sizeclass.PageSize,
		SpanPages:     sizeclass.SpanPages,
		ThreadMaxFree: sizeclass.ThreadMaxFree,
	}
}

// Teardown releases every OS mapping and discards the process-wide tiers.
// All Caches must be closed and all blocks dead before calling it; blocks
// obtained earlier become invalid. Intended for tests and short-lived tools,
// not for steady-state operation.
func Teardown() error {
	setupMu.Lock()
	defer setupMu.Unlock()
	if central == nil {
		return nil
	}
	err := pages.Release()
	pages = nil
	central = nil
	cachePool = sync.Pool{New: func() any { return NewCache() }}
	return err
}
