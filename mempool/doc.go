// Package mempool provides a thread-caching small-object allocator.
//
// # Overview
//
// The allocator replaces the system allocator for workloads that allocate
// and free many small objects of bounded size under heavy concurrency. It is
// structured as a three-tier hierarchy:
//
//   - Thread cache: one per worker, satisfies most requests from intrusive
//     per-class free lists without any synchronization
//   - Central cache: process-wide, one free list and one spinlock per size
//     class, moves blocks to and from thread caches in batches
//   - Page cache: process-wide, owns all OS memory, serves whole page spans
//     with best-fit splitting and right-neighbor coalescing
//
// Requests above 256 KiB bypass the tiers and map pages directly.
//
// # Allocating
//
// Workers that allocate heavily hold their own Cache:
//
//	c := mempool.NewCache()
//	defer c.Close()
//
//	p := c.Allocate(64)
//	// ... use the 64 bytes at p ...
//	c.Deallocate(p, 64)
//
// The byte-slice helpers avoid unsafe in caller code:
//
//	b, err := c.AllocBytes(1024)
//	if err != nil {
//	    return err
//	}
//	defer c.FreeBytes(b)
//
// Callers without a natural per-worker handle can use the package-level
// Alloc and Free, which recycle caches internally.
//
// # Contract
//
// Deallocate must be passed the same size as the matching Allocate. Returned
// pointers are 8-byte aligned and point to at least RoundUp(size) writable
// bytes. Allocation failure is reported as a nil pointer; no panics.
//
// # Thread Safety
//
// A Cache is confined to one goroutine at a time. Everything else,
// including the package-level entry points, is safe for concurrent use.
//
// # Memory Lifecycle
//
// Pages obtained from the OS are retained for reuse until Teardown; the
// allocator does not shrink during normal operation.
package mempool
