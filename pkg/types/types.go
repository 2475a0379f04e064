// Package types exposes the read-only value types of the allocator's public
// surface: the compiled-in configuration and point-in-time statistics.
package types

// Config describes the tuning constants the allocator was built with. All
// fields are fixed at compile time; the struct exists so tools can introspect
// them without importing internal packages.
type Config struct {
	Alignment     int // word alignment and minimum block size
	MaxBytes      int // largest tiered request; larger requests map pages directly
	SizeClasses   int // number of uniformly spaced size classes
	PageSize      int // page unit used by the page cache
	SpanPages     int // default span size requested by the central cache
	ThreadMaxFree int // per-class thread-cache length threshold
}

// Stats is a snapshot of the allocator's activity counters. Counters are
// cumulative since process start (or the last reset) and are maintained with
// relaxed atomics, so a snapshot taken under load is approximate across
// fields but exact per field.
type Stats struct {
	Allocs      uint64 // blocks handed to callers by thread caches
	Frees       uint64 // blocks returned by callers to thread caches
	Refills     uint64 // batches fetched from the central cache
	Returns     uint64 // batches handed back to the central cache
	SpansCut    uint64 // spans sliced into blocks by the central cache
	SpanSplits  uint64 // best-fit splits performed by the page cache
	Coalesces   uint64 // right-neighbor merges performed by the page cache
	OSMaps      uint64 // anonymous mappings obtained from the OS
	OSUnmaps    uint64 // mappings released back to the OS
	LargeAllocs uint64 // oversize requests served by direct mapping
	LargeFrees  uint64 // oversize blocks unmapped
}
