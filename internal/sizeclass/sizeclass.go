// Package sizeclass maps byte counts onto the allocator's uniformly spaced
// size classes. The goal is to keep the math branch-free where possible and
// independent from the caching tiers so higher-level packages can share one
// source of truth for block sizing.
package sizeclass

const (
	// Alignment is the word alignment and the minimum block size. Every
	// block doubles as an intrusive list node, so Alignment must be at
	// least the size of a pointer on all supported targets.
	Alignment = 8

	// MaxBytes is the largest request served by the tiered allocator.
	// Anything larger bypasses the caches and maps pages directly.
	MaxBytes = 256 * 1024

	// NumClasses is the number of size classes. Classes are uniformly
	// spaced: class i holds blocks of exactly (i+1)*Alignment bytes.
	NumClasses = MaxBytes / Alignment

	// PageSize is the page unit used by the page cache. It matches the
	// common OS page size; the page cache only requires it to be a
	// multiple of the OS page.
	PageSize = 4096

	// SpanPages is the default span size, in pages, that the central
	// cache requests from the page cache when a class list runs dry.
	SpanPages = 8

	// ThreadMaxFree is the per-class length threshold at which a thread
	// cache hands surplus blocks back to the central cache.
	ThreadMaxFree = 64
)

// maxBatchBytes bounds a single refill batch to roughly one page of payload.
const maxBatchBytes = 4 * 1024

// RoundUp rounds n up to the next multiple of Alignment.
func RoundUp(n uintptr) uintptr {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// Index returns the size class for a request of n bytes. Requests below
// Alignment share class 0.
func Index(n uintptr) int {
	if n < Alignment {
		n = Alignment
	}
	return int((n+Alignment-1)/Alignment) - 1
}

// BlockSize returns the exact block size, in bytes, of the given class.
func BlockSize(index int) uintptr {
	return uintptr(index+1) * Alignment
}

// BatchFor returns the number of blocks a thread cache should request in one
// refill for blocks of the given size. The base targets roughly 2 KiB of
// payload per batch and is clamped so a batch never exceeds maxBatchBytes.
// The result is advisory; the central cache may deliver fewer blocks.
func BatchFor(size uintptr) int {
	var base int
	switch {
	case size <= 32:
		base = 64
	case size <= 64:
		base = 32
	case size <= 128:
		base = 16
	case size <= 256:
		base = 8
	case size <= 512:
		base = 4
	case size <= 1024:
		base = 2
	default:
		base = 1
	}

	most := maxBatchBytes / int(size)
	if most < 1 {
		most = 1
	}
	if base > most {
		base = most
	}
	if base < 1 {
		base = 1
	}
	return base
}

// PagesFor returns the number of PageSize pages needed to hold n bytes.
func PagesFor(n uintptr) int {
	return int((n + PageSize - 1) / PageSize)
}

// SpanPagesFor returns the span size, in pages, the central cache should
// request for blocks of the given size: the default SpanPages for anything
// that fits, otherwise exactly enough pages to hold one block.
func SpanPagesFor(size uintptr) int {
	if size <= SpanPages*PageSize {
		return SpanPages
	}
	return PagesFor(size)
}
