package threadcache

import (
	"unsafe"

	"github.com/memkit/memkit/internal/sizeclass"
	"github.com/memkit/memkit/internal/stats"
	"github.com/memkit/memkit/internal/sysmem"
)

// Oversize requests skip the tiers entirely and map pages one-to-one. The
// mapping length is derived from the caller-supplied size on both sides, so
// no registry of live large blocks is needed; the deallocation contract
// already requires the caller to repeat the size.

func largeMapLen(size uintptr) int {
	return int(sizeclass.RoundUp(size))
}

func allocLarge(size uintptr) unsafe.Pointer {
	b, err := sysmem.Map(largeMapLen(size))
	if err != nil {
		return nil
	}
	stats.LargeAllocs.Add(1)
	return unsafe.Pointer(&b[0])
}

func freeLarge(ptr unsafe.Pointer, size uintptr) {
	b := unsafe.Slice((*byte)(ptr), largeMapLen(size))
	if err := sysmem.Unmap(b); err == nil {
		stats.LargeFrees.Add(1)
	}
}
