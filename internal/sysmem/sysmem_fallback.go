//go:build !unix

package sysmem

import (
	"fmt"
	"sync"
	"unsafe"
)

// On platforms without anonymous mmap the mappings come from the Go heap.
// The registry pins each region so the collector cannot reclaim memory that
// callers address through raw pointers.
var (
	regMu   sync.Mutex
	regions = make(map[uintptr][]byte)
)

// Map returns size bytes of zeroed memory. size must be positive.
func Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sysmem: invalid mapping size %d", size)
	}
	b := make([]byte, size)
	regMu.Lock()
	regions[uintptr(unsafe.Pointer(&b[0]))] = b
	regMu.Unlock()
	return b, nil
}

// Unmap releases a region previously returned by Map. Unknown regions are
// ignored, matching the unix variant's tolerance of double unmaps.
func Unmap(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	regMu.Lock()
	delete(regions, uintptr(unsafe.Pointer(&b[0])))
	regMu.Unlock()
	return nil
}
