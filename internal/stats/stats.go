// Package stats maintains the allocator's activity counters. Counters are
// plain atomics bumped off the hot paths' tails; nothing here synchronizes
// the allocator itself.
package stats

import (
	"sync/atomic"

	"github.com/memkit/memkit/pkg/types"
)

var (
	Allocs      atomic.Uint64
	Frees       atomic.Uint64
	Refills     atomic.Uint64
	Returns     atomic.Uint64
	SpansCut    atomic.Uint64
	SpanSplits  atomic.Uint64
	Coalesces   atomic.Uint64
	OSMaps      atomic.Uint64
	OSUnmaps    atomic.Uint64
	LargeAllocs atomic.Uint64
	LargeFrees  atomic.Uint64
)

// Snapshot returns the current counter values.
func Snapshot() types.Stats {
	return types.Stats{
		Allocs:      Allocs.Load(),
		Frees:       Frees.Load(),
		Refills:     Refills.Load(),
		Returns:     Returns.Load(),
		SpansCut:    SpansCut.Load(),
		SpanSplits:  SpanSplits.Load(),
		Coalesces:   Coalesces.Load(),
		OSMaps:      OSMaps.Load(),
		OSUnmaps:    OSUnmaps.Load(),
		LargeAllocs: LargeAllocs.Load(),
		LargeFrees:  LargeFrees.Load(),
	}
}

// Reset zeroes every counter. Intended for tests and the bench tool.
func Reset() {
	Allocs.Store(0)
	Frees.Store(0)
	Refills.Store(0)
	Returns.Store(0)
	SpansCut.Store(0)
	SpanSplits.Store(0)
	Coalesces.Store(0)
	OSMaps.Store(0)
	OSUnmaps.Store(0)
	LargeAllocs.Store(0)
	LargeFrees.Store(0)
}
