package pagecache

import (
	"testing"
	"unsafe"

	"github.com/memkit/memkit/internal/sizeclass"
)

func TestAllocateSpanRejectsBadSize(t *testing.T) {
	pc := New()
	if pc.AllocateSpan(0) != nil {
		t.Fatalf("AllocateSpan(0) should return nil")
	}
	if pc.AllocateSpan(-1) != nil {
		t.Fatalf("AllocateSpan(-1) should return nil")
	}
}

func TestAllocateSpanWritable(t *testing.T) {
	pc := New()
	defer pc.Release()

	p := pc.AllocateSpan(2)
	if p == nil {
		t.Fatalf("AllocateSpan(2) returned nil")
	}
	b := unsafe.Slice((*byte)(p), 2*sizeclass.PageSize)
	b[0] = 1
	b[len(b)-1] = 2
	if b[0] != 1 || b[len(b)-1] != 2 {
		t.Fatalf("span memory did not hold written values")
	}
}

func TestSplitAndCoalesce(t *testing.T) {
	pc := New()
	defer pc.Release()

	base := pc.AllocateSpan(8)
	if base == nil {
		t.Fatalf("AllocateSpan(8) returned nil")
	}
	pc.DeallocateSpan(base, 8)

	// A 4-page request must reuse the free 8-page span, splitting it.
	a := pc.AllocateSpan(4)
	if a != base {
		t.Fatalf("split should hand out the head of the free span: got %p want %p", a, base)
	}
	b := pc.AllocateSpan(4)
	want := unsafe.Pointer(uintptr(base) + 4*sizeclass.PageSize)
	if b != want {
		t.Fatalf("second half should be the split tail: got %p want %p", b, want)
	}

	// Freeing left after right merges them back into one 8-page span.
	pc.DeallocateSpan(b, 4)
	pc.DeallocateSpan(a, 4)

	c := pc.AllocateSpan(8)
	if c != base {
		t.Fatalf("coalesced span should serve an 8-page request: got %p want %p", c, base)
	}
}

func TestNoCoalesceWhileNeighborInUse(t *testing.T) {
	pc := New()
	defer pc.Release()

	base := pc.AllocateSpan(8)
	pc.DeallocateSpan(base, 8)

	a := pc.AllocateSpan(4)
	b := pc.AllocateSpan(4)

	// Only the left half is free; the right neighbor is still handed out,
	// so an 8-page request cannot be served from the existing mapping.
	pc.DeallocateSpan(a, 4)
	c := pc.AllocateSpan(8)
	if c == base {
		t.Fatalf("free left half must not absorb a right neighbor still in use")
	}
	pc.DeallocateSpan(b, 4)
	pc.DeallocateSpan(c, 8)
}

func TestBestFitPrefersSmallest(t *testing.T) {
	pc := New()
	defer pc.Release()

	small := pc.AllocateSpan(4)
	large := pc.AllocateSpan(16)
	pc.DeallocateSpan(large, 16)
	pc.DeallocateSpan(small, 4)

	// Both a 4-page and a 16-page span are free; a 3-page request must
	// come out of the smaller one.
	p := pc.AllocateSpan(3)
	if p != small {
		t.Fatalf("best fit picked %p want the 4-page span at %p", p, small)
	}
}

func TestDeallocateUnknownAddressIgnored(t *testing.T) {
	pc := New()
	defer pc.Release()

	var local [sizeclass.PageSize]byte
	pc.DeallocateSpan(unsafe.Pointer(&local[0]), 1)

	// The cache must still function normally afterwards.
	p := pc.AllocateSpan(1)
	if p == nil {
		t.Fatalf("AllocateSpan failed after freeing an unknown address")
	}
	pc.DeallocateSpan(p, 1)
}

func TestReleaseEmptiesCache(t *testing.T) {
	pc := New()

	p := pc.AllocateSpan(2)
	pc.DeallocateSpan(p, 2)
	if err := pc.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}

	// After Release the cache starts over with fresh mappings.
	q := pc.AllocateSpan(2)
	if q == nil {
		t.Fatalf("AllocateSpan after Release returned nil")
	}
	pc.Release()
}
