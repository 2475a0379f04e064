package centralcache

import (
	"testing"
	"unsafe"

	"github.com/memkit/memkit/internal/freelist"
	"github.com/memkit/memkit/internal/pagecache"
	"github.com/memkit/memkit/internal/sizeclass"
)

func newCache(t *testing.T) (*CentralCache, *pagecache.PageCache) {
	t.Helper()
	pc := pagecache.New()
	t.Cleanup(func() { pc.Release() })
	return New(pc), pc
}

func TestFetchRangeRefills(t *testing.T) {
	cc, _ := newCache(t)

	// Class 7 holds 64-byte blocks; a fresh class has to cut a span.
	head, n := cc.FetchRange(7, 32)
	if head == nil {
		t.Fatalf("FetchRange returned nil on a fresh class")
	}
	if n != 32 {
		t.Fatalf("FetchRange served %d blocks want 32", n)
	}
	if got := freelist.Len(head, -1); got != 32 {
		t.Fatalf("served chain has %d blocks want 32", got)
	}

	// Every block must be usable memory of the class size.
	size := sizeclass.BlockSize(7)
	for p := head; p != nil; {
		next := freelist.Next(p)
		b := unsafe.Slice((*byte)(p), size)
		b[size-1] = 0xCD
		p = next
	}
}

func TestFetchRangeServesParkedRemainder(t *testing.T) {
	cc, _ := newCache(t)

	// One default span of 64-byte blocks holds 4096 blocks; fetching 32
	// parks the remaining 4064 on the class list.
	head, n := cc.FetchRange(9, 32)
	if head == nil || n != 32 {
		t.Fatalf("first fetch served %d blocks want 32", n)
	}

	spanBlocks := sizeclass.SpanPages * sizeclass.PageSize / int(sizeclass.BlockSize(9))
	rest, m := cc.FetchRange(9, spanBlocks)
	if rest == nil {
		t.Fatalf("second fetch returned nil with a stocked class")
	}
	if m != spanBlocks-32 {
		t.Fatalf("second fetch served %d blocks want %d", m, spanBlocks-32)
	}
}

func TestReturnRangeRestocks(t *testing.T) {
	cc, _ := newCache(t)

	head, n := cc.FetchRange(3, 16)
	if head == nil || n != 16 {
		t.Fatalf("fetch served %d blocks want 16", n)
	}

	cc.ReturnRange(head, n, 3)

	// The returned blocks sit at the head of the class list, so the next
	// fetch of the same count must hand back the same chain head.
	again, m := cc.FetchRange(3, 16)
	if again != head || m != 16 {
		t.Fatalf("fetch after return got %p/%d want %p/16", again, m, head)
	}
}

func TestReturnRangeShortChain(t *testing.T) {
	cc, _ := newCache(t)

	// Class 4095 holds 32 KiB blocks, so one default span yields exactly
	// one block and nothing gets parked.
	head, n := cc.FetchRange(4095, 4)
	if head == nil || n != 1 {
		t.Fatalf("fetch served %d blocks want 1", n)
	}

	// Declaring more blocks than the chain holds links what is actually
	// there and nothing else.
	cc.ReturnRange(head, 3, 4095)
	again, m := cc.FetchRange(4095, 3)
	if m != 1 {
		t.Fatalf("fetch after a short return served %d blocks want 1", m)
	}
	if again != head {
		t.Fatalf("fetch after return got %p want %p", again, head)
	}
}

func TestFetchRangeRejectsBadArgs(t *testing.T) {
	cc, _ := newCache(t)

	if head, n := cc.FetchRange(-1, 8); head != nil || n != 0 {
		t.Fatalf("negative class index should yield nothing")
	}
	if head, n := cc.FetchRange(sizeclass.NumClasses, 8); head != nil || n != 0 {
		t.Fatalf("out-of-range class index should yield nothing")
	}
	if head, n := cc.FetchRange(0, 0); head != nil || n != 0 {
		t.Fatalf("zero batch should yield nothing")
	}
}

func TestReturnRangeRejectsBadArgs(t *testing.T) {
	cc, _ := newCache(t)

	// None of these may disturb the class lists or panic.
	cc.ReturnRange(nil, 4, 0)
	head, _ := cc.FetchRange(0, 1)
	cc.ReturnRange(head, 1, -1)
	cc.ReturnRange(head, 1, sizeclass.NumClasses)
	cc.ReturnRange(head, 0, 0)
	cc.ReturnRange(head, 1, 0)
}
