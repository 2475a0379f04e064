package sizeclass

import "testing"

func TestRoundUp(t *testing.T) {
	cases := []struct{ in, want uintptr }{
		{0, 0},
		{1, 8},
		{7, 8},
		{8, 8},
		{9, 16},
		{255, 256},
		{256, 256},
	}
	for _, c := range cases {
		if got := RoundUp(c.in); got != c.want {
			t.Fatalf("RoundUp(%d)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestIndexBoundaries(t *testing.T) {
	cases := []struct {
		in   uintptr
		want int
	}{
		{0, 0},
		{1, 0},
		{8, 0},
		{9, 1},
		{16, 1},
		{17, 2},
		{MaxBytes, NumClasses - 1},
	}
	for _, c := range cases {
		if got := Index(c.in); got != c.want {
			t.Fatalf("Index(%d)=%d want %d", c.in, got, c.want)
		}
	}
}

func TestIndexBlockSizeRoundTrip(t *testing.T) {
	for _, n := range []uintptr{1, 8, 9, 100, 4096, MaxBytes} {
		index := Index(n)
		size := BlockSize(index)
		if size < n {
			t.Fatalf("BlockSize(Index(%d))=%d is smaller than the request", n, size)
		}
		if size-n >= Alignment {
			t.Fatalf("BlockSize(Index(%d))=%d wastes a full alignment unit", n, size)
		}
		if Index(size) != index {
			t.Fatalf("Index(BlockSize(%d))=%d want %d", index, Index(size), index)
		}
	}
}

func TestBatchFor(t *testing.T) {
	cases := []struct {
		size uintptr
		want int
	}{
		{8, 64},
		{32, 64},
		{64, 32},
		{128, 16},
		{256, 8},
		{512, 4},
		{1024, 2},
		{2048, 1},
		{4096, 1},
		{MaxBytes, 1},
	}
	for _, c := range cases {
		if got := BatchFor(c.size); got != c.want {
			t.Fatalf("BatchFor(%d)=%d want %d", c.size, got, c.want)
		}
	}
}

func TestBatchPayloadBounded(t *testing.T) {
	for size := uintptr(Alignment); size <= MaxBytes; size *= 2 {
		batch := BatchFor(size)
		if batch < 1 {
			t.Fatalf("BatchFor(%d)=%d, batches must be at least one block", size, batch)
		}
		if batch > 1 && int(size)*batch > maxBatchBytes {
			t.Fatalf("BatchFor(%d)=%d exceeds the batch payload bound", size, batch)
		}
	}
}

func TestPagesFor(t *testing.T) {
	if got := PagesFor(1); got != 1 {
		t.Fatalf("PagesFor(1)=%d want 1", got)
	}
	if got := PagesFor(PageSize); got != 1 {
		t.Fatalf("PagesFor(PageSize)=%d want 1", got)
	}
	if got := PagesFor(PageSize + 1); got != 2 {
		t.Fatalf("PagesFor(PageSize+1)=%d want 2", got)
	}
}

func TestSpanPagesFor(t *testing.T) {
	if got := SpanPagesFor(64); got != SpanPages {
		t.Fatalf("SpanPagesFor(64)=%d want %d", got, SpanPages)
	}
	// The largest size still served out of a default span.
	if got := SpanPagesFor(SpanPages * PageSize); got != SpanPages {
		t.Fatalf("SpanPagesFor(span)=%d want %d", got, SpanPages)
	}
	// Anything bigger gets exactly enough pages for one block.
	big := uintptr(SpanPages*PageSize + 1)
	if got := SpanPagesFor(big); got != SpanPages+1 {
		t.Fatalf("SpanPagesFor(%d)=%d want %d", big, got, SpanPages+1)
	}
	if got := SpanPagesFor(MaxBytes); got != MaxBytes/PageSize {
		t.Fatalf("SpanPagesFor(MaxBytes)=%d want %d", got, MaxBytes/PageSize)
	}
}
