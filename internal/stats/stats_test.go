package stats

import "testing"

func TestSnapshotAndReset(t *testing.T) {
	Reset()

	Allocs.Add(3)
	Frees.Add(2)
	SpansCut.Add(1)

	s := Snapshot()
	if s.Allocs != 3 || s.Frees != 2 || s.SpansCut != 1 {
		t.Fatalf("snapshot %+v does not match the bumped counters", s)
	}

	Reset()
	s = Snapshot()
	if s.Allocs != 0 || s.Frees != 0 || s.SpansCut != 0 {
		t.Fatalf("Reset left counters set: %+v", s)
	}
}
