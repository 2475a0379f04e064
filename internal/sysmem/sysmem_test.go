package sysmem

import "testing"

func TestMapUnmap(t *testing.T) {
	b, err := Map(4096)
	if err != nil {
		t.Fatalf("Map(4096): %v", err)
	}
	if len(b) != 4096 {
		t.Fatalf("Map returned %d bytes want 4096", len(b))
	}

	// Fresh mappings are zeroed and writable.
	for i := 0; i < len(b); i += 512 {
		if b[i] != 0 {
			t.Fatalf("byte %d of a fresh mapping is %d want 0", i, b[i])
		}
		b[i] = 0xAB
	}

	if err := Unmap(b); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
}

func TestMapRejectsBadSize(t *testing.T) {
	if _, err := Map(0); err == nil {
		t.Fatalf("Map(0) should fail")
	}
	if _, err := Map(-1); err == nil {
		t.Fatalf("Map(-1) should fail")
	}
}

func TestUnmapEmpty(t *testing.T) {
	if err := Unmap(nil); err != nil {
		t.Fatalf("Unmap(nil) should be a no-op, got %v", err)
	}
}
