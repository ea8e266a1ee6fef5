package wire

import (
	"testing"
)

// TestNameRoundTrip validates the round-trip property from spec.md §8:
// writing a dotted name (no empty labels, labels ≤63 bytes) and reading it
// back yields the name with a canonical trailing dot.
func TestNameRoundTrip(t *testing.T) {
	tests := []string{
		"example.org",
		"svc._http._tcp.example.org",
		"a",
	}
	for _, name := range tests {
		w := NewWriter(64)
		w.Name(name)
		r := NewReader(w.Bytes())
		got, err := r.Name()
		if err != nil {
			t.Fatalf("Name(%q): %v", name, err)
		}
		want := name + "."
		if got != want {
			t.Errorf("round trip %q = %q, want %q", name, got, want)
		}
		if r.Pos() != len(w.Bytes()) {
			t.Errorf("round trip %q left cursor at %d, want %d", name, r.Pos(), len(w.Bytes()))
		}
	}
}

func TestNameRoot(t *testing.T) {
	w := NewWriter(8)
	w.Name("")
	r := NewReader(w.Bytes())
	got, err := r.Name()
	if err != nil {
		t.Fatal(err)
	}
	if got != "." {
		t.Errorf("root name = %q, want %q", got, ".")
	}
}

// TestNameCompressionPointer validates that a compression pointer is
// followed to a prior name occurrence in the same buffer.
func TestNameCompressionPointer(t *testing.T) {
	w := NewWriter(64)
	firstOffset := w.Len()
	w.Name("example.org")
	pointerOffset := w.Len()
	// A pointer byte pair: top two bits set, 14-bit offset to firstOffset.
	w.Uint8(byte(0xC0 | (firstOffset >> 8)))
	w.Uint8(byte(firstOffset))

	r := NewReader(w.Bytes())
	if _, err := r.Name(); err != nil {
		t.Fatal(err)
	}
	r.Seek(pointerOffset)
	got, err := r.Name()
	if err != nil {
		t.Fatal(err)
	}
	if got != "example.org." {
		t.Errorf("compressed name = %q, want %q", got, "example.org.")
	}
	if r.Pos() != pointerOffset+2 {
		t.Errorf("cursor after compressed name = %d, want %d", r.Pos(), pointerOffset+2)
	}
}

func TestNameRejectsForwardPointer(t *testing.T) {
	buf := []byte{0xC0, 0x05, 0x00}
	r := NewReader(buf)
	if _, err := r.Name(); err == nil {
		t.Error("expected error for a forward-pointing compression pointer")
	}
}

func TestNameRejectsTruncatedLabel(t *testing.T) {
	buf := []byte{5, 'a', 'b'}
	r := NewReader(buf)
	if _, err := r.Name(); err == nil {
		t.Error("expected error for a truncated label")
	}
}

func TestIntegerRoundTrip(t *testing.T) {
	w := NewWriter(32)
	w.Uint8(0xAB)
	w.Uint16(0x1234)
	w.Uint32(0xDEADBEEF)
	w.Uint48(0x010203040506)

	r := NewReader(w.Bytes())
	if v, _ := r.Uint8("u8"); v != 0xAB {
		t.Errorf("Uint8 = %#x, want 0xAB", v)
	}
	if v, _ := r.Uint16("u16"); v != 0x1234 {
		t.Errorf("Uint16 = %#x, want 0x1234", v)
	}
	if v, _ := r.Uint32("u32"); v != 0xDEADBEEF {
		t.Errorf("Uint32 = %#x, want 0xDEADBEEF", v)
	}
	if v, err := r.Uint48("u48"); err != nil || v != 0x010203040506 {
		t.Errorf("Uint48 = %#x, err=%v, want 0x010203040506", v, err)
	}
}

func TestReaderNeedsMoreBytes(t *testing.T) {
	r := NewReader([]byte{0x01})
	if _, err := r.Uint16("u16"); err == nil {
		t.Error("expected error reading Uint16 past end of buffer")
	}
}
