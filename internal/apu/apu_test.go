package apu

import "testing"

func TestReadAlwaysReturnsFF(t *testing.T) {
	a := New()
	a.Write(0xFF11, 0x80)
	if v := a.Read(0xFF11); v != 0xFF {
		t.Fatalf("expected 0xFF regardless of writes, got %#x", v)
	}
}
