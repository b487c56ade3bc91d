package timer

import (
	"testing"

	"github.com/tholden/goboy/internal/nvic"
)

func TestDIVIncrementsAndResets(t *testing.T) {
	tm := New()
	irq := nvic.New()
	tm.Tick(256, irq) // 256 T-states -> DIV (div>>8) increments once
	if tm.ReadDIV() != 1 {
		t.Fatalf("expected DIV=1, got %d", tm.ReadDIV())
	}
	tm.WriteDIV(irq)
	if tm.ReadDIV() != 0 {
		t.Fatalf("expected DIV reset to 0, got %d", tm.ReadDIV())
	}
}

func TestTIMAOverflowRequestsInterruptAfterDelay(t *testing.T) {
	tm := New()
	irq := nvic.New()
	irq.WriteIE(0xFF)

	tm.WriteTAC(0x05) // enabled, clock select 01 -> bit 3
	tm.WriteTMA(0x10)
	tm.tima = 0xFF

	// Tick enough T-states to cross a falling edge on bit 3 (16 T-states).
	tm.Tick(16, irq)
	if tm.ReadTIMA() != 0 {
		t.Fatalf("expected TIMA to read 0 during reload delay, got %d", tm.ReadTIMA())
	}
	if irq.Pending() {
		t.Fatal("interrupt should not fire until reload delay elapses")
	}

	tm.Tick(4, irq)
	if !irq.Pending() {
		t.Fatal("expected Timer interrupt to be pending after reload delay")
	}
	if tm.ReadTIMA() != 0x10 {
		t.Fatalf("expected TIMA reloaded from TMA, got %#x", tm.ReadTIMA())
	}
}

func TestTACDisabledStopsTIMA(t *testing.T) {
	tm := New()
	irq := nvic.New()
	tm.WriteTAC(0x00) // disabled
	before := tm.ReadTIMA()
	tm.Tick(1024, irq)
	if tm.ReadTIMA() != before {
		t.Fatalf("TIMA should not advance while disabled, got %d", tm.ReadTIMA())
	}
}
