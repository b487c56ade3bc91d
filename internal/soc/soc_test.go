package soc

import (
	"testing"

	"github.com/tholden/goboy/internal/cpu"
	"github.com/tholden/goboy/internal/peripheral"
)

func newSoc(prog []byte) (*Soc, *cpu.CPU, *peripheral.Peripheral) {
	rom := make([]byte, 0x8000)
	copy(rom, prog)
	rom[0x0147] = 0x00
	p := peripheral.New(rom, nil, nil)
	c := cpu.New()
	return New(c, p), c, p
}

func TestRunExecutesOneInstructionPerCall(t *testing.T) {
	s, c, _ := newSoc([]byte{0x00, 0x00}) // NOP; NOP
	cycles := s.Run()
	if cycles != 4 {
		t.Fatalf("expected NOP to cost 4 T-states, got %d", cycles)
	}
	if c.PC != 1 {
		t.Fatalf("expected PC=1 after one NOP, got %#04x", c.PC)
	}
}

func TestRunDispatchesReadyInterruptInsteadOfStepping(t *testing.T) {
	s, c, p := newSoc([]byte{0x00}) // NOP at 0x0000
	c.PC = 0x0000
	p.NVIC.WriteIE(0x01)
	p.NVIC.MasterEnable(true)
	p.NVIC.Set(0) // nvic.VBlank == 0

	cycles := s.Run()
	if cycles != 20 {
		t.Fatalf("expected dispatch to cost 20 T-states, got %d", cycles)
	}
	if c.PC != 0x40 {
		t.Fatalf("expected PC at VBlank vector 0x40, got %#04x", c.PC)
	}
	if p.NVIC.IME() {
		t.Fatal("expected IME cleared after dispatch")
	}
}

func TestRunWakesHaltedCPUWithoutDispatchWhenIMEDisabled(t *testing.T) {
	s, c, p := newSoc([]byte{0x76, 0x00}) // HALT; NOP
	s.Run()                               // execute HALT
	if !c.Halted() {
		t.Fatal("expected CPU halted")
	}

	p.NVIC.WriteIE(0x01)
	p.NVIC.Set(0) // VBlank pending, IME stays disabled

	s.Run()
	if c.Halted() {
		t.Fatal("expected CPU woken from HALT")
	}
	if c.PC == 0x40 {
		t.Fatal("expected no dispatch while IME disabled, just a wake")
	}
}
