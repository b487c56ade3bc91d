// Package soc wires the CPU to its Peripheral, and owns the single-step
// algorithm: interrupt dispatch, HALT wake, and one opcode fetch/execute.
package soc

import (
	"github.com/tholden/goboy/internal/cpu"
	"github.com/tholden/goboy/internal/nvic"
)

// Peripheral is the surface the SoC needs from the memory-mapped devices:
// the CPU's Bus contract plus the interrupt controller's dispatch surface,
// and the clocked-device step function.
type Peripheral interface {
	cpu.Bus
	Pending() bool
	Ready() bool
	Take() (nvic.Source, bool)
	MasterEnable(enable bool)
	Run(tStates int)
}

// CPU is the subset of *cpu.CPU the SoC drives directly.
type CPU interface {
	Step(bus cpu.Bus, irq cpu.Interrupts) int
	Halted() bool
	ExitHalt()
	DispatchInterrupt(bus cpu.Bus, vector uint16) int
}

// Soc owns exactly one Cpu and one Peripheral, and advances both together
// one step at a time.
type Soc struct {
	Cpu        CPU
	Peripheral Peripheral
}

// New builds a Soc around a real *cpu.CPU and Peripheral.
func New(c *cpu.CPU, p Peripheral) *Soc {
	return &Soc{Cpu: c, Peripheral: p}
}

// Run performs exactly one of: wake from HALT, dispatch an interrupt, or
// execute one instruction — then advances every clocked device by however
// many T-states that took, and returns that count.
func (s *Soc) Run() int {
	if s.Cpu.Halted() && s.Peripheral.Pending() {
		s.Cpu.ExitHalt()
	}

	if s.Peripheral.Ready() {
		if source, ok := s.Peripheral.Take(); ok {
			s.Peripheral.MasterEnable(false)
			cycles := s.Cpu.DispatchInterrupt(s.Peripheral, source.Vector())
			s.Peripheral.Run(cycles)
			return cycles
		}
	}

	cycles := s.Cpu.Step(s.Peripheral, s.Peripheral)
	s.Peripheral.Run(cycles)
	return cycles
}
