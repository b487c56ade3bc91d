// Package emulator implements the four-state cooperative frame-pacing loop
// that drives a Soc one step at a time and exposes the host-facing API:
// frame buffer access, key input, and an optional debugger command queue.
package emulator

import (
	"time"

	"github.com/tholden/goboy/internal/cpu"
	"github.com/tholden/goboy/internal/gpu"
	"github.com/tholden/goboy/internal/keypad"
	"github.com/tholden/goboy/internal/peripheral"
	"github.com/tholden/goboy/internal/soc"
)

// State is the outer cooperative pacing state machine.
type State int

const (
	StateGetTime State = iota
	StateRunMachine
	StateWaitNextFrame
	StateDisplayFrame
)

func (s State) String() string {
	switch s {
	case StateGetTime:
		return "GetTime"
	case StateRunMachine:
		return "RunMachine"
	case StateWaitNextFrame:
		return "WaitNextFrame"
	case StateDisplayFrame:
		return "DisplayFrame"
	default:
		return "Unknown"
	}
}

// OneFrameInCycles is the T-state budget of one 154-line frame (154 * 456).
const OneFrameInCycles = 70224

// OneFrameInNs is 70224 T-states at the DMG's 4.194304 MHz clock.
const OneFrameInNs = int64(OneFrameInCycles) * 1_000_000_000 / 4_194_304

// Emulator owns the Soc exclusively and drives it through the pacing state
// machine described in the component design.
type Emulator struct {
	cpu        *cpu.CPU
	peripheral *peripheral.Peripheral
	soc        *soc.Soc

	state                State
	cyclesElapsedInFrame int
	frameTick            time.Time

	debugOn           bool
	dbgState          debugState
	debugQueue        chan DebugCommand
	breakpoints       map[uint16]bool
	singleStepPending bool
}

// New constructs an Emulator. rom must be at least 32 KiB; bootROM, if
// non-nil, must be exactly 256 bytes. Both are validated per §7's
// ConfigurationError contract.
func New(rom, bootROM []byte, debugOn bool) (*Emulator, error) {
	if err := validateInputs(rom, bootROM); err != nil {
		return nil, err
	}

	p := peripheral.New(rom, bootROM, nil)
	c := cpu.New()
	if bootROM == nil {
		c.ResetNoBoot()
	}

	e := &Emulator{
		cpu:         c,
		peripheral:  p,
		soc:         soc.New(c, p),
		state:       StateGetTime,
		debugOn:     debugOn,
		dbgState:    dbgRunning,
		debugQueue:  make(chan DebugCommand, debugQueueCapacity),
		breakpoints: make(map[uint16]bool),
	}
	return e, nil
}

// Step advances one state transition of the pacing machine. When debug mode
// is on and the debugger has halted execution, RunMachine becomes a no-op
// until a Run or Step command arrives.
func (e *Emulator) Step() {
	switch e.state {
	case StateGetTime:
		e.frameTick = time.Now()
		e.state = StateRunMachine

	case StateRunMachine:
		if e.debugOn {
			e.drainDebugCommand()
			if e.dbgState == dbgHalted && !e.singleStepPending {
				return
			}
			if !e.singleStepPending && e.breakpoints[e.cpu.PC] {
				e.dbgState = dbgHalted
				return
			}
		}

		cycles := e.soc.Run()
		e.cyclesElapsedInFrame += cycles
		e.singleStepPending = false

		if e.cyclesElapsedInFrame >= OneFrameInCycles {
			e.state = StateWaitNextFrame
		}

	case StateWaitNextFrame:
		if time.Since(e.frameTick) >= time.Duration(OneFrameInNs) {
			e.state = StateDisplayFrame
		}

	case StateDisplayFrame:
		e.cyclesElapsedInFrame = 0
		e.state = StateGetTime
	}
}

// FrameReady reports whether the current state is DisplayFrame, i.e. the
// frame buffer reflects a just-completed frame.
func (e *Emulator) FrameReady() bool {
	return e.state == StateDisplayFrame
}

// FramePixel returns the 2-bit palette index at row-major index i in
// 0..23040 (160x144).
func (e *Emulator) FramePixel(i int) byte {
	row := i / gpu.ScreenWidth
	col := i % gpu.ScreenWidth
	return e.peripheral.GPU.Frame()[row][col]
}

// SetKey updates keypad state. A press raises a Joypad interrupt when the
// button's group is currently selected through JOYP.
func (e *Emulator) SetKey(key keypad.Button, pressed bool) {
	if pressed {
		e.peripheral.Keypad.Press(key, e.peripheral.NVIC)
	} else {
		e.peripheral.Keypad.Release(key)
	}
}

// CPUSnapshot exposes the handful of CPU registers a debugger UI displays.
type CPUSnapshot struct {
	PC, SP     uint16
	AF, BC, DE, HL uint16
}

func (e *Emulator) CPUState() CPUSnapshot {
	return CPUSnapshot{
		PC: e.cpu.PC,
		SP: e.cpu.SP,
		AF: uint16(e.cpu.A)<<8 | uint16(e.cpu.F),
		BC: uint16(e.cpu.B)<<8 | uint16(e.cpu.C),
		DE: uint16(e.cpu.D)<<8 | uint16(e.cpu.E),
		HL: uint16(e.cpu.H)<<8 | uint16(e.cpu.L),
	}
}
