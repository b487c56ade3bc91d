// Package dma implements the OAM DMA engine triggered by writes to 0xFF46:
// a 160-byte copy from src<<8 into OAM, one byte per M-cycle.
package dma

// Engine tracks an in-flight OAM transfer. The bus calls Step with the
// T-states each instruction consumed. CPU reads and writes are not
// restricted while Active.
type Engine struct {
	source    uint16
	progress  int // bytes copied so far, 0..160
	active    bool
	tStates   int // accumulates T-states toward the next M-cycle copy
}

const transferLength = 160

func New() *Engine {
	return &Engine{}
}

// Start begins a new transfer from page*0x100. Restarting mid-transfer
// simply resets progress, matching the real controller's behavior.
func (e *Engine) Start(page byte) {
	e.source = uint16(page) << 8
	e.progress = 0
	e.active = true
	e.tStates = 0
}

// Active reports whether a transfer is in progress.
func (e *Engine) Active() bool {
	return e.active
}

// Step advances the engine by tStates T-states. For each elapsed M-cycle
// while active, it reads one byte from read(source+progress) and writes it
// via write(progress, byte).
func (e *Engine) Step(tStates int, read func(addr uint16) byte, write func(index int, v byte)) {
	if !e.active {
		return
	}
	e.tStates += tStates
	for e.tStates >= 4 && e.active {
		e.tStates -= 4
		write(e.progress, read(e.source+uint16(e.progress)))
		e.progress++
		if e.progress >= transferLength {
			e.active = false
		}
	}
}
