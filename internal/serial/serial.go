// Package serial implements just enough of the DMG serial port for
// test ROMs that report pass/fail over the link cable: a write to SC with
// the start bit set completes the transfer immediately, requests the
// serial interrupt, and hands the outgoing byte to an optional sink.
package serial

import (
	"io"

	"github.com/tholden/goboy/internal/nvic"
)

// Port models SB (0xFF01) and SC (0xFF02). No link partner is ever attached,
// so every transfer "completes" against an implicit open line.
type Port struct {
	sb byte
	sc byte

	sink io.Writer
}

func New() *Port {
	return &Port{}
}

// SetSink attaches a writer that receives each transferred byte. Passing nil
// disables capture.
func (p *Port) SetSink(w io.Writer) {
	p.sink = w
}

func (p *Port) ReadSB() byte { return p.sb }

// ReadSC reads back with the unused bits forced high and the transfer-start
// bit always clear, since transfers complete synchronously.
func (p *Port) ReadSC() byte { return 0x7E | (p.sc & 0x01) }

func (p *Port) WriteSB(value byte) { p.sb = value }

// WriteSC starts a transfer when bit 7 is set: the current SB byte is
// handed to the sink, the serial interrupt fires, and the start bit clears
// to signal immediate completion.
func (p *Port) WriteSC(value byte, irq *nvic.Controller) {
	p.sc = value & 0x81
	if p.sc&0x80 == 0 {
		return
	}
	if p.sink != nil {
		_, _ = p.sink.Write([]byte{p.sb})
	}
	irq.Request(nvic.Serial)
	p.sc &^= 0x80
}
