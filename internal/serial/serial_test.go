package serial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tholden/goboy/internal/nvic"
)

func TestTransferWritesByteToSinkAndRequestsInterrupt(t *testing.T) {
	p := New()
	irq := nvic.New()
	var sink bytes.Buffer
	p.SetSink(&sink)

	p.WriteSB('A')
	p.WriteSC(0x81, irq)

	assert.Equal(t, "A", sink.String())
	assert.True(t, irq.Pending(), "expected serial interrupt to be requested")
	assert.Zero(t, p.ReadSC()&0x80, "SC start bit should clear after immediate completion")
}

func TestWriteWithoutStartBitDoesNotTransfer(t *testing.T) {
	p := New()
	irq := nvic.New()
	var sink bytes.Buffer
	p.SetSink(&sink)

	p.WriteSB('Z')
	p.WriteSC(0x00, irq)

	assert.Zero(t, sink.Len(), "expected no transfer without the start bit")
	assert.False(t, irq.Pending(), "expected no interrupt without the start bit")
}
