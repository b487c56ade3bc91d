// Package bootrom overlays the 256-byte DMG boot ROM at 0x0000-0x00FF and
// tracks the one-way handoff to cartridge ROM triggered by writing 0xFF50.
package bootrom

// Size is the fixed length of the DMG boot ROM image.
const Size = 0x100

// BootROM holds an optional boot image. A nil or empty image means the
// overlay is disabled and reads fall through to the cartridge immediately.
type BootROM struct {
	data   []byte
	mapped bool
}

// New returns a BootROM overlaying image. If image is empty, the overlay
// starts (and stays) unmapped.
func New(image []byte) *BootROM {
	b := &BootROM{}
	if len(image) > 0 {
		b.data = make([]byte, Size)
		copy(b.data, image)
		b.mapped = true
	}
	return b
}

// Mapped reports whether reads in 0x0000-0x00FF should be served from the
// boot ROM rather than the cartridge.
func (b *BootROM) Mapped() bool {
	return b.mapped
}

// Read returns a boot ROM byte. Callers must check Mapped and the address
// range first.
func (b *BootROM) Read(addr uint16) byte {
	if int(addr) < len(b.data) {
		return b.data[addr]
	}
	return 0xFF
}

// Disable performs the one-way unmap triggered by writing a non-zero value
// to 0xFF50. Once unmapped it cannot be remapped.
func (b *BootROM) Disable() {
	b.mapped = false
}
