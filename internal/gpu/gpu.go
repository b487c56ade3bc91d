// Package gpu implements the DMG picture generation unit: VRAM/OAM storage,
// the LCDC/STAT/scroll/palette registers, mode scheduling, and scanline
// rendering of background, window, and sprite layers into a frame buffer.
package gpu

import "github.com/tholden/goboy/internal/nvic"

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// GPU models VRAM/OAM, LCDC/STAT regs, LY/LYC, and renders each scanline as
// the real hardware completes it (at the Mode 3 -> Mode 0 transition).
type GPU struct {
	vram [0x2000]byte // 0x8000-0x9FFF
	oam  [0xA0]byte   // 0xFE00-0xFE9F

	lcdc byte // FF40
	stat byte // FF41
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	dot int // dots within current line [0..455]

	windowLine int // internal window line counter, increments only on rendered lines

	// frame holds the per-pixel 2-bit palette index frame_pixel exposes:
	// each entry already passed through whichever register contributed it
	// (BGP for background/window, OBP0/OBP1 for a sprite) — see the GPU
	// palette-timing note in DESIGN.md for why composition needs this.
	frame [ScreenHeight][ScreenWidth]byte
}

func New() *GPU {
	g := &GPU{}
	for i := range g.vram {
		g.vram[i] = 0xFF
	}
	return g
}

// Frame returns the most recently completed frame buffer. The caller must
// not mutate the returned array; copy it if retaining across frames.
func (g *GPU) Frame() *[ScreenHeight][ScreenWidth]byte {
	return &g.frame
}

func (g *GPU) vramReadable() bool  { return g.stat&0x03 != 3 }
func (g *GPU) oamReadable() bool   { m := g.stat & 0x03; return m != 2 && m != 3 }

// CPURead serves VRAM, OAM, and the PPU IO registers.
func (g *GPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if !g.vramReadable() {
			return 0xFF
		}
		return g.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if !g.oamReadable() {
			return 0xFF
		}
		return g.oam[addr-0xFE00]
	case addr == 0xFF40:
		return g.lcdc
	case addr == 0xFF41:
		return 0x80 | (g.stat & 0x7F)
	case addr == 0xFF42:
		return g.scy
	case addr == 0xFF43:
		return g.scx
	case addr == 0xFF44:
		return g.ly
	case addr == 0xFF45:
		return g.lyc
	case addr == 0xFF47:
		return g.bgp
	case addr == 0xFF48, addr == 0xFF49:
		// Hardware curiosity: OBP0/OBP1 read back as 0xFF regardless of the
		// value written; sprites still render with the stored palette.
		return 0xFF
	case addr == 0xFF4A:
		return g.wy
	case addr == 0xFF4B:
		return g.wx
	default:
		return 0xFF
	}
}

// OAMWriteRaw bypasses the mode-3/mode-2 access lock; used by the DMA engine.
func (g *GPU) OAMWriteRaw(index int, v byte) {
	g.oam[index] = v
}

// CPUWrite handles writes to VRAM, OAM, and the PPU IO registers.
func (g *GPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if !g.vramReadable() {
			return
		}
		g.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if !g.oamReadable() {
			return
		}
		g.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := g.lcdc
		g.lcdc = value
		if lcdOff(g.lcdc) && !lcdOff(prev) {
			g.ly = 0
			g.dot = 0
			g.windowLine = 0
			g.setMode(0, nil)
			g.updateLYC(nil)
		} else if !lcdOff(g.lcdc) && lcdOff(prev) {
			g.ly = 0
			g.dot = 0
			g.setMode(2, nil)
			g.updateLYC(nil)
		}
	case addr == 0xFF41:
		g.stat = (g.stat & 0x07) | (value & 0x78)
	case addr == 0xFF42:
		g.scy = value
	case addr == 0xFF43:
		g.scx = value
	case addr == 0xFF44:
		// LY is read-only on real hardware; writes are ignored.
	case addr == 0xFF45:
		g.lyc = value
		g.updateLYC(nil)
	case addr == 0xFF47:
		g.bgp = value
	case addr == 0xFF48:
		g.obp0 = value
	case addr == 0xFF49:
		g.obp1 = value
	case addr == 0xFF4A:
		g.wy = value
	case addr == 0xFF4B:
		g.wx = value
	}
}

func lcdOff(lcdc byte) bool { return lcdc&0x80 == 0 }

// Run advances the GPU by the given number of T-states and requests VBlank
// and STAT interrupts on nvic as they occur.
func (g *GPU) Run(tStates int, irq *nvic.Controller) {
	if lcdOff(g.lcdc) {
		return
	}
	for i := 0; i < tStates; i++ {
		g.dot++

		var mode byte
		switch {
		case g.ly >= 144:
			mode = 1
		case g.dot < 80:
			mode = 2
		case g.dot < 80+172:
			mode = 3
		default:
			mode = 0
		}
		if mode == 0 && g.stat&0x03 == 3 {
			g.renderScanline()
		}
		g.setMode(mode, irq)

		if g.dot >= 456 {
			g.dot = 0
			g.ly++
			if g.ly == 144 {
				irq.Request(nvic.VBlank)
				if g.stat&(1<<4) != 0 {
					irq.Request(nvic.STAT)
				}
				g.windowLine = 0
			} else if g.ly > 153 {
				g.ly = 0
				g.windowLine = 0
			}
			g.updateLYC(irq)
			if g.ly >= 144 {
				g.setMode(1, irq)
			} else {
				g.setMode(2, irq)
			}
		}
	}
}

func (g *GPU) setMode(mode byte, irq *nvic.Controller) {
	prev := g.stat & 0x03
	if prev == mode {
		return
	}
	g.stat = (g.stat &^ 0x03) | (mode & 0x03)
	if irq == nil {
		return
	}
	switch mode {
	case 0:
		if g.stat&(1<<3) != 0 {
			irq.Request(nvic.STAT)
		}
	case 2:
		if g.stat&(1<<5) != 0 {
			irq.Request(nvic.STAT)
		}
	}
}

func (g *GPU) updateLYC(irq *nvic.Controller) {
	if g.ly == g.lyc {
		g.stat |= 1 << 2
		if irq != nil && g.stat&(1<<6) != 0 {
			irq.Request(nvic.STAT)
		}
	} else {
		g.stat &^= 1 << 2
	}
}

func (g *GPU) readVRAM(addr uint16) byte { return g.vram[addr-0x8000] }

// renderScanline computes background, window, and sprite pixels for the
// current LY and writes the resulting 2-bit palette indices into the frame
// buffer. Called once per line, at the Mode 3 -> Mode 0 transition.
func (g *GPU) renderScanline() {
	ly := g.ly
	if int(ly) >= ScreenHeight {
		return
	}

	var indices [ScreenWidth]byte

	bgEnabled := g.lcdc&0x01 != 0
	if bgEnabled {
		mapBase := uint16(0x9800)
		if g.lcdc&0x08 != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := g.lcdc&0x10 != 0
		indices = RenderBGScanlineUsingFetcher(vramReader{g}, mapBase, tileData8000, g.scx, g.scy, ly)
	}

	windowEnabled := g.lcdc&0x20 != 0 && bgEnabled
	if windowEnabled && ly >= g.wy && g.wx <= 166 {
		mapBase := uint16(0x9800)
		if g.lcdc&0x40 != 0 {
			mapBase = 0x9C00
		}
		tileData8000 := g.lcdc&0x10 != 0
		wxStart := int(g.wx) - 7
		winLine := RenderWindowScanlineUsingFetcher(vramReader{g}, mapBase, tileData8000, wxStart, byte(g.windowLine))
		start := wxStart
		if start < 0 {
			start = 0
		}
		for x := start; x < ScreenWidth; x++ {
			indices[x] = winLine[x]
		}
		g.windowLine++
	}

	// Apply BGP now: color index 0 must still be distinguishable from
	// BGP-mapped index 0 for the sprite BG-priority test below, so indices
	// (raw tile color numbers) and pixels (BGP/OBP-applied palette indices)
	// are kept as separate arrays through compositing.
	var pixels [ScreenWidth]byte
	for x := 0; x < ScreenWidth; x++ {
		pixels[x] = applyPalette(g.bgp, indices[x])
	}

	if g.lcdc&0x02 != 0 {
		g.renderSprites(ly, indices, &pixels)
	}

	g.frame[ly] = pixels
}

// applyPalette maps a raw 2-bit tile/sprite color number through a palette
// register (BGP/OBP0/OBP1) to the 2-bit palette index frame_pixel exposes.
func applyPalette(pal byte, colorIndex byte) byte {
	return (pal >> (colorIndex * 2)) & 0x03
}

// vramReader adapts GPU to the VRAMReader interface expected by the fetcher,
// translating absolute CPU addresses to the internal VRAM array.
type vramReader struct{ g *GPU }

func (v vramReader) Read(addr uint16) byte { return v.g.readVRAM(addr) }
