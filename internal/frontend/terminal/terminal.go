// Package terminal hosts the emulator in a tcell terminal window, rendering
// the frame buffer as half-block characters and mapping a handful of keys
// onto the keypad.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/tholden/goboy/internal/emulator"
	"github.com/tholden/goboy/internal/gpu"
	"github.com/tholden/goboy/internal/keypad"
)

var frameTime = time.Second / 60

var keyBindings = map[rune]keypad.Button{
	'd': keypad.Right,
	'a': keypad.Left,
	'w': keypad.Up,
	's': keypad.Down,
	'k': keypad.A,
	'j': keypad.B,
	'n': keypad.Select,
	'm': keypad.Start,
}

// shadeToColor maps a 2-bit shade to an approximate terminal grayscale.
var shadeToColor = [4]tcell.Color{
	tcell.NewRGBColor(0xE0, 0xF8, 0xD0),
	tcell.NewRGBColor(0x88, 0xC0, 0x70),
	tcell.NewRGBColor(0x34, 0x68, 0x56),
	tcell.NewRGBColor(0x08, 0x18, 0x20),
}

// Backend drives an Emulator from a tcell terminal screen.
type Backend struct {
	emu    *emulator.Emulator
	screen tcell.Screen

	activeKeys map[keypad.Button]bool
}

// New allocates (but does not initialize) a terminal Backend.
func New(emu *emulator.Emulator) *Backend {
	return &Backend{emu: emu, activeKeys: make(map[keypad.Button]bool)}
}

// Run initializes the screen and blocks in the render/poll loop until the
// user quits (Escape or Ctrl-C) or the screen reports an error.
func (b *Backend) Run() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	b.screen = screen
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go screen.ChannelEvents(events, nil)

	ticker := time.NewTicker(frameTime)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			if quit := b.handleEvent(ev); quit {
				return nil
			}
		case <-ticker.C:
			b.advanceOneFrame()
			b.render()
		}
	}
}

func (b *Backend) handleEvent(ev tcell.Event) (quit bool) {
	switch e := ev.(type) {
	case *tcell.EventResize:
		b.screen.Sync()
	case *tcell.EventKey:
		if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC {
			return true
		}
		button, ok := keyBindings[e.Rune()]
		if !ok {
			return false
		}
		if !b.activeKeys[button] {
			b.activeKeys[button] = true
			b.emu.SetKey(button, true)
		}
	}
	return false
}

func (b *Backend) advanceOneFrame() {
	for !b.emu.FrameReady() {
		b.emu.Step()
	}
	b.emu.Step()
}

// render draws the frame buffer using half-block characters: each terminal
// cell covers two vertically stacked Game Boy pixels.
func (b *Backend) render() {
	w, h := b.screen.Size()
	for row := 0; row < h && row*2 < gpu.ScreenHeight; row++ {
		for col := 0; col < w && col < gpu.ScreenWidth; col++ {
			top := b.emu.FramePixel(row*2*gpu.ScreenWidth + col)
			style := tcell.StyleDefault.Foreground(shadeToColor[top&0x03])
			if row*2+1 < gpu.ScreenHeight {
				bottom := b.emu.FramePixel((row*2+1)*gpu.ScreenWidth + col)
				style = style.Background(shadeToColor[bottom&0x03])
				b.screen.SetContent(col, row, '▀', nil, style) // upper half block
			} else {
				b.screen.SetContent(col, row, ' ', nil, style)
			}
		}
	}
	b.screen.Show()
}
