// Package window hosts the emulator in an ebiten window: it polls keyboard
// state into the keypad, steps the emulator until a frame is ready, and
// blits the palette-mapped frame buffer to the screen.
package window

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tholden/goboy/internal/emulator"
	"github.com/tholden/goboy/internal/gpu"
	"github.com/tholden/goboy/internal/keypad"
)

// shades is the classic four-tone DMG palette, darkest last.
var shades = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
}

var keyBindings = map[ebiten.Key]keypad.Button{
	ebiten.KeyArrowRight: keypad.Right,
	ebiten.KeyArrowLeft:  keypad.Left,
	ebiten.KeyArrowUp:    keypad.Up,
	ebiten.KeyArrowDown:  keypad.Down,
	ebiten.KeyZ:          keypad.A,
	ebiten.KeyX:          keypad.B,
	ebiten.KeyBackspace:  keypad.Select,
	ebiten.KeyEnter:      keypad.Start,
}

// App is the ebiten.Game implementation hosting one Emulator.
type App struct {
	emu   *emulator.Emulator
	scale int
	title string

	img *ebiten.Image
}

// New builds a window App at the given integer scale factor.
func New(emu *emulator.Emulator, title string, scale int) *App {
	if scale <= 0 {
		scale = 4
	}
	return &App{
		emu:   emu,
		scale: scale,
		title: title,
		img:   ebiten.NewImage(gpu.ScreenWidth, gpu.ScreenHeight),
	}
}

// Run opens the window and blocks until it is closed.
func (a *App) Run() error {
	ebiten.SetWindowSize(gpu.ScreenWidth*a.scale, gpu.ScreenHeight*a.scale)
	ebiten.SetWindowTitle(a.title)
	return ebiten.RunGame(a)
}

func (a *App) pollInput() {
	for ek, button := range keyBindings {
		switch {
		case inpututil.IsKeyJustPressed(ek):
			a.emu.SetKey(button, true)
		case inpututil.IsKeyJustReleased(ek):
			a.emu.SetKey(button, false)
		}
	}
}

// Update advances the emulator until a frame is ready, polling keys once
// per ebiten tick (60 Hz) rather than once per emulator step.
func (a *App) Update() error {
	a.pollInput()
	for !a.emu.FrameReady() {
		a.emu.Step()
	}
	a.emu.Step() // leave DisplayFrame so the next Update starts a fresh frame
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	for y := 0; y < gpu.ScreenHeight; y++ {
		for x := 0; x < gpu.ScreenWidth; x++ {
			shade := a.emu.FramePixel(y*gpu.ScreenWidth + x)
			a.img.Set(x, y, shades[shade&0x03])
		}
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.scale), float64(a.scale))
	screen.DrawImage(a.img, op)
	ebitenutil.DebugPrint(screen, a.title)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return gpu.ScreenWidth * a.scale, gpu.ScreenHeight * a.scale
}
