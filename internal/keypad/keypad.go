// Package keypad implements the JOYP (0xFF00) button matrix.
package keypad

import "github.com/tholden/goboy/internal/nvic"

// Button identifies one of the eight physical inputs.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Keypad tracks button state and the two select lines written through JOYP.
type Keypad struct {
	pressed [8]bool

	selectDirection bool
	selectButtons   bool
}

func New() *Keypad {
	return &Keypad{}
}

// Press and Release update a button's state. A transition from unpressed to
// pressed while the relevant select line is active requests a Joypad
// interrupt, matching the real matrix's active-low wired-AND behavior.
func (k *Keypad) Press(b Button, irq *nvic.Controller) {
	if !k.pressed[b] {
		k.pressed[b] = true
		if k.lineSelected(b) {
			irq.Request(nvic.Joypad)
		}
	}
}

func (k *Keypad) Release(b Button) {
	k.pressed[b] = false
}

func (k *Keypad) lineSelected(b Button) bool {
	if b <= Down {
		return k.selectDirection
	}
	return k.selectButtons
}

// ReadJOYP returns the register as the CPU sees it: bits 0-3 are the active
// line (low = pressed) for whichever group is selected, bits 4-5 echo the
// select lines, and bits 6-7 are always set.
func (k *Keypad) ReadJOYP() byte {
	v := byte(0xCF)
	if k.selectDirection {
		v = k.applyLines(v, Right, Left, Up, Down)
	} else {
		v |= 1 << 4
	}
	if k.selectButtons {
		v = k.applyLines(v, A, B, Select, Start)
	} else {
		v |= 1 << 5
	}
	return v
}

func (k *Keypad) applyLines(v byte, right, left, up, down Button) byte {
	if !k.pressed[right] {
		v |= 1 << 0
	} else {
		v &^= 1 << 0
	}
	if !k.pressed[left] {
		v |= 1 << 1
	} else {
		v &^= 1 << 1
	}
	if !k.pressed[up] {
		v |= 1 << 2
	} else {
		v &^= 1 << 2
	}
	if !k.pressed[down] {
		v |= 1 << 3
	} else {
		v &^= 1 << 3
	}
	return v
}

// WriteJOYP sets the two select lines from bits 4-5 of the written value.
// Select lines are active low on hardware; 0 means selected.
func (k *Keypad) WriteJOYP(v byte) {
	k.selectDirection = v&(1<<4) == 0
	k.selectButtons = v&(1<<5) == 0
}
