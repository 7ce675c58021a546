// Package joypad implements the JOYP register (0xFF00): an active-low 4-bit
// input matrix multiplexed over two rows (d-pad, buttons) by the column
// select bits, with an interrupt raised on any 1->0 transition of the
// selected row's visible bits.
package joypad

// Button bitmask constants for Press/Release. Bits set mean "pressed".
const (
	Right = 1 << iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

type Joypad struct {
	selectBits byte // bits 5-4 of JOYP, as last written
	pressed    byte // Button bitmask of currently pressed buttons
	lower4     byte // last computed active-low lower nibble, for edge detection

	RequestInterrupt func()
}

func New(requestInterrupt func()) *Joypad {
	return &Joypad{lower4: 0x0F, RequestInterrupt: requestInterrupt}
}

// Read returns the JOYP register value (0xFF00).
func (j *Joypad) Read() byte {
	return 0xC0 | j.selectBits&0x30 | j.lower4
}

// WriteSelect handles a JOYP write: only bits 5-4 are writable.
func (j *Joypad) WriteSelect(v byte) {
	j.selectBits = v & 0x30
	j.recompute()
}

// Press marks buttons in mask as held down.
func (j *Joypad) Press(mask byte) {
	j.pressed |= mask
	j.recompute()
}

// Release marks buttons in mask as released.
func (j *Joypad) Release(mask byte) {
	j.pressed &^= mask
	j.recompute()
}

func (j *Joypad) recompute() {
	newLower := byte(0x0F)
	if j.selectBits&0x10 == 0 { // P14 low selects the d-pad
		if j.pressed&Right != 0 {
			newLower &^= 0x01
		}
		if j.pressed&Left != 0 {
			newLower &^= 0x02
		}
		if j.pressed&Up != 0 {
			newLower &^= 0x04
		}
		if j.pressed&Down != 0 {
			newLower &^= 0x08
		}
	}
	if j.selectBits&0x20 == 0 { // P15 low selects the buttons
		if j.pressed&A != 0 {
			newLower &^= 0x01
		}
		if j.pressed&B != 0 {
			newLower &^= 0x02
		}
		if j.pressed&Select != 0 {
			newLower &^= 0x04
		}
		if j.pressed&Start != 0 {
			newLower &^= 0x08
		}
	}

	falling := j.lower4 &^ newLower
	if falling != 0 && j.RequestInterrupt != nil {
		j.RequestInterrupt()
	}
	j.lower4 = newLower
}

type State struct {
	SelectBits, Pressed, Lower4 byte
}

func (j *Joypad) SaveState() State {
	return State{j.selectBits, j.pressed, j.lower4}
}

func (j *Joypad) LoadState(s State) {
	j.selectBits, j.pressed, j.lower4 = s.SelectBits, s.Pressed, s.Lower4
}
