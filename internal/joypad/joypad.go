// Package joypad implements the DMG JOYP register: button state, the
// row-select bits, and the falling-edge joypad interrupt.
package joypad

// Button bitmasks for SetState. A set bit means the button is held down.
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

// Joypad tracks which buttons are held and which row(s) the game has
// selected via JOYP bits 4-5, and raises an interrupt on any 1->0 edge of
// the reported (active-low) nibble.
type Joypad struct {
	selectBits byte // JOYP bits 4-5 as last written
	pressed    byte // bitmask of the button constants above, 1 = held
	lastLower4 byte // previously reported active-low nibble, for edge detection

	requestIRQ func()
}

func New(requestIRQ func()) *Joypad {
	return &Joypad{lastLower4: 0x0F, requestIRQ: requestIRQ}
}

// JOYP returns the register value as read by the CPU: bits 7-6 always 1,
// bits 5-4 the last select write, bits 3-0 active-low button state.
func (j *Joypad) JOYP() byte {
	return 0xC0 | (j.selectBits & 0x30) | j.lowerNibble()
}

func (j *Joypad) WriteJOYP(v byte) {
	j.selectBits = v & 0x30
	j.checkEdge()
}

// SetState replaces the full held-button mask and checks for a resulting
// interrupt edge.
func (j *Joypad) SetState(mask byte) {
	j.pressed = mask
	j.checkEdge()
}

func (j *Joypad) lowerNibble() byte {
	n := byte(0x0F)
	if j.selectBits&0x10 == 0 { // P14 low selects D-pad
		if j.pressed&Right != 0 {
			n &^= 0x01
		}
		if j.pressed&Left != 0 {
			n &^= 0x02
		}
		if j.pressed&Up != 0 {
			n &^= 0x04
		}
		if j.pressed&Down != 0 {
			n &^= 0x08
		}
	}
	if j.selectBits&0x20 == 0 { // P15 low selects buttons
		if j.pressed&A != 0 {
			n &^= 0x01
		}
		if j.pressed&B != 0 {
			n &^= 0x02
		}
		if j.pressed&Select != 0 {
			n &^= 0x04
		}
		if j.pressed&Start != 0 {
			n &^= 0x08
		}
	}
	return n
}

func (j *Joypad) checkEdge() {
	n := j.lowerNibble()
	if j.lastLower4&^n != 0 {
		j.requestIRQ()
	}
	j.lastLower4 = n
}
