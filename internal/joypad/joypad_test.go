package joypad

import "testing"

func TestUnselectedRowReadsAllOnes(t *testing.T) {
	j := New(func() {})
	j.WriteJOYP(0x30) // neither row selected
	j.SetState(A | Right)
	if j.JOYP()&0x0F != 0x0F {
		t.Fatalf("JOYP low nibble = %#x, want 0x0F with no row selected", j.JOYP()&0x0F)
	}
}

func TestDPadRowReportsActiveLow(t *testing.T) {
	j := New(func() {})
	j.WriteJOYP(0x20) // P14 low selects D-pad, P15 high
	j.SetState(Right | Down)
	got := j.JOYP() & 0x0F
	want := byte(0x0F) &^ 0x01 &^ 0x08
	if got != want {
		t.Fatalf("JOYP low nibble = %#x, want %#x", got, want)
	}
}

func TestPressingButtonRaisesInterruptOnFallingEdge(t *testing.T) {
	fired := 0
	j := New(func() { fired++ })
	j.WriteJOYP(0x10) // select buttons row
	j.SetState(0)
	fired = 0
	j.SetState(Start)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 on press edge", fired)
	}
	fired = 0
	j.SetState(Start) // holding steady, no new edge
	if fired != 0 {
		t.Fatalf("fired = %d, want 0 when state doesn't change", fired)
	}
}
