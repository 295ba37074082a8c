package cpu

import "testing"

// testBus is a flat 64KiB RAM used to drive the CPU in isolation; the real
// address decode lives in internal/mmu.
type testBus struct {
	mem [0x10000]byte
}

func (b *testBus) Read(addr uint16) byte     { return b.mem[addr] }
func (b *testBus) Write(addr uint16, v byte) { b.mem[addr] = v }

func newTestCPU(program ...byte) (*CPU, *testBus) {
	bus := &testBus{}
	copy(bus.mem[0x0100:], program)
	c := New(bus)
	c.ResetPostBoot()
	return c, bus
}

func runN(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.Tick()
	}
}

func TestFlagsLowNibbleAlwaysZero(t *testing.T) {
	c, _ := newTestCPU()
	c.SetAF(0x12FF)
	if c.F&0x0F != 0 {
		t.Fatalf("F low nibble = %#x, want 0", c.F&0x0F)
	}
	c.setFlag(FlagZ, true)
	if c.F&0x0F != 0 {
		t.Fatalf("F low nibble after setFlag = %#x, want 0", c.F&0x0F)
	}
}

func TestAddOverflowSetsZeroHalfCarryAndCarry(t *testing.T) {
	// LD A,0x3C ; ADD A,0xC4 -> A=0, Z=1, N=0, H=1, C=1
	c, _ := newTestCPU(0x3E, 0x3C, 0xC6, 0xC4)
	runN(c, 2)
	if c.A != 0x00 {
		t.Fatalf("A = %#x, want 0x00", c.A)
	}
	if !c.flag(FlagZ) || c.flag(FlagN) || !c.flag(FlagH) || !c.flag(FlagC) {
		t.Fatalf("flags = %#x, want Z=1,N=0,H=1,C=1", c.F)
	}
}

func TestAddHLSetsHalfCarryAndCarry(t *testing.T) {
	// LD HL,0x8A23 ; ADD HL,HL -> HL=0x1446, N=0, H=1, C=1
	c, _ := newTestCPU(0x21, 0x23, 0x8A, 0x29)
	runN(c, 2)
	if c.HL() != 0x1446 {
		t.Fatalf("HL = %#x, want 0x1446", c.HL())
	}
	if c.flag(FlagN) || !c.flag(FlagH) || !c.flag(FlagC) {
		t.Fatalf("flags = %#x, want N=0,H=1,C=1", c.F)
	}
}

func TestIncLowNibbleOverflowSetsHalfCarryOnly(t *testing.T) {
	// LD A,0x0F ; INC A -> A=0x10, H=1, Z=0, N=0; C untouched
	c, _ := newTestCPU(0x3E, 0x0F, 0x3C)
	c.setFlag(FlagC, true)
	runN(c, 2)
	if c.A != 0x10 {
		t.Fatalf("A = %#x, want 0x10", c.A)
	}
	if c.flag(FlagZ) || c.flag(FlagN) || !c.flag(FlagH) {
		t.Fatalf("flags = %#x, want Z=0,N=0,H=1", c.F)
	}
	if !c.flag(FlagC) {
		t.Fatal("INC must not clear C")
	}
}

func TestDAAAfterIncrementingPackedBCD(t *testing.T) {
	// A=0x99, N=0,H=0,C=0, then +1 -> A=0x00, Z=1, C=1 (per worked example)
	res, z, cy := daa(0x9A, false, false, false)
	if res != 0x00 || !z || !cy {
		t.Fatalf("daa(0x9A) = %#x z=%v c=%v, want 0x00 true true", res, z, cy)
	}
}

func TestAddSPSignedNegativeOffset(t *testing.T) {
	c, _ := newTestCPU(0x31, 0x00, 0xC0, 0xE8, 0xFF) // LD SP,0xC000 ; ADD SP,-1
	runN(c, 2)
	if c.SP != 0xBFFF {
		t.Fatalf("SP = %#x, want 0xBFFF", c.SP)
	}
	if c.flag(FlagZ) || c.flag(FlagN) {
		t.Fatalf("flags = %#x, want Z=0,N=0", c.F)
	}
	if c.flag(FlagH) || c.flag(FlagC) {
		t.Fatalf("flags = %#x, want H=0,C=0 (0x00+0xFF = 0xFF does not carry out of the low byte)", c.F)
	}
}

func TestLDRegisterToRegisterChain(t *testing.T) {
	// LD B,0x42 ; LD C,B ; LD D,C
	c, _ := newTestCPU(0x06, 0x42, 0x48, 0x51)
	runN(c, 3)
	if c.B != 0x42 || c.C != 0x42 || c.D != 0x42 {
		t.Fatalf("B=%#x C=%#x D=%#x, want all 0x42", c.B, c.C, c.D)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	// LD BC,0x1234 ; PUSH BC ; POP DE
	c, bus := newTestCPU(0x01, 0x34, 0x12, 0xC5, 0xD1)
	_ = bus
	runN(c, 3)
	if c.DE() != 0x1234 {
		t.Fatalf("DE = %#x, want 0x1234", c.DE())
	}
}

func TestHaltWaitsForInterrupt(t *testing.T) {
	c, bus := newTestCPU(0x76) // HALT
	runN(c, 1)
	if !c.halted {
		t.Fatal("expected halted after HALT opcode")
	}
	runN(c, 3)
	if !c.halted {
		t.Fatal("expected still halted with no pending interrupt")
	}
	bus.Write(addrIE, 0x01)
	bus.Write(addrIF, 0x01)
	c.Tick()
	if c.halted {
		t.Fatal("expected HALT to clear once an enabled interrupt is pending")
	}
}

func TestUndefinedOpcodeFaultsAndHalts(t *testing.T) {
	c, _ := newTestCPU(0xD3) // undefined
	runN(c, 1)
	if !c.halted {
		t.Fatal("expected undefined opcode to halt the core")
	}
}

func TestCBBitOnMemoryDoesNotWriteBack(t *testing.T) {
	// LD HL,0xC000 ; CB 0x46 = BIT 0,(HL)
	c, bus := newTestCPU(0x21, 0x00, 0xC0, 0xCB, 0x46)
	bus.mem[0xC000] = 0xFE
	runN(c, 2)
	if bus.mem[0xC000] != 0xFE {
		t.Fatalf("BIT must not mutate memory, got %#x", bus.mem[0xC000])
	}
	if !c.flag(FlagZ) {
		t.Fatal("bit 0 of 0xFE is clear, want Z=1")
	}
}

func TestCBSetAndResOnRegister(t *testing.T) {
	// LD A,0 ; CB C7 = SET 0,A ; CB 87 = RES 0,A
	c, _ := newTestCPU(0x3E, 0x00, 0xCB, 0xC7, 0xCB, 0x87)
	runN(c, 2)
	if c.A != 0x01 {
		t.Fatalf("after SET 0,A A = %#x, want 0x01", c.A)
	}
	runN(c, 1)
	if c.A != 0x00 {
		t.Fatalf("after RES 0,A A = %#x, want 0x00", c.A)
	}
}
