package cpu

var cbOpcodes [256]opFunc

func init() {
	for i := range cbOpcodes {
		cbOpcodes[i] = buildCBOpcode(byte(i))
	}
}

// buildCBOpcode decodes one CB-prefixed opcode. Bits 6-7 select the group
// (rotate/shift family, BIT, RES, SET), bits 3-5 select the bit index or
// rotate variant, and bits 0-2 select the 8-way operand position.
func buildCBOpcode(cb byte) opFunc {
	reg := Reg8(cb & 0x07)
	y := (cb >> 3) & 0x07
	cycles8, cycles16 := 8, 16

	switch cb >> 6 {
	case 0: // rotate/shift/swap family, selected by y
		cycles := cycles8
		if reg == RegHLInd {
			cycles = cycles16
		}
		return func(c *CPU) int {
			v := c.getReg8(reg)
			var res byte
			var carry bool
			switch y {
			case 0: // RLC
				res, carry = rotateLeft(v, false, false)
			case 1: // RRC
				res, carry = rotateRight(v, false, false)
			case 2: // RL
				res, carry = rotateLeft(v, true, c.flag(FlagC))
			case 3: // RR
				res, carry = rotateRight(v, true, c.flag(FlagC))
			case 4: // SLA
				res, carry = shiftLeftArith(v)
			case 5: // SRA
				res, carry = shiftRightArith(v)
			case 6: // SWAP
				res, carry = swapNibbles(v), false
			default: // SRL
				res, carry = shiftRightLogical(v)
			}
			c.setReg8(reg, res)
			c.setFlag(FlagZ, res == 0)
			c.setFlag(FlagN, false)
			c.setFlag(FlagH, false)
			c.setFlag(FlagC, carry)
			return cycles
		}

	case 1: // BIT y,r
		cycles := cycles8
		if reg == RegHLInd {
			cycles = 12 // BIT on (HL) reads memory but does not write it back
		}
		bit := byte(1) << y
		return func(c *CPU) int {
			v := c.getReg8(reg)
			c.setFlag(FlagZ, v&bit == 0)
			c.setFlag(FlagN, false)
			c.setFlag(FlagH, true)
			return cycles
		}

	case 2: // RES y,r
		cycles := cycles8
		if reg == RegHLInd {
			cycles = cycles16
		}
		mask := ^(byte(1) << y)
		return func(c *CPU) int {
			c.setReg8(reg, c.getReg8(reg)&mask)
			return cycles
		}

	default: // SET y,r
		cycles := cycles8
		if reg == RegHLInd {
			cycles = cycles16
		}
		bit := byte(1) << y
		return func(c *CPU) int {
			c.setReg8(reg, c.getReg8(reg)|bit)
			return cycles
		}
	}
}
