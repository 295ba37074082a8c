package cart

// MBC2 implements ROM banking plus its built-in 512x4-bit RAM.
// Banking behavior:
// - 0000-3FFF: ROM bank 0 fixed
// - 4000-7FFF: switchable ROM bank, selected by the low 4 bits written to
//   0000-3FFF; bit8 of the address being written selects RAM-enable (bit8=0)
//   vs ROM-bank-select (bit8=1); MBC2 has no separate 2000-3FFF register.
// - A000-A1FF: 512x4-bit built-in RAM, mirrored across A000-BFFF; only the
//   low nibble of each byte is meaningful, and reads return the upper nibble
//   set to 1s.
type MBC2 struct {
	rom []byte
	ram [512]byte // only the low nibble of each entry is used

	romBank    byte // 4 bits (0 maps to 1)
	ramEnabled bool
}

func NewMBC2(rom []byte) *MBC2 {
	return &MBC2{rom: rom, romBank: 1}
}

func (m *MBC2) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank)
		off := bank*0x4000 + int(addr-0x4000)
		if off >= 0 && off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		return 0xF0 | (m.ram[(addr-0xA000)&0x1FF] & 0x0F)
	default:
		return 0xFF
	}
}

func (m *MBC2) Write(addr uint16, value byte) {
	switch {
	case addr < 0x4000:
		// Bit 8 of the address (not the data) selects RAM-enable vs bank-select.
		if addr&0x0100 == 0 {
			m.ramEnabled = (value & 0x0F) == 0x0A
			return
		}
		bank := value & 0x0F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		m.ram[(addr-0xA000)&0x1FF] = value & 0x0F
	}
}

// SaveRAM and LoadRAM implement BatteryBacked for MBC2+BATTERY carts.
func (m *MBC2) SaveRAM() []byte {
	out := make([]byte, len(m.ram))
	copy(out, m.ram[:])
	return out
}

func (m *MBC2) LoadRAM(data []byte) {
	if len(data) == 0 {
		return
	}
	copy(m.ram[:], data)
}
