// Package mmu implements the DMG memory map: it routes every CPU-visible
// address to the cartridge, work RAM, high RAM, or the right peripheral
// (PPU, APU, timer, joypad, serial port), and owns OAM DMA and the IE/IF
// interrupt-flag registers all of those peripherals share.
package mmu

import (
	"io"

	"github.com/hollowbyte/gbcore/internal/apu"
	"github.com/hollowbyte/gbcore/internal/cart"
	"github.com/hollowbyte/gbcore/internal/joypad"
	"github.com/hollowbyte/gbcore/internal/ppu"
	"github.com/hollowbyte/gbcore/internal/serial"
	"github.com/hollowbyte/gbcore/internal/timer"
)

// MMU wires CPU-visible address space to the cartridge, WRAM, HRAM, and
// every memory-mapped peripheral. It implements cpu.Bus.
type MMU struct {
	cart cart.Cartridge

	wram [0x2000]byte // 0xC000-0xDFFF, echoed at 0xE000-0xFDFF
	hram [0x7F]byte   // 0xFF80-0xFFFE

	ppu *ppu.PPU
	apu *apu.APU
	tmr *timer.Timer
	joy *joypad.Joypad
	ser *serial.Port

	ie    byte // 0xFFFF
	ifReg byte // 0xFF0F, lower 5 bits used

	dma      byte // 0xFF46
	dmaActive bool
	dmaSrc    uint16
	dmaIndex  int

	bootROM     []byte
	bootEnabled bool
}

// New wires an MMU around the given cartridge, constructing fresh PPU, APU,
// timer, joypad, and serial peripherals whose interrupt callbacks all OR
// into the shared IF register. The APU mixes stereo samples at sampleRate
// (0 defaults to 48kHz).
func New(c cart.Cartridge, sampleRate int) *MMU {
	m := &MMU{cart: c}
	m.ppu = ppu.New(func(bit int) { m.ifReg |= 1 << bit })
	m.apu = apu.New(sampleRate)
	m.tmr = timer.New(func() { m.ifReg |= 1 << 2 })
	m.joy = joypad.New(func() { m.ifReg |= 1 << 4 })
	m.ser = serial.New(func() { m.ifReg |= 1 << 3 })
	return m
}

// NewWithROM builds an MMU with a cartridge auto-detected from the ROM's
// header byte at 0x0147. It panics if the cartridge type is unsupported;
// callers that need to handle that gracefully should call cart.NewCartridge
// themselves and pass the result to New.
func NewWithROM(rom []byte, sampleRate int) *MMU {
	c, err := cart.NewCartridge(rom)
	if err != nil {
		panic(err)
	}
	return New(c, sampleRate)
}

func (m *MMU) PPU() *ppu.PPU       { return m.ppu }
func (m *MMU) APU() *apu.APU       { return m.apu }
func (m *MMU) Cart() cart.Cartridge { return m.cart }

// SetJoypadState replaces the full held-button mask; bits use the joypad
// button constants (joypad.Right, joypad.A, ...).
func (m *MMU) SetJoypadState(mask byte) { m.joy.SetState(mask) }

// SetSerialSink directs bytes written through the serial port to w.
func (m *MMU) SetSerialSink(w io.Writer) { m.ser.SetSink(w) }

// SetBootROM loads a 256-byte DMG boot ROM to overlay 0x0000-0x00FF until
// disabled by a write to 0xFF50.
func (m *MMU) SetBootROM(data []byte) {
	m.bootROM = nil
	m.bootEnabled = false
	if len(data) >= 0x100 {
		m.bootROM = make([]byte, 0x100)
		copy(m.bootROM, data[:0x100])
		m.bootEnabled = true
	}
}

func (m *MMU) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if m.bootEnabled && addr < 0x0100 {
			return m.bootROM[addr]
		}
		return m.cart.Read(addr)
	case addr <= 0x9FFF:
		return m.ppu.CPURead(addr)
	case addr <= 0xBFFF:
		return m.cart.Read(addr)
	case addr <= 0xDFFF:
		return m.wram[addr-0xC000]
	case addr <= 0xFDFF:
		return m.wram[addr-0x2000-0xC000]
	case addr <= 0xFE9F:
		if m.dmaActive {
			return 0xFF
		}
		return m.ppu.CPURead(addr)
	case addr <= 0xFEFF:
		return 0x00 // unusable region
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return m.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return m.ie
	case addr == 0xFF0F:
		return 0xE0 | (m.ifReg & 0x1F)
	case addr == 0xFF00:
		return m.joy.JOYP()
	case addr == 0xFF01:
		return m.ser.SB()
	case addr == 0xFF02:
		return m.ser.SC()
	case addr == 0xFF04:
		return m.tmr.DIV()
	case addr == 0xFF05:
		return m.tmr.TIMA()
	case addr == 0xFF06:
		return m.tmr.TMA()
	case addr == 0xFF07:
		return m.tmr.TAC()
	case addr == 0xFF46:
		return m.dma
	case addr == 0xFF50:
		return 0xFF
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return m.apu.CPURead(addr)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return m.ppu.CPURead(addr)
	default:
		return 0xFF
	}
}

func (m *MMU) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		m.cart.Write(addr, value)
	case addr <= 0x9FFF:
		m.ppu.CPUWrite(addr, value)
	case addr <= 0xBFFF:
		m.cart.Write(addr, value)
	case addr <= 0xDFFF:
		m.wram[addr-0xC000] = value
	case addr <= 0xFDFF:
		m.wram[addr-0x2000-0xC000] = value
	case addr <= 0xFE9F:
		if !m.dmaActive {
			m.ppu.CPUWrite(addr, value)
		}
	case addr >= 0xFF80 && addr <= 0xFFFE:
		m.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		m.ie = value
	case addr == 0xFF0F:
		m.ifReg = value & 0x1F
	case addr == 0xFF00:
		m.joy.WriteJOYP(value)
	case addr == 0xFF01:
		m.ser.WriteSB(value)
	case addr == 0xFF02:
		m.ser.WriteSC(value)
	case addr == 0xFF04:
		m.tmr.WriteDIV(value)
	case addr == 0xFF05:
		m.tmr.WriteTIMA(value)
	case addr == 0xFF06:
		m.tmr.WriteTMA(value)
	case addr == 0xFF07:
		m.tmr.WriteTAC(value)
	case addr == 0xFF46:
		m.dma = value
		m.dmaActive = true
		m.dmaSrc = uint16(value) << 8
		m.dmaIndex = 0
	case addr == 0xFF50:
		if value != 0x00 {
			m.bootEnabled = false
		}
	case addr >= 0xFF10 && addr <= 0xFF3F:
		m.apu.CPUWrite(addr, value)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		m.ppu.CPUWrite(addr, value)
	}
}

// Tick advances every peripheral by cycles T-cycles: the timer, the PPU,
// the APU's frame sequencer, and one step of OAM DMA per cycle when active.
func (m *MMU) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		m.tmr.Tick()
		m.ppu.Tick(1)
		m.apu.Tick(1)
		if m.dmaActive {
			if m.dmaIndex < 0xA0 {
				v := m.Read(m.dmaSrc + uint16(m.dmaIndex))
				m.ppu.CPUWrite(0xFE00+uint16(m.dmaIndex), v)
				m.dmaIndex++
			}
			if m.dmaIndex >= 0xA0 {
				m.dmaActive = false
			}
		}
	}
}
