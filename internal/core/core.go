// Package core is the top-level driver: it owns the CPU/MMU pair, loads
// cartridges (including ZIP-wrapped ROMs), and runs the tick loop that
// publishes framebuffers and audio buffers to a host over channels.
package core

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hollowbyte/gbcore/internal/cart"
	"github.com/hollowbyte/gbcore/internal/cpu"
	"github.com/hollowbyte/gbcore/internal/joypad"
	"github.com/hollowbyte/gbcore/internal/mmu"
)

// AudioBufferSize is the number of interleaved stereo samples (so
// AudioBufferSize/2 frames) the core accumulates before publishing a buffer
// on the audio channel and applying backpressure.
const AudioBufferSize = 2048

// Core wires the CPU to the MMU and runs the tick loop described in spec
// section 5-6: a CPU thread that publishes video frames fire-and-forget and
// blocks on audio backpressure, driven by an input event channel from the
// host.
type Core struct {
	cfg Config
	cpu *cpu.CPU
	mmu *mmu.MMU

	Input  chan InputEvent
	Frames chan [144][160]byte
	Audio  chan []int16

	romPath string
}

// New constructs a Core with no cartridge loaded; call LoadROM before Run.
func New(cfg Config) *Core {
	cfg.defaults()
	c := &Core{
		cfg:    cfg,
		Input:  make(chan InputEvent, 64),
		Frames: make(chan [144][160]byte, 2),
		Audio:  make(chan []int16, 1),
	}
	cartridge, _ := cart.NewCartridge(nil) // nil ROM always falls back to ROM-only, never errors
	c.mmu = mmu.New(cartridge, cfg.SampleRate)
	c.cpu = cpu.New(c.mmu)
	c.cpu.ResetPostBoot()
	return c
}

// LoadROM installs the ROM image in data as the active cartridge and records
// path for RomPath. A .zip archive is transparently extracted: the first
// entry whose name ends in .gb or .gbc (case-insensitive) is used.
func (c *Core) LoadROM(data []byte, path string) error {
	rom := data
	if isZip(data) {
		extracted, err := extractROMFromZip(data)
		if err != nil {
			return fmt.Errorf("zip extraction failed: %w", err)
		}
		rom = extracted
	}
	cartridge, err := cart.NewCartridge(rom)
	if err != nil {
		return err
	}
	c.mmu = mmu.New(cartridge, c.cfg.SampleRate)
	c.cpu = cpu.New(c.mmu)
	c.cpu.ResetPostBoot()
	c.romPath = path
	if h, err := cart.ParseHeader(rom); err == nil {
		slog.Info("ROM loaded", "title", h.Title, "type", h.CartTypeStr, "rom_banks", h.ROMBanks, "ram_bytes", h.RAMSizeBytes)
	} else {
		slog.Warn("ROM header unparsable, continuing", "error", err)
	}
	return nil
}

func isZip(data []byte) bool {
	return len(data) >= 4 && data[0] == 'P' && data[1] == 'K' && data[2] == 0x03 && data[3] == 0x04
}

func extractROMFromZip(data []byte) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".gb") || strings.HasSuffix(strings.ToLower(f.Name), ".gbc") {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("no .gb/.gbc entry found in zip")
}

// SaveRAM returns the cartridge's battery-backed RAM (and RTC state, for
// MBC3), or nil if the cartridge has none.
func (c *Core) SaveRAM() []byte {
	if bb, ok := c.mmu.Cart().(cart.BatteryBacked); ok {
		return bb.SaveRAM()
	}
	return nil
}

// LoadRAM restores battery-backed RAM saved by SaveRAM.
func (c *Core) LoadRAM(data []byte) {
	if bb, ok := c.mmu.Cart().(cart.BatteryBacked); ok {
		bb.LoadRAM(data)
	}
}

// RomPath returns the path LoadROM was last called with.
func (c *Core) RomPath() string { return c.romPath }

// Run starts the tick loop and drains Input until a Quit event arrives or
// ctx is cancelled; it returns the tick loop's error, if any.
func (c *Core) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.runTickLoop(gctx) })
	return g.Wait()
}

func (c *Core) runTickLoop(ctx context.Context) error {
	var joyMask byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.Input:
			if ev.IsQuit {
				return nil
			}
			joyMask = applyKeyEvent(joyMask, ev.Key)
			c.mmu.SetJoypadState(joyMask)
		default:
		}

		cycles := c.cpu.Tick()
		if c.cfg.Trace {
			slog.Debug("instruction retired", "pc", c.cpu.PC, "cycles", cycles)
		}
		c.mmu.Tick(cycles)

		if c.mmu.PPU().ConsumeFrameReady() {
			select {
			case c.Frames <- *c.mmu.PPU().FrameBuffer():
			default:
				// Fire-and-forget per spec: drop rather than block the CPU thread.
			}
		}

		if c.mmu.APU().StereoAvailable() >= AudioBufferSize/2 {
			buf := c.mmu.APU().PullStereo(AudioBufferSize / 2)
			select {
			case c.Audio <- buf:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func applyKeyEvent(mask byte, ev KeyEvent) byte {
	var bit byte
	switch ev.Code {
	case KeyUp:
		bit = joypad.Up
	case KeyDown:
		bit = joypad.Down
	case KeyLeft:
		bit = joypad.Left
	case KeyRight:
		bit = joypad.Right
	case KeyA:
		bit = joypad.A
	case KeyB:
		bit = joypad.B
	case KeyStart:
		bit = joypad.Start
	case KeySelect:
		bit = joypad.Select
	}
	if ev.State == KeyPressed {
		return mask | bit
	}
	return mask &^ bit
}
