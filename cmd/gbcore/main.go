// Command gbcore runs the DMG core, either headless (CRC32/PNG harness,
// useful for test ROMs and CI) or in a window via internal/host.
package main

import (
	"context"
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hollowbyte/gbcore/internal/core"
	"github.com/hollowbyte/gbcore/internal/host"
)

type cliFlags struct {
	romPath string
	scale   int
	title   string
	trace   bool
	saveRAM bool

	headless bool
	frames   int
	pngOut   string
	expect   string
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.romPath, "rom", "", "path to ROM (.gb, .gbc, or a .zip containing one)")
	flag.IntVar(&f.scale, "scale", 3, "window scale")
	flag.StringVar(&f.title, "title", "gbcore", "window title")
	flag.BoolVar(&f.trace, "trace", false, "log each retired instruction")
	flag.BoolVar(&f.saveRAM, "save", true, "persist battery RAM to ROM.sav on exit and load on start")

	flag.BoolVar(&f.headless, "headless", false, "run without a window")
	flag.IntVar(&f.frames, "frames", 300, "frames to run in headless mode")
	flag.StringVar(&f.pngOut, "outpng", "", "write the last framebuffer to PNG at path")
	flag.StringVar(&f.expect, "expect", "", "assert the framebuffer's CRC32 (hex)")
	flag.Parse()
	return f
}

func mustRead(path string) []byte {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return b
}

func savPathFor(romPath string) string {
	for _, ext := range []string{".gb", ".gbc", ".zip"} {
		if strings.HasSuffix(strings.ToLower(romPath), ext) {
			return romPath[:len(romPath)-len(ext)] + ".sav"
		}
	}
	return romPath + ".sav"
}

func main() {
	f := parseFlags()
	if f.romPath == "" {
		log.Fatal("-rom is required")
	}
	rom := mustRead(f.romPath)

	c := core.New(core.Config{Trace: f.trace, LimitFPS: !f.headless})
	if err := c.LoadROM(rom, f.romPath); err != nil {
		log.Fatalf("load ROM: %v", err)
	}

	savPath := savPathFor(f.romPath)
	if f.saveRAM {
		if data, err := os.ReadFile(savPath); err == nil {
			c.LoadRAM(data)
			slog.Info("loaded save RAM", "path", savPath, "bytes", len(data))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if f.headless {
		if err := runHeadless(ctx, c, f.frames, f.pngOut, f.expect); err != nil {
			log.Fatal(err)
		}
		writeSaveRAM(c, f.saveRAM, savPath)
		return
	}

	app := host.NewApp(host.Config{Title: f.title, Scale: f.scale}, c)
	go func() {
		if err := c.Run(ctx); err != nil {
			slog.Error("core run exited", "error", err)
		}
	}()
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
	cancel()
	writeSaveRAM(c, f.saveRAM, savPath)
}

func writeSaveRAM(c *core.Core, enabled bool, path string) {
	if !enabled {
		return
	}
	data := c.SaveRAM()
	if len(data) == 0 {
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		slog.Error("write save RAM", "path", path, "error", err)
		return
	}
	slog.Info("wrote save RAM", "path", path, "bytes", len(data))
}

func runHeadless(ctx context.Context, c *core.Core, frames int, pngPath, expectCRC string) error {
	if frames <= 0 {
		frames = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	start := time.Now()
	var last [144][160]byte
	for i := 0; i < frames; i++ {
		select {
		case last = <-c.Frames:
		case err := <-done:
			return fmt.Errorf("core stopped early: %w", err)
		}
	}
	dur := time.Since(start)
	cancel()
	<-done

	fb := indexedToRGBA(last)
	crc := crc32.ChecksumIEEE(fb)
	fps := float64(frames) / dur.Seconds()
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		frames, dur.Truncate(time.Millisecond), fps, crc)

	if pngPath != "" {
		if err := saveFramePNG(fb, 160, 144, pngPath); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		log.Printf("wrote %s", pngPath)
	}

	if expectCRC != "" {
		want := strings.TrimPrefix(strings.ToLower(expectCRC), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}

var dmgPalette = [4]color.RGBA{
	{R: 0x9B, G: 0xBC, B: 0x0F, A: 0xFF},
	{R: 0x8B, G: 0xAC, B: 0x0F, A: 0xFF},
	{R: 0x30, G: 0x62, B: 0x30, A: 0xFF},
	{R: 0x0F, G: 0x38, B: 0x0F, A: 0xFF},
}

func indexedToRGBA(fb [144][160]byte) []byte {
	out := make([]byte, 160*144*4)
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			c := dmgPalette[fb[y][x]&0x03]
			i := (y*160 + x) * 4
			out[i], out[i+1], out[i+2], out[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return out
}

func saveFramePNG(pix []byte, w, h int, path string) error {
	img := &image.RGBA{
		Pix:    make([]byte, len(pix)),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	copy(img.Pix, pix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
