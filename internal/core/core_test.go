package core

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"
)

func TestCore_LoadROM_PlainAndHeader(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x00 // NOP at entry
	c := New(Config{})
	if err := c.LoadROM(rom, "test.gb"); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if c.RomPath() != "test.gb" {
		t.Fatalf("RomPath got %q", c.RomPath())
	}
}

func TestCore_LoadROM_FromZip(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x00

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("game.gb")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	if _, err := w.Write(rom); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}

	c := New(Config{})
	if err := c.LoadROM(buf.Bytes(), "game.zip"); err != nil {
		t.Fatalf("LoadROM from zip: %v", err)
	}
}

func TestCore_RunStopsOnQuit(t *testing.T) {
	rom := make([]byte, 0x8000)
	// Tight infinite loop: JP 0x0100
	rom[0x0100] = 0xC3
	rom[0x0101] = 0x00
	rom[0x0102] = 0x01

	c := New(Config{})
	if err := c.LoadROM(rom, "loop.gb"); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	c.Input <- Quit()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Quit")
	}
}
