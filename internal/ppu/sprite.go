package ppu

// Sprite is one decoded OAM entry, ready for scanline composition.
type Sprite struct {
	X, Y     int
	Tile     byte
	Attr     byte // bit7 BG priority, bit6 Y-flip, bit5 X-flip, bit4 palette
	OAMIndex int // original OAM slot, used as the priority tie-breaker
}

const maxSpritesPerLine = 10

// spritesOnLine scans all 40 OAM entries and returns up to 10 sprites that
// intersect scanline ly, in OAM order (needed for ComposeSpriteLine's
// tie-breaking rule).
func spritesOnLine(oam []byte, ly int, tall bool) []Sprite {
	height := 8
	if tall {
		height = 16
	}
	var out []Sprite
	for i := 0; i < 40 && len(out) < maxSpritesPerLine; i++ {
		base := i * 4
		y := int(oam[base]) - 16
		x := int(oam[base+1]) - 8
		tile := oam[base+2]
		attr := oam[base+3]
		if ly < y || ly >= y+height {
			continue
		}
		out = append(out, Sprite{X: x, Y: y, Tile: tile, Attr: attr, OAMIndex: i})
	}
	return out
}

// ComposeSpriteLine draws up to 10 sprites over a completed 160-pixel BG/window
// line. bgci holds the BG+window color indices already rendered for this row
// (needed for BG-priority sprites and for OBJ-OBJ x-then-OAM-index ordering).
// tall selects 8x16 sprites.
func ComposeSpriteLine(mem VRAMReader, sprites []Sprite, ly int, bgci [160]byte, tall bool) [160]byte {
	var out [160]byte
	// Lower X wins; ties broken by lower OAM index. Draw back-to-front so the
	// winner's pixel is written last.
	ordered := make([]Sprite, len(sprites))
	copy(ordered, sprites)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			a, b := ordered[j-1], ordered[j]
			if a.X < b.X || (a.X == b.X && a.OAMIndex < b.OAMIndex) {
				break
			}
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		s := ordered[i]
		height := 8
		tileNum := s.Tile
		if tall {
			height = 16
			tileNum &^= 0x01
		}
		row := ly - s.Y
		if s.Attr&0x40 != 0 { // Y-flip
			row = height - 1 - row
		}
		tileIdx := uint16(tileNum)
		if tall && row >= 8 {
			tileIdx++
			row -= 8
		}
		base := 0x8000 + tileIdx*16 + uint16(row)*2
		lo := mem.Read(base)
		hi := mem.Read(base + 1)

		for px := 0; px < 8; px++ {
			sx := s.X + px
			if sx < 0 || sx >= 160 {
				continue
			}
			col := px
			if s.Attr&0x20 != 0 { // X-flip
				col = 7 - px
			}
			bit := 7 - byte(col)
			ci := ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
			if ci == 0 {
				continue // transparent
			}
			if s.Attr&0x80 != 0 && bgci[sx] != 0 {
				continue // behind non-zero BG
			}
			out[sx] = ci | paletteTag(s.Attr)
		}
	}
	return out
}

// paletteTag packs the OBP0/OBP1 selector into the unused high bits of the
// composed color index so the caller can still tell which palette to apply
// after compositing; callers mask with 0x03 for the raw color index.
func paletteTag(attr byte) byte {
	if attr&0x10 != 0 {
		return 0x04
	}
	return 0x00
}
