package ppu

// spriteEntry is one decoded OAM entry, ready for compositing against a
// particular scanline.
type spriteEntry struct {
	oamIndex int
	y, x     int
	tile     byte
	flags    byte
}

func (s spriteEntry) yFlip() bool    { return s.flags&0x40 != 0 }
func (s spriteEntry) xFlip() bool    { return s.flags&0x20 != 0 }
func (s spriteEntry) bgPriority() bool { return s.flags&0x80 != 0 }
func (s spriteEntry) dmgPalette() int  { return int(s.flags>>4) & 1 }
func (s spriteEntry) cgbBank() int     { return int(s.flags>>3) & 1 }
func (s spriteEntry) cgbPalette() int  { return int(s.flags) & 7 }

// spritesOnLine scans OAM (40 entries) and returns up to 10 entries whose
// vertical extent covers ly, in OAM order; spritePixel lets a later entry's
// opaque pixel overwrite an earlier one's.
func (p *PPU) spritesOnLine(ly int) []spriteEntry {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	var out []spriteEntry
	for i := 0; i < 40 && len(out) < 10; i++ {
		base := i * 4
		y := int(p.oam[base]) - 16
		if ly < y || ly >= y+height {
			continue
		}
		x := int(p.oam[base+1]) - 8
		tile := p.oam[base+2]
		if height == 16 {
			tile &^= 0x01
		}
		out = append(out, spriteEntry{
			oamIndex: i,
			y:        y,
			x:        x,
			tile:     tile,
			flags:    p.oam[base+3],
		})
	}
	return out
}

// spritePixel returns the sprite color index (0-3, 0=transparent) and the
// winning sprite for screen column x on the given line's candidate list.
// sprites is walked in OAM order and every opaque pixel unconditionally
// overwrites the previous one — there is no X-coordinate comparison between
// candidates — so on overlap the *highest* OAM-index sprite wins, matching
// original_source's render_sprites (goodboy-core/src/ppu/gpu.rs), which
// iterates self.sprites in OAM order and calls set_color for every opaque
// pixel with no priority check against other sprites.
func (p *PPU) spritePixel(sprites []spriteEntry, ly, x int) (ci byte, sp spriteEntry, hit bool) {
	height := 8
	if p.lcdc&0x04 != 0 {
		height = 16
	}
	for _, s := range sprites {
		if x < s.x || x >= s.x+8 {
			continue
		}
		row := ly - s.y
		if s.yFlip() {
			row = height - 1 - row
		}
		col := x - s.x
		if !s.xFlip() {
			col = 7 - col
		}

		tile := uint16(s.tile)
		if height == 16 && row >= 8 {
			tile++
			row -= 8
		}
		bank := 0
		if p.cgb {
			bank = s.cgbBank()
		}
		base := 0x8000 + tile*16 + uint16(row)*2
		lo := p.readBank(bank, base)
		hi := p.readBank(bank, base+1)
		bit := byte(col)
		pixel := (hi>>bit)&1<<1 | (lo>>bit)&1
		if pixel == 0 {
			continue
		}
		ci, sp, hit = pixel, s, true
	}
	return
}
