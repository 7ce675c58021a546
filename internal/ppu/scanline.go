package ppu

// renderScanline renders the full 160-pixel row for the current LY into the
// framebuffer. Called once per line, at the mode-3-to-HBlank boundary.
func (p *PPU) renderScanline() {
	ly := int(p.ly)
	if ly >= ScreenHeight {
		return
	}

	bgCI, bgAttr := p.renderBGRow(ly)
	windowDrawn := p.renderWindowRowInto(ly, &bgCI, &bgAttr)
	if windowDrawn {
		p.windowLine++
	}

	bgMasterOn := p.lcdc&0x01 != 0
	spritesOn := p.lcdc&0x02 != 0

	var sprites []spriteEntry
	if spritesOn {
		sprites = p.spritesOnLine(ly)
	}

	rowOff := ly * ScreenWidth * 4
	for x := 0; x < ScreenWidth; x++ {
		ci := bgCI[x]
		attr := bgAttr[x]
		if !bgMasterOn && !p.cgb {
			ci = 0
		}

		var r, g, b byte
		useSprite := false
		var spCI byte
		var sp spriteEntry
		if spritesOn {
			spCI, sp, useSprite = p.spritePixel(sprites, ly, x)
			if useSprite {
				bgWins := sp.bgPriority() && ci != 0
				if p.cgb && bgMasterOn && attr&0x80 != 0 && ci != 0 {
					bgWins = true // CGB BG-priority attribute overrides OBJ priority
				}
				if bgWins {
					useSprite = false
				}
			}
		}

		switch {
		case useSprite:
			r, g, b = p.colorFor(true, sp.dmgPalette(), sp.cgbPalette(), spCI)
		default:
			r, g, b = p.colorFor(false, 0, int(attr&0x07), ci)
		}
		p.framebuffer[rowOff+x*4+0] = r
		p.framebuffer[rowOff+x*4+1] = g
		p.framebuffer[rowOff+x*4+2] = b
		p.framebuffer[rowOff+x*4+3] = 0xFF
	}
}

// colorFor resolves a color index to RGB, via DMG palette registers and the
// scheme, or CGB palette RAM.
func (p *PPU) colorFor(obj bool, dmgPal, cgbPal int, ci byte) (r, g, b byte) {
	if p.cgb {
		ram := p.bcram[:]
		if obj {
			ram = p.ocram[:]
		}
		off := cgbPal*8 + int(ci)*2
		return decodeRGB555(ram[off], ram[off+1])
	}
	pal := p.bgp
	if obj {
		if dmgPal == 0 {
			pal = p.obp0
		} else {
			pal = p.obp1
		}
	}
	shade := (pal >> (ci * 2)) & 0x03
	c := p.scheme[shade]
	return c[0], c[1], c[2]
}

// renderBGRow fetches 160 BG color indices (and CGB attribute bytes) for ly,
// honoring SCX/SCY wraparound across the 32x32 tile map.
func (p *PPU) renderBGRow(ly int) (ci [ScreenWidth]byte, attr [ScreenWidth]byte) {
	mapBase := uint16(0x9800)
	if p.lcdc&0x08 != 0 {
		mapBase = 0x9C00
	}
	tileData8000 := p.lcdc&0x10 != 0

	bgY := (uint16(ly) + uint16(p.scy)) & 0xFF
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	startX := uint16(p.scx)
	tileX := (startX >> 3) & 31
	fineX := int(startX & 7)

	var q fifo
	var aq attrFifo
	f := newBGFetcher(p, &q, &aq, p.cgb)

	tileIndexAddr := mapBase + mapY*32 + tileX
	f.Configure(mapBase, tileData8000, tileIndexAddr, fineY)
	f.Fetch()
	for i := 0; i < fineX; i++ {
		q.Pop()
		if p.cgb {
			aq.Pop()
		}
	}

	for x := 0; x < ScreenWidth; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			tileIndexAddr = mapBase + mapY*32 + tileX
			f.Configure(mapBase, tileData8000, tileIndexAddr, fineY)
			f.Fetch()
		}
		px, _ := q.Pop()
		ci[x] = px
		if p.cgb {
			attr[x] = aq.Pop()
		}
	}
	return
}

// renderWindowRowInto overwrites bgCI/bgAttr from WX-7 onward with the
// window layer, if the window is enabled and visible on this line. Returns
// whether it actually drew anything (so the caller only advances its
// internal line counter on lines the window was drawn on).
func (p *PPU) renderWindowRowInto(ly int, bgCI, bgAttr *[ScreenWidth]byte) bool {
	if p.lcdc&0x20 == 0 {
		return false
	}
	if ly < int(p.wy) {
		return false
	}
	wxStart := int(p.wx) - 7
	if wxStart >= ScreenWidth {
		return false
	}
	if wxStart < 0 {
		wxStart = 0
	}

	mapBase := uint16(0x9800)
	if p.lcdc&0x40 != 0 {
		mapBase = 0x9C00
	}
	tileData8000 := p.lcdc&0x10 != 0

	winLine := byte(p.windowLine)
	mapY := (uint16(winLine) >> 3) & 31
	fineY := winLine & 7

	var q fifo
	var aq attrFifo
	f := newBGFetcher(p, &q, &aq, p.cgb)

	tileX := uint16(0)
	tileIndexAddr := mapBase + mapY*32 + tileX
	f.Configure(mapBase, tileData8000, tileIndexAddr, fineY)
	f.Fetch()

	for x := wxStart; x < ScreenWidth; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			tileIndexAddr = mapBase + mapY*32 + tileX
			f.Configure(mapBase, tileData8000, tileIndexAddr, fineY)
			f.Fetch()
		}
		px, _ := q.Pop()
		bgCI[x] = px
		if p.cgb {
			bgAttr[x] = aq.Pop()
		}
	}
	return true
}
