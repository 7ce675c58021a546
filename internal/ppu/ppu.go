// Package ppu implements the Game Boy picture processing unit: VRAM/OAM
// storage, the LCDC/STAT mode state machine, and per-scanline BG/window/
// sprite compositing into an RGBA framebuffer. It also implements the CGB
// extensions: a second VRAM bank, and indexed BG/OBJ palette RAM.
package ppu

// InterruptRequester requests an IF bit (0:VBlank, 1:STAT) be set.
type InterruptRequester func(bit int)

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// PPU models VRAM/OAM, LCDC/STAT/SCY/SCX/LY/LYC/WY/WX/BGP/OBPx, the CGB
// palette RAM and VRAM bank select, and per-scanline rendering.
type PPU struct {
	vram     [2][0x2000]byte // 0x8000-0x9FFF, bank 0 and (CGB) bank 1
	vramBank byte            // FF4F bit 0
	oam      [0xA0]byte      // 0xFE00-0xFE9F

	lcdc, stat         byte
	scy, scx           byte
	ly, lyc            byte
	bgp, obp0, obp1    byte
	wy, wx             byte
	windowLine         int // internal window line counter, only advances on drawn lines

	dot int

	cgb  bool
	bcps byte // FF68: BG palette index/auto-increment
	ocps byte // FF6A: OBJ palette index/auto-increment
	bcram [64]byte
	ocram [64]byte

	scheme ColorScheme

	framebuffer [ScreenWidth * ScreenHeight * 4]byte

	req      InterruptRequester
	onHBlank func() // notified on the mode-3-to-0 transition, after rendering; used by CGB HBlank DMA
}

// New constructs a PPU. Pass cgb=true to enable the second VRAM bank and
// palette RAM; scheme is the DMG 4-shade palette used when cgb is false.
func New(req InterruptRequester, cgb bool, scheme ColorScheme) *PPU {
	p := &PPU{req: req, cgb: cgb, scheme: scheme}
	p.whiteFill()
	return p
}

// whiteFill sets the entire framebuffer to opaque white, the screen's state
// whenever the LCD is off (construction, and LCDC bit 7 cleared).
func (p *PPU) whiteFill() {
	for i := 0; i < len(p.framebuffer); i += 4 {
		p.framebuffer[i+0] = 0xFF
		p.framebuffer[i+1] = 0xFF
		p.framebuffer[i+2] = 0xFF
		p.framebuffer[i+3] = 0xFF
	}
}

// SetOnHBlank installs a callback fired once per scanline on the mode-3-to-0
// transition, right after the scanline is rendered. The bus uses this to
// drive one CGB HBlank-DMA block per line.
func (p *PPU) SetOnHBlank(fn func()) { p.onHBlank = fn }

func (p *PPU) readBank(bank int, addr uint16) byte {
	if addr < 0x8000 || addr > 0x9FFF {
		return 0xFF
	}
	return p.vram[bank][addr-0x8000]
}

// CPURead returns bytes for VRAM, OAM, and PPU IO registers. Returns 0xFF
// for addresses the PPU doesn't own.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.stat&0x03 == 3 {
			return 0xFF
		}
		return p.vram[p.vramBank][addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.stat & 0x03; m == 2 || m == 3 {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | p.stat&0x7F
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	case addr == 0xFF4F:
		return 0xFE | p.vramBank
	case addr == 0xFF68:
		return p.bcps
	case addr == 0xFF69:
		return p.readPaletteRAM(p.bcram[:], p.bcps)
	case addr == 0xFF6A:
		return p.ocps
	case addr == 0xFF6B:
		return p.readPaletteRAM(p.ocram[:], p.ocps)
	default:
		return 0xFF
	}
}

func (p *PPU) readPaletteRAM(ram []byte, cps byte) byte {
	return ram[cps&0x3F]
}

// CPUWrite handles writes to VRAM, OAM, and PPU IO registers.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.stat&0x03 == 3 {
			return
		}
		p.vram[p.vramBank][addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.stat & 0x03; m == 2 || m == 3 {
			return
		}
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		switch {
		case p.lcdc&0x80 == 0 && prev&0x80 != 0:
			p.ly, p.dot = 0, 0
			p.setMode(0)
			p.updateLYC()
			p.whiteFill()
		case p.lcdc&0x80 != 0 && prev&0x80 == 0:
			p.ly, p.dot = 0, 0
			p.windowLine = 0
			p.setMode(2)
			p.updateLYC()
		}
	case addr == 0xFF41:
		p.stat = p.stat&0x07 | value&0x78
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		p.ly, p.dot = 0, 0
		p.updateLYC()
		if p.lcdc&0x80 != 0 {
			p.setMode(2)
		}
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	case addr == 0xFF4F:
		if p.cgb {
			p.vramBank = value & 0x01
		}
	case addr == 0xFF68:
		p.bcps = value & 0xBF
	case addr == 0xFF69:
		p.writePaletteRAM(p.bcram[:], &p.bcps, value)
	case addr == 0xFF6A:
		p.ocps = value & 0xBF
	case addr == 0xFF6B:
		p.writePaletteRAM(p.ocram[:], &p.ocps, value)
	}
}

func (p *PPU) writePaletteRAM(ram []byte, cps *byte, value byte) {
	idx := *cps & 0x3F
	ram[idx] = value
	if *cps&0x80 != 0 {
		*cps = 0x80 | (idx+1)&0x3F
	}
}

// Tick advances PPU state by the given number of dots (T-cycles), rendering
// a scanline into the framebuffer at the mode-3-to-0 boundary.
func (p *PPU) Tick(cycles int) {
	for i := 0; i < cycles; i++ {
		if p.lcdc&0x80 == 0 {
			continue
		}
		p.dot++

		var mode byte
		switch {
		case p.ly >= 144:
			mode = 1
		case p.dot < 80:
			mode = 2
		case p.dot < 80+172:
			mode = 3
		default:
			mode = 0
		}
		if mode == 0 && p.stat&0x03 == 3 {
			p.renderScanline()
			if p.onHBlank != nil {
				p.onHBlank()
			}
		}
		p.setMode(mode)

		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			if p.ly == 144 {
				p.req(0)
				if p.stat&(1<<4) != 0 {
					p.req(1)
				}
			} else if p.ly > 153 {
				p.ly = 0
				p.windowLine = 0
			}
			p.updateLYC()
			if p.ly >= 144 {
				p.setMode(1)
			} else {
				p.setMode(2)
			}
		}
	}
}

func (p *PPU) setMode(mode byte) {
	prev := p.stat & 0x03
	if prev == mode {
		return
	}
	p.stat = p.stat&^0x03 | mode&0x03
	switch mode {
	case 0:
		if p.stat&(1<<3) != 0 {
			p.req(1)
		}
	case 2:
		if p.stat&(1<<5) != 0 {
			p.req(1)
		}
	}
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if p.stat&(1<<6) != 0 {
			p.req(1)
		}
	} else {
		p.stat &^= 1 << 2
	}
}

// WriteOAMDirect writes a single OAM byte, bypassing the mode-2/mode-3 CPU
// lockout. OAM DMA copies always land regardless of PPU mode; only CPU
// reads/writes of OAM are blocked during those modes.
func (p *PPU) WriteOAMDirect(addr uint16, value byte) {
	if addr < 0xFE00 || addr > 0xFE9F {
		return
	}
	p.oam[addr-0xFE00] = value
}

// WriteVRAMDirect writes into the currently selected VRAM bank, bypassing
// the mode-3 VRAM lockout that CPUWrite enforces. CGB HDMA/GDMA
// transfers run while the CPU (and, on real hardware, the bus) are halted,
// so they are never subject to that contention.
func (p *PPU) WriteVRAMDirect(addr uint16, value byte) {
	if addr < 0x8000 || addr > 0x9FFF {
		return
	}
	p.vram[p.vramBank][addr-0x8000] = value
}

// Framebuffer returns the RGBA8888 pixel buffer for the most recently
// rendered frame, 160*144*4 bytes, row-major.
func (p *PPU) Framebuffer() []byte { return p.framebuffer[:] }

func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }
func (p *PPU) LY() byte   { return p.ly }

// Mode returns the current STAT mode (0-3). HBlank-driven HDMA does not
// poll it; it is driven by the SetOnHBlank callback.
func (p *PPU) Mode() byte { return p.stat & 0x03 }
