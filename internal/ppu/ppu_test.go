package ppu

import "testing"

func statMode(p *PPU) byte { return p.CPURead(0xFF41) & 0x03 }

func newTestPPU() *PPU {
	p := New(func(bit int) {}, false, schemeGrayscale)
	p.bgp, p.obp0, p.obp1 = 0xE4, 0xE4, 0xE4 // identity: color index N -> shade N
	return p
}

func TestModeSequenceOneLine(t *testing.T) {
	var irqs []int
	p := New(func(bit int) { irqs = append(irqs, bit) }, false, schemeGrayscale)
	p.CPUWrite(0xFF40, 0x80)
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 after LCD on, got %d", m)
	}
	p.Tick(80)
	if m := statMode(p); m != 3 {
		t.Fatalf("expected mode 3 at dot 80, got %d", m)
	}
	p.Tick(172)
	if m := statMode(p); m != 0 {
		t.Fatalf("expected mode 0 at dot 252, got %d", m)
	}
	p.Tick(456 - 252)
	if ly := p.CPURead(0xFF44); ly != 1 {
		t.Fatalf("expected LY=1, got %d", ly)
	}
	if m := statMode(p); m != 2 {
		t.Fatalf("expected mode 2 at new line, got %d", m)
	}
}

func TestVBlankAndSTATInterrupt(t *testing.T) {
	var got []int
	p := New(func(bit int) { got = append(got, bit) }, false, schemeGrayscale)
	p.CPUWrite(0xFF41, 1<<4)
	p.CPUWrite(0xFF40, 0x80)
	p.Tick(144 * 456)

	var vb, st int
	for _, b := range got {
		if b == 0 {
			vb++
		} else if b == 1 {
			st++
		}
	}
	if vb == 0 {
		t.Fatalf("expected at least one VBlank IRQ at LY=144")
	}
	if st == 0 {
		t.Fatalf("expected at least one STAT IRQ on VBlank entry")
	}
}

func TestLYCCoincidenceFlagAndInterrupt(t *testing.T) {
	var fired bool
	p := New(func(bit int) {
		if bit == 1 {
			fired = true
		}
	}, false, schemeGrayscale)
	p.CPUWrite(0xFF45, 5) // LYC=5
	p.CPUWrite(0xFF41, 1<<6)
	p.CPUWrite(0xFF40, 0x80)
	p.Tick(5 * 456)
	if p.CPURead(0xFF41)&0x04 == 0 {
		t.Fatalf("coincidence flag not set at LY=LYC")
	}
	if !fired {
		t.Fatalf("LYC interrupt not requested")
	}
}

func TestVRAMInaccessibleDuringMode3(t *testing.T) {
	p := New(func(bit int) {}, false, schemeGrayscale)
	p.CPUWrite(0xFF40, 0x80)
	p.CPUWrite(0x8000, 0x42) // mode 2, write allowed
	p.Tick(80)               // now mode 3
	p.CPUWrite(0x8000, 0xFF) // should be dropped
	if got := p.CPURead(0x8000); got != 0xFF {
		// CPURead during mode 3 returns 0xFF regardless of the stored byte
		t.Fatalf("mode-3 VRAM read = %#02x, want 0xFF (blocked)", got)
	}
	p.Tick(172) // HBlank now, VRAM visible again
	if got := p.CPURead(0x8000); got != 0x42 {
		t.Fatalf("VRAM byte after HBlank = %#02x, want 0x42 (write during mode3 ignored)", got)
	}
}

func TestLCDCToggleOffResetsLYAndMode(t *testing.T) {
	p := New(func(bit int) {}, false, schemeGrayscale)
	p.CPUWrite(0xFF40, 0x80)
	p.Tick(456 * 3)
	if p.CPURead(0xFF44) == 0 {
		t.Fatalf("expected LY to have advanced")
	}
	p.CPUWrite(0xFF40, 0x00)
	if p.CPURead(0xFF44) != 0 {
		t.Fatalf("LY should reset to 0 when LCD is turned off")
	}
	if statMode(p) != 0 {
		t.Fatalf("mode should reset to 0 when LCD is turned off")
	}
}

func TestFramebufferSizeAndOpaqueAlpha(t *testing.T) {
	p := newTestPPU()
	fb := p.Framebuffer()
	if len(fb) != ScreenWidth*ScreenHeight*4 {
		t.Fatalf("framebuffer size = %d, want %d", len(fb), ScreenWidth*ScreenHeight*4)
	}
}

func TestCGBPaletteRAMAutoIncrement(t *testing.T) {
	p := New(func(bit int) {}, true, schemeGrayscale)
	p.CPUWrite(0xFF68, 0x80) // auto-increment, index 0
	p.CPUWrite(0xFF69, 0x11)
	p.CPUWrite(0xFF69, 0x22)
	if got := p.bcram[0]; got != 0x11 {
		t.Fatalf("bcram[0] = %#02x, want 0x11", got)
	}
	if got := p.bcram[1]; got != 0x22 {
		t.Fatalf("bcram[1] = %#02x, want 0x22 (auto-increment should have advanced)", got)
	}
	if p.bcps&0x3F != 2 {
		t.Fatalf("bcps index = %d, want 2 after two auto-incrementing writes", p.bcps&0x3F)
	}
}
