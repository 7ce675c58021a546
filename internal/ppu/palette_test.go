package ppu

import "testing"

func TestSchemeForTitleExactMatch(t *testing.T) {
	got := SchemeForTitle("TETRIS", 0x00, false)
	if got != schemeBlue {
		t.Fatalf("TETRIS should map to the blue scheme")
	}
}

func TestSchemeForTitleSubstringMatch(t *testing.T) {
	got := SchemeForTitle("SUPER MARIOLAND 3", 0x00, false)
	if got != schemeRed {
		t.Fatalf("a MARIO-containing title should map to the red scheme")
	}
}

func TestSchemeForTitleNintendoFallback(t *testing.T) {
	got := SchemeForTitle("SOME UNKNOWN GAME", 3, true)
	if got != compatSchemes[3%len(compatSchemes)] {
		t.Fatalf("Nintendo-licensed unknown title should pick a checksum-derived scheme")
	}
}

func TestSchemeForTitleUnknownDefaultsGrayscale(t *testing.T) {
	got := SchemeForTitle("SOME UNKNOWN GAME", 3, false)
	if got != schemeGrayscale {
		t.Fatalf("non-Nintendo unknown title should default to grayscale")
	}
}

func TestDecodeRGB555FullWhite(t *testing.T) {
	r, g, b := decodeRGB555(0xFF, 0x7F) // all 15 bits set
	if r != 0xFF || g != 0xFF || b != 0xFF {
		t.Fatalf("decodeRGB555(0x7FFF) = (%d,%d,%d), want (255,255,255)", r, g, b)
	}
}

func TestDecodeRGB555Black(t *testing.T) {
	r, g, b := decodeRGB555(0x00, 0x00)
	if r != 0 || g != 0 || b != 0 {
		t.Fatalf("decodeRGB555(0) = (%d,%d,%d), want (0,0,0)", r, g, b)
	}
}
