package ppu

import "strings"

// ColorScheme maps the 2-bit DMG color index (0=lightest..3=darkest) to an
// RGBA color. CGB carts ignore this entirely and use the palette RAM instead.
type ColorScheme [4][4]byte // [index][R,G,B,A]

var (
	schemeGrayscale = ColorScheme{
		{0xE0, 0xF8, 0xD0, 0xFF},
		{0x88, 0xC0, 0x70, 0xFF},
		{0x34, 0x68, 0x56, 0xFF},
		{0x08, 0x18, 0x20, 0xFF},
	}
	schemeGreen = ColorScheme{
		{0x9B, 0xBC, 0x0F, 0xFF},
		{0x8B, 0xAC, 0x0F, 0xFF},
		{0x30, 0x62, 0x30, 0xFF},
		{0x0F, 0x38, 0x0F, 0xFF},
	}
	schemeSepia = ColorScheme{
		{0xF8, 0xE8, 0xC8, 0xFF},
		{0xC8, 0x98, 0x68, 0xFF},
		{0x78, 0x58, 0x38, 0xFF},
		{0x28, 0x18, 0x10, 0xFF},
	}
	schemeBlue = ColorScheme{
		{0xE0, 0xF0, 0xF8, 0xFF},
		{0x78, 0xA8, 0xD8, 0xFF},
		{0x40, 0x60, 0xA0, 0xFF},
		{0x10, 0x18, 0x38, 0xFF},
	}
	schemeRed = ColorScheme{
		{0xF8, 0xE8, 0xE0, 0xFF},
		{0xD8, 0x90, 0x78, 0xFF},
		{0xA0, 0x40, 0x38, 0xFF},
		{0x38, 0x10, 0x10, 0xFF},
	}
	schemePastel = ColorScheme{
		{0xF8, 0xF0, 0xE8, 0xFF},
		{0xD0, 0xC0, 0xE0, 0xFF},
		{0x90, 0x80, 0xB0, 0xFF},
		{0x40, 0x30, 0x58, 0xFF},
	}
)

var compatSchemes = []ColorScheme{schemeGreen, schemeSepia, schemeBlue, schemeRed, schemePastel, schemeGrayscale}

// compatTitleExact maps exact, normalized titles to a preferred compat scheme.
var compatTitleExact = map[string]int{
	"TETRIS":              2,
	"TETRIS DX":           2,
	"SUPER MARIO LAND":    3,
	"SUPER MARIO LAND 2":  3,
	"DR. MARIO":           4,
	"DONKEY KONG":         1,
	"THE LEGEND OF ZELDA": 0,
	"ZELDA":               0,
	"METROID II":          3,
	"KIRBY'S DREAM LAND":  4,
	"MEGA MAN":            2,
	"MEGAMAN":             2,
	"WARIO LAND":          1,
	"POKEMON YELLOW":      4,
	"POKEMON RED":         4,
	"POKEMON BLUE":        4,
	"POCKET MONSTERS":     4,
}

type containsRule struct {
	substr string
	id     int
}

var compatTitleContains = []containsRule{
	{"TETRIS", 2}, {"MARIO", 3}, {"ZELDA", 0}, {"KIRBY", 4}, {"DONKEY KONG", 1},
	{"METROID", 3}, {"MEGA MAN", 2}, {"MEGAMAN", 2}, {"WARIO", 1}, {"POKEMON", 4}, {"POCKET MONSTERS", 4},
}

// SchemeForTitle picks a DMG color scheme from the cartridge title using the
// same exact/substring heuristic real compatibility palettes use, falling
// back to a checksum-derived choice for unrecognized Nintendo-published
// titles and to plain grayscale otherwise.
func SchemeForTitle(title string, headerChecksum byte, isNintendoLicensee bool) ColorScheme {
	t := strings.ToUpper(strings.TrimRight(strings.TrimSpace(title), "\x00"))
	if id, ok := compatTitleExact[t]; ok {
		return compatSchemes[id]
	}
	for _, r := range compatTitleContains {
		if strings.Contains(t, r.substr) {
			return compatSchemes[r.id]
		}
	}
	if isNintendoLicensee {
		return compatSchemes[int(headerChecksum)%len(compatSchemes)]
	}
	return schemeGrayscale
}

// decodeRGB555 unpacks a little-endian CGB palette RAM color word into 8-bit
// RGBA, using the common (v<<3)|(v>>2) scale so 0x1F maps to 0xFF rather than 0xF8.
func decodeRGB555(lo, hi byte) (r, g, b byte) {
	word := uint16(lo) | uint16(hi)<<8
	r5 := byte(word & 0x1F)
	g5 := byte((word >> 5) & 0x1F)
	b5 := byte((word >> 10) & 0x1F)
	scale := func(v byte) byte { return v<<3 | v>>2 }
	return scale(r5), scale(g5), scale(b5)
}
