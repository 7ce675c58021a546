package cart

import "testing"

func romWithType(cartType byte, romSizeCode byte) []byte {
	size := 32 * 1024
	switch romSizeCode {
	case 0x01:
		size = 64 * 1024
	case 0x03:
		size = 256 * 1024
	}
	rom := make([]byte, size)
	rom[0x0147] = cartType
	rom[0x0148] = romSizeCode
	return rom
}

func TestNewPicksMBCByCartType(t *testing.T) {
	cases := []struct {
		cartType byte
		want     string
	}{
		{0x00, "*cart.MBC0"},
		{0x01, "*cart.MBC1"},
		{0x13, "*cart.MBC3"},
		{0x1B, "*cart.MBC5"},
	}
	for _, tc := range cases {
		c, _, err := New(romWithType(tc.cartType, 0x03))
		if err != nil {
			t.Fatalf("cart type %#02x: New returned %v", tc.cartType, err)
		}
		if got := typeName(c); got != tc.want {
			t.Fatalf("cart type %#02x: got %s, want %s", tc.cartType, got, tc.want)
		}
	}
}

func TestNewRejectsUnsupportedCartType(t *testing.T) {
	if _, _, err := New(romWithType(0xFF, 0x00)); err == nil {
		t.Fatalf("expected an error for an unsupported cartridge type")
	}
}

func typeName(c Cartridge) string {
	switch c.(type) {
	case *MBC0:
		return "*cart.MBC0"
	case *MBC1:
		return "*cart.MBC1"
	case *MBC3:
		return "*cart.MBC3"
	case *MBC5:
		return "*cart.MBC5"
	default:
		return "unknown"
	}
}
