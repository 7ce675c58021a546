// Package cart models the Game Boy cartridge slot: header parsing and the
// memory bank controller (MBC) family that maps the CPU's 32KiB ROM window
// and 8KiB RAM window onto a potentially much larger physical ROM/RAM image.
package cart

import "fmt"

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses (0x0000-0x7FFF for ROM, 0xA000-0xBFFF for RAM).
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)

	SaveState() []byte
	LoadState(data []byte) error
}

// BatteryBacked is implemented by cartridges with persistent external RAM.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New picks an MBC implementation from the ROM header's cartridge-type byte.
func New(rom []byte) (Cartridge, *Header, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, nil, err
	}
	switch h.CartType {
	case 0x00:
		return NewROMOnly(rom), h, nil
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes), h, nil
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes), h, nil
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes), h, nil
	default:
		return nil, nil, fmt.Errorf("cart: unsupported cartridge type 0x%02X (%s)", h.CartType, h.CartTypeStr)
	}
}
