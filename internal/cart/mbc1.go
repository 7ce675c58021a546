package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC1 supports up to 2MiB ROM (125 usable banks) and 32KiB RAM, with the
// classic two-mode banking scheme: mode 0 dedicates the two high bank bits
// to the ROM window, mode 1 dedicates them to RAM banking and to remapping
// the otherwise-fixed 0x0000-0x3FFF window.
type MBC1 struct {
	rom []byte
	ram []byte

	romBankLow5 byte // raw 5-bit field as last written; 0 is a legal write
	bankHigh2   byte // RAM bank (mode 1) or ROM bank bits 5-6 (mode 0)
	ramEnabled  bool
	mode        byte // 0: ROM banking, 1: RAM banking
}

func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

// effectiveROMBank applies the documented MBC1 quirk: writing 0 to the low
// 5 bits substitutes 1 for the *switchable* window only, so the controller
// can never select physical bank 0x00/0x20/0x40/0x60 there.
func (m *MBC1) effectiveROMBank() int {
	low5 := m.romBankLow5
	if low5 == 0 {
		low5 = 1
	}
	return int(low5) | int(m.bankHigh2&0x03)<<5
}

func (m *MBC1) romBanks() int {
	banks := len(m.rom) / 0x4000
	if banks == 0 {
		banks = 1
	}
	return banks
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		bank := 0
		if m.mode == 1 {
			bank = int(m.bankHigh2&0x03) << 5
		}
		off := bank*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		bank := m.effectiveROMBank() % m.romBanks()
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := m.ramOffset(addr)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) ramOffset(addr uint16) int {
	bank := 0
	if m.mode == 1 {
		bank = int(m.bankHigh2 & 0x03)
	}
	return bank*0x2000 + int(addr-0xA000)
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		m.romBankLow5 = value & 0x1F
	case addr < 0x6000:
		m.bankHigh2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		if off := m.ramOffset(addr); off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

type mbc1State struct {
	RAM                    []byte
	RomBankLow5, BankHigh2 byte
	RamEnabled             bool
	Mode                   byte
}

func (m *MBC1) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc1State{m.ram, m.romBankLow5, m.bankHigh2, m.ramEnabled, m.mode})
	return buf.Bytes()
}

func (m *MBC1) LoadState(data []byte) error {
	var st mbc1State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	m.ram, m.romBankLow5, m.bankHigh2, m.ramEnabled, m.mode = st.RAM, st.RomBankLow5, st.BankHigh2, st.RamEnabled, st.Mode
	return nil
}

func (m *MBC1) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC1) LoadRAM(data []byte) {
	copy(m.ram, data)
}
