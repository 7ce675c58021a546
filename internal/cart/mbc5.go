package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC5 supports up to 8MiB ROM (9-bit bank number split across two write
// windows) and 128KiB RAM. Unlike MBC1/MBC3, MBC5 genuinely allows ROM bank
// 0 to be selected in the switchable window; there is no bank-0 remap here.
type MBC5 struct {
	rom []byte
	ram []byte

	romBank    uint16 // 9 bits, 0-511
	ramBank    byte   // 0-15
	ramEnabled bool
}

func NewMBC5(rom []byte, ramSize int) *MBC5 {
	m := &MBC5{rom: rom, romBank: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC5) romBanks() int {
	banks := len(m.rom) / 0x4000
	if banks == 0 {
		banks = 1
	}
	return banks
}

func (m *MBC5) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank) % m.romBanks()
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank&0x0F)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC5) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		if value&0x01 != 0 {
			m.romBank |= 0x100
		} else {
			m.romBank &^= 0x100
		}
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		if off := int(m.ramBank&0x0F)*0x2000 + int(addr-0xA000); off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

type mbc5State struct {
	RAM                []byte
	RomBank            uint16
	RamBank            byte
	RamEnabled         bool
}

func (m *MBC5) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc5State{m.ram, m.romBank, m.ramBank, m.ramEnabled})
	return buf.Bytes()
}

func (m *MBC5) LoadState(data []byte) error {
	var st mbc5State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	m.ram, m.romBank, m.ramBank, m.ramEnabled = st.RAM, st.RomBank, st.RamBank, st.RamEnabled
	return nil
}

func (m *MBC5) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC5) LoadRAM(data []byte) { copy(m.ram, data) }
