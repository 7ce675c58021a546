package cart

import (
	"bytes"
	"encoding/gob"
)

// MBC3 supports up to 2MiB ROM and 32KiB RAM. Real MBC3 carts can also latch
// a real-time-clock register bank over 0xA000-0xBFFF when 0x08-0x0C is
// selected; this core has no wall clock to back it, so RTC register selects
// are accepted (so software doesn't see bus garbage) but read back as 0x00
// and never tick.
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits, 0 remapped to 1
	ramBank    byte // 0-3 selects RAM; 0x08-0x0C selects an RTC register
}

func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	return m
}

func (m *MBC3) romBanks() int {
	banks := len(m.rom) / 0x4000
	if banks == 0 {
		banks = 1
	}
	return banks
}

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank&0x7F) % m.romBanks()
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramBank >= 0x08 {
			return 0x00 // inert RTC register readback
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank&0x03)*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		m.ramBank = value
	case addr < 0x8000:
		// Clock latch: no-op without an RTC backing store.
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || m.ramBank >= 0x08 || len(m.ram) == 0 {
			return
		}
		if off := int(m.ramBank&0x03)*0x2000 + int(addr-0xA000); off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

type mbc3State struct {
	RAM                  []byte
	RamEnabled           bool
	RomBank, RamBankOrRTC byte
}

func (m *MBC3) SaveState() []byte {
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(mbc3State{m.ram, m.ramEnabled, m.romBank, m.ramBank})
	return buf.Bytes()
}

func (m *MBC3) LoadState(data []byte) error {
	var st mbc3State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	m.ram, m.ramEnabled, m.romBank, m.ramBank = st.RAM, st.RamEnabled, st.RomBank, st.RamBankOrRTC
	return nil
}

func (m *MBC3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

func (m *MBC3) LoadRAM(data []byte) { copy(m.ram, data) }
