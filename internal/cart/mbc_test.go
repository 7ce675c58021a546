package cart

import "testing"

func TestMBC0Fixed32K(t *testing.T) {
	rom := make([]byte, 32*1024)
	rom[0x1234] = 0x42
	m := NewROMOnly(rom)
	if got := m.Read(0x1234); got != 0x42 {
		t.Fatalf("Read = %#02x, want 0x42", got)
	}
	m.Write(0xA000, 0x11)
	if got := m.Read(0xA000); got != 0x11 {
		t.Fatalf("unbanked RAM round trip failed, got %#02x", got)
	}
}

func TestMBC1ROMBankingAndForbiddenBankRemap(t *testing.T) {
	rom := make([]byte, 2*1024*1024)
	for bank := 0; bank < 128; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)

	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default switchable bank = %#02x, want 0x01", got)
	}

	m.Write(0x2000, 0x03)
	if got := m.Read(0x4000); got != 0x03 {
		t.Fatalf("bank select 3 = %#02x, want 0x03", got)
	}

	// Low-5 write of 0 always remaps to 1 for the switchable window,
	// regardless of the high bits, so effective bank is never 0x00/0x20/0x40/0x60.
	for _, high := range []byte{0x00, 0x01, 0x02, 0x03} {
		m.Write(0x4000, high)
		m.Write(0x2000, 0x00)
		got := m.Read(0x4000)
		want := byte(1 | high<<5)
		if got != want {
			t.Fatalf("high=%d: effective bank byte = %#02x, want %#02x", high, got, want)
		}
		if want == 0x00 || want == 0x20 || want == 0x40 || want == 0x60 {
			t.Fatalf("effective bank landed on a forbidden value %#02x", want)
		}
	}
}

func TestMBC1RAMBankingMode1(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC1(rom, 32*1024)

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x6000, 0x01) // mode 1
	m.Write(0x4000, 0x02) // RAM bank 2

	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank 2 round trip = %#02x, want 0x77", got)
	}

	m.Write(0x4000, 0x00) // back to RAM bank 0
	if got := m.Read(0xA000); got == 0x77 {
		t.Fatalf("bank 0 should not alias bank 2's byte")
	}
}

func TestMBC1RAMDisabledReadsFF(t *testing.T) {
	rom := make([]byte, 32*1024)
	m := NewMBC1(rom, 8*1024)
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read = %#02x, want 0xFF", got)
	}
}

func TestMBC1SaveStateRoundTrip(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC1(rom, 8*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x99)
	m.Write(0x2000, 0x05)

	data := m.SaveState()
	m2 := NewMBC1(rom, 8*1024)
	if err := m2.LoadState(data); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	if got := m2.Read(0xA000); got != 0x99 {
		t.Fatalf("restored RAM byte = %#02x, want 0x99", got)
	}
	if got := m2.Read(0x4000); got != m.Read(0x4000) {
		t.Fatalf("restored bank selection mismatch")
	}
}

func TestMBC3RAMBankingAndInertRTC(t *testing.T) {
	rom := make([]byte, 128*1024)
	m := NewMBC3(rom, 32*1024)
	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x01)
	m.Write(0xA000, 0x42)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RAM bank 1 round trip = %#02x, want 0x42", got)
	}

	m.Write(0x4000, 0x08) // select an RTC register
	if got := m.Read(0xA000); got != 0x00 {
		t.Fatalf("inert RTC register read = %#02x, want 0x00", got)
	}
	m.Write(0xA000, 0xAA) // write to the RTC register is a no-op
	m.Write(0x4000, 0x01)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RTC write should not have touched RAM bank 1, got %#02x", got)
	}
}

func TestMBC3ROMBankZeroRemapsToOne(t *testing.T) {
	rom := make([]byte, 256*1024)
	rom[0x4000] = 0x01
	m := NewMBC3(rom, 0)
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank 0 write should remap to bank 1, got %#02x", got)
	}
}

func TestMBC5AllowsROMBankZero(t *testing.T) {
	rom := make([]byte, 256*1024)
	rom[0x0000] = 0x11 // bank 0, which MBC5 can still select in the switchable window
	m := NewMBC5(rom, 0)
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x11 {
		t.Fatalf("MBC5 bank 0 selection = %#02x, want 0x11 (no remap)", got)
	}
}

func TestMBC5NineBitBankNumber(t *testing.T) {
	rom := make([]byte, 9*1024*1024)
	rom[256*0x4000] = 0x99
	m := NewMBC5(rom, 0)
	m.Write(0x2000, 0x00) // low 8 bits = 0
	m.Write(0x3000, 0x01) // bit 8 = 1 -> bank 256
	if got := m.Read(0x4000); got != 0x99 {
		t.Fatalf("bank 256 (9-bit) read = %#02x, want 0x99", got)
	}
}

func TestBatteryBackedInterfaceSatisfiedByAllBankedMBCs(t *testing.T) {
	rom := make([]byte, 32*1024)
	var cs []Cartridge = []Cartridge{NewMBC1(rom, 8*1024), NewMBC3(rom, 8*1024), NewMBC5(rom, 8*1024)}
	for _, c := range cs {
		if _, ok := c.(BatteryBacked); !ok {
			t.Fatalf("%T does not implement BatteryBacked", c)
		}
	}
}
