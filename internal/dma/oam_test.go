package dma

import "testing"

func TestOAMCopiesOneBytePerTick(t *testing.T) {
	mem := make([]byte, 0x10000)
	for i := 0; i < 0xA0; i++ {
		mem[0x8000+i] = byte(i + 1)
	}
	oam := make([]byte, 0xA0)
	read := func(addr uint16) byte { return mem[addr] }
	write := func(addr uint16, v byte) { oam[addr-0xFE00] = v }

	d := NewOAM()
	d.Start(0x80) // src = 0x8000
	if !d.Active() {
		t.Fatalf("expected DMA to be active right after Start")
	}
	for i := 0; i < 0xA0; i++ {
		d.Tick(read, write)
	}
	if d.Active() {
		t.Fatalf("expected DMA to be finished after 160 ticks")
	}
	for i := 0; i < 0xA0; i++ {
		if oam[i] != byte(i+1) {
			t.Fatalf("oam[%d] = %#02x, want %#02x", i, oam[i], byte(i+1))
		}
	}
}

func TestOAMTickNoOpWhenInactive(t *testing.T) {
	d := NewOAM()
	called := false
	d.Tick(func(uint16) byte { called = true; return 0 }, func(uint16, byte) { called = true })
	if called {
		t.Fatalf("Tick should not touch memory when no transfer is active")
	}
}

func TestOAMRegisterReadsLastWrittenValue(t *testing.T) {
	d := NewOAM()
	d.Start(0x12)
	if d.Register() != 0x12 {
		t.Fatalf("Register() = %#02x, want 0x12", d.Register())
	}
}

func TestOAMRestartMidTransfer(t *testing.T) {
	mem := make([]byte, 0x10000)
	mem[0x9000] = 0xAB
	oam := make([]byte, 0xA0)
	read := func(addr uint16) byte { return mem[addr] }
	write := func(addr uint16, v byte) { oam[addr-0xFE00] = v }

	d := NewOAM()
	d.Start(0x80)
	d.Tick(read, write)
	d.Tick(read, write)
	d.Start(0x90) // restart from a new source before the first finished
	d.Tick(read, write)
	if oam[0] != 0xAB {
		t.Fatalf("restart did not take effect, oam[0] = %#02x", oam[0])
	}
}

func TestOAMSaveStateRoundTrip(t *testing.T) {
	d := NewOAM()
	d.Start(0x42)
	noop := func(uint16) byte { return 0 }
	wnoop := func(uint16, byte) {}
	d.Tick(noop, wnoop)
	d.Tick(noop, wnoop)

	s := d.SaveState()
	d2 := NewOAM()
	d2.LoadState(s)
	if d2.Active() != d.Active() || d2.Register() != d.Register() {
		t.Fatalf("state did not round trip: got %+v", d2.SaveState())
	}
	if d2.SaveState() != s {
		t.Fatalf("loaded state %+v != saved state %+v", d2.SaveState(), s)
	}
}
