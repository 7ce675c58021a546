package timer

import "testing"

func TestDIVIncrementsOverTime(t *testing.T) {
	tm := New(nil)
	tm.Tick(256) // 256 T-cycles == one DIV tick
	if got := tm.DIV(); got != 1 {
		t.Fatalf("DIV after 256 cycles = %d, want 1", got)
	}
}

func TestResetDIVWritesZero(t *testing.T) {
	tm := New(nil)
	tm.Tick(1000)
	tm.ResetDIV()
	if got := tm.DIV(); got != 0 {
		t.Fatalf("DIV after reset = %d, want 0", got)
	}
}

func TestResetDIVCanTriggerFallingEdgeIncrement(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x05) // enabled, bit 3 selected (262144 Hz)
	tm.Tick(8)        // divInternal=8: bit3 set -> input true
	if tm.TIMA() != 0 {
		t.Fatalf("TIMA should not have incremented yet, got %d", tm.TIMA())
	}
	tm.ResetDIV() // input goes high->low: falling edge
	if got := tm.TIMA(); got != 1 {
		t.Fatalf("TIMA after DIV-triggered falling edge = %d, want 1", got)
	}
}

func TestTACChangeCanTriggerFallingEdgeIncrement(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x05) // bit3 selected
	tm.Tick(8)        // bit3 high
	tm.WriteTAC(0x04) // bit9 selected: now low -> falling edge
	if got := tm.TIMA(); got != 1 {
		t.Fatalf("TIMA after TAC-triggered falling edge = %d, want 1", got)
	}
}

func TestTIMAOverflowDelayedReloadAndInterrupt(t *testing.T) {
	fired := 0
	tm := New(func() { fired++ })
	tm.WriteTMA(0xAB)
	tm.tima = 0xFF
	tm.WriteTAC(0x05) // enabled, bit 3

	// Advance one bit-3 period, up to its first falling edge, to trigger the overflow.
	tm.Tick(16)
	if got := tm.TIMA(); got != 0x00 {
		t.Fatalf("immediately after overflow, TIMA = %#02x, want 0x00", got)
	}
	if fired != 0 {
		t.Fatalf("interrupt requested before the reload delay elapsed")
	}

	// 3 more cycles: still pending.
	tm.Tick(3)
	if got := tm.TIMA(); got != 0x00 {
		t.Fatalf("during delay, TIMA = %#02x, want 0x00", got)
	}

	// 1 more cycle: the 4-cycle delay elapses, TIMA reloads from TMA.
	tm.Tick(1)
	if got := tm.TIMA(); got != 0xAB {
		t.Fatalf("after delay, TIMA = %#02x, want 0xAB", got)
	}
	if fired != 1 {
		t.Fatalf("interrupt fired %d times, want 1", fired)
	}
}

func TestWriteTIMADuringDelayCancelsReload(t *testing.T) {
	fired := 0
	tm := New(func() { fired++ })
	tm.WriteTMA(0xAB)
	tm.tima = 0xFF
	tm.WriteTAC(0x05)
	tm.Tick(16) // overflow: TIMA=0, reload pending

	tm.WriteTIMA(0x77)
	tm.Tick(100) // six more bit-3 falling edges (at 32, 48, ..., 112)

	if got := tm.TIMA(); got != 0x7D {
		t.Fatalf("TIMA after cancelled reload = %#02x, want 0x7D (0x77 + 6)", got)
	}
	if fired != 0 {
		t.Fatalf("interrupt should not fire once the reload is cancelled")
	}
}

func TestTimerDisabledNeverIncrements(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x00) // disabled
	tm.Tick(100000)
	if got := tm.TIMA(); got != 0 {
		t.Fatalf("TIMA with timer disabled = %d, want 0", got)
	}
}

func TestSaveStateRoundTrip(t *testing.T) {
	tm := New(nil)
	tm.WriteTAC(0x05)
	tm.WriteTMA(0x30)
	tm.Tick(123)
	st := tm.SaveState()

	tm2 := New(nil)
	tm2.LoadState(st)
	if tm2.DIV() != tm.DIV() || tm2.TAC() != tm.TAC() || tm2.TMA() != tm.TMA() {
		t.Fatalf("restored timer state does not match original")
	}
}
