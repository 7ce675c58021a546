// Package vm is the top-level machine: it owns the CPU (which in turn
// borrows the Bus) and drives Step in a loop until a frame is ready. This is
// the "VM" row of the component table: the only layer that knows about
// wall-clock framing (RunUntilVBlank) rather than pure cycle accounting.
package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/gbcore/gbvm/internal/bus"
	"github.com/gbcore/gbvm/internal/cart"
	"github.com/gbcore/gbvm/internal/cpu"
	"github.com/gbcore/gbvm/internal/joypad"
	"github.com/gbcore/gbvm/internal/ppu"
)

// Button identifies one of the eight logical Game Boy inputs. Values are
// joypad bitmask-compatible so Press/Release forward directly.
type Button = byte

const (
	Right  Button = joypad.Right
	Left   Button = joypad.Left
	Up     Button = joypad.Up
	Down   Button = joypad.Down
	A      Button = joypad.A
	B      Button = joypad.B
	Select Button = joypad.Select
	Start  Button = joypad.Start
)

// VM drives a CPU/Bus pair to produce frames and accepts button input.
type VM struct {
	cpu *cpu.CPU
	bus *bus.Bus

	header   *cart.Header
	cgb      bool
	savePath string // "" if the cartridge has no battery-backed RAM

	traceOut io.Writer // non-nil enables a PC/opcode/register line per Step, cpurunner-style
}

// New parses rom's header, constructs the matching MBC, wires the bus and
// CPU, installs the post-boot register snapshot (DMG or CGB, per the
// header's CGB flag), and — if the cartridge declares a battery — loads
// persisted RAM from "<lowercased title>.gbsave" in dir (missing file
// leaves RAM zero-filled, per spec).
func New(rom []byte, dir string) (*VM, error) {
	return NewWithOptions(rom, Options{SaveDir: dir})
}

// Options customizes machine construction beyond New's defaults.
type Options struct {
	SaveDir  string // directory battery saves are read from / written to
	ForceDMG bool   // ignore the cartridge's CGB flag and run it in DMG mode
}

// NewWithOptions is New with host-level overrides (forcing DMG mode on a
// CGB-aware cartridge, for instance).
func NewWithOptions(rom []byte, opts Options) (*VM, error) {
	c, h, err := cart.New(rom)
	if err != nil {
		return nil, err
	}

	cgb := h.IsCGB() && !opts.ForceDMG
	isNintendo := h.OldLicensee == 0x01 || strings.TrimSpace(h.NewLicensee) == "01"
	scheme := ppu.SchemeForTitle(h.Title, h.HeaderChecksum, isNintendo)
	b := bus.New(c, cgb, scheme)

	cpuCore := cpu.New(b)
	if cgb {
		cpuCore.ResetCGB()
	} else {
		cpuCore.Reset()
	}

	m := &VM{cpu: cpuCore, bus: b, header: h, cgb: cgb}
	if isBatteryBacked(h.CartType) {
		m.savePath = saveFilePath(opts.SaveDir, h.Title)
		_ = cart.LoadBatteryFile(c, m.savePath)
	}
	return m, nil
}

func isBatteryBacked(cartType byte) bool {
	switch cartType {
	case 0x03, 0x10, 0x13, 0x1B, 0x1E:
		return true
	default:
		return false
	}
}

func saveFilePath(dir, title string) string {
	name := strings.ToLower(strings.TrimSpace(title)) + ".gbsave"
	if dir == "" {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

// Header returns the parsed cartridge header, for host logging.
func (m *VM) Header() *cart.Header { return m.header }

// CGB reports whether the cartridge is running in Game Boy Color mode.
func (m *VM) CGB() bool { return m.cgb }

// SetSerialWriter installs the sink for bytes written through the serial
// port; the host typically wires this to a log or, in test harnesses, a
// buffer that scans for blargg-style "Passed"/"Failed" markers.
func (m *VM) SetSerialWriter(w io.Writer) { m.bus.SetSerialWriter(w) }

// SetTraceWriter installs a sink that receives one "PC=... OP=... cyc=..."
// line per Step, in the same format cmd/cpurunner prints with -trace. Pass
// nil to disable tracing; the check adds a single nil comparison per Step
// when off.
func (m *VM) SetTraceWriter(w io.Writer) { m.traceOut = w }

// Step executes exactly one CPU instruction (including any interrupt
// service that instruction's fetch triggers) and advances every peripheral
// by the consumed cycle count. It returns that cycle count.
func (m *VM) Step() int {
	if m.traceOut != nil {
		pc := m.cpu.PC
		op := m.bus.Read(pc)
		cycles := m.cpu.Step()
		m.bus.Tick(cycles)
		fmt.Fprintf(m.traceOut, "PC=%04X OP=%02X cyc=%d A=%02X F=%02X B=%02X C=%02X D=%02X E=%02X H=%02X L=%02X SP=%04X IME=%t\n",
			pc, op, cycles, m.cpu.A, m.cpu.F, m.cpu.B, m.cpu.C, m.cpu.D, m.cpu.E, m.cpu.H, m.cpu.L, m.cpu.SP, m.cpu.IME)
		return cycles
	}
	cycles := m.cpu.Step()
	m.bus.Tick(cycles)
	return cycles
}

// RunUntilVBlank steps the machine until the PPU enters VBlank, then
// returns so the host can copy Framebuffer(). This is the frame-pump entry
// point described in the concurrency model: callers drive it once per
// display refresh and must not call Step/Press/Release concurrently with it.
func (m *VM) RunUntilVBlank() {
	for {
		m.Step()
		if m.bus.ConsumeVBlank() {
			return
		}
	}
}

// Framebuffer returns the PPU's live RGBA8888 pixel buffer, 160*144*4 bytes.
// Callers that need to retain a frame across the next RunUntilVBlank call
// must copy it; the PPU renders into this same backing array every line.
func (m *VM) Framebuffer() []byte { return m.bus.PPU().Framebuffer() }

// Press marks a button held down, raising IF.JOYPAD on a falling edge of
// the selected column. Release marks it let go.
func (m *VM) Press(btn Button)   { m.bus.Press(btn) }
func (m *VM) Release(btn Button) { m.bus.Release(btn) }

// SaveBattery writes the cartridge's persistent RAM back to its save file,
// if the cartridge has one. A best-effort operation: failures are not
// fatal, matching spec's "save file I/O never fatal" error taxonomy entry.
func (m *VM) SaveBattery() error {
	if m.savePath == "" {
		return nil
	}
	return cart.SaveBatteryFile(m.bus.Cart(), m.savePath)
}

// SaveState serializes the full machine (CPU registers and bus/peripheral
// state) so the host can resume later via LoadState.
func (m *VM) SaveState() []byte {
	return encodeState(cpuState{
		A: m.cpu.A, F: m.cpu.F, B: m.cpu.B, C: m.cpu.C,
		D: m.cpu.D, E: m.cpu.E, H: m.cpu.H, L: m.cpu.L,
		SP: m.cpu.SP, PC: m.cpu.PC, IME: m.cpu.IME,
		Bus: m.bus.SaveState(),
	})
}

// LoadState restores a machine saved by SaveState.
func (m *VM) LoadState(data []byte) error {
	st, err := decodeState(data)
	if err != nil {
		return err
	}
	m.cpu.A, m.cpu.F, m.cpu.B, m.cpu.C = st.A, st.F, st.B, st.C
	m.cpu.D, m.cpu.E, m.cpu.H, m.cpu.L = st.D, st.E, st.H, st.L
	m.cpu.SP, m.cpu.PC, m.cpu.IME = st.SP, st.PC, st.IME
	return m.bus.LoadState(st.Bus)
}
