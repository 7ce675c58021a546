// Package dma implements the OAM DMA controller and the CGB general-purpose
// and HBlank VRAM DMA controller (HDMA).
package dma

// OAM copies 160 bytes into sprite attribute memory one byte per Tick call
// (the bus ticks it once per T-cycle), starting at src*0x100 and running for
// 160 cycles regardless of what the CPU does in the meantime.
type OAM struct {
	reg    byte
	active bool
	src    uint16
	index  int
}

func NewOAM() *OAM {
	return &OAM{}
}

// Start begins a transfer from value*0x100. Writing FF46 while a transfer
// is already running restarts it from the new source.
func (d *OAM) Start(value byte) {
	d.reg = value
	d.src = uint16(value) << 8
	d.index = 0
	d.active = true
}

// Register returns the last byte written to FF46.
func (d *OAM) Register() byte { return d.reg }

func (d *OAM) Active() bool { return d.active }

// Tick advances the transfer by one step, copying a single byte if a
// transfer is in progress.
func (d *OAM) Tick(read func(addr uint16) byte, write func(addr uint16, value byte)) {
	if !d.active {
		return
	}
	write(0xFE00+uint16(d.index), read(d.src+uint16(d.index)))
	d.index++
	if d.index >= 0xA0 {
		d.active = false
	}
}

type OAMState struct {
	Reg    byte
	Active bool
	Src    uint16
	Index  int
}

func (d *OAM) SaveState() OAMState {
	return OAMState{Reg: d.reg, Active: d.active, Src: d.src, Index: d.index}
}

func (d *OAM) LoadState(s OAMState) {
	d.reg, d.active, d.src, d.index = s.Reg, s.Active, s.Src, s.Index
}
