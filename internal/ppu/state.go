package ppu

import (
	"bytes"
	"encoding/gob"
)

type State struct {
	VRAM0, VRAM1                []byte
	VRAMBank                    byte
	OAM                         []byte
	LCDC, STAT                  byte
	SCY, SCX, LY, LYC           byte
	BGP, OBP0, OBP1             byte
	WY, WX                      byte
	WindowLine                  int
	Dot                         int
	BCPS, OCPS                  byte
	BCRAM, OCRAM                []byte
}

func (p *PPU) SaveState() []byte {
	st := State{
		VRAM0: append([]byte(nil), p.vram[0][:]...), VRAM1: append([]byte(nil), p.vram[1][:]...),
		VRAMBank: p.vramBank, OAM: append([]byte(nil), p.oam[:]...),
		LCDC: p.lcdc, STAT: p.stat, SCY: p.scy, SCX: p.scx, LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1, WY: p.wy, WX: p.wx,
		WindowLine: p.windowLine, Dot: p.dot,
		BCPS: p.bcps, OCPS: p.ocps,
		BCRAM: append([]byte(nil), p.bcram[:]...), OCRAM: append([]byte(nil), p.ocram[:]...),
	}
	var buf bytes.Buffer
	gob.NewEncoder(&buf).Encode(st)
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) error {
	var st State
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	copy(p.vram[0][:], st.VRAM0)
	copy(p.vram[1][:], st.VRAM1)
	p.vramBank = st.VRAMBank
	copy(p.oam[:], st.OAM)
	p.lcdc, p.stat, p.scy, p.scx, p.ly, p.lyc = st.LCDC, st.STAT, st.SCY, st.SCX, st.LY, st.LYC
	p.bgp, p.obp0, p.obp1, p.wy, p.wx = st.BGP, st.OBP0, st.OBP1, st.WY, st.WX
	p.windowLine, p.dot = st.WindowLine, st.Dot
	p.bcps, p.ocps = st.BCPS, st.OCPS
	copy(p.bcram[:], st.BCRAM)
	copy(p.ocram[:], st.OCRAM)
	return nil
}
