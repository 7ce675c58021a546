package cpu

// execTable is the unprefixed opcode dispatch table: 256 entries, each a
// closure that performs the full fetch-is-already-done execution of one
// instruction and returns the T-cycles it consumed. Built once in init()
// from small per-group loops (LD r,r'; ALU A,r; INC/DEC r; JR/JP/CALL/RET cc;
// PUSH/POP; RST) plus explicit entries for the irregular opcodes, rather than
// the ad-hoc per-opcode switch arms a first draft would reach for — the table
// is pure data, built once, and shared by every CPU instance.
var execTable [256]func(*CPU) int

// illegalOpcodes are the 11 bytes the hardware decoder never defines.
// Executing one is a bug in the ROM or in decoding upstream of here; we panic
// naming the opcode and PC rather than silently treating it as a NOP.
var illegalOpcodes = [...]byte{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

func init() {
	for _, op := range illegalOpcodes {
		op := op
		execTable[op] = func(c *CPU) int {
			panic(illegalOpcodeMessage(op, c.PC-1))
		}
	}

	// LD r,r' (0x40-0x7F minus 0x76=HALT) and LD r,(HL) / LD (HL),r.
	for d := byte(0); d < 8; d++ {
		for s := byte(0); s < 8; s++ {
			op := 0x40 | d<<3 | s
			if op == 0x76 {
				continue
			}
			d, s := d, s
			cycles := 4
			if d == 6 || s == 6 {
				cycles = 8
			}
			execTable[op] = func(c *CPU) int {
				c.reg8Set(d, c.reg8Get(s))
				return cycles
			}
		}
	}
	execTable[0x76] = func(c *CPU) int { c.halted = true; return 4 }

	// LD r,d8 (0x06,0x0E,0x16,...,0x3E) keyed by the same d index as above.
	for d := byte(0); d < 8; d++ {
		op := 0x06 | d<<3
		d := d
		cycles := 8
		if d == 6 {
			cycles = 12
		}
		execTable[op] = func(c *CPU) int {
			v := c.fetch8()
			c.reg8Set(d, v)
			return cycles
		}
	}

	// INC r / DEC r (8-bit), including (HL).
	for d := byte(0); d < 8; d++ {
		d := d
		cyclesInc, cyclesDec := 4, 4
		if d == 6 {
			cyclesInc, cyclesDec = 12, 12
		}
		execTable[0x04|d<<3] = func(c *CPU) int {
			old := c.reg8Get(d)
			v := old + 1
			c.reg8Set(d, v)
			c.setFlag(flagZ, v == 0)
			c.setFlag(flagN, false)
			c.setFlag(flagH, old&0x0F == 0x0F)
			return cyclesInc
		}
		execTable[0x05|d<<3] = func(c *CPU) int {
			old := c.reg8Get(d)
			v := old - 1
			c.reg8Set(d, v)
			c.setFlag(flagZ, v == 0)
			c.setFlag(flagN, true)
			c.setFlag(flagH, old&0x0F == 0x00)
			return cyclesDec
		}
	}

	// ALU A,r for ADD/ADC/SUB/SBC/AND/XOR/OR/CP across B,C,D,E,H,L,(HL),A.
	type aluOp struct {
		base byte
		fn   func(a, b byte, carryIn bool) (res byte, z, n, h, cy bool)
		useCarry,
		storeResult bool
	}
	aluOps := []aluOp{
		{0x80, add8, false, true},
		{0x88, add8, true, true},
		{0x90, sub8, false, true},
		{0x98, sub8, true, true},
		{0xA0, and8, false, true},
		{0xA8, xor8, false, true},
		{0xB0, or8, false, true},
		{0xB8, sub8, false, false}, // CP: flags only
	}
	for _, a := range aluOps {
		a := a
		for s := byte(0); s < 8; s++ {
			s := s
			cycles := 4
			if s == 6 {
				cycles = 8
			}
			execTable[a.base|s] = func(c *CPU) int {
				carryIn := a.useCarry && c.flagC()
				res, z, n, h, cy := a.fn(c.A, c.reg8Get(s), carryIn)
				if a.storeResult {
					c.A = res
				}
				c.setFlags(z, n, h, cy)
				return cycles
			}
		}
	}
	// Same eight ALU ops against an immediate d8 operand (0xC6,0xCE,...,0xFE).
	for i, a := range aluOps {
		a := a
		op := byte(0xC6 + i*8)
		execTable[op] = func(c *CPU) int {
			carryIn := a.useCarry && c.flagC()
			res, z, n, h, cy := a.fn(c.A, c.fetch8(), carryIn)
			if a.storeResult {
				c.A = res
			}
			c.setFlags(z, n, h, cy)
			return 8
		}
	}

	// PUSH/POP rr (rp2 group: BC,DE,HL,AF).
	for p := byte(0); p < 4; p++ {
		p := p
		execTable[0xC1|p<<4] = func(c *CPU) int { c.reg16SetAF(p, c.pop16()); return 12 }
		execTable[0xC5|p<<4] = func(c *CPU) int { c.push16(c.reg16GetAF(p)); return 16 }
	}

	// 16-bit INC/DEC and ADD HL,rr (rp group: BC,DE,HL,SP).
	for p := byte(0); p < 4; p++ {
		p := p
		execTable[0x03|p<<4] = func(c *CPU) int { c.reg16SetSP(p, c.reg16GetSP(p)+1); return 8 }
		execTable[0x0B|p<<4] = func(c *CPU) int { c.reg16SetSP(p, c.reg16GetSP(p)-1); return 8 }
		execTable[0x09|p<<4] = func(c *CPU) int {
			hl := c.getHL()
			rr := c.reg16GetSP(p)
			sum := uint32(hl) + uint32(rr)
			c.setFlag(flagN, false)
			c.setFlag(flagH, (hl&0x0FFF)+(rr&0x0FFF) > 0x0FFF)
			c.setFlag(flagC, sum > 0xFFFF)
			c.setHL(uint16(sum))
			return 8
		}
	}

	// LD rr,d16 (rp group).
	for p := byte(0); p < 4; p++ {
		p := p
		execTable[0x01|p<<4] = func(c *CPU) int { c.reg16SetSP(p, c.fetch16()); return 12 }
	}

	// JR cc,i8 and JR i8 (condition group: NZ,Z,NC,C for 0x20,0x28,0x30,0x38).
	conds := []func(*CPU) bool{
		func(c *CPU) bool { return !c.flagZ() },
		func(c *CPU) bool { return c.flagZ() },
		func(c *CPU) bool { return !c.flagC() },
		func(c *CPU) bool { return c.flagC() },
	}
	execTable[0x18] = func(c *CPU) int {
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	}
	for i, cond := range conds {
		cond := cond
		execTable[0x20|byte(i)<<3] = func(c *CPU) int {
			off := int8(c.fetch8())
			if cond(c) {
				c.PC = uint16(int32(c.PC) + int32(off))
				return 12
			}
			return 8
		}
		execTable[0xC2|byte(i)<<3] = func(c *CPU) int { // JP cc,a16
			addr := c.fetch16()
			if cond(c) {
				c.PC = addr
				return 16
			}
			return 12
		}
		execTable[0xC4|byte(i)<<3] = func(c *CPU) int { // CALL cc,a16
			addr := c.fetch16()
			if cond(c) {
				c.push16(c.PC)
				c.PC = addr
				return 24
			}
			return 12
		}
		execTable[0xC0|byte(i)<<3] = func(c *CPU) int { // RET cc
			if cond(c) {
				c.PC = c.pop16()
				return 20
			}
			return 8
		}
	}

	// RST n (8 vectors at 0x00,0x08,...,0x38).
	for i := byte(0); i < 8; i++ {
		i := i
		execTable[0xC7|i<<3] = func(c *CPU) int {
			c.push16(c.PC)
			c.PC = uint16(i) * 8
			return 16
		}
	}

	installIrregularOpcodes()
}

func illegalOpcodeMessage(op byte, pc uint16) string {
	return "cpu: illegal opcode 0x" + hexByte(op) + " at PC=0x" + hexWord(pc)
}
