// decode.go - runtime ModR/M decoding: unlike the assembler (which encodes
// syntactic operand forms into bytes), the executor must decode bytes back
// into an effective address using the machine's *current* register
// contents, since [BX+SI] means whatever BX and SI hold right now.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

// rmOperand is a decoded ModR/M rm field: either a register (isMem=false)
// or a memory effective address (isMem=true, ea is the 16-bit offset).
type rmOperand struct {
	isMem bool
	reg   byte // rm-as-register index when !isMem
	ea    uint16
	seg   mrf.SegReg
}

// fetchByte reads the byte at CS:IP and advances IP.
func (x *Executor) fetchByte() byte {
	phys := mrf.Phys(x.m.Seg(mrf.CS), x.m.IP())
	b := x.m.ReadByte(phys)
	x.m.SetIP(x.m.IP() + 1)
	return b
}

func (x *Executor) fetchWord() uint16 {
	lo := x.fetchByte()
	hi := x.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

// decodeModRM reads one ModR/M byte (plus any displacement bytes) and
// returns the reg field and the decoded rm operand. segOverride applies
// when a 0x26/0x2E/0x36/0x3E prefix preceded this instruction.
func (x *Executor) decodeModRM(segOverride mrf.SegReg, hasOverride bool) (reg byte, rm rmOperand) {
	b := x.fetchByte()
	mod := b >> 6
	reg = (b >> 3) & 7
	rmField := b & 7

	defaultSeg := mrf.DS
	if hasOverride {
		defaultSeg = segOverride
	}

	if mod == 3 {
		return reg, rmOperand{isMem: false, reg: rmField}
	}

	var base uint16
	useBP := false
	switch rmField {
	case 0:
		base = x.m.Reg16(mrf.BX) + x.m.Reg16(mrf.SI)
	case 1:
		base = x.m.Reg16(mrf.BX) + x.m.Reg16(mrf.DI)
	case 2:
		base = x.m.Reg16(mrf.BP) + x.m.Reg16(mrf.SI)
		useBP = true
	case 3:
		base = x.m.Reg16(mrf.BP) + x.m.Reg16(mrf.DI)
		useBP = true
	case 4:
		base = x.m.Reg16(mrf.SI)
	case 5:
		base = x.m.Reg16(mrf.DI)
	case 6:
		if mod == 0 {
			base = x.fetchWord() // direct address, no base register
		} else {
			base = x.m.Reg16(mrf.BP)
			useBP = true
		}
	case 7:
		base = x.m.Reg16(mrf.BX)
	}

	switch mod {
	case 1:
		d := int8(x.fetchByte())
		base += uint16(int16(d))
	case 2:
		d := x.fetchWord()
		base += d
	}

	seg := defaultSeg
	if useBP && !hasOverride {
		seg = mrf.SS
	}
	return reg, rmOperand{isMem: true, ea: base, seg: seg}
}

// readRM8/readRM16 and writeRM8/writeRM16 dereference a decoded rm operand
// either as an 8/16-bit register or as memory at seg:ea.
func (x *Executor) readRM8(rm rmOperand) byte {
	if !rm.isMem {
		return x.m.Reg8(mrf.Reg8(rm.reg))
	}
	return x.m.ReadByte(mrf.Phys(x.m.Seg(rm.seg), rm.ea))
}

func (x *Executor) readRM16(rm rmOperand) uint16 {
	if !rm.isMem {
		return x.m.Reg16(mrf.Reg16(rm.reg))
	}
	return x.m.ReadWord(mrf.Phys(x.m.Seg(rm.seg), rm.ea))
}

func (x *Executor) writeRM8(rm rmOperand, v byte) {
	if !rm.isMem {
		x.m.SetReg8(mrf.Reg8(rm.reg), v)
		return
	}
	x.m.WriteByte(mrf.Phys(x.m.Seg(rm.seg), rm.ea), v)
}

func (x *Executor) writeRM16(rm rmOperand, v uint16) {
	if !rm.isMem {
		x.m.SetReg16(mrf.Reg16(rm.reg), v)
		return
	}
	x.m.WriteWord(mrf.Phys(x.m.Seg(rm.seg), rm.ea), v)
}
