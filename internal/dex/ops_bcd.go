// ops_bcd.go - XCHG, LEA, XLAT, and the BCD/ASCII adjust family
// (DAA/DAS/AAA/AAS/AAM/AAD), carried over from the teacher's opcode table
// since they cost nothing extra once the dispatch table exists.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

func opXchgEbGb(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	a, b := x.m.Reg8(mrf.Reg8(reg)), x.readRM8(rm)
	x.m.SetReg8(mrf.Reg8(reg), b)
	x.writeRM8(rm, a)
	return nil
}

func opXchgEvGv(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	a, b := x.m.Reg16(mrf.Reg16(reg)), x.readRM16(rm)
	x.m.SetReg16(mrf.Reg16(reg), b)
	x.writeRM16(rm, a)
	return nil
}

// xchgAXReg returns the handler for the short-form 0x91-0x97 XCHG AX,reg16.
func xchgAXReg(r mrf.Reg16) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		ax := x.m.Reg16(mrf.AX)
		x.m.SetReg16(mrf.AX, x.m.Reg16(r))
		x.m.SetReg16(r, ax)
		return nil
	}
}

func opLEA(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	if !rm.isMem {
		return x.faultf(InvalidOpcode, "LEA requires a memory operand")
	}
	x.m.SetReg16(mrf.Reg16(reg), rm.ea)
	return nil
}

func opXlat(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	s := srcSegOf(seg, hasSeg)
	addr := x.m.Reg16(mrf.BX) + uint16(x.m.Reg8(mrf.AL))
	x.m.SetReg8(mrf.AL, x.m.ReadByte(mrf.Phys(x.m.Seg(s), addr)))
	return nil
}

// opDAA/opDAS follow the Intel-documented BCD adjustment algorithm exactly:
// the "old" AL and CF are captured before either adjustment step, since the
// second step's threshold test uses the pre-adjustment value.
func opDAA(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	al := x.m.Reg8(mrf.AL)
	oldAL, oldCF := al, x.m.CF()
	newCF := false
	if al&0x0F > 9 || x.m.AF() {
		al += 6
		newCF = oldCF || al < 6 // carried out of the low nibble addition
		x.m.SetFlag(mrf.FlagAF, true)
	} else {
		x.m.SetFlag(mrf.FlagAF, false)
	}
	if oldAL > 0x99 || oldCF {
		al += 0x60
		newCF = true
	}
	x.m.SetFlag(mrf.FlagCF, newCF)
	x.m.SetReg8(mrf.AL, al)
	x.m.SetSZP8(al)
	return nil
}

func opDAS(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	al := x.m.Reg8(mrf.AL)
	oldAL, oldCF := al, x.m.CF()
	newCF := false
	if al&0x0F > 9 || x.m.AF() {
		newCF = oldCF || al < 6 // borrowed out of the low nibble subtraction
		al -= 6
		x.m.SetFlag(mrf.FlagAF, true)
	} else {
		x.m.SetFlag(mrf.FlagAF, false)
	}
	if oldAL > 0x99 || oldCF {
		al -= 0x60
		newCF = true
	}
	x.m.SetFlag(mrf.FlagCF, newCF)
	x.m.SetReg8(mrf.AL, al)
	x.m.SetSZP8(al)
	return nil
}

func opAAA(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	al, ah := x.m.Reg8(mrf.AL), x.m.Reg8(mrf.AH)
	if al&0x0F > 9 || x.m.AF() {
		al += 6
		ah++
		x.m.SetFlag(mrf.FlagAF, true)
		x.m.SetFlag(mrf.FlagCF, true)
	} else {
		x.m.SetFlag(mrf.FlagAF, false)
		x.m.SetFlag(mrf.FlagCF, false)
	}
	al &= 0x0F
	x.m.SetReg8(mrf.AL, al)
	x.m.SetReg8(mrf.AH, ah)
	return nil
}

func opAAS(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	al, ah := x.m.Reg8(mrf.AL), x.m.Reg8(mrf.AH)
	if al&0x0F > 9 || x.m.AF() {
		al -= 6
		ah--
		x.m.SetFlag(mrf.FlagAF, true)
		x.m.SetFlag(mrf.FlagCF, true)
	} else {
		x.m.SetFlag(mrf.FlagAF, false)
		x.m.SetFlag(mrf.FlagCF, false)
	}
	al &= 0x0F
	x.m.SetReg8(mrf.AL, al)
	x.m.SetReg8(mrf.AH, ah)
	return nil
}

func opAAM(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	base := x.fetchByte()
	if base == 0 {
		return x.faultf(DivideError, "AAM by zero")
	}
	al := x.m.Reg8(mrf.AL)
	quot, rem := al/base, al%base
	x.m.SetReg8(mrf.AH, quot)
	x.m.SetReg8(mrf.AL, rem)
	x.m.SetSZP8(rem)
	return nil
}

func opAAD(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	base := x.fetchByte()
	al, ah := x.m.Reg8(mrf.AL), x.m.Reg8(mrf.AH)
	result := byte(uint16(ah)*uint16(base) + uint16(al))
	x.m.SetReg8(mrf.AL, result)
	x.m.SetReg8(mrf.AH, 0)
	x.m.SetSZP8(result)
	return nil
}

func opInto(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	if x.m.OF() {
		return x.raiseInterrupt(4)
	}
	return nil
}
