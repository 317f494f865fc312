// ops_string.go - MOVS/STOS/LODS/CMPS/SCAS and their REP/REPE/REPNE
// repetition, implemented as an executor-level wrapper around a single
// iteration rather than as distinct "repeated" opcodes.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

type stringIter func(x *Executor, seg mrf.SegReg, hasSeg bool)

// stringOp wraps an unconditional string primitive (MOVS/STOS/LODS): a
// REP/REPNE prefix just repeats it while CX != 0.
func stringOp(op stringIter) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		if x.rep == 0 {
			op(x, seg, hasSeg)
			return nil
		}
		for x.m.Reg16(mrf.CX) != 0 {
			op(x, seg, hasSeg)
			x.m.SetReg16(mrf.CX, x.m.Reg16(mrf.CX)-1)
		}
		return nil
	}
}

// stringOpCond wraps CMPS/SCAS: REPE/REPZ (prefix 0xF3) repeats while
// CX != 0 AND ZF == 1; REPNE/REPNZ (prefix 0xF2) repeats while CX != 0 AND
// ZF == 0.
func stringOpCond(op stringIter) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		if x.rep == 0 {
			op(x, seg, hasSeg)
			return nil
		}
		wantZF := x.rep == 0xF3
		for x.m.Reg16(mrf.CX) != 0 {
			op(x, seg, hasSeg)
			cx := x.m.Reg16(mrf.CX) - 1
			x.m.SetReg16(mrf.CX, cx)
			if x.m.ZF() != wantZF {
				return nil
			}
		}
		return nil
	}
}

func stepFor(x *Executor) int32 {
	if x.m.DF() {
		return -1
	}
	return 1
}

func srcSegOf(seg mrf.SegReg, hasSeg bool) mrf.SegReg {
	if hasSeg {
		return seg
	}
	return mrf.DS
}

func opMovsb(x *Executor, seg mrf.SegReg, hasSeg bool) {
	si, di := x.m.Reg16(mrf.SI), x.m.Reg16(mrf.DI)
	b := x.m.ReadByte(mrf.Phys(x.m.Seg(srcSegOf(seg, hasSeg)), si))
	x.m.WriteByte(mrf.Phys(x.m.Seg(mrf.ES), di), b)
	step := stepFor(x)
	x.m.SetReg16(mrf.SI, uint16(int32(si)+step))
	x.m.SetReg16(mrf.DI, uint16(int32(di)+step))
}

func opMovsw(x *Executor, seg mrf.SegReg, hasSeg bool) {
	si, di := x.m.Reg16(mrf.SI), x.m.Reg16(mrf.DI)
	w := x.m.ReadWord(mrf.Phys(x.m.Seg(srcSegOf(seg, hasSeg)), si))
	x.m.WriteWord(mrf.Phys(x.m.Seg(mrf.ES), di), w)
	step := stepFor(x) * 2
	x.m.SetReg16(mrf.SI, uint16(int32(si)+step))
	x.m.SetReg16(mrf.DI, uint16(int32(di)+step))
}

func opStosb(x *Executor, seg mrf.SegReg, hasSeg bool) {
	di := x.m.Reg16(mrf.DI)
	x.m.WriteByte(mrf.Phys(x.m.Seg(mrf.ES), di), x.m.Reg8(mrf.AL))
	x.m.SetReg16(mrf.DI, uint16(int32(di)+stepFor(x)))
}

func opStosw(x *Executor, seg mrf.SegReg, hasSeg bool) {
	di := x.m.Reg16(mrf.DI)
	x.m.WriteWord(mrf.Phys(x.m.Seg(mrf.ES), di), x.m.Reg16(mrf.AX))
	x.m.SetReg16(mrf.DI, uint16(int32(di)+stepFor(x)*2))
}

func opLodsb(x *Executor, seg mrf.SegReg, hasSeg bool) {
	si := x.m.Reg16(mrf.SI)
	x.m.SetReg8(mrf.AL, x.m.ReadByte(mrf.Phys(x.m.Seg(srcSegOf(seg, hasSeg)), si)))
	x.m.SetReg16(mrf.SI, uint16(int32(si)+stepFor(x)))
}

func opLodsw(x *Executor, seg mrf.SegReg, hasSeg bool) {
	si := x.m.Reg16(mrf.SI)
	x.m.SetReg16(mrf.AX, x.m.ReadWord(mrf.Phys(x.m.Seg(srcSegOf(seg, hasSeg)), si)))
	x.m.SetReg16(mrf.SI, uint16(int32(si)+stepFor(x)*2))
}

func opCmpsb(x *Executor, seg mrf.SegReg, hasSeg bool) {
	si, di := x.m.Reg16(mrf.SI), x.m.Reg16(mrf.DI)
	a := x.m.ReadByte(mrf.Phys(x.m.Seg(srcSegOf(seg, hasSeg)), si))
	b := x.m.ReadByte(mrf.Phys(x.m.Seg(mrf.ES), di))
	x.alu8(7, a, b)
	step := stepFor(x)
	x.m.SetReg16(mrf.SI, uint16(int32(si)+step))
	x.m.SetReg16(mrf.DI, uint16(int32(di)+step))
}

func opCmpsw(x *Executor, seg mrf.SegReg, hasSeg bool) {
	si, di := x.m.Reg16(mrf.SI), x.m.Reg16(mrf.DI)
	a := x.m.ReadWord(mrf.Phys(x.m.Seg(srcSegOf(seg, hasSeg)), si))
	b := x.m.ReadWord(mrf.Phys(x.m.Seg(mrf.ES), di))
	x.alu16(7, a, b)
	step := stepFor(x) * 2
	x.m.SetReg16(mrf.SI, uint16(int32(si)+step))
	x.m.SetReg16(mrf.DI, uint16(int32(di)+step))
}

func opScasb(x *Executor, seg mrf.SegReg, hasSeg bool) {
	di := x.m.Reg16(mrf.DI)
	b := x.m.ReadByte(mrf.Phys(x.m.Seg(mrf.ES), di))
	x.alu8(7, x.m.Reg8(mrf.AL), b)
	x.m.SetReg16(mrf.DI, uint16(int32(di)+stepFor(x)))
}

func opScasw(x *Executor, seg mrf.SegReg, hasSeg bool) {
	di := x.m.Reg16(mrf.DI)
	w := x.m.ReadWord(mrf.Phys(x.m.Seg(mrf.ES), di))
	x.alu16(7, x.m.Reg16(mrf.AX), w)
	x.m.SetReg16(mrf.DI, uint16(int32(di)+stepFor(x)*2))
}
