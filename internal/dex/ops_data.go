// ops_data.go - MOV, PUSH, POP in all their register/memory/immediate/
// segment-register forms.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

func opMovEbGb(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	x.writeRM8(rm, x.m.Reg8(mrf.Reg8(reg)))
	return nil
}

func opMovEvGv(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	x.writeRM16(rm, x.m.Reg16(mrf.Reg16(reg)))
	return nil
}

func opMovGbEb(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	x.m.SetReg8(mrf.Reg8(reg), x.readRM8(rm))
	return nil
}

func opMovGvEv(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	x.m.SetReg16(mrf.Reg16(reg), x.readRM16(rm))
	return nil
}

// opMovEvSw / opMovSwEv: MOV r/m16, Sreg and MOV Sreg, r/m16.
func opMovEvSw(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	x.writeRM16(rm, x.m.Seg(mrf.SegReg(reg)))
	return nil
}

func opMovSwEv(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	x.m.SetSeg(mrf.SegReg(reg), x.readRM16(rm))
	return nil
}

func movRegImm8(r mrf.Reg8) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.SetReg8(r, x.fetchByte())
		return nil
	}
}

func movRegImm16(r mrf.Reg16) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.SetReg16(r, x.fetchWord())
		return nil
	}
}

func pushReg(r mrf.Reg16) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.PushWord(x.m.Reg16(r))
		return nil
	}
}

func popReg(r mrf.Reg16) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.SetReg16(r, x.m.PopWord())
		return nil
	}
}

func pushSeg(s mrf.SegReg) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.PushWord(x.m.Seg(s))
		return nil
	}
}

func popSeg(s mrf.SegReg) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.SetSeg(s, x.m.PopWord())
		return nil
	}
}
