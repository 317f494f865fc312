// ops_flags.go - CBW/CWD, LAHF/SAHF, the flag-set/clear family, NOP, HLT.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

func opCBW(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	al := int8(x.m.Reg8(mrf.AL))
	x.m.SetReg16(mrf.AX, uint16(int16(al)))
	return nil
}

func opCWD(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	ax := int16(x.m.Reg16(mrf.AX))
	if ax < 0 {
		x.m.SetReg16(mrf.DX, 0xFFFF)
	} else {
		x.m.SetReg16(mrf.DX, 0)
	}
	return nil
}

func opLAHF(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	x.m.SetReg8(mrf.AH, byte(x.m.Flags()))
	return nil
}

func opSAHF(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	ah := x.m.Reg8(mrf.AH)
	flags := x.m.Flags()&0xFF00 | uint16(ah)
	x.m.SetFlags(flags)
	return nil
}

func flagSetter(bit uint16, value bool) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		x.m.SetFlag(bit, value)
		return nil
	}
}

func opNOP(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	return nil
}

func opHLT(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	x.state = Halted
	return nil
}
