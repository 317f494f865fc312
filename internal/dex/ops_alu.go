// ops_alu.go - ADD/OR/ADC/SBB/AND/SUB/XOR/CMP and the Grp1 immediate forms.
// Every handler here funnels through mrf's flag primitives rather than
// recomputing CF/PF/AF/ZF/SF/OF inline.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

func (x *Executor) alu8(subcode byte, dst, src byte) byte {
	switch subcode {
	case 1: // OR
		r := dst | src
		x.m.LogicFlags8(r)
		return r
	case 4: // AND
		r := dst & src
		x.m.LogicFlags8(r)
		return r
	case 6: // XOR
		r := dst ^ src
		x.m.LogicFlags8(r)
		return r
	}
	var result uint16
	sub := subcode == 3 || subcode == 5 || subcode == 7
	switch subcode {
	case 0: // ADD
		result = uint16(dst) + uint16(src)
	case 2: // ADC
		result = uint16(dst) + uint16(src) + boolUint16(x.m.CF())
	case 3: // SBB
		result = uint16(dst) - uint16(src) - boolUint16(x.m.CF())
	case 5, 7: // SUB, CMP
		result = uint16(dst) - uint16(src)
	}
	x.m.ArithFlags8(result, dst, src, sub)
	return byte(result)
}

func (x *Executor) alu16(subcode byte, dst, src uint16) uint16 {
	switch subcode {
	case 1:
		r := dst | src
		x.m.LogicFlags16(r)
		return r
	case 4:
		r := dst & src
		x.m.LogicFlags16(r)
		return r
	case 6:
		r := dst ^ src
		x.m.LogicFlags16(r)
		return r
	}
	var result uint32
	sub := subcode == 3 || subcode == 5 || subcode == 7
	switch subcode {
	case 0:
		result = uint32(dst) + uint32(src)
	case 2:
		result = uint32(dst) + uint32(src) + boolUint32(x.m.CF())
	case 3:
		result = uint32(dst) - uint32(src) - boolUint32(x.m.CF())
	case 5, 7:
		result = uint32(dst) - uint32(src)
	}
	x.m.ArithFlags16(result, dst, src, sub)
	return uint16(result)
}

func boolUint16(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

func boolUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func registerALUGroup(base byte, name string) {
	subcode := base >> 3
	baseOps[base+0x00] = func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		result := x.alu8(subcode, x.readRM8(rm), x.m.Reg8(mrf.Reg8(reg)))
		if subcode != 7 {
			x.writeRM8(rm, result)
		}
		return nil
	}
	baseOps[base+0x01] = func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		result := x.alu16(subcode, x.readRM16(rm), x.m.Reg16(mrf.Reg16(reg)))
		if subcode != 7 {
			x.writeRM16(rm, result)
		}
		return nil
	}
	baseOps[base+0x02] = func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		result := x.alu8(subcode, x.m.Reg8(mrf.Reg8(reg)), x.readRM8(rm))
		if subcode != 7 {
			x.m.SetReg8(mrf.Reg8(reg), result)
		}
		return nil
	}
	baseOps[base+0x03] = func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		result := x.alu16(subcode, x.m.Reg16(mrf.Reg16(reg)), x.readRM16(rm))
		if subcode != 7 {
			x.m.SetReg16(mrf.Reg16(reg), result)
		}
		return nil
	}
	baseOps[base+0x04] = func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		imm := x.fetchByte()
		result := x.alu8(subcode, x.m.Reg8(mrf.AL), imm)
		if subcode != 7 {
			x.m.SetReg8(mrf.AL, result)
		}
		return nil
	}
	baseOps[base+0x05] = func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		imm := x.fetchWord()
		result := x.alu16(subcode, x.m.Reg16(mrf.AX), imm)
		if subcode != 7 {
			x.m.SetReg16(mrf.AX, result)
		}
		return nil
	}
}

func opGrp1(wide, signExtend bool) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		subcode := reg
		if !wide {
			dst := x.readRM8(rm)
			imm := x.fetchByte()
			result := x.alu8(subcode, dst, imm)
			if subcode != 7 {
				x.writeRM8(rm, result)
			}
			return nil
		}
		dst := x.readRM16(rm)
		var imm uint16
		if signExtend {
			imm = uint16(int16(int8(x.fetchByte())))
		} else {
			imm = x.fetchWord()
		}
		result := x.alu16(subcode, dst, imm)
		if subcode != 7 {
			x.writeRM16(rm, result)
		}
		return nil
	}
}

func opTestEbGb(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	r := x.readRM8(rm) & x.m.Reg8(mrf.Reg8(reg))
	x.m.LogicFlags8(r)
	return nil
}

func opTestEvGv(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	reg, rm := x.decodeModRM(seg, hasSeg)
	r := x.readRM16(rm) & x.m.Reg16(mrf.Reg16(reg))
	x.m.LogicFlags16(r)
	return nil
}
