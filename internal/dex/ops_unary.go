// ops_unary.go - INC/DEC (Grp4/5), NOT/NEG/MUL/IMUL/DIV/IDIV/TEST (Grp3),
// and the shift/rotate family (Grp2), restricted to the true 8086 "by 1"
// and "by CL" forms — the 80186+ immediate-count shift doesn't exist on
// this CPU.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

func opGrp45(wide bool) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		switch reg {
		case 0: // INC
			if !wide {
				old := x.readRM8(rm)
				x.m.IncDecFlags8(uint16(old)+1, old, 1, false)
				x.writeRM8(rm, old+1)
			} else {
				old := x.readRM16(rm)
				x.m.IncDecFlags16(uint32(old)+1, old, 1, false)
				x.writeRM16(rm, old+1)
			}
		case 1: // DEC
			if !wide {
				old := x.readRM8(rm)
				x.m.IncDecFlags8(uint16(old)-1, old, 1, true)
				x.writeRM8(rm, old-1)
			} else {
				old := x.readRM16(rm)
				x.m.IncDecFlags16(uint32(old)-1, old, 1, true)
				x.writeRM16(rm, old-1)
			}
		case 6: // PUSH r/m16 (Grp5 only — not valid on the 8-bit 0xFE form)
			if !wide {
				return x.faultf(InvalidOpcode, "Grp4 reg field 6 is not a valid 8-bit opcode")
			}
			x.m.PushWord(x.readRM16(rm))
		default:
			return x.faultf(InvalidOpcode, "unsupported Grp4/5 reg field %d", reg)
		}
		return nil
	}
}

func opGrp3(wide bool) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		switch reg {
		case 0, 1: // TEST r/m, imm
			if !wide {
				imm := x.fetchByte()
				x.m.LogicFlags8(x.readRM8(rm) & imm)
			} else {
				imm := x.fetchWord()
				x.m.LogicFlags16(x.readRM16(rm) & imm)
			}
		case 2: // NOT
			if !wide {
				x.writeRM8(rm, ^x.readRM8(rm))
			} else {
				x.writeRM16(rm, ^x.readRM16(rm))
			}
		case 3: // NEG
			if !wide {
				old := x.readRM8(rm)
				result := uint16(0) - uint16(old)
				x.m.ArithFlags8(result, 0, old, true)
				x.writeRM8(rm, byte(result))
			} else {
				old := x.readRM16(rm)
				result := uint32(0) - uint32(old)
				x.m.ArithFlags16(result, 0, old, true)
				x.writeRM16(rm, uint16(result))
			}
		case 4: // MUL
			return x.doMul(rm, wide, false)
		case 5: // IMUL
			return x.doMul(rm, wide, true)
		case 6: // DIV
			return x.doDiv(rm, wide, false)
		case 7: // IDIV
			return x.doDiv(rm, wide, true)
		}
		return nil
	}
}

func (x *Executor) doMul(rm rmOperand, wide, signed bool) error {
	if !wide {
		v := x.readRM8(rm)
		if signed {
			result := int16(int8(x.m.Reg8(mrf.AL))) * int16(int8(v))
			x.m.SetReg16(mrf.AX, uint16(result))
			fits := result == int16(int8(byte(result)))
			x.m.SetFlag(mrf.FlagCF, !fits)
			x.m.SetFlag(mrf.FlagOF, !fits)
			return nil
		}
		result := uint16(x.m.Reg8(mrf.AL)) * uint16(v)
		x.m.SetReg16(mrf.AX, result)
		of := result > 0xFF
		x.m.SetFlag(mrf.FlagCF, of)
		x.m.SetFlag(mrf.FlagOF, of)
		return nil
	}
	v := x.readRM16(rm)
	if signed {
		result := int32(int16(x.m.Reg16(mrf.AX))) * int32(int16(v))
		x.m.SetReg16(mrf.AX, uint16(result))
		x.m.SetReg16(mrf.DX, uint16(result>>16))
		fits := result == int32(int16(uint16(result)))
		x.m.SetFlag(mrf.FlagCF, !fits)
		x.m.SetFlag(mrf.FlagOF, !fits)
		return nil
	}
	result := uint32(x.m.Reg16(mrf.AX)) * uint32(v)
	x.m.SetReg16(mrf.AX, uint16(result))
	x.m.SetReg16(mrf.DX, uint16(result>>16))
	of := uint16(result>>16) != 0
	x.m.SetFlag(mrf.FlagCF, of)
	x.m.SetFlag(mrf.FlagOF, of)
	return nil
}

func (x *Executor) doDiv(rm rmOperand, wide, signed bool) error {
	if !wide {
		divisor := x.readRM8(rm)
		if divisor == 0 {
			return x.faultf(DivideError, "division by zero")
		}
		if signed {
			dividend := int16(x.m.Reg16(mrf.AX))
			q := dividend / int16(int8(divisor))
			r := dividend % int16(int8(divisor))
			if q > 127 || q < -128 {
				return x.faultf(DivideError, "quotient overflow")
			}
			x.m.SetReg8(mrf.AL, byte(int8(q)))
			x.m.SetReg8(mrf.AH, byte(int8(r)))
			return nil
		}
		dividend := x.m.Reg16(mrf.AX)
		q := dividend / uint16(divisor)
		r := dividend % uint16(divisor)
		if q > 0xFF {
			return x.faultf(DivideError, "quotient overflow")
		}
		x.m.SetReg8(mrf.AL, byte(q))
		x.m.SetReg8(mrf.AH, byte(r))
		return nil
	}

	divisor := x.readRM16(rm)
	if divisor == 0 {
		return x.faultf(DivideError, "division by zero")
	}
	raw := uint32(x.m.Reg16(mrf.DX))<<16 | uint32(x.m.Reg16(mrf.AX))
	if signed {
		dividend := int32(raw)
		q := dividend / int32(int16(divisor))
		r := dividend % int32(int16(divisor))
		if q > 32767 || q < -32768 {
			return x.faultf(DivideError, "quotient overflow")
		}
		x.m.SetReg16(mrf.AX, uint16(int16(q)))
		x.m.SetReg16(mrf.DX, uint16(int16(r)))
		return nil
	}
	q := raw / uint32(divisor)
	r := raw % uint32(divisor)
	if q > 0xFFFF {
		return x.faultf(DivideError, "quotient overflow")
	}
	x.m.SetReg16(mrf.AX, uint16(q))
	x.m.SetReg16(mrf.DX, uint16(r))
	return nil
}

// opGrp2 encodes the shift/rotate family. byCL selects the count source
// (CL register vs. the fixed count of 1); wide selects 8/16-bit width.
func opGrp2(wide, byCL bool) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		reg, rm := x.decodeModRM(seg, hasSeg)
		count := byte(1)
		if byCL {
			count = x.m.Reg8(mrf.CL)
		}
		if !wide {
			x.writeRM8(rm, x.shift8(reg, x.readRM8(rm), count))
		} else {
			x.writeRM16(rm, x.shift16(reg, x.readRM16(rm), count))
		}
		return nil
	}
}

func (x *Executor) shift8(reg byte, val byte, count byte) byte {
	cf := x.m.CF()
	origMSB := val&0x80 != 0
	for i := byte(0); i < count; i++ {
		switch reg {
		case 0: // ROL
			newCF := val&0x80 != 0
			val = val<<1 | boolByte(newCF)
			cf = newCF
		case 1: // ROR
			newCF := val&1 != 0
			val = val>>1 | boolByte(newCF)<<7
			cf = newCF
		case 2: // RCL
			newCF := val&0x80 != 0
			val = val<<1 | boolByte(cf)
			cf = newCF
		case 3: // RCR
			newCF := val&1 != 0
			val = val>>1 | boolByte(cf)<<7
			cf = newCF
		case 4: // SHL/SAL
			cf = val&0x80 != 0
			val = val << 1
		case 5: // SHR
			cf = val&1 != 0
			val = val >> 1
		case 7: // SAR
			cf = val&1 != 0
			val = val>>1 | (val & 0x80)
		}
	}
	x.m.SetFlag(mrf.FlagCF, cf)
	x.m.SetFlag(mrf.FlagZF, val == 0)
	x.m.SetFlag(mrf.FlagSF, val&0x80 != 0)
	x.m.SetFlag(mrf.FlagPF, mrf.Parity(val))
	if count == 1 {
		switch reg {
		case 4:
			x.m.SetFlag(mrf.FlagOF, (val&0x80 != 0) != cf)
		case 7:
			x.m.SetFlag(mrf.FlagOF, false)
		case 5:
			x.m.SetFlag(mrf.FlagOF, origMSB)
		}
	}
	return val
}

func (x *Executor) shift16(reg byte, val uint16, count byte) uint16 {
	cf := x.m.CF()
	origMSB := val&0x8000 != 0
	for i := byte(0); i < count; i++ {
		switch reg {
		case 0:
			newCF := val&0x8000 != 0
			val = val<<1 | boolUint16(newCF)
			cf = newCF
		case 1:
			newCF := val&1 != 0
			val = val>>1 | boolUint16(newCF)<<15
			cf = newCF
		case 2:
			newCF := val&0x8000 != 0
			val = val<<1 | boolUint16(cf)
			cf = newCF
		case 3:
			newCF := val&1 != 0
			val = val>>1 | boolUint16(cf)<<15
			cf = newCF
		case 4:
			cf = val&0x8000 != 0
			val = val << 1
		case 5:
			cf = val&1 != 0
			val = val >> 1
		case 7:
			cf = val&1 != 0
			val = val>>1 | (val & 0x8000)
		}
	}
	x.m.SetFlag(mrf.FlagCF, cf)
	x.m.SetFlag(mrf.FlagZF, val == 0)
	x.m.SetFlag(mrf.FlagSF, val&0x8000 != 0)
	x.m.SetFlag(mrf.FlagPF, mrf.Parity(byte(val)))
	if count == 1 {
		switch reg {
		case 4:
			x.m.SetFlag(mrf.FlagOF, (val&0x8000 != 0) != cf)
		case 7:
			x.m.SetFlag(mrf.FlagOF, false)
		case 5:
			x.m.SetFlag(mrf.FlagOF, origMSB)
		}
	}
	return val
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
