// instr.go - per-mnemonic instruction encoders.
//
// Scope cut (documented in DESIGN.md): memory-destination immediate forms
// (e.g. "ADD [BX], 5") are not supported since MASM-style BYTE PTR/WORD PTR
// disambiguation is out of scope for this simulator's assembler; use a
// register intermediate instead. Shift/rotate group only supports the true
// 8086 "by 1" and "by CL" forms, not the 80186+ immediate-count form.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package asm

import "sim8086/internal/mrf"

// withSegPrefix prepends a segment-override prefix byte when mem carries one.
func withSegPrefix(mem *MemRef, body []byte) []byte {
	if p := segOverridePrefix(mem); p != nil {
		return append(append([]byte{}, p...), body...)
	}
	return body
}

// aluSubcode maps the ALU mnemonics onto the 8086's /reg extension values,
// which double as the opcode-base multiplier (subcode*8) for the non-group
// reg/mem forms.
var aluSubcode = map[string]byte{
	"ADD": 0, "OR": 1, "ADC": 2, "SBB": 3,
	"AND": 4, "SUB": 5, "XOR": 6, "CMP": 7,
}

func encodeALU(subcode byte, ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 2 {
		return nil, errf(lineNo, BadOperand, "expected 2 operands")
	}
	dst, src := ops[0], ops[1]
	base := subcode << 3

	switch dst.Kind {
	case OpReg8:
		switch src.Kind {
		case OpReg8:
			return []byte{base + 0x02, 0xC0 | byte(dst.Reg8)<<3 | byte(src.Reg8)}, nil
		case OpMem:
			rm, err := encodeMem(&src.Mem, res, lineNo)
			if err != nil {
				return nil, err
			}
			return withSegPrefix(&src.Mem, append([]byte{base + 0x02, modrmByte(byte(dst.Reg8), rm)}, rm.extra...)), nil
		case OpImm:
			return []byte{0x80, 0xC0 | subcode<<3 | byte(dst.Reg8), byte(src.Imm)}, nil
		}
	case OpReg16:
		switch src.Kind {
		case OpReg16:
			return []byte{base + 0x03, 0xC0 | byte(dst.Reg16)<<3 | byte(src.Reg16)}, nil
		case OpMem:
			rm, err := encodeMem(&src.Mem, res, lineNo)
			if err != nil {
				return nil, err
			}
			return withSegPrefix(&src.Mem, append([]byte{base + 0x03, modrmByte(byte(dst.Reg16), rm)}, rm.extra...)), nil
		case OpImm:
			// Size decided from the literal value alone (known at parse
			// time, identical on both passes) — never from a label, whose
			// resolved value can change the encoding length between passes.
			if fitsSigned8(src.Imm) {
				return []byte{0x83, 0xC0 | subcode<<3 | byte(dst.Reg16), byte(src.Imm)}, nil
			}
			imm := uint16(src.Imm)
			return []byte{0x81, 0xC0 | subcode<<3 | byte(dst.Reg16), byte(imm), byte(imm >> 8)}, nil
		case OpLabel:
			imm, err := resolveImm16(src, res, lineNo)
			if err != nil {
				return nil, err
			}
			return []byte{0x81, 0xC0 | subcode<<3 | byte(dst.Reg16), byte(imm), byte(imm >> 8)}, nil
		}
	case OpMem:
		rm, err := encodeMem(&dst.Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		switch src.Kind {
		case OpReg8:
			return withSegPrefix(&dst.Mem, append([]byte{base + 0x00, modrmByte(byte(src.Reg8), rm)}, rm.extra...)), nil
		case OpReg16:
			return withSegPrefix(&dst.Mem, append([]byte{base + 0x01, modrmByte(byte(src.Reg16), rm)}, rm.extra...)), nil
		}
	}
	return nil, errf(lineNo, BadOperand, "unsupported operand combination")
}

func resolveImm16(op *Operand, res resolver, lineNo int) (uint16, error) {
	if op.Kind == OpLabel {
		v, ok := res(op.Label)
		if !ok {
			return 0, errf(lineNo, UndefinedLabel, "undefined label %q", op.Label)
		}
		return v, nil
	}
	return uint16(op.Imm), nil
}

func encodeMOV(ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 2 {
		return nil, errf(lineNo, BadOperand, "MOV expects 2 operands")
	}
	dst, src := ops[0], ops[1]

	switch dst.Kind {
	case OpReg8:
		switch src.Kind {
		case OpReg8:
			return []byte{0x8A, 0xC0 | byte(dst.Reg8)<<3 | byte(src.Reg8)}, nil
		case OpMem:
			rm, err := encodeMem(&src.Mem, res, lineNo)
			if err != nil {
				return nil, err
			}
			return withSegPrefix(&src.Mem, append([]byte{0x8A, modrmByte(byte(dst.Reg8), rm)}, rm.extra...)), nil
		case OpImm:
			return []byte{0xB0 + byte(dst.Reg8), byte(src.Imm)}, nil
		}
	case OpReg16:
		switch src.Kind {
		case OpReg16:
			return []byte{0x8B, 0xC0 | byte(dst.Reg16)<<3 | byte(src.Reg16)}, nil
		case OpMem:
			rm, err := encodeMem(&src.Mem, res, lineNo)
			if err != nil {
				return nil, err
			}
			return withSegPrefix(&src.Mem, append([]byte{0x8B, modrmByte(byte(dst.Reg16), rm)}, rm.extra...)), nil
		case OpImm, OpLabel:
			imm, err := resolveImm16(src, res, lineNo)
			if err != nil {
				return nil, err
			}
			return []byte{0xB8 + byte(dst.Reg16), byte(imm), byte(imm >> 8)}, nil
		case OpSegReg:
			return []byte{0x8C, 0xC0 | byte(src.Seg)<<3 | byte(dst.Reg16)}, nil
		}
	case OpSegReg:
		switch src.Kind {
		case OpReg16:
			return []byte{0x8E, 0xC0 | byte(dst.Seg)<<3 | byte(src.Reg16)}, nil
		}
	case OpMem:
		rm, err := encodeMem(&dst.Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		switch src.Kind {
		case OpReg8:
			return withSegPrefix(&dst.Mem, append([]byte{0x88, modrmByte(byte(src.Reg8), rm)}, rm.extra...)), nil
		case OpReg16:
			return withSegPrefix(&dst.Mem, append([]byte{0x89, modrmByte(byte(src.Reg16), rm)}, rm.extra...)), nil
		}
	}
	return nil, errf(lineNo, BadOperand, "unsupported MOV operand combination")
}

// encodeXCHG handles reg,reg and reg,mem forms. AX,reg16 uses the short
// 0x91-0x97 encoding; everything else falls back to the general 0x86/0x87
// ModR/M forms. XCHG is symmetric, so either operand order is accepted.
func encodeXCHG(ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 2 {
		return nil, errf(lineNo, BadOperand, "XCHG expects 2 operands")
	}
	a, b := ops[0], ops[1]
	if a.Kind == OpReg16 && a.Reg16 == mrf.AX && b.Kind == OpReg16 {
		return []byte{0x90 + byte(b.Reg16)}, nil
	}
	if b.Kind == OpReg16 && b.Reg16 == mrf.AX && a.Kind == OpReg16 {
		return []byte{0x90 + byte(a.Reg16)}, nil
	}

	dst, src := a, b
	if dst.Kind == OpMem {
		dst, src = b, a
	}
	switch dst.Kind {
	case OpReg8:
		switch src.Kind {
		case OpReg8:
			return []byte{0x86, 0xC0 | byte(dst.Reg8)<<3 | byte(src.Reg8)}, nil
		case OpMem:
			rm, err := encodeMem(&src.Mem, res, lineNo)
			if err != nil {
				return nil, err
			}
			return withSegPrefix(&src.Mem, append([]byte{0x86, modrmByte(byte(dst.Reg8), rm)}, rm.extra...)), nil
		}
	case OpReg16:
		switch src.Kind {
		case OpReg16:
			return []byte{0x87, 0xC0 | byte(dst.Reg16)<<3 | byte(src.Reg16)}, nil
		case OpMem:
			rm, err := encodeMem(&src.Mem, res, lineNo)
			if err != nil {
				return nil, err
			}
			return withSegPrefix(&src.Mem, append([]byte{0x87, modrmByte(byte(dst.Reg16), rm)}, rm.extra...)), nil
		}
	}
	return nil, errf(lineNo, BadOperand, "unsupported XCHG operand combination")
}

// encodeLEA only accepts a 16-bit register destination and a memory source
// (loading an effective address into a register never touches memory
// itself, so an immediate or register source makes no sense here).
func encodeLEA(ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 2 {
		return nil, errf(lineNo, BadOperand, "LEA expects 2 operands")
	}
	dst, src := ops[0], ops[1]
	if dst.Kind != OpReg16 || src.Kind != OpMem {
		return nil, errf(lineNo, BadOperand, "LEA expects a 16-bit register and a memory operand")
	}
	rm, err := encodeMem(&src.Mem, res, lineNo)
	if err != nil {
		return nil, err
	}
	return append([]byte{0x8D, modrmByte(byte(dst.Reg16), rm)}, rm.extra...), nil
}

func encodePUSH(ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 1 {
		return nil, errf(lineNo, BadOperand, "PUSH expects 1 operand")
	}
	switch ops[0].Kind {
	case OpReg16:
		return []byte{0x50 + byte(ops[0].Reg16)}, nil
	case OpSegReg:
		switch ops[0].Seg {
		case mrf.ES:
			return []byte{0x06}, nil
		case mrf.CS:
			return []byte{0x0E}, nil
		case mrf.SS:
			return []byte{0x16}, nil
		case mrf.DS:
			return []byte{0x1E}, nil
		}
	case OpMem:
		rm, err := encodeMem(&ops[0].Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		return withSegPrefix(&ops[0].Mem, append([]byte{0xFF, modrmByte(6, rm)}, rm.extra...)), nil
	}
	return nil, errf(lineNo, BadOperand, "unsupported PUSH operand")
}

func encodePOP(ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 1 {
		return nil, errf(lineNo, BadOperand, "POP expects 1 operand")
	}
	switch ops[0].Kind {
	case OpReg16:
		return []byte{0x58 + byte(ops[0].Reg16)}, nil
	case OpSegReg:
		switch ops[0].Seg {
		case mrf.ES:
			return []byte{0x07}, nil
		case mrf.SS:
			return []byte{0x17}, nil
		case mrf.DS:
			return []byte{0x1F}, nil
		}
	case OpMem:
		rm, err := encodeMem(&ops[0].Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		return withSegPrefix(&ops[0].Mem, append([]byte{0x8F, modrmByte(0, rm)}, rm.extra...)), nil
	}
	return nil, errf(lineNo, BadOperand, "unsupported POP operand")
}

// grp45 encodes INC/DEC (reg field 0/1) and grp3 encodes NOT/NEG/MUL/
// IMUL/DIV/IDIV/TEST (reg field 2/3/4/5/6/7/0) for an 8-bit or 16-bit
// register or memory operand.
func grp45(reg byte, op *Operand, res resolver, lineNo int) ([]byte, error) {
	switch op.Kind {
	case OpReg8:
		return []byte{0xFE, 0xC0 | reg<<3 | byte(op.Reg8)}, nil
	case OpReg16:
		return []byte{0xFF, 0xC0 | reg<<3 | byte(op.Reg16)}, nil
	case OpMem:
		rm, err := encodeMem(&op.Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		return withSegPrefix(&op.Mem, append([]byte{0xFF, modrmByte(reg, rm)}, rm.extra...)), nil
	}
	return nil, errf(lineNo, BadOperand, "unsupported operand")
}

func grp3(reg byte, op *Operand, res resolver, lineNo int) ([]byte, error) {
	switch op.Kind {
	case OpReg8:
		return []byte{0xF6, 0xC0 | reg<<3 | byte(op.Reg8)}, nil
	case OpReg16:
		return []byte{0xF7, 0xC0 | reg<<3 | byte(op.Reg16)}, nil
	case OpMem:
		rm, err := encodeMem(&op.Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		opc := byte(0xF7)
		return withSegPrefix(&op.Mem, append([]byte{opc, modrmByte(reg, rm)}, rm.extra...)), nil
	}
	return nil, errf(lineNo, BadOperand, "unsupported operand")
}

// grp2 encodes the shift/rotate family, restricted to the genuine 8086
// "shift by 1" (0xD0/0xD1) and "shift by CL" (0xD2/0xD3) forms.
func grp2(reg byte, ops []*Operand, lineNo int) ([]byte, error) {
	if len(ops) != 2 {
		return nil, errf(lineNo, BadOperand, "shift/rotate expects 2 operands")
	}
	dst, count := ops[0], ops[1]
	byCL := count.Kind == OpReg8 && count.Reg8 == mrf.CL
	byOne := count.Kind == OpImm && count.Imm == 1
	if !byCL && !byOne {
		return nil, errf(lineNo, BadOperand, "only \"by 1\" and \"by CL\" shift counts are supported on the 8086")
	}
	switch dst.Kind {
	case OpReg8:
		op := byte(0xD0)
		if byCL {
			op = 0xD2
		}
		return []byte{op, 0xC0 | reg<<3 | byte(dst.Reg8)}, nil
	case OpReg16:
		op := byte(0xD1)
		if byCL {
			op = 0xD3
		}
		return []byte{op, 0xC0 | reg<<3 | byte(dst.Reg16)}, nil
	}
	return nil, errf(lineNo, BadOperand, "unsupported shift destination")
}

// jccCodes maps the documented 8086 conditional-jump mnemonics (and their
// synonyms) to the Jcc short-form opcode 0x70+cc.
var jccCodes = map[string]byte{
	"JO": 0x00, "JNO": 0x01,
	"JB": 0x02, "JNAE": 0x02, "JC": 0x02,
	"JNB": 0x03, "JAE": 0x03, "JNC": 0x03,
	"JE": 0x04, "JZ": 0x04,
	"JNE": 0x05, "JNZ": 0x05,
	"JBE": 0x06, "JNA": 0x06,
	"JA": 0x07, "JNBE": 0x07,
	"JS": 0x08, "JNS": 0x09,
	"JP": 0x0A, "JPE": 0x0A,
	"JNP": 0x0B, "JPO": 0x0B,
	"JL": 0x0C, "JNGE": 0x0C,
	"JGE": 0x0D, "JNL": 0x0D,
	"JLE": 0x0E, "JNG": 0x0E,
	"JG": 0x0F, "JNLE": 0x0F,
}

var loopCodes = map[string]byte{
	"LOOP": 0xE2, "LOOPE": 0xE1, "LOOPZ": 0xE1, "LOOPNE": 0xE0, "LOOPNZ": 0xE0, "JCXZ": 0xE3,
}
