// dispatch.go - mnemonic dispatch: turns one rawLine into its encoded
// bytes, handling REP-family prefixes, control-transfer instructions, and
// the parameterless opcodes.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package asm

import (
	"strings"

	"sim8086/internal/mrf"
)

var repPrefix = map[string]byte{
	"REP": 0xF3, "REPE": 0xF3, "REPZ": 0xF3,
	"REPNE": 0xF2, "REPNZ": 0xF2,
}

var stringOps = map[string]byte{
	"MOVSB": 0xA4, "MOVSW": 0xA5,
	"CMPSB": 0xA6, "CMPSW": 0xA7,
	"STOSB": 0xAA, "STOSW": 0xAB,
	"LODSB": 0xAC, "LODSW": 0xAD,
	"SCASB": 0xAE, "SCASW": 0xAF,
}

var noOperandOps = map[string]byte{
	"CBW": 0x98, "CWD": 0x99,
	"LAHF": 0x9F, "SAHF": 0x9E,
	"CLC": 0xF8, "STC": 0xF9,
	"CLI": 0xFA, "STI": 0xFB,
	"CLD": 0xFC, "STD": 0xFD,
	"NOP": 0x90, "HLT": 0xF4,
	"IRET": 0xCF,
	"DAA": 0x27, "DAS": 0x2F,
	"AAA": 0x37, "AAS": 0x3F,
	"INTO": 0xCE,
	"XLAT": 0xD7, "XLATB": 0xD7,
}

// fixedOps holds no-operand mnemonics whose encoding is more than one byte:
// AAM/AAD always carry an implicit base-10 (0x0A) operand byte on the real
// 8086, never surfaced as an assembler-level operand.
var fixedOps = map[string][]byte{
	"AAM": {0xD4, 0x0A},
	"AAD": {0xD5, 0x0A},
}

// encodeInstruction encodes one instruction line. addr is the line's
// offset within the code segment, needed for PC-relative branch targets.
func encodeInstruction(rl *rawLine, res resolver, addr uint16, emit bool) ([]byte, error) {
	mn := rl.mnemonic

	if prefix, ok := repPrefix[mn]; ok {
		inner := strings.TrimSpace(rl.operands)
		parts := strings.SplitN(inner, " ", 2)
		innerRL := &rawLine{lineNo: rl.lineNo, mnemonic: strings.ToUpper(parts[0])}
		if len(parts) == 2 {
			innerRL.operands = strings.TrimSpace(parts[1])
		}
		body, err := encodeInstruction(innerRL, res, addr+1, emit)
		if err != nil {
			return nil, err
		}
		return append([]byte{prefix}, body...), nil
	}

	if op, ok := stringOps[mn]; ok {
		return []byte{op}, nil
	}
	if op, ok := noOperandOps[mn]; ok {
		return []byte{op}, nil
	}
	if bytes, ok := fixedOps[mn]; ok {
		return append([]byte{}, bytes...), nil
	}

	// JMP/CALL parse their own raw operand text directly: a SHORT/FAR/FAR
	// PTR qualifier makes the operand more than one comma-free token, which
	// parseOperandList's per-token isIdent check would reject outright.
	switch mn {
	case "JMP":
		return encodeJMP(rl, res, addr, emit)
	case "CALL":
		return encodeCALL(rl, res, addr, emit)
	}

	ops, err := parseOperandList(rl)
	if err != nil {
		return nil, err
	}

	if subcode, ok := aluSubcode[mn]; ok {
		return encodeALU(subcode, ops, res, rl.lineNo)
	}

	switch mn {
	case "MOV":
		return encodeMOV(ops, res, rl.lineNo)
	case "PUSH":
		return encodePUSH(ops, res, rl.lineNo)
	case "POP":
		return encodePOP(ops, res, rl.lineNo)
	case "INC":
		return grp45(0, ops[0], res, rl.lineNo)
	case "DEC":
		return grp45(1, ops[0], res, rl.lineNo)
	case "NOT":
		return grp3(2, ops[0], res, rl.lineNo)
	case "NEG":
		return grp3(3, ops[0], res, rl.lineNo)
	case "MUL":
		return grp3(4, ops[0], res, rl.lineNo)
	case "IMUL":
		return grp3(5, ops[0], res, rl.lineNo)
	case "DIV":
		return grp3(6, ops[0], res, rl.lineNo)
	case "IDIV":
		return grp3(7, ops[0], res, rl.lineNo)
	case "TEST":
		return encodeTEST(ops, res, rl.lineNo)
	case "SHL", "SAL":
		return grp2(4, ops, rl.lineNo)
	case "SHR":
		return grp2(5, ops, rl.lineNo)
	case "SAR":
		return grp2(7, ops, rl.lineNo)
	case "ROL":
		return grp2(0, ops, rl.lineNo)
	case "ROR":
		return grp2(1, ops, rl.lineNo)
	case "RCL":
		return grp2(2, ops, rl.lineNo)
	case "RCR":
		return grp2(3, ops, rl.lineNo)
	case "INT":
		return encodeINT(ops, rl.lineNo)
	case "RET":
		return encodeRETImmOrPlain(ops, 0xC2, 0xC3, rl.lineNo)
	case "RETF":
		return encodeRETImmOrPlain(ops, 0xCA, 0xCB, rl.lineNo)
	case "XCHG":
		return encodeXCHG(ops, res, rl.lineNo)
	case "LEA":
		return encodeLEA(ops, res, rl.lineNo)
	}

	if cc, ok := jccCodes[mn]; ok {
		return encodeRelShort(0x70+cc, ops, res, addr, rl.lineNo, emit)
	}
	if op, ok := loopCodes[mn]; ok {
		return encodeRelShort(op, ops, res, addr, rl.lineNo, emit)
	}

	return nil, errf(rl.lineNo, UnknownMnemonic, "unknown mnemonic %q", mn)
}

// parseOperandList is the common case: comma-split then parse each token.
// JMP/CALL intercept the raw operand string themselves (for SHORT/FAR)
// before ever reaching here.
func parseOperandList(rl *rawLine) ([]*Operand, error) {
	toks := splitOperands(rl.operands)
	ops := make([]*Operand, 0, len(toks))
	for _, t := range toks {
		o, err := parseOperand(t, rl.lineNo)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

func encodeTEST(ops []*Operand, res resolver, lineNo int) ([]byte, error) {
	if len(ops) != 2 {
		return nil, errf(lineNo, BadOperand, "TEST expects 2 operands")
	}
	dst, src := ops[0], ops[1]
	switch dst.Kind {
	case OpReg8:
		switch src.Kind {
		case OpReg8:
			return []byte{0x84, 0xC0 | byte(src.Reg8)<<3 | byte(dst.Reg8)}, nil
		case OpImm:
			return grp3result(0xF6, 0, byte(dst.Reg8), []byte{byte(src.Imm)})
		}
	case OpReg16:
		switch src.Kind {
		case OpReg16:
			return []byte{0x85, 0xC0 | byte(src.Reg16)<<3 | byte(dst.Reg16)}, nil
		case OpImm:
			imm := uint16(src.Imm)
			return grp3result(0xF7, 0, byte(dst.Reg16), []byte{byte(imm), byte(imm >> 8)})
		}
	case OpMem:
		rm, err := encodeMem(&dst.Mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		switch src.Kind {
		case OpReg8:
			return withSegPrefix(&dst.Mem, append([]byte{0x84, modrmByte(byte(src.Reg8), rm)}, rm.extra...)), nil
		case OpReg16:
			return withSegPrefix(&dst.Mem, append([]byte{0x85, modrmByte(byte(src.Reg16), rm)}, rm.extra...)), nil
		}
	}
	return nil, errf(lineNo, BadOperand, "unsupported TEST operand combination")
}

func grp3result(opcode byte, reg byte, rmField byte, imm []byte) ([]byte, error) {
	out := append([]byte{opcode, 0xC0 | reg<<3 | rmField}, imm...)
	return out, nil
}

func encodeINT(ops []*Operand, lineNo int) ([]byte, error) {
	if len(ops) != 1 || ops[0].Kind != OpImm {
		return nil, errf(lineNo, BadOperand, "INT expects one immediate operand")
	}
	if ops[0].Imm == 3 {
		return []byte{0xCC}, nil
	}
	return []byte{0xCD, byte(ops[0].Imm)}, nil
}

func encodeRETImmOrPlain(ops []*Operand, immOpcode, plainOpcode byte, lineNo int) ([]byte, error) {
	if len(ops) == 0 {
		return []byte{plainOpcode}, nil
	}
	if len(ops) != 1 || ops[0].Kind != OpImm {
		return nil, errf(lineNo, BadOperand, "RET expects zero or one immediate operand")
	}
	imm := uint16(ops[0].Imm)
	return []byte{immOpcode, byte(imm), byte(imm >> 8)}, nil
}

// encodeRelShort encodes the Jcc/LOOP family: one opcode byte followed by
// a signed 8-bit displacement relative to the address of the *next*
// instruction (addr+2). During pass 1 (emit=false) the target is never
// resolved — length cannot depend on a label's eventual value — so a
// placeholder displacement is emitted and the range check is deferred to
// pass 2, the only pass where the real distance is known.
func encodeRelShort(opcode byte, ops []*Operand, res resolver, addr uint16, lineNo int, emit bool) ([]byte, error) {
	if len(ops) != 1 || ops[0].Kind != OpLabel {
		return nil, errf(lineNo, BadOperand, "expected a label operand")
	}
	if !emit {
		return []byte{opcode, 0}, nil
	}
	target, ok := res(ops[0].Label)
	if !ok {
		return nil, errf(lineNo, UndefinedLabel, "undefined label %q", ops[0].Label)
	}
	rel := int32(target) - int32(addr) - 2
	if rel < -128 || rel > 127 {
		return nil, errf(lineNo, JumpOutOfRange, "branch target %q is out of short-jump range (%d)", ops[0].Label, rel)
	}
	return []byte{opcode, byte(int8(rel))}, nil
}

// encodeJMP intercepts the raw operand text to honor an explicit SHORT or
// FAR qualifier before falling back to a near jump (the 8086 default
// MASM would pick for a forward reference of unknown distance).
func encodeJMP(rl *rawLine, res resolver, addr uint16, emit bool) ([]byte, error) {
	raw := strings.TrimSpace(rl.operands)
	upper := strings.ToUpper(raw)

	switch {
	case strings.HasPrefix(upper, "SHORT "):
		label := strings.TrimSpace(raw[len("SHORT "):])
		return encodeRelShort(0xEB, []*Operand{{Kind: OpLabel, Label: label}}, res, addr, rl.lineNo, emit)
	case strings.HasPrefix(upper, "FAR PTR "):
		return encodeFarTransfer(0xEA, strings.TrimSpace(raw[len("FAR PTR "):]), res, rl.lineNo, emit)
	case strings.HasPrefix(upper, "FAR "):
		return encodeFarTransfer(0xEA, strings.TrimSpace(raw[len("FAR "):]), res, rl.lineNo, emit)
	default:
		op, err := parseOperand(raw, rl.lineNo)
		if err != nil {
			return nil, err
		}
		if op.Kind != OpLabel {
			return nil, errf(rl.lineNo, BadOperand, "JMP expects a label operand")
		}
		if !emit {
			return []byte{0xE9, 0, 0}, nil
		}
		target, ok := res(op.Label)
		if !ok {
			return nil, errf(rl.lineNo, UndefinedLabel, "undefined label %q", op.Label)
		}
		rel := int32(target) - int32(addr) - 3
		return []byte{0xE9, byte(rel), byte(rel >> 8)}, nil
	}
}

func encodeCALL(rl *rawLine, res resolver, addr uint16, emit bool) ([]byte, error) {
	raw := strings.TrimSpace(rl.operands)
	upper := strings.ToUpper(raw)

	switch {
	case strings.HasPrefix(upper, "FAR PTR "):
		return encodeFarTransfer(0x9A, strings.TrimSpace(raw[len("FAR PTR "):]), res, rl.lineNo, emit)
	case strings.HasPrefix(upper, "FAR "):
		return encodeFarTransfer(0x9A, strings.TrimSpace(raw[len("FAR "):]), res, rl.lineNo, emit)
	}

	op, err := parseOperand(raw, rl.lineNo)
	if err != nil {
		return nil, err
	}
	if op.Kind != OpLabel {
		return nil, errf(rl.lineNo, BadOperand, "CALL expects a label operand")
	}
	if !emit {
		return []byte{0xE8, 0, 0}, nil
	}
	target, ok := res(op.Label)
	if !ok {
		return nil, errf(rl.lineNo, UndefinedLabel, "undefined label %q", op.Label)
	}
	rel := int32(target) - int32(addr) - 3
	return []byte{0xE8, byte(rel), byte(rel >> 8)}, nil
}

// encodeFarTransfer encodes a far JMP/CALL (opcode 0xEA or 0x9A): opcode
// byte, 16-bit offset, 16-bit segment. A "SEG:OFFSET" target gives both
// halves literally; a bare label lives in this simulator's one fixed code
// segment (mrf.DefaultCS), since there is no linker to relocate it into
// another one.
func encodeFarTransfer(opcode byte, target string, res resolver, lineNo int, emit bool) ([]byte, error) {
	seg, off, err := resolveFarTarget(target, res, lineNo, emit)
	if err != nil {
		return nil, err
	}
	return []byte{opcode, byte(off), byte(off >> 8), byte(seg), byte(seg >> 8)}, nil
}

func resolveFarTarget(target string, res resolver, lineNo int, emit bool) (seg, off uint16, err error) {
	if idx := strings.Index(target, ":"); idx >= 0 {
		segTok := strings.TrimSpace(target[:idx])
		offTok := strings.TrimSpace(target[idx+1:])
		segN, ok := parseNumeric(segTok)
		if !ok {
			return 0, 0, errf(lineNo, BadOperand, "far target segment %q is not numeric", segTok)
		}
		if n, ok := parseNumeric(offTok); ok {
			return uint16(segN), uint16(n), nil
		}
		if !emit {
			return uint16(segN), 0, nil
		}
		o, ok := res(offTok)
		if !ok {
			return 0, 0, errf(lineNo, UndefinedLabel, "undefined label %q", offTok)
		}
		return uint16(segN), o, nil
	}
	if !emit {
		return mrf.DefaultCS, 0, nil
	}
	o, ok := res(target)
	if !ok {
		return 0, 0, errf(lineNo, UndefinedLabel, "undefined label %q", target)
	}
	return mrf.DefaultCS, o, nil
}
