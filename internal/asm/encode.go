// encode.go - ModR/M byte construction and effective-address encoding for
// the 8086's 16-bit-only addressing modes (no SIB, no 32-bit bases).
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package asm

import "sim8086/internal/mrf"

// resolver maps a label to its final offset. Pass 1 uses a dummy resolver
// that always succeeds with a placeholder value, since no instruction's
// *length* depends on a label's resolved address — only its *bytes* do
// (filled in during pass 2 with the real resolver). Keeping one encode
// function for both passes, rather than a separate size table, is what
// guarantees the two passes can never disagree on length.
type resolver func(label string) (uint16, bool)

func dummyResolver(string) (uint16, bool) { return 0, true }

// rmEncoding is the byte encoding of a memory or register operand's mod/rm
// field, plus any trailing displacement bytes.
type rmEncoding struct {
	modrm byte // only the mod(2)+rm(3) bits are set; reg field ORed in by caller
	extra []byte
}

// encodeRM encodes a register or memory Operand into its mod/rm form. reg
// direct operands always yield mod=11.
func encodeRM(op *Operand, res resolver, lineNo int) (*rmEncoding, error) {
	switch op.Kind {
	case OpReg8:
		return &rmEncoding{modrm: 0xC0 | byte(op.Reg8)}, nil
	case OpReg16:
		return &rmEncoding{modrm: 0xC0 | byte(op.Reg16)}, nil
	case OpMem:
		return encodeMem(&op.Mem, res, lineNo)
	}
	return nil, errf(lineNo, BadOperand, "expected register or memory operand")
}

func encodeMem(mem *MemRef, res resolver, lineNo int) (*rmEncoding, error) {
	var rm byte
	var haveBaseIndex bool

	switch {
	case mem.Base == "BX" && mem.Index == "SI":
		rm, haveBaseIndex = 0, true
	case mem.Base == "BX" && mem.Index == "DI":
		rm, haveBaseIndex = 1, true
	case mem.Base == "BP" && mem.Index == "SI":
		rm, haveBaseIndex = 2, true
	case mem.Base == "BP" && mem.Index == "DI":
		rm, haveBaseIndex = 3, true
	case mem.Base == "" && mem.Index == "SI":
		rm, haveBaseIndex = 4, true
	case mem.Base == "" && mem.Index == "DI":
		rm, haveBaseIndex = 5, true
	case mem.Base == "BP" && mem.Index == "":
		rm, haveBaseIndex = 6, true
	case mem.Base == "BX" && mem.Index == "":
		rm, haveBaseIndex = 7, true
	case mem.Base == "" && mem.Index == "":
		// Direct addressing only: [label] or [1234].
		rm = 6
		haveBaseIndex = false
	default:
		return nil, errf(lineNo, BadOperand, "unsupported base/index combination [%s+%s]", mem.Base, mem.Index)
	}

	if !haveBaseIndex {
		addr, err := resolveMemAddr(mem, res, lineNo)
		if err != nil {
			return nil, err
		}
		return &rmEncoding{
			modrm: rm, // mod=00
			extra: []byte{byte(addr), byte(addr >> 8)},
		}, nil
	}

	// rm=110 (BP, no index) cannot be mod00 (that encodes direct address),
	// so a bare [BP] is forced to mod01 with a zero disp8 displacement.
	if mem.Base == "BP" && mem.Index == "" && !mem.HasDisp && mem.DirectLabel == "" {
		return &rmEncoding{modrm: 0x40 | rm, extra: []byte{0}}, nil
	}

	if !mem.HasDisp && mem.DirectLabel == "" {
		return &rmEncoding{modrm: rm}, nil // mod=00, no displacement
	}

	if mem.DirectLabel != "" {
		addr, ok := res(mem.DirectLabel)
		if !ok {
			return nil, errf(lineNo, UndefinedLabel, "undefined label %q", mem.DirectLabel)
		}
		disp := int32(addr) + mem.Disp
		return &rmEncoding{modrm: 0x80 | rm, extra: []byte{byte(disp), byte(disp >> 8)}}, nil
	}

	if fitsSigned8(int64(mem.Disp)) {
		return &rmEncoding{modrm: 0x40 | rm, extra: []byte{byte(mem.Disp)}}, nil
	}
	return &rmEncoding{modrm: 0x80 | rm, extra: []byte{byte(mem.Disp), byte(mem.Disp >> 8)}}, nil
}

func resolveMemAddr(mem *MemRef, res resolver, lineNo int) (uint16, error) {
	if mem.DirectLabel != "" {
		addr, ok := res(mem.DirectLabel)
		if !ok {
			return 0, errf(lineNo, UndefinedLabel, "undefined label %q", mem.DirectLabel)
		}
		return uint16(int32(addr) + mem.Disp), nil
	}
	return uint16(mem.Disp), nil
}

// segOverridePrefix returns the 0x26/0x2E/0x36/0x3E segment-override prefix
// byte for a memory operand that carries one, or nil.
func segOverridePrefix(mem *MemRef) []byte {
	if !mem.HasSegOverride {
		return nil
	}
	switch mem.SegOverride {
	case mrf.ES:
		return []byte{0x26}
	case mrf.CS:
		return []byte{0x2E}
	case mrf.SS:
		return []byte{0x36}
	case mrf.DS:
		return []byte{0x3E}
	}
	return nil
}

func modrmByte(reg byte, rm *rmEncoding) byte {
	return rm.modrm&0xC7 | (reg&0x07)<<3
}
