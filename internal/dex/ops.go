// ops.go - the static [256]handler opcode dispatch table and execOne, the
// instruction-level fetch/decode/execute step.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

type handlerFunc func(x *Executor, seg mrf.SegReg, hasSeg bool) error

var baseOps [256]handlerFunc

func init() {
	registerALUGroup(0x00, "ADD")
	registerALUGroup(0x08, "OR")
	registerALUGroup(0x10, "ADC")
	registerALUGroup(0x18, "SBB")
	registerALUGroup(0x20, "AND")
	registerALUGroup(0x28, "SUB")
	registerALUGroup(0x30, "XOR")
	registerALUGroup(0x38, "CMP")

	baseOps[0x88] = opMovEbGb
	baseOps[0x89] = opMovEvGv
	baseOps[0x8A] = opMovGbEb
	baseOps[0x8B] = opMovGvEv
	baseOps[0x8C] = opMovEvSw
	baseOps[0x8E] = opMovSwEv
	for r := byte(0); r < 8; r++ {
		baseOps[0xB0+r] = movRegImm8(mrf.Reg8(r))
		baseOps[0xB8+r] = movRegImm16(mrf.Reg16(r))
		baseOps[0x50+r] = pushReg(mrf.Reg16(r))
		baseOps[0x58+r] = popReg(mrf.Reg16(r))
	}
	baseOps[0x06] = pushSeg(mrf.ES)
	baseOps[0x07] = popSeg(mrf.ES)
	baseOps[0x0E] = pushSeg(mrf.CS)
	baseOps[0x16] = pushSeg(mrf.SS)
	baseOps[0x17] = popSeg(mrf.SS)
	baseOps[0x1E] = pushSeg(mrf.DS)
	baseOps[0x1F] = popSeg(mrf.DS)

	baseOps[0x80] = opGrp1(false, false)
	baseOps[0x81] = opGrp1(true, false)
	baseOps[0x83] = opGrp1(true, true)

	baseOps[0x84] = opTestEbGb
	baseOps[0x85] = opTestEvGv
	baseOps[0x86] = opXchgEbGb
	baseOps[0x87] = opXchgEvGv
	baseOps[0x8D] = opLEA
	for r := byte(1); r < 8; r++ {
		baseOps[0x90+r] = xchgAXReg(mrf.Reg16(r))
	}

	baseOps[0xFE] = opGrp45(false)
	baseOps[0xFF] = opGrp45(true)
	baseOps[0xF6] = opGrp3(false)
	baseOps[0xF7] = opGrp3(true)

	baseOps[0xD0] = opGrp2(false, false)
	baseOps[0xD1] = opGrp2(true, false)
	baseOps[0xD2] = opGrp2(false, true)
	baseOps[0xD3] = opGrp2(true, true)

	baseOps[0x98] = opCBW
	baseOps[0x99] = opCWD
	baseOps[0x9E] = opSAHF
	baseOps[0x9F] = opLAHF
	baseOps[0xF8] = flagSetter(mrf.FlagCF, false)
	baseOps[0xF9] = flagSetter(mrf.FlagCF, true)
	baseOps[0xFA] = flagSetter(mrf.FlagIF, false)
	baseOps[0xFB] = flagSetter(mrf.FlagIF, true)
	baseOps[0xFC] = flagSetter(mrf.FlagDF, false)
	baseOps[0xFD] = flagSetter(mrf.FlagDF, true)
	baseOps[0x90] = opNOP
	baseOps[0xF4] = opHLT

	baseOps[0x27] = opDAA
	baseOps[0x2F] = opDAS
	baseOps[0x37] = opAAA
	baseOps[0x3F] = opAAS
	baseOps[0xD4] = opAAM
	baseOps[0xD5] = opAAD
	baseOps[0xD7] = opXlat
	baseOps[0xCE] = opInto

	baseOps[0xE9] = opJmpNear
	baseOps[0xEB] = opJmpShort
	baseOps[0xEA] = opJmpFar
	baseOps[0xE8] = opCallNear
	baseOps[0x9A] = opCallFar
	baseOps[0xC3] = opRet(0)
	baseOps[0xC2] = opRetImm
	baseOps[0xCB] = opRetFar(0)
	baseOps[0xCA] = opRetFarImm
	baseOps[0xCD] = opInt
	baseOps[0xCC] = opInt3
	baseOps[0xCF] = opIret

	for cc := byte(0); cc < 16; cc++ {
		baseOps[0x70+cc] = opJcc(cc)
	}
	baseOps[0xE0] = opLoop(loopNZ)
	baseOps[0xE1] = opLoop(loopZ)
	baseOps[0xE2] = opLoop(loopPlain)
	baseOps[0xE3] = opJcxz

	baseOps[0xA4] = stringOp(opMovsb)
	baseOps[0xA5] = stringOp(opMovsw)
	baseOps[0xA6] = stringOpCond(opCmpsb)
	baseOps[0xA7] = stringOpCond(opCmpsw)
	baseOps[0xAA] = stringOp(opStosb)
	baseOps[0xAB] = stringOp(opStosw)
	baseOps[0xAC] = stringOp(opLodsb)
	baseOps[0xAD] = stringOp(opLodsw)
	baseOps[0xAE] = stringOpCond(opScasb)
	baseOps[0xAF] = stringOpCond(opScasw)
}

// execOne consumes any prefix bytes, dispatches the opcode, and advances IP
// past the whole instruction (the handler itself does the fetching, so IP
// is already correct on return).
func (x *Executor) execOne() error {
	var seg mrf.SegReg
	hasSeg := false
	x.rep = 0

prefixes:
	for {
		b := x.m.ReadByte(mrf.Phys(x.m.Seg(mrf.CS), x.m.IP()))
		switch b {
		case 0x26:
			seg, hasSeg = mrf.ES, true
		case 0x2E:
			seg, hasSeg = mrf.CS, true
		case 0x36:
			seg, hasSeg = mrf.SS, true
		case 0x3E:
			seg, hasSeg = mrf.DS, true
		case 0xF2:
			x.rep = 0xF2
		case 0xF3:
			x.rep = 0xF3
		default:
			break prefixes
		}
		x.m.SetIP(x.m.IP() + 1)
	}

	op := x.fetchByte()
	h := baseOps[op]
	if h == nil {
		return x.faultf(InvalidOpcode, "opcode 0x%02X has no handler", op)
	}
	return h(x, seg, hasSeg)
}
