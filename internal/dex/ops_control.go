// ops_control.go - JMP, CALL, RET, Jcc, LOOP family, INT/IRET.
//
// INT is modeled as a synchronous call into a registered Go handler rather
// than a real IVT vector fetch: FLAGS/CS/IP are still pushed the way real
// hardware does, the handler runs to completion standing in for the ISR
// body, and the three words are popped again immediately afterward — the
// net effect of an implicit IRET the handler never has to execute itself.
// An explicit IRET in assembled code still works against any three words
// on the stack shaped like a pushed FLAGS/CS/IP frame.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import "sim8086/internal/mrf"

func opJmpShort(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	rel := int8(x.fetchByte())
	x.m.SetIP(uint16(int32(x.m.IP()) + int32(rel)))
	return nil
}

func opJmpNear(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	rel := int16(x.fetchWord())
	x.m.SetIP(uint16(int32(x.m.IP()) + int32(rel)))
	return nil
}

func opCallNear(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	rel := int16(x.fetchWord())
	retAddr := x.m.IP()
	x.m.PushWord(retAddr)
	x.m.SetIP(uint16(int32(retAddr) + int32(rel)))
	return nil
}

// opJmpFar loads CS:IP directly from the instruction's trailing
// offset16:segment16. Far CALL, far RET and IRET are the other
// instructions that load CS.
func opJmpFar(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	off := x.fetchWord()
	cs := x.fetchWord()
	x.m.SetSeg(mrf.CS, cs)
	x.m.SetIP(off)
	return nil
}

func opCallFar(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	off := x.fetchWord()
	cs := x.fetchWord()
	x.m.PushWord(x.m.Seg(mrf.CS))
	x.m.PushWord(x.m.IP())
	x.m.SetSeg(mrf.CS, cs)
	x.m.SetIP(off)
	return nil
}

func opRetFar(extra uint16) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		ip := x.m.PopWord()
		cs := x.m.PopWord()
		x.m.SetReg16(mrf.SP, x.m.Reg16(mrf.SP)+extra)
		x.m.SetSeg(mrf.CS, cs)
		x.m.SetIP(ip)
		return nil
	}
}

func opRetFarImm(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	imm := x.fetchWord()
	ip := x.m.PopWord()
	cs := x.m.PopWord()
	x.m.SetReg16(mrf.SP, x.m.Reg16(mrf.SP)+imm)
	x.m.SetSeg(mrf.CS, cs)
	x.m.SetIP(ip)
	return nil
}

func opRet(extra uint16) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		ip := x.m.PopWord()
		x.m.SetReg16(mrf.SP, x.m.Reg16(mrf.SP)+extra)
		x.m.SetIP(ip)
		return nil
	}
}

func opRetImm(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	imm := x.fetchWord()
	ip := x.m.PopWord()
	x.m.SetReg16(mrf.SP, x.m.Reg16(mrf.SP)+imm)
	x.m.SetIP(ip)
	return nil
}

func opInt(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	n := x.fetchByte()
	return x.raiseInterrupt(n)
}

func opInt3(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	return x.raiseInterrupt(3)
}

func (x *Executor) raiseInterrupt(n byte) error {
	handler, ok := x.interruptHandlers[n]
	if !ok {
		if x.cfg.FaultOnUnhandledInt {
			return x.faultf(UnhandledInterrupt, "INT 0x%02X has no registered handler", n)
		}
		return nil
	}
	x.m.PushWord(x.m.Flags())
	x.m.PushWord(x.m.Seg(mrf.CS))
	x.m.PushWord(x.m.IP())
	if err := handler(x); err != nil {
		return err
	}
	x.m.SetIP(x.m.PopWord())
	x.m.SetSeg(mrf.CS, x.m.PopWord())
	x.m.SetFlags(x.m.PopWord())
	return nil
}

func opIret(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	ip := x.m.PopWord()
	cs := x.m.PopWord()
	flags := x.m.PopWord()
	x.m.SetIP(ip)
	x.m.SetSeg(mrf.CS, cs)
	x.m.SetFlags(flags)
	return nil
}

// jccTest evaluates the condition for Jcc code 0-15 (0x70+cc).
func jccTest(m *mrf.Machine, cc byte) bool {
	switch cc {
	case 0x00:
		return m.OF()
	case 0x01:
		return !m.OF()
	case 0x02:
		return m.CF()
	case 0x03:
		return !m.CF()
	case 0x04:
		return m.ZF()
	case 0x05:
		return !m.ZF()
	case 0x06:
		return m.CF() || m.ZF()
	case 0x07:
		return !m.CF() && !m.ZF()
	case 0x08:
		return m.SF()
	case 0x09:
		return !m.SF()
	case 0x0A:
		return m.PF()
	case 0x0B:
		return !m.PF()
	case 0x0C:
		return m.SF() != m.OF()
	case 0x0D:
		return m.SF() == m.OF()
	case 0x0E:
		return m.ZF() || (m.SF() != m.OF())
	case 0x0F:
		return !m.ZF() && (m.SF() == m.OF())
	}
	return false
}

func opJcc(cc byte) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		rel := int8(x.fetchByte())
		if jccTest(x.m, cc) {
			x.m.SetIP(uint16(int32(x.m.IP()) + int32(rel)))
		}
		return nil
	}
}

type loopKind int

const (
	loopPlain loopKind = iota
	loopZ
	loopNZ
)

func opLoop(kind loopKind) handlerFunc {
	return func(x *Executor, seg mrf.SegReg, hasSeg bool) error {
		rel := int8(x.fetchByte())
		cx := x.m.Reg16(mrf.CX) - 1
		x.m.SetReg16(mrf.CX, cx)
		take := cx != 0
		switch kind {
		case loopZ:
			take = take && x.m.ZF()
		case loopNZ:
			take = take && !x.m.ZF()
		}
		if take {
			x.m.SetIP(uint16(int32(x.m.IP()) + int32(rel)))
		}
		return nil
	}
}

func opJcxz(x *Executor, seg mrf.SegReg, hasSeg bool) error {
	rel := int8(x.fetchByte())
	if x.m.Reg16(mrf.CX) == 0 {
		x.m.SetIP(uint16(int32(x.m.IP()) + int32(rel)))
	}
	return nil
}
