// mrf.go - 8086 memory and register file
//
// 1 MiB byte-addressed linear memory with segment:offset address
// formation, the sixteen 8086 register slots, and the read/write
// primitives every DEX handler is built on.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package mrf

const (
	MemSize     = 1 << 20 // 1 MiB
	AddressMask = MemSize - 1

	DefaultCS = 0x0010
	DefaultDS = 0x0020
	DefaultSS = 0x0030
	DefaultSP = 0x00FF

	CodeBase  = uint32(DefaultCS) << 4
	DataBase  = uint32(DefaultDS) << 4
	StackBase = uint32(DefaultSS) << 4
)

// Reg8 indexes an 8-bit register the way the 8086 ModR/M reg/rm field
// does: AL, CL, DL, BL, AH, CH, DH, BH.
type Reg8 byte

const (
	AL Reg8 = iota
	CL
	DL
	BL
	AH
	CH
	DH
	BH
)

// Reg16 indexes a 16-bit general-purpose register in ModR/M order: AX,
// CX, DX, BX, SP, BP, SI, DI.
type Reg16 byte

const (
	AX Reg16 = iota
	CX
	DX
	BX
	SP
	BP
	SI
	DI
)

// SegReg indexes a segment register.
type SegReg byte

const (
	ES SegReg = iota
	CS
	SS
	DS
)

// Flag bit positions within the 16-bit FLAGS word.
const (
	FlagCF uint16 = 1 << 0
	FlagPF uint16 = 1 << 2
	FlagAF uint16 = 1 << 4
	FlagZF uint16 = 1 << 6
	FlagSF uint16 = 1 << 7
	FlagTF uint16 = 1 << 8
	FlagIF uint16 = 1 << 9
	FlagDF uint16 = 1 << 10
	FlagOF uint16 = 1 << 11
)

// Machine is the 1 MiB memory plus register file. All register reads and
// writes go through Reg8/SetReg8/Reg16/SetReg16 so the byte-pair aliasing
// (AX <-> AL/AH, etc.) stays in one place.
type Machine struct {
	Mem [MemSize]byte

	ax, bx, cx, dx uint16
	sp, bp, si, di uint16
	cs, ds, es, ss uint16
	ip             uint16
	flags          uint16

	Observer Observer
}

// New returns a Machine in its post-Reset state.
func New() *Machine {
	m := &Machine{Observer: NoopObserver{}}
	m.Reset()
	return m
}

// Reset zeroes memory and the register file and restores the default
// segment bases, SP, and flags. Breakpoints are dex.Executor state, not
// Machine state, and are cleared by dex.Executor.Reset instead.
func (m *Machine) Reset() {
	for i := range m.Mem {
		m.Mem[i] = 0
	}
	m.ax, m.bx, m.cx, m.dx = 0, 0, 0, 0
	m.sp, m.bp, m.si, m.di = DefaultSP, 0, 0, 0
	m.cs, m.ds, m.es, m.ss = DefaultCS, DefaultDS, 0, DefaultSS
	m.ip = 0
	m.flags = 0
}

// Phys computes the physical address for a segment:offset pair, wrapping
// modulo 2^20 as real 8086 address-line truncation does.
func Phys(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & AddressMask
}

// --- raw memory access -------------------------------------------------

func (m *Machine) ReadByte(phys uint32) byte {
	phys &= AddressMask
	m.Observer.OnRead(phys, 1)
	return m.Mem[phys]
}

func (m *Machine) ReadWord(phys uint32) uint16 {
	phys &= AddressMask
	m.Observer.OnRead(phys, 2)
	lo := m.Mem[phys]
	hi := m.Mem[(phys+1)&AddressMask]
	return uint16(lo) | uint16(hi)<<8
}

func (m *Machine) WriteByte(phys uint32, b byte) {
	phys &= AddressMask
	m.Mem[phys] = b
	m.Observer.OnWrite(phys, 1, uint32(b))
}

func (m *Machine) WriteWord(phys uint32, w uint16) {
	phys &= AddressMask
	m.Mem[phys] = byte(w)
	m.Mem[(phys+1)&AddressMask] = byte(w >> 8)
	m.Observer.OnWrite(phys, 2, uint32(w))
}

// ReadByteQuiet/ReadWordQuiet bypass the observer — used for the debugger's
// memory inspector and the disassembler, which must not perturb access
// counts gathered by a profiling Observer.
func (m *Machine) ReadByteQuiet(phys uint32) byte {
	return m.Mem[phys&AddressMask]
}

func (m *Machine) ReadWordQuiet(phys uint32) uint16 {
	phys &= AddressMask
	return uint16(m.Mem[phys]) | uint16(m.Mem[(phys+1)&AddressMask])<<8
}

// --- stack ---------------------------------------------------------------

// PushWord decrements SP by 2 and writes w at SS:SP. SP wraps modulo 65536;
// this is documented 8086 behaviour, not a fault.
func (m *Machine) PushWord(w uint16) {
	m.sp -= 2
	m.WriteWord(Phys(m.ss, m.sp), w)
}

// PopWord reads SS:SP then increments SP by 2.
func (m *Machine) PopWord() uint16 {
	w := m.ReadWord(Phys(m.ss, m.sp))
	m.sp += 2
	return w
}

// --- 8-bit register access ------------------------------------------------

func (m *Machine) Reg8(r Reg8) byte {
	switch r {
	case AL:
		return byte(m.ax)
	case AH:
		return byte(m.ax >> 8)
	case CL:
		return byte(m.cx)
	case CH:
		return byte(m.cx >> 8)
	case DL:
		return byte(m.dx)
	case DH:
		return byte(m.dx >> 8)
	case BL:
		return byte(m.bx)
	case BH:
		return byte(m.bx >> 8)
	}
	return 0
}

func (m *Machine) SetReg8(r Reg8, v byte) {
	switch r {
	case AL:
		m.ax = m.ax&0xFF00 | uint16(v)
	case AH:
		m.ax = m.ax&0x00FF | uint16(v)<<8
	case CL:
		m.cx = m.cx&0xFF00 | uint16(v)
	case CH:
		m.cx = m.cx&0x00FF | uint16(v)<<8
	case DL:
		m.dx = m.dx&0xFF00 | uint16(v)
	case DH:
		m.dx = m.dx&0x00FF | uint16(v)<<8
	case BL:
		m.bx = m.bx&0xFF00 | uint16(v)
	case BH:
		m.bx = m.bx&0x00FF | uint16(v)<<8
	}
}

// --- 16-bit register access -----------------------------------------------

func (m *Machine) Reg16(r Reg16) uint16 {
	switch r {
	case AX:
		return m.ax
	case CX:
		return m.cx
	case DX:
		return m.dx
	case BX:
		return m.bx
	case SP:
		return m.sp
	case BP:
		return m.bp
	case SI:
		return m.si
	case DI:
		return m.di
	}
	return 0
}

func (m *Machine) SetReg16(r Reg16, v uint16) {
	switch r {
	case AX:
		m.ax = v
	case CX:
		m.cx = v
	case DX:
		m.dx = v
	case BX:
		m.bx = v
	case SP:
		m.sp = v
	case BP:
		m.bp = v
	case SI:
		m.si = v
	case DI:
		m.di = v
	}
}

// --- segment registers -----------------------------------------------------

func (m *Machine) Seg(s SegReg) uint16 {
	switch s {
	case ES:
		return m.es
	case CS:
		return m.cs
	case SS:
		return m.ss
	case DS:
		return m.ds
	}
	return 0
}

func (m *Machine) SetSeg(s SegReg, v uint16) {
	switch s {
	case ES:
		m.es = v
	case CS:
		m.cs = v
	case SS:
		m.ss = v
	case DS:
		m.ds = v
	}
}

// --- IP ----------------------------------------------------------------

func (m *Machine) IP() uint16     { return m.ip }
func (m *Machine) SetIP(v uint16) { m.ip = v }

// --- flags ---------------------------------------------------------------

func (m *Machine) Flags() uint16     { return m.flags }
func (m *Machine) SetFlags(v uint16) { m.flags = v }

func (m *Machine) Flag(bit uint16) bool {
	return m.flags&bit != 0
}

func (m *Machine) SetFlag(bit uint16, v bool) {
	if v {
		m.flags |= bit
	} else {
		m.flags &^= bit
	}
}

func (m *Machine) CF() bool { return m.Flag(FlagCF) }
func (m *Machine) ZF() bool { return m.Flag(FlagZF) }
func (m *Machine) SF() bool { return m.Flag(FlagSF) }
func (m *Machine) OF() bool { return m.Flag(FlagOF) }
func (m *Machine) PF() bool { return m.Flag(FlagPF) }
func (m *Machine) AF() bool { return m.Flag(FlagAF) }
func (m *Machine) DF() bool { return m.Flag(FlagDF) }
func (m *Machine) IFlag() bool { return m.Flag(FlagIF) }
