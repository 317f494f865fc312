// mrf_test.go - memory and register file unit tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package mrf

import "testing"

func TestRegisterAliasing(t *testing.T) {
	m := New()
	m.SetReg16(AX, 0x1234)
	if got := m.Reg8(AL); got != 0x34 {
		t.Errorf("AL: got 0x%02X, want 0x34", got)
	}
	if got := m.Reg8(AH); got != 0x12 {
		t.Errorf("AH: got 0x%02X, want 0x12", got)
	}

	m.SetReg8(AL, 0xFF)
	if got := m.Reg16(AX); got != 0x12FF {
		t.Errorf("AX after SetAL: got 0x%04X, want 0x12FF", got)
	}

	m.SetReg8(AH, 0x00)
	if got := m.Reg16(AX); got != 0x00FF {
		t.Errorf("AX after SetAH: got 0x%04X, want 0x00FF", got)
	}
}

// Invariant 3: for all register IDs r and values v <= mask(r),
// reg_write(r, v); reg_read(r) == v.
func TestRegisterWriteReadRoundTrip(t *testing.T) {
	m := New()
	for r := Reg16(0); r < 8; r++ {
		for _, v := range []uint16{0, 1, 0x00FF, 0x1234, 0xFFFF} {
			m.SetReg16(r, v)
			if got := m.Reg16(r); got != v {
				t.Errorf("reg16 %d: wrote 0x%04X, read 0x%04X", r, v, got)
			}
		}
	}
	for r := Reg8(0); r < 8; r++ {
		for _, v := range []byte{0, 1, 0x7F, 0x80, 0xFF} {
			m.SetReg8(r, v)
			if got := m.Reg8(r); got != v {
				t.Errorf("reg8 %d: wrote 0x%02X, read 0x%02X", r, v, got)
			}
		}
	}
}

// Invariant 2: for all writes write_word(a, w), subsequent read_word(a) ==
// w and the byte halves match the little-endian decomposition.
func TestWordReadWriteRoundTrip(t *testing.T) {
	m := New()
	for _, tc := range []struct {
		addr uint32
		w    uint16
	}{
		{0x100, 0x1234},
		{0x2000, 0xFFFF},
		{0x00000, 0x0000},
		{MemSize - 2, 0xBEEF}, // exercises no wrap (last full word)
	} {
		m.WriteWord(tc.addr, tc.w)
		if got := m.ReadWord(tc.addr); got != tc.w {
			t.Errorf("ReadWord(0x%X): got 0x%04X, want 0x%04X", tc.addr, got, tc.w)
		}
		if got := m.ReadByte(tc.addr); got != byte(tc.w) {
			t.Errorf("ReadByte(lo): got 0x%02X, want 0x%02X", got, byte(tc.w))
		}
		if got := m.ReadByte(tc.addr + 1); got != byte(tc.w>>8) {
			t.Errorf("ReadByte(hi): got 0x%02X, want 0x%02X", got, byte(tc.w>>8))
		}
	}
}

func TestPhysWrapsModulo1MiB(t *testing.T) {
	if got := Phys(0xFFFF, 0xFFFF); got != (uint32(0xFFFF)<<4+0xFFFF)&AddressMask {
		t.Errorf("Phys overflow not masked: got 0x%X", got)
	}
}

func TestStackWrapIsNotAFault(t *testing.T) {
	m := New()
	m.SetReg16(SP, 1) // underflow on push
	m.PushWord(0xABCD)
	if got := m.Reg16(SP); got != 0xFFFF {
		t.Errorf("SP after underflowing push: got 0x%04X, want 0xFFFF", got)
	}
}

// Invariant 4: for all byte values a,b, AL=a; BL=b; ADD AL,BL yields
// AL=(a+b)&0xFF and CF=((a+b)>>8)&1.
func TestArithFlags8AdditionInvariant(t *testing.T) {
	m := New()
	for a := 0; a < 256; a += 17 {
		for b := 0; b < 256; b += 23 {
			result := uint16(a) + uint16(b)
			m.ArithFlags8(result, byte(a), byte(b), false)
			wantCF := (a+b)>>8&1 == 1
			if m.CF() != wantCF {
				t.Fatalf("a=%d b=%d: CF=%v want %v", a, b, m.CF(), wantCF)
			}
			if got := byte(result); got != byte((a+b)&0xFF) {
				t.Fatalf("a=%d b=%d: result=0x%02X want 0x%02X", a, b, got, byte((a+b)&0xFF))
			}
		}
	}
}

func TestLogicFlagsClearsCarryAndOverflow(t *testing.T) {
	m := New()
	m.SetFlag(FlagCF, true)
	m.SetFlag(FlagOF, true)
	m.LogicFlags8(0x80)
	if m.CF() || m.OF() {
		t.Errorf("logic op left CF=%v OF=%v, want both false", m.CF(), m.OF())
	}
	if !m.SF() {
		t.Errorf("SF not set for result 0x80")
	}
	if m.AF() {
		t.Errorf("AF should be fixed to 0 after a logical op")
	}
}

func TestIncDecDoesNotTouchCarry(t *testing.T) {
	m := New()
	m.SetFlag(FlagCF, true)
	m.IncDecFlags8(uint16(0xFF)+1, 0xFF, 1, false)
	if !m.CF() {
		t.Errorf("INC/DEC must not clear a pre-existing CF")
	}
	if !m.ZF() {
		t.Errorf("0xFF+1 should set ZF (wraps to 0)")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	m := New()
	m.SetReg16(AX, 0x1234)
	m.WriteByte(0x500, 0xAB)
	m.Reset()
	if m.Reg16(AX) != 0 {
		t.Errorf("AX not cleared by Reset")
	}
	if m.ReadByte(0x500) != 0 {
		t.Errorf("memory not cleared by Reset")
	}
	if m.Seg(CS) != DefaultCS || m.Seg(DS) != DefaultDS || m.Seg(SS) != DefaultSS {
		t.Errorf("segment defaults not restored: CS=%X DS=%X SS=%X", m.Seg(CS), m.Seg(DS), m.Seg(SS))
	}
	if m.Reg16(SP) != DefaultSP {
		t.Errorf("SP not reset to 0x%X, got 0x%X", DefaultSP, m.Reg16(SP))
	}
}
