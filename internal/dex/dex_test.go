// dex_test.go - end-to-end assemble/load/run scenarios.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import (
	"bytes"
	"testing"

	"sim8086/internal/asm"
	"sim8086/internal/mrf"
)

func run(t *testing.T, src string, maxSteps int) (*Executor, *mrf.Machine) {
	t.Helper()
	prog, err := (&asm.Assembler{}).Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	x := New(m, DefaultConfig())
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	if err := x.Run(maxSteps); err != nil {
		t.Fatalf("run: %v", err)
	}
	return x, m
}

// Straight-line arithmetic, a simpler case than S1 below.
func TestScenarioArithmetic(t *testing.T) {
	_, m := run(t, "MOV AX, 5\nMOV BX, 3\nADD AX, BX\nHLT\n", 10)
	if got := m.Reg16(mrf.AX); got != 8 {
		t.Fatalf("AX = %d, want 8", got)
	}
}

// Conditional branch taken/not-taken, a simpler case than S2 below.
func TestScenarioConditionalBranch(t *testing.T) {
	src := "MOV AX, 1\n" +
		"CMP AX, 1\n" +
		"JE equal\n" +
		"MOV BX, 0\n" +
		"JMP SHORT done\n" +
		"equal: MOV BX, 1\n" +
		"done: HLT\n"
	_, m := run(t, src, 20)
	if got := m.Reg16(mrf.BX); got != 1 {
		t.Fatalf("BX = %d, want 1 (branch should have been taken)", got)
	}
}

// Loop construct using LOOP and CX, a variant of S3 below.
func TestScenarioLoopSum(t *testing.T) {
	src := "MOV CX, 5\n" +
		"MOV AX, 0\n" +
		"top: ADD AX, 1\n" +
		"LOOP top\n" +
		"HLT\n"
	_, m := run(t, src, 40)
	if got := m.Reg16(mrf.AX); got != 5 {
		t.Fatalf("AX = %d, want 5", got)
	}
	if got := m.Reg16(mrf.CX); got != 0 {
		t.Fatalf("CX = %d, want 0", got)
	}
}

// Stack discipline across CALL/RET.
func TestScenarioCallReturn(t *testing.T) {
	src := "MOV AX, 1\n" +
		"CALL addone\n" +
		"JMP SHORT fin\n" +
		"addone: INC AX\n" +
		"RET\n" +
		"fin: HLT\n"
	_, m := run(t, src, 20)
	if got := m.Reg16(mrf.AX); got != 2 {
		t.Fatalf("AX = %d, want 2", got)
	}
}

// String instruction with REP, copying bytes through memory.
func TestScenarioRepMovsb(t *testing.T) {
	prog, err := (&asm.Assembler{}).Assemble(
		"CLD\n" +
			"MOV CX, 3\n" +
			"MOV SI, 0\n" +
			"MOV DI, 0\n" +
			"REP MOVSB\n" +
			"HLT\n")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	// Seed three bytes at DS:0 for the copy to read (DS defaults to a
	// different segment than ES, so source and destination don't alias).
	m.WriteByte(mrf.Phys(m.Seg(mrf.DS), 0), 0xAA)
	m.WriteByte(mrf.Phys(m.Seg(mrf.DS), 1), 0xBB)
	m.WriteByte(mrf.Phys(m.Seg(mrf.DS), 2), 0xCC)
	x := New(m, DefaultConfig())
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	if err := x.Run(20); err != nil {
		t.Fatalf("run: %v", err)
	}
	for i, want := range []byte{0xAA, 0xBB, 0xCC} {
		got := m.ReadByte(mrf.Phys(m.Seg(mrf.ES), uint16(i)))
		if got != want {
			t.Fatalf("ES:%d = 0x%02X, want 0x%02X", i, got, want)
		}
	}
	if m.Reg16(mrf.CX) != 0 {
		t.Fatalf("CX after REP MOVSB = %d, want 0", m.Reg16(mrf.CX))
	}
}

// Divide-by-zero must surface as an explicit Fault, never a panic or a
// simulated INT 0.
func TestScenarioDivideByZeroFaults(t *testing.T) {
	prog, err := (&asm.Assembler{}).Assemble("MOV AX, 10\nMOV BL, 0\nDIV BL\n")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	x := New(m, DefaultConfig())
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	err = x.Run(10)
	f, ok := err.(*Fault)
	if !ok || f.Kind != DivideError {
		t.Fatalf("expected DivideError fault, got %v", err)
	}
	if x.State() != Faulted {
		t.Fatalf("executor state = %v, want Faulted", x.State())
	}
}

// Breakpoint stop-and-resume does not immediately retrigger on the address
// execution just resumed from.
func TestScenarioBreakpointResumeRule(t *testing.T) {
	prog, err := (&asm.Assembler{}).Assemble(
		"top: MOV AX, 1\n" +
			"INC AX\n" +
			"DEC AX\n" +
			"JMP SHORT top\n")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	x := New(m, DefaultConfig())
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	x.AddBreakpoint(0) // "top"

	if err := x.RunToBreakpoint(); err != nil {
		t.Fatalf("first RunToBreakpoint: %v", err)
	}
	if x.State() != Paused {
		t.Fatalf("state after first stop = %v, want Paused", x.State())
	}
	firstIP := m.IP()
	if firstIP != 0 {
		t.Fatalf("first breakpoint stop at IP=%d, want 0", firstIP)
	}

	// Resuming from the breakpoint address must not immediately retrigger
	// it — the loop must run all the way around before stopping again.
	if err := x.RunToBreakpoint(); err != nil {
		t.Fatalf("second RunToBreakpoint: %v", err)
	}
	if m.IP() != 0 {
		t.Fatalf("second breakpoint stop at IP=%d, want 0 (after a full loop)", m.IP())
	}
}

func TestScenarioXchgAndLea(t *testing.T) {
	_, m := run(t, "MOV AX, 1\nMOV BX, 2\nXCHG AX, BX\nLEA CX, [BX+2]\nHLT\n", 10)
	if m.Reg16(mrf.AX) != 2 {
		t.Fatalf("AX = %d, want 2 after XCHG", m.Reg16(mrf.AX))
	}
	if m.Reg16(mrf.BX) != 1 {
		t.Fatalf("BX = %d, want 1 after XCHG", m.Reg16(mrf.BX))
	}
	if m.Reg16(mrf.CX) != 3 {
		t.Fatalf("CX = %d, want 3 (LEA loads the effective address, not memory contents)", m.Reg16(mrf.CX))
	}
}

func TestScenarioDaaBcdAddition(t *testing.T) {
	// 0x19 + 0x28 in packed BCD should read as 19 + 28 = 47 (0x47), not the
	// raw binary sum 0x41.
	_, m := run(t, "MOV AL, 0x19\nADD AL, 0x28\nDAA\nHLT\n", 10)
	if got := m.Reg8(mrf.AL); got != 0x47 {
		t.Fatalf("AL = 0x%02X, want 0x47", got)
	}
}

func TestScenarioAamSplitsDigits(t *testing.T) {
	_, m := run(t, "MOV AL, 37\nAAM\nHLT\n", 10)
	if m.Reg8(mrf.AH) != 3 {
		t.Fatalf("AH = %d, want 3 (tens digit)", m.Reg8(mrf.AH))
	}
	if m.Reg8(mrf.AL) != 7 {
		t.Fatalf("AL = %d, want 7 (ones digit)", m.Reg8(mrf.AL))
	}
}

func TestFlags16BitAddCarryAndZero(t *testing.T) {
	_, m := run(t, "MOV AX, 0xFFFF\nADD AX, 1\nHLT\n", 10)
	if m.Reg16(mrf.AX) != 0 {
		t.Fatalf("AX = 0x%04X, want 0", m.Reg16(mrf.AX))
	}
	if !m.CF() {
		t.Fatalf("CF should be set on 16-bit overflow wrap")
	}
	if !m.ZF() {
		t.Fatalf("ZF should be set when result is zero")
	}
}

// The remaining tests assemble and run the literal S1-S7 testable-property
// scenarios against their exact expected values.

func TestSpecScenarioS1(t *testing.T) {
	src := "MOV AX, 10\n" +
		"MOV BX, 20\n" +
		"MOV CX, 30\n" +
		"MOV DX, 40\n" +
		"ADD AX, BX\n" +
		"ADD AX, CX\n" +
		"ADD AX, DX\n" +
		"HLT\n"
	_, m := run(t, src, 20)
	if m.Reg16(mrf.AX) != 100 {
		t.Fatalf("AX = %d, want 100", m.Reg16(mrf.AX))
	}
	if m.Reg16(mrf.BX) != 20 {
		t.Fatalf("BX = %d, want 20", m.Reg16(mrf.BX))
	}
	if m.Reg16(mrf.CX) != 30 {
		t.Fatalf("CX = %d, want 30", m.Reg16(mrf.CX))
	}
	if m.Reg16(mrf.DX) != 40 {
		t.Fatalf("DX = %d, want 40", m.Reg16(mrf.DX))
	}
	if m.ZF() {
		t.Fatalf("ZF should be clear")
	}
	if m.CF() {
		t.Fatalf("CF should be clear")
	}
}

func TestSpecScenarioS2(t *testing.T) {
	src := "MOV CX, 5\n" +
		"MOV AX, 0\n" +
		"L: ADD AX, CX\n" +
		"DEC CX\n" +
		"JNZ L\n" +
		"HLT\n"
	_, m := run(t, src, 40)
	if m.Reg16(mrf.AX) != 15 {
		t.Fatalf("AX = %d, want 15", m.Reg16(mrf.AX))
	}
	if m.Reg16(mrf.CX) != 0 {
		t.Fatalf("CX = %d, want 0", m.Reg16(mrf.CX))
	}
	if !m.ZF() {
		t.Fatalf("ZF should be set (loop exited on CX==0)")
	}
}

func TestSpecScenarioS3(t *testing.T) {
	src := "MOV CX, 5\n" +
		"MOV AX, 0\n" +
		"L: INC AX\n" +
		"LOOP L\n" +
		"HLT\n"
	_, m := run(t, src, 40)
	if m.Reg16(mrf.AX) != 5 {
		t.Fatalf("AX = %d, want 5", m.Reg16(mrf.AX))
	}
	if m.Reg16(mrf.CX) != 0 {
		t.Fatalf("CX = %d, want 0", m.Reg16(mrf.CX))
	}
}

func TestSpecScenarioS4(t *testing.T) {
	_, m := run(t, "MOV AL, 0x80\nCBW\nHLT\n", 10)
	if m.Reg16(mrf.AX) != 0xFF80 {
		t.Fatalf("AX = 0x%04X, want 0xFF80", m.Reg16(mrf.AX))
	}
}

func TestSpecScenarioS5(t *testing.T) {
	_, m := run(t, "MOV AL, 5\nMOV BL, 10\nMUL BL\nHLT\n", 10)
	if m.Reg16(mrf.AX) != 0x0032 {
		t.Fatalf("AX = 0x%04X, want 0x0032", m.Reg16(mrf.AX))
	}
	if m.CF() || m.OF() {
		t.Fatalf("CF=%v OF=%v, want both clear (AH==0)", m.CF(), m.OF())
	}

	_, m = run(t, "MOV AX, 100\nMOV BL, 3\nDIV BL\nHLT\n", 10)
	if m.Reg8(mrf.AL) != 33 {
		t.Fatalf("AL = %d, want 33", m.Reg8(mrf.AL))
	}
	if m.Reg8(mrf.AH) != 1 {
		t.Fatalf("AH = %d, want 1", m.Reg8(mrf.AH))
	}
}

func TestSpecScenarioS6(t *testing.T) {
	_, m := run(t, "MOV AL, 0x81\nROL AL, 1\nHLT\n", 10)
	if m.Reg8(mrf.AL) != 0x03 {
		t.Fatalf("AL = 0x%02X, want 0x03", m.Reg8(mrf.AL))
	}
	if !m.CF() {
		t.Fatalf("CF should be set")
	}

	_, m = run(t, "MOV AL, 0x81\nROR AL, 1\nHLT\n", 10)
	if m.Reg8(mrf.AL) != 0xC0 {
		t.Fatalf("AL = 0x%02X, want 0xC0", m.Reg8(mrf.AL))
	}
	if !m.CF() {
		t.Fatalf("CF should be set")
	}
}

// S7: the DOS INT 21h stub's AH=09h string-out and AH=4Ch terminate, the
// single most characteristic DOS-8086 idiom this simulator runs.
func TestSpecScenarioS7(t *testing.T) {
	src := ".DATA\n" +
		"msg DB 'Hi$'\n" +
		".CODE\n" +
		"MOV AX, @DATA\n" +
		"MOV DS, AX\n" +
		"MOV AH, 9\n" +
		"MOV DX, OFFSET msg\n" +
		"INT 21h\n" +
		"MOV AX, 0x4C00\n" +
		"INT 21h\n"
	prog, err := (&asm.Assembler{}).Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	x := New(m, DefaultConfig())
	var out bytes.Buffer
	WireDOS(x, &out)
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	if err := x.Run(50); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "Hi" {
		t.Fatalf("stdout = %q, want %q", got, "Hi")
	}
	if x.State() != Halted {
		t.Fatalf("state = %v, want Halted", x.State())
	}
	if got := m.Reg8(mrf.AL); got != 0 {
		t.Fatalf("AL = %d, want 0", got)
	}
}
