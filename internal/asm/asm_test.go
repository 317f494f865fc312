// asm_test.go - assembler unit tests
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package asm

import "testing"

func assemble(t *testing.T, src string) *Program {
	t.Helper()
	p, err := (&Assembler{}).Assemble(src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	return p
}

func TestAssembleMovRegImm(t *testing.T) {
	p := assemble(t, "MOV AX, 0x1234\n")
	want := []byte{0xB8, 0x34, 0x12}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleMovRegReg(t *testing.T) {
	p := assemble(t, "MOV BX, AX\n")
	want := []byte{0x8B, 0xD8}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleAddSubImmForms(t *testing.T) {
	p := assemble(t, "ADD AX, 1\nSUB AX, 1000\n")
	// ADD AX,1 fits in the signed-8 imm8 form (0x83 /0); SUB AX,1000 needs
	// the full imm16 form (0x81 /5).
	want := []byte{0x83, 0xC0, 0x01, 0x81, 0xE8, 0xE8, 0x03}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleLabelsAndJmp(t *testing.T) {
	src := "start: MOV AX, 1\n" +
		"JMP SHORT start\n"
	p := assemble(t, src)
	if off, ok := p.Symbols["START"]; !ok || off != 0 {
		t.Fatalf("expected START at offset 0, got %d ok=%v", off, ok)
	}
	// MOV AX,1 is 3 bytes (0xB8 lo hi); JMP SHORT start -> rel8 = 0 - 5 = -5.
	want := []byte{0xB8, 0x01, 0x00, 0xEB, 0xFB}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleForwardJump(t *testing.T) {
	src := "JMP SHORT done\n" +
		"NOP\n" +
		"done: HLT\n"
	p := assemble(t, src)
	// JMP SHORT done: rel8 = target(3) - (0+2) = 1
	want := []byte{0xEB, 0x01, 0x90, 0xF4}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleDataSegmentAndOffset(t *testing.T) {
	src := "CODE SEGMENT\n" +
		"MOV BX, OFFSET buf\n" +
		"CODE ENDS\n" +
		"DATA SEGMENT\n" +
		"buf DB 1, 2, 3\n" +
		"DATA ENDS\n"
	p := assemble(t, src)
	if string(p.Data) != "\x01\x02\x03" {
		t.Fatalf("data segment: got % X", p.Data)
	}
	if off, ok := p.Symbols["BUF"]; !ok || off != 0 {
		t.Fatalf("expected BUF at offset 0 in data segment, got %d ok=%v", off, ok)
	}
}

func TestAssembleEquConstant(t *testing.T) {
	p := assemble(t, "COUNT EQU 10\nMOV CX, COUNT\n")
	want := []byte{0xB9, 0x0A, 0x00}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleUnknownMnemonic(t *testing.T) {
	_, err := (&Assembler{}).Assemble("FROB AX, BX\n")
	ae, ok := err.(*Error)
	if !ok || ae.Kind != UnknownMnemonic {
		t.Fatalf("expected UnknownMnemonic error, got %v", err)
	}
}

func TestAssembleDuplicateLabel(t *testing.T) {
	_, err := (&Assembler{}).Assemble("L1: NOP\nL1: NOP\n")
	ae, ok := err.(*Error)
	if !ok || ae.Kind != DuplicateLabel {
		t.Fatalf("expected DuplicateLabel error, got %v", err)
	}
}

func TestAssembleUndefinedLabel(t *testing.T) {
	_, err := (&Assembler{}).Assemble("JMP nowhere\n")
	ae, ok := err.(*Error)
	if !ok || ae.Kind != UndefinedLabel {
		t.Fatalf("expected UndefinedLabel error, got %v", err)
	}
}

func TestAssembleJumpOutOfShortRange(t *testing.T) {
	var src string
	src += "start: NOP\n"
	for i := 0; i < 200; i++ {
		src += "NOP\n"
	}
	src += "JMP SHORT start\n"
	_, err := (&Assembler{}).Assemble(src)
	ae, ok := err.(*Error)
	if !ok || ae.Kind != JumpOutOfRange {
		t.Fatalf("expected JumpOutOfRange error, got %v", err)
	}
}

func TestAssembleMemoryOperand(t *testing.T) {
	p := assemble(t, "MOV AX, [BX+SI]\n")
	want := []byte{0x8B, 0x00}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleBarePointerForcesDisp8(t *testing.T) {
	p := assemble(t, "MOV AX, [BP]\n")
	want := []byte{0x8B, 0x46, 0x00}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	p := assemble(t, "MOV AX, 0x1234\nNOP\nHLT\n")
	off := 0
	var got []string
	for off < len(p.Code) {
		text, n := Disassemble(p.Code, off)
		if n == 0 {
			t.Fatalf("Disassemble made no progress at offset %d", off)
		}
		got = append(got, text)
		off += n
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 decoded instructions, got %d: %v", len(got), got)
	}
}

func TestAssembleXchgShortForm(t *testing.T) {
	p := assemble(t, "XCHG AX, BX\n")
	want := []byte{0x93}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleXchgGeneralForm(t *testing.T) {
	p := assemble(t, "XCHG BX, CX\n")
	want := []byte{0x87, 0xD9}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleLea(t *testing.T) {
	p := assemble(t, "LEA BX, [BX+SI]\n")
	want := []byte{0x8D, 0x18}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}

func TestAssembleBCDAdjustOps(t *testing.T) {
	p := assemble(t, "DAA\nDAS\nAAA\nAAS\nAAM\nAAD\nXLAT\n")
	want := []byte{0x27, 0x2F, 0x37, 0x3F, 0xD4, 0x0A, 0xD5, 0x0A, 0xD7}
	if string(p.Code) != string(want) {
		t.Fatalf("got % X, want % X", p.Code, want)
	}
}
