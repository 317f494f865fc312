// scriptcond_test.go
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import (
	"fmt"
	"testing"

	"sim8086/internal/asm"
	"sim8086/internal/mrf"
	"sim8086/internal/script"
)

func TestScriptBreakConditionStopsOnExpression(t *testing.T) {
	prog, err := (&asm.Assembler{}).Assemble("top: INC CX\nJMP SHORT top\n")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	x := New(m, DefaultConfig())
	x.Load(prog.Code, prog.Data, prog.EntryOffset)

	cond, err := script.Compile("return reg('CX') == 3")
	if err != nil {
		t.Fatalf("script.Compile: %v", err)
	}
	x.AddConditionalBreakpoint(0, ScriptBreakCondition(cond))

	if err := x.RunToBreakpoint(); err != nil {
		t.Fatalf("RunToBreakpoint: %v", err)
	}
	if got := m.Reg16(mrf.CX); got != 3 {
		t.Fatalf("CX = %d, want 3", got)
	}
	if x.State() != Paused {
		t.Fatalf("state = %v, want Paused", x.State())
	}
}

func TestScriptBreakConditionReadsMemoryByPhysicalAddress(t *testing.T) {
	prog, err := (&asm.Assembler{}).Assemble("MOV AL, 0xAA\nMOV [100], AL\nHLT\n")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	m := mrf.New()
	x := New(m, DefaultConfig())
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	if err := x.Run(10); err != nil {
		t.Fatalf("run: %v", err)
	}

	phys := mrf.Phys(m.Seg(mrf.DS), 100)
	cond, err := script.Compile(fmt.Sprintf("return mem(%d) == 0xAA", phys))
	if err != nil {
		t.Fatalf("script.Compile: %v", err)
	}
	ok, err := cond.Eval(machineRegisterView{m: m}, 0)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !ok {
		t.Fatalf("expected the stored byte to be visible at its physical address")
	}
}
