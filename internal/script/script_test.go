// script_test.go
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package script

import "testing"

type fakeView struct {
	regs map[string]int64
	mem  map[uint32]byte
}

func (f fakeView) Register(name string) (int64, bool) {
	v, ok := f.regs[name]
	return v, ok
}

func (f fakeView) Memory(addr uint32) (byte, bool) {
	v, ok := f.mem[addr]
	return v, ok
}

func TestConditionRegisterComparison(t *testing.T) {
	c, err := Compile("return reg('AX') == 5")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	view := fakeView{regs: map[string]int64{"AX": 5}}
	ok, err := c.Eval(view, 0)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !ok {
		t.Fatalf("expected condition to hold")
	}

	view2 := fakeView{regs: map[string]int64{"AX": 6}}
	ok, err = c.Eval(view2, 0)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if ok {
		t.Fatalf("expected condition to not hold")
	}
}

func TestConditionHitCountAndMemory(t *testing.T) {
	c, err := Compile("return mem(0x100) == 0xAA and hits > 2")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	view := fakeView{mem: map[uint32]byte{0x100: 0xAA}}

	ok, err := c.Eval(view, 1)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if ok {
		t.Fatalf("expected false when hits <= 2")
	}

	ok, err = c.Eval(view, 3)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !ok {
		t.Fatalf("expected true when hits > 2 and memory matches")
	}
}

func TestConditionUnknownRegisterErrors(t *testing.T) {
	c, err := Compile("return reg('ZZ') == 0")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, err = c.Eval(fakeView{}, 0)
	if err == nil {
		t.Fatalf("expected an error for an unknown register")
	}
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile("return (")
	if err == nil {
		t.Fatalf("expected a compile error for invalid syntax")
	}
}
