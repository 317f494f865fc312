// scriptcond.go - bridges a *script.Condition into a dex.BreakCondition, so
// conditional breakpoints can be expressed as a Lua expression instead of a
// hard-coded Go closure.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import (
	"sim8086/internal/mrf"
	"sim8086/internal/script"
)

// machineRegisterView exposes an *mrf.Machine's registers, segments, flags,
// and memory as a script.RegisterView. Memory reads go through
// ReadByteQuiet so a condition's mem() calls never count as a simulated
// program memory access.
type machineRegisterView struct {
	m *mrf.Machine
}

var scriptReg16Names = map[string]mrf.Reg16{
	"AX": mrf.AX, "CX": mrf.CX, "DX": mrf.DX, "BX": mrf.BX,
	"SP": mrf.SP, "BP": mrf.BP, "SI": mrf.SI, "DI": mrf.DI,
}

var scriptReg8Names = map[string]mrf.Reg8{
	"AL": mrf.AL, "CL": mrf.CL, "DL": mrf.DL, "BL": mrf.BL,
	"AH": mrf.AH, "CH": mrf.CH, "DH": mrf.DH, "BH": mrf.BH,
}

var scriptSegNames = map[string]mrf.SegReg{
	"ES": mrf.ES, "CS": mrf.CS, "SS": mrf.SS, "DS": mrf.DS,
}

var scriptFlagNames = map[string]uint16{
	"CF": mrf.FlagCF, "PF": mrf.FlagPF, "AF": mrf.FlagAF, "ZF": mrf.FlagZF,
	"SF": mrf.FlagSF, "TF": mrf.FlagTF, "IF": mrf.FlagIF, "DF": mrf.FlagDF,
	"OF": mrf.FlagOF,
}

func (v machineRegisterView) Register(name string) (int64, bool) {
	if r, ok := scriptReg16Names[name]; ok {
		return int64(v.m.Reg16(r)), true
	}
	if r, ok := scriptReg8Names[name]; ok {
		return int64(v.m.Reg8(r)), true
	}
	if r, ok := scriptSegNames[name]; ok {
		return int64(v.m.Seg(r)), true
	}
	if bit, ok := scriptFlagNames[name]; ok {
		if v.m.Flag(bit) {
			return 1, true
		}
		return 0, true
	}
	if name == "IP" {
		return int64(v.m.IP()), true
	}
	return 0, false
}

func (v machineRegisterView) Memory(addr uint32) (byte, bool) {
	return v.m.ReadByteQuiet(addr & mrf.AddressMask), true
}

// ScriptBreakCondition adapts a compiled Lua condition into a
// BreakCondition, evaluating it against the Executor's own Machine each
// time its breakpoint address is reached.
func ScriptBreakCondition(c *script.Condition) BreakCondition {
	return func(x *Executor, hitCount uint64) (bool, error) {
		return c.Eval(machineRegisterView{m: x.m}, hitCount)
	}
}
