// snapshot.go - shared register/flag printing for run and debug.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"

	"sim8086/internal/dex"
	"sim8086/internal/mrf"
)

func printSnapshot(x *dex.Executor) {
	m := x.Machine()
	fmt.Printf("state: %s\n", x.State())
	if f := x.LastFault(); f != nil {
		fmt.Printf("fault: %s\n", f.Error())
	}
	fmt.Printf("AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X BP=%04X SI=%04X DI=%04X\n",
		m.Reg16(mrf.AX), m.Reg16(mrf.BX), m.Reg16(mrf.CX), m.Reg16(mrf.DX),
		m.Reg16(mrf.SP), m.Reg16(mrf.BP), m.Reg16(mrf.SI), m.Reg16(mrf.DI))
	fmt.Printf("CS=%04X DS=%04X ES=%04X SS=%04X IP=%04X\n",
		m.Seg(mrf.CS), m.Seg(mrf.DS), m.Seg(mrf.ES), m.Seg(mrf.SS), m.IP())
	fmt.Printf("flags: %s\n", flagString(m))
}

func flagString(m *mrf.Machine) string {
	bit := func(name string, set bool) string {
		if set {
			return name
		}
		return "-"
	}
	return fmt.Sprintf("%s %s %s %s %s %s %s",
		bit("CF", m.CF()), bit("ZF", m.ZF()), bit("SF", m.SF()),
		bit("OF", m.OF()), bit("PF", m.PF()), bit("AF", m.AF()), bit("DF", m.DF()))
}
