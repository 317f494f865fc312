// dos.go - a minimal DOS INT 21h service stub: AH=02h (char out), AH=09h
// ($-terminated string out), AH=4Ch (terminate with exit code). This is
// the single most characteristic DOS-8086 idiom a small program written
// for this simulator will use, and is DEX's mandatory interrupt-service
// minimum.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package dex

import (
	"io"

	"sim8086/internal/mrf"
)

// WireDOS registers an INT 21h handler on x implementing AH=02h/09h/4Ch
// against out. It's a reusable component, not CLI glue: any host embedding
// Executor can call this to get the same DOS surface `sim8086 run` does.
func WireDOS(x *Executor, out io.Writer) {
	x.SetInterruptHandler(0x21, func(x *Executor) error {
		switch x.m.Reg8(mrf.AH) {
		case 0x02:
			return dosCharOut(x, out)
		case 0x09:
			return dosStringOut(x, out)
		case 0x4C:
			x.exitCode = x.m.Reg8(mrf.AL)
			x.state = Halted
			return nil
		}
		if x.cfg.FaultOnUnhandledInt {
			return x.faultf(UnhandledInterrupt, "INT 21h AH=0x%02X has no DOS handler", x.m.Reg8(mrf.AH))
		}
		return nil
	})
}

// dosCharOut writes the character in DL, AH=02h's argument register.
func dosCharOut(x *Executor, out io.Writer) error {
	c := x.m.Reg8(mrf.DL)
	if _, err := out.Write([]byte{c}); err != nil {
		return x.faultf(IoError, "INT 21h AH=02h: %v", err)
	}
	return nil
}

// dosStringOut writes the `$`-terminated string at DS:DX, the classic
// MASM "print this" idiom (MOV DX, OFFSET msg; MOV AH, 9; INT 21h). It
// reads via ReadByteQuiet since walking the string isn't a program memory
// access the Observer should count.
func dosStringOut(x *Executor, out io.Writer) error {
	seg := x.m.Seg(mrf.DS)
	addr := x.m.Reg16(mrf.DX)
	var buf []byte
	for {
		c := x.m.ReadByteQuiet(mrf.Phys(seg, addr))
		if c == '$' {
			break
		}
		buf = append(buf, c)
		addr++
	}
	if _, err := out.Write(buf); err != nil {
		return x.faultf(IoError, "INT 21h AH=09h: %v", err)
	}
	return nil
}
