// program.go - Assembler: two-pass source-to-bytes assembly producing a
// Program ready to load into an mrf.Machine.
//
// Pass 1 walks the source computing each instruction's encoded length (via
// the same encode* functions pass 2 uses, fed a dummy resolver) and
// recording every label's offset. Pass 2 walks the source again with the
// completed symbol table and emits real bytes. Using one encode function
// for both passes is what keeps the two passes from ever disagreeing about
// an instruction's length.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package asm

import (
	"strings"
)

// Program is the output of a successful Assemble: a code image and a data
// image, ready to be copied into an mrf.Machine at CS:0 and DS:0
// respectively, plus the resolved symbol table and entry offset.
type Program struct {
	Code        []byte
	Data        []byte
	Symbols     map[string]uint16
	EntryOffset uint16
}

// segKind tracks which image a line's bytes belong to.
type segKind int

const (
	segCode segKind = iota
	segData
)

// Assembler holds no state of its own — Assemble is safe to call
// repeatedly and concurrently on separate Assembler values (and in fact on
// the same zero-value one, since there is no mutable field).
type Assembler struct{}

type asmState struct {
	lines []*rawLine

	seg         segKind
	codePC      uint16
	dataPC      uint16
	entryLabel  string
	entrySet    bool

	labels  map[string]uint16 // label -> offset within its segment
	labelSeg map[string]segKind
	equs    map[string]int64

	code []byte
	data []byte
}

// Assemble runs both passes over src and returns a fully linked Program, or
// the first AssemblyError encountered.
func (a *Assembler) Assemble(src string) (*Program, error) {
	rawSrc := strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.Split(rawSrc, "\n")

	st := &asmState{
		labels:   make(map[string]uint16),
		labelSeg: make(map[string]segKind),
		equs:     make(map[string]int64),
	}

	for i, l := range lines {
		rl, err := splitLine(l, i+1)
		if err != nil {
			return nil, err
		}
		if rl == nil {
			continue
		}
		st.lines = append(st.lines, rl)
	}

	if err := st.pass1(); err != nil {
		return nil, err
	}
	st.seg = segCode
	st.codePC, st.dataPC = 0, 0
	if err := st.pass2(); err != nil {
		return nil, err
	}

	entry := uint16(0)
	if st.entrySet {
		off, ok := st.labels[strings.ToUpper(st.entryLabel)]
		if !ok {
			return nil, errf(0, UndefinedLabel, "END references undefined label %q", st.entryLabel)
		}
		entry = off
	}

	return &Program{
		Code:        st.code,
		Data:        st.data,
		Symbols:     st.labels,
		EntryOffset: entry,
	}, nil
}

// pass1 records label offsets and EQU constants, and totals each segment's
// size, using dummyResolver so label-length dependencies can never arise.
func (st *asmState) pass1() error {
	st.seg = segCode
	for _, rl := range st.lines {
		if rl.label != "" && rl.mnemonic != "SEGMENT" && rl.mnemonic != "ENDS" {
			key := strings.ToUpper(rl.label)
			if _, exists := st.labels[key]; exists {
				return errf(rl.lineNo, DuplicateLabel, "label %q already defined", rl.label)
			}
			if rl.mnemonic == "EQU" {
				n, ok := parseNumeric(strings.TrimSpace(rl.operands))
				if !ok {
					return errf(rl.lineNo, BadNumeric, "EQU requires a numeric constant, got %q", rl.operands)
				}
				st.equs[key] = n
			} else {
				pc := st.codePC
				if st.seg == segData {
					pc = st.dataPC
				}
				st.labels[key] = pc
				st.labelSeg[key] = st.seg
			}
		}
		if rl.mnemonic == "" || rl.mnemonic == "EQU" {
			continue
		}
		if err := st.handleDirectiveOrSize(rl, false); err != nil {
			return err
		}
	}
	return nil
}

func (st *asmState) pass2() error {
	for _, rl := range st.lines {
		if rl.mnemonic == "" || rl.mnemonic == "EQU" {
			continue
		}
		if err := st.handleDirectiveOrSize(rl, true); err != nil {
			return err
		}
	}
	return nil
}

func (st *asmState) resolve(label string) (uint16, bool) {
	key := strings.ToUpper(label)
	if v, ok := st.equs[key]; ok {
		return uint16(v), true
	}
	v, ok := st.labels[key]
	return v, ok
}

// handleDirectiveOrSize advances the current segment's PC (pass 1) or
// emits real bytes (pass 2) for one instruction or directive line.
func (st *asmState) handleDirectiveOrSize(rl *rawLine, emit bool) error {
	switch rl.mnemonic {
	case "SEGMENT":
		if strings.Contains(strings.ToUpper(rl.operands+" "+rl.label), "DATA") {
			st.seg = segData
		} else {
			st.seg = segCode
		}
		return nil
	case "ENDS", "PROC", "ENDP", "ASSUME", "TITLE", ".MODEL", ".STACK", ".CODE", ".DATA":
		if rl.mnemonic == ".DATA" {
			st.seg = segData
		}
		if rl.mnemonic == ".CODE" {
			st.seg = segCode
		}
		return nil
	case "ORG":
		n, ok := parseNumeric(strings.TrimSpace(rl.operands))
		if !ok {
			return errf(rl.lineNo, BadNumeric, "ORG requires a numeric offset")
		}
		if st.seg == segData {
			st.dataPC = uint16(n)
		} else {
			st.codePC = uint16(n)
		}
		return nil
	case "END":
		if strings.TrimSpace(rl.operands) != "" {
			st.entryLabel = strings.TrimSpace(rl.operands)
			st.entrySet = true
		}
		return nil
	case "DB":
		return st.emitDB(rl, emit)
	case "DW":
		return st.emitDW(rl, emit)
	}

	res := dummyResolver
	if emit {
		res = st.resolve
	}
	bytes, err := encodeInstruction(rl, res, st.codePC, emit)
	if err != nil {
		return err
	}
	if emit {
		st.code = append(st.code, bytes...)
	}
	st.codePC += uint16(len(bytes))
	return nil
}

// parseDup recognizes the "N DUP(expr)" data-definition form. It reports
// ok=false for anything else, including a plain "DUP" identifier with no
// count, so callers can fall through to their normal single-item parsing.
func parseDup(it string) (count int64, expr string, ok bool) {
	up := strings.ToUpper(it)
	idx := strings.Index(up, "DUP")
	if idx <= 0 {
		return 0, "", false
	}
	n, ok := parseNumeric(strings.TrimSpace(it[:idx]))
	if !ok {
		return 0, "", false
	}
	rest := strings.TrimSpace(it[idx+len("DUP"):])
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return 0, "", false
	}
	return n, strings.TrimSpace(rest[1 : len(rest)-1]), true
}

// dbItemBytes parses a single DB item (string literal, numeric, or char
// literal) into its emitted bytes.
func (st *asmState) dbItemBytes(it string, rl *rawLine) ([]byte, error) {
	it = strings.TrimSpace(it)
	if len(it) >= 2 && (it[0] == '\'' || it[0] == '"') && it[len(it)-1] == it[0] {
		return []byte(it[1 : len(it)-1]), nil
	}
	n, ok := parseNumeric(it)
	if !ok {
		if n2, ok2 := parseCharLiteral(it); ok2 {
			n = n2
		} else {
			return nil, errf(rl.lineNo, BadNumeric, "DB: cannot parse %q", it)
		}
	}
	return []byte{byte(n)}, nil
}

func (st *asmState) emitDB(rl *rawLine, emit bool) error {
	items := splitOperands(rl.operands)
	var out []byte
	for _, it := range items {
		it = strings.TrimSpace(it)
		if cnt, expr, ok := parseDup(it); ok {
			b, err := st.dbItemBytes(expr, rl)
			if err != nil {
				return err
			}
			for i := int64(0); i < cnt; i++ {
				out = append(out, b...)
			}
			continue
		}
		b, err := st.dbItemBytes(it, rl)
		if err != nil {
			return err
		}
		out = append(out, b...)
	}
	if emit {
		st.data = append(st.data, out...)
	}
	st.dataPC += uint16(len(out))
	return nil
}

// dwItemBytes parses a single DW item (numeric or resolvable label) into
// its little-endian word bytes. During pass 1 (emit=false) an unresolved
// label is treated as 0 — a word is always 2 bytes regardless of the
// label's eventual value, so size never depends on resolution.
func (st *asmState) dwItemBytes(it string, rl *rawLine, emit bool) ([]byte, error) {
	it = strings.TrimSpace(it)
	n, ok := parseNumeric(it)
	if !ok {
		if off, ok2 := st.resolve(it); emit && ok2 {
			n = int64(off)
		} else if !emit {
			n = 0
		} else {
			return nil, errf(rl.lineNo, UndefinedLabel, "DW: cannot resolve %q", it)
		}
	}
	return []byte{byte(n), byte(n >> 8)}, nil
}

func (st *asmState) emitDW(rl *rawLine, emit bool) error {
	items := splitOperands(rl.operands)
	var out []byte
	for _, it := range items {
		it = strings.TrimSpace(it)
		if cnt, expr, ok := parseDup(it); ok {
			b, err := st.dwItemBytes(expr, rl, emit)
			if err != nil {
				return err
			}
			for i := int64(0); i < cnt; i++ {
				out = append(out, b...)
			}
			continue
		}
		b, err := st.dwItemBytes(it, rl, emit)
		if err != nil {
			return err
		}
		out = append(out, b...)
	}
	if emit {
		st.data = append(st.data, out...)
	}
	st.dataPC += uint16(len(out))
	return nil
}
