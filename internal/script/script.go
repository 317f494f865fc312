// script.go - Lua-backed breakpoint conditions, generalising the teacher's
// register/memory/hitcount BreakpointCondition (debug_conditions.go) from a
// fixed `lhs op value` triple into an arbitrary boolean expression.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package script

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

// RegisterView is the narrow read-only accessor a compiled Condition sees.
// It is exposed into the Lua global table as reg(name), mem(addr), and
// hits, mirroring the teacher's CondSourceRegister/CondSourceMemory/
// CondSourceHitCount triple but as callables rather than an enum tag.
type RegisterView interface {
	Register(name string) (int64, bool)
	Memory(addr uint32) (byte, bool)
}

// Condition is a compiled Lua boolean expression, usable as a dex.BreakCondition
// via a small adapter closure at the wiring layer.
type Condition struct {
	src   string
	proto *lua.FunctionProto
}

// Compile parses and compiles a Lua expression/chunk once so repeated Eval
// calls only pay for execution, not parsing. The chunk must end by
// returning a boolean, e.g. "return reg('AX') == 0 and hits > 2".
func Compile(src string) (*Condition, error) {
	chunk, err := parse.Parse(strings.NewReader(src), "<condition>")
	if err != nil {
		return nil, fmt.Errorf("script: parse %q: %w", src, err)
	}
	proto, err := lua.Compile(chunk, "<condition>")
	if err != nil {
		return nil, fmt.Errorf("script: compile %q: %w", src, err)
	}
	return &Condition{src: src, proto: proto}, nil
}

func (c *Condition) String() string { return c.src }

// Eval runs the compiled chunk in a fresh Lua state against the given
// RegisterView and hit count, expecting a boolean return value. A fresh
// state per Eval keeps conditions free of accidental cross-call state,
// matching the teacher's stateless evaluateConditionWithHitCount.
func (c *Condition) Eval(regs RegisterView, hitCount uint64) (bool, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	L.SetGlobal("reg", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		v, ok := regs.Register(name)
		if !ok {
			L.RaiseError("unknown register %q", name)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetGlobal("mem", L.NewFunction(func(L *lua.LState) int {
		addr := L.CheckInt64(1)
		v, ok := regs.Memory(uint32(addr))
		if !ok {
			L.RaiseError("memory read out of range: %d", addr)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}))
	L.SetGlobal("hits", lua.LNumber(hitCount))

	fn := L.NewFunctionFromProto(c.proto)
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return false, fmt.Errorf("script: eval %q: %w", c.src, err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	return lua.LVAsBool(ret), nil
}
