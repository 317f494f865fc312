// debug_cmd.go - `sim8086 debug` subcommand: a single-keystroke REPL.
//
// Raw-mode keystroke reading is grounded on the teacher's TerminalHost
// (terminal_host.go), which puts stdin in raw mode via golang.org/x/term
// for a very different purpose (feeding a virtual terminal MMIO device).
// Here the same MakeRaw/Restore discipline lets step/continue/quit react
// to a single keypress without waiting on Enter.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sim8086/internal/dex"
	"sim8086/internal/mrf"
	"sim8086/internal/script"
)

func newDebugCmd() *cobra.Command {
	var breakIfs []string

	cmd := &cobra.Command{
		Use:   "debug <file.asm>",
		Short: "Interactive single-step debugger (s=step, c=continue, q=quit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := assembleFile(args[0])
			if err != nil {
				return err
			}
			m := mrf.New()
			x := dex.New(m, dex.DefaultConfig())
			dex.WireDOS(x, os.Stdout)
			x.Load(prog.Code, prog.Data, prog.EntryOffset)

			for _, spec := range breakIfs {
				idx := strings.Index(spec, ":")
				if idx < 0 {
					return fmt.Errorf("invalid --break-if %q: expected ADDR:LUA_EXPR", spec)
				}
				addr, err := strconv.ParseUint(spec[:idx], 0, 16)
				if err != nil {
					return fmt.Errorf("invalid --break-if address in %q: %w", spec, err)
				}
				cond, err := script.Compile(spec[idx+1:])
				if err != nil {
					return fmt.Errorf("invalid --break-if expression in %q: %w", spec, err)
				}
				x.AddConditionalBreakpoint(uint16(addr), dex.ScriptBreakCondition(cond))
			}

			return runDebugREPL(x)
		},
	}
	cmd.Flags().StringArrayVar(&breakIfs, "break-if", nil,
		"conditional breakpoint as ADDR:LUA_EXPR, e.g. 0x10:\"reg('AX') == 0\" (repeatable)")
	return cmd
}

func runDebugREPL(x *dex.Executor) error {
	fmt.Println("sim8086 debugger: s=step, c=continue, r=registers, q=quit")
	printSnapshot(x)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("debug: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	for {
		if x.State() == dex.Halted || x.State() == dex.Faulted {
			term.Restore(fd, oldState)
			printSnapshot(x)
			return nil
		}

		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return nil
		}
		switch buf[0] {
		case 's', 'S':
			if err := x.Step(); err != nil {
				term.Restore(fd, oldState)
				printSnapshot(x)
				return nil
			}
			term.Restore(fd, oldState)
			printSnapshot(x)
			term.MakeRaw(fd)
		case 'c', 'C':
			err := x.RunToBreakpoint()
			term.Restore(fd, oldState)
			printSnapshot(x)
			if err != nil {
				return nil
			}
			if x.State() == dex.Paused {
				// Stopped at a breakpoint, not Halted/Faulted: stay in the REPL.
				term.MakeRaw(fd)
				continue
			}
			return nil
		case 'r', 'R':
			term.Restore(fd, oldState)
			printSnapshot(x)
			term.MakeRaw(fd)
		case 'q', 'Q':
			term.Restore(fd, oldState)
			fmt.Println("\nquit")
			return nil
		}
	}
}
