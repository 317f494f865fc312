// run_cmd.go - `sim8086 run` subcommand.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"sim8086/internal/dex"
	"sim8086/internal/mrf"
)

func newRunCmd() *cobra.Command {
	var maxSteps int
	var breakAddrs []string

	cmd := &cobra.Command{
		Use:   "run <file.asm>",
		Short: "Assemble and run a program to completion, fault, or breakpoint",
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

			for _, a := range breakAddrs {
				addr, err := strconv.ParseUint(a, 0, 16)
				if err != nil {
					return fmt.Errorf("invalid --break address %q: %w", a, err)
				}
				x.AddBreakpoint(uint16(addr))
			}

			var runErr error
			if len(breakAddrs) > 0 {
				runErr = x.RunToBreakpoint()
			} else {
				runErr = x.Run(maxSteps)
			}
			printSnapshot(x)
			if runErr != nil {
				if _, ok := runErr.(*dex.Fault); ok {
					return nil // fault state is already reflected in the snapshot above
				}
				return runErr
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max", 1_000_000, "maximum instructions to execute (0 = unbounded); not applied when --break is given")
	cmd.Flags().StringArrayVar(&breakAddrs, "break", nil, "stop at this CS-relative offset (repeatable)")
	return cmd
}
