// asm_cmd.go - `sim8086 asm` subcommand.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sim8086/internal/asm"
)

func newAsmCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "asm <file.asm>",
		Short: "Assemble a source file and write the raw binary image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			prog, err := (&asm.Assembler{}).Assemble(string(src))
			if err != nil {
				if aerr, ok := err.(*asm.Error); ok {
					return fmt.Errorf("%s: %s", args[0], aerr.Error())
				}
				return err
			}

			fmt.Printf("code: %d bytes, data: %d bytes, entry: 0x%04X\n",
				len(prog.Code), len(prog.Data), prog.EntryOffset)

			if outPath != "" {
				image := append(append([]byte{}, prog.Code...), prog.Data...)
				if err := os.WriteFile(outPath, image, 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", outPath, err)
				}
				fmt.Printf("written to %s\n", outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the assembled image to this path")
	return cmd
}

func assembleFile(path string) (*asm.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	prog, err := (&asm.Assembler{}).Assemble(string(src))
	if err != nil {
		if aerr, ok := err.(*asm.Error); ok {
			return nil, fmt.Errorf("%s: %s", path, aerr.Error())
		}
		return nil, err
	}
	return prog, nil
}
