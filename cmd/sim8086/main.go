// main.go - sim8086 CLI root command.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sim8086",
		Short: "Assemble, run, and debug 8086 real-mode programs",
	}

	rootCmd.AddCommand(newAsmCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newDebugCmd())
	rootCmd.AddCommand(newBatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
