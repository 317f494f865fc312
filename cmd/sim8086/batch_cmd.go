// batch_cmd.go - `sim8086 batch` subcommand: runs every *.asm file in a
// directory concurrently, one *mrf.Machine per program.
//
// (c) 2024-2026 Zayn Otley - GPLv3 or later

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sim8086/internal/dex"
	"sim8086/internal/mrf"
)

type batchResult struct {
	path  string
	state string
	err   error
}

func newBatchCmd() *cobra.Command {
	var maxSteps int

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Assemble and run every *.asm file in a directory concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := filepath.Glob(filepath.Join(args[0], "*.asm"))
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no .asm files found in %s", args[0])
			}

			results := make([]batchResult, len(files))
			var mu sync.Mutex
			var g errgroup.Group
			for i, path := range files {
				i, path := i, path
				g.Go(func() error {
					res := runBatchFile(path, maxSteps)
					mu.Lock()
					results[i] = res
					mu.Unlock()
					return nil
				})
			}
			_ = g.Wait() // each runBatchFile reports its own error in the result slice

			sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

			failed := 0
			for _, r := range results {
				if r.err != nil {
					failed++
					fmt.Printf("FAIL %s: %v\n", r.path, r.err)
					continue
				}
				fmt.Printf("OK   %s: %s\n", r.path, r.state)
			}
			fmt.Printf("\n%d total, %d ok, %d failed\n", len(results), len(results)-failed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max", 1_000_000, "maximum instructions to execute per program")
	return cmd
}

func runBatchFile(path string, maxSteps int) batchResult {
	prog, err := assembleFile(path)
	if err != nil {
		return batchResult{path: path, err: err}
	}
	m := mrf.New()
	x := dex.New(m, dex.DefaultConfig())
	dex.WireDOS(x, os.Stdout)
	x.Load(prog.Code, prog.Data, prog.EntryOffset)
	if err := x.Run(maxSteps); err != nil {
		if _, ok := err.(*dex.Fault); !ok {
			return batchResult{path: path, err: err}
		}
		return batchResult{path: path, state: fmt.Sprintf("%s (%v)", x.State(), err)}
	}
	return batchResult{path: path, state: x.State().String()}
}
