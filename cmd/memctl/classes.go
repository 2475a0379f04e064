package main

import (
	"fmt"

	"github.com/memkit/memkit/mempool"
	"github.com/spf13/cobra"
)

var classBytes int

func init() {
	cmd := newClassesCmd()
	cmd.Flags().IntVar(&classBytes, "bytes", 0, "Show the class serving this byte count")
	rootCmd.AddCommand(cmd)
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "Show the size-class layout",
		Long: `The classes command prints the allocator's compiled-in configuration.
With --bytes it reports which class serves a given request size.

Example:
  memctl classes
  memctl classes --bytes 100
  memctl classes --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClasses()
		},
	}
}

func runClasses() error {
	cfg := mempool.Config()

	if classBytes > 0 {
		rounded := (classBytes + cfg.Alignment - 1) &^ (cfg.Alignment - 1)
		if classBytes > cfg.MaxBytes {
			fmt.Printf("%d bytes: above MaxBytes (%d), served by direct mapping\n",
				classBytes, cfg.MaxBytes)
			return nil
		}
		index := rounded/cfg.Alignment - 1
		if index < 0 {
			index = 0
			rounded = cfg.Alignment
		}
		fmt.Printf("%d bytes: class %d, block size %d\n", classBytes, index, rounded)
		return nil
	}

	if jsonOut {
		return printJSON(cfg)
	}

	fmt.Printf("alignment:        %d bytes\n", cfg.Alignment)
	fmt.Printf("max tiered size:  %d bytes\n", cfg.MaxBytes)
	fmt.Printf("size classes:     %d (uniform, %d-byte spacing)\n", cfg.SizeClasses, cfg.Alignment)
	fmt.Printf("page size:        %d bytes\n", cfg.PageSize)
	fmt.Printf("span size:        %d pages\n", cfg.SpanPages)
	fmt.Printf("thread threshold: %d blocks per class\n", cfg.ThreadMaxFree)
	return nil
}
