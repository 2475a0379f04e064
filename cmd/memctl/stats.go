package main

import (
	"fmt"

	"github.com/memkit/memkit/mempool"
	"github.com/memkit/memkit/pkg/types"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Run a short self-exercise and dump allocator statistics",
		Long: `The stats command performs a brief mixed-size allocation workload so
every tier sees traffic, then prints the activity counters.

Example:
  memctl stats
  memctl stats --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatsCmd()
		},
	}
}

func runStatsCmd() error {
	c := mempool.NewCache()
	defer c.Close()

	sizes := []int{8, 16, 64, 256, 1024, 4096}
	for round := 0; round < 200; round++ {
		for _, n := range sizes {
			p := c.Allocate(n)
			c.Deallocate(p, n)
		}
	}

	if jsonOut {
		return printJSON(mempool.Stats())
	}
	printStats(mempool.Stats())
	return nil
}

func printStats(s types.Stats) {
	fmt.Printf("allocs:        %d\n", s.Allocs)
	fmt.Printf("frees:         %d\n", s.Frees)
	fmt.Printf("refills:       %d\n", s.Refills)
	fmt.Printf("returns:       %d\n", s.Returns)
	fmt.Printf("spans cut:     %d\n", s.SpansCut)
	fmt.Printf("span splits:   %d\n", s.SpanSplits)
	fmt.Printf("coalesces:     %d\n", s.Coalesces)
	fmt.Printf("os maps:       %d\n", s.OSMaps)
	fmt.Printf("os unmaps:     %d\n", s.OSUnmaps)
	fmt.Printf("large allocs:  %d\n", s.LargeAllocs)
	fmt.Printf("large frees:   %d\n", s.LargeFrees)
}
