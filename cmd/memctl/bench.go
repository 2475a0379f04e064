package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/memkit/memkit/fixedpool"
	"github.com/memkit/memkit/mempool"
	"github.com/spf13/cobra"
)

var (
	benchGoroutines int
	benchIters      int
	benchSize       int
	benchFixed      bool
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVar(&benchGoroutines, "goroutines", 4, "Concurrent workers")
	cmd.Flags().IntVar(&benchIters, "iters", 100000, "Allocate/free cycles per worker")
	cmd.Flags().IntVar(&benchSize, "size", 64, "Allocation size in bytes")
	cmd.Flags().BoolVar(&benchFixed, "fixed", false, "Use the fixed-slot pool instead of the tiered pool")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run an allocation stress benchmark",
		Long: `The bench command runs concurrent allocate/free cycles against the
tiered pool (default) or the earlier-generation fixed-slot pool (--fixed) and
reports wall time plus the allocator's activity counters.

Example:
  memctl bench --goroutines 8 --iters 500000 --size 32
  memctl bench --fixed --size 64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
}

func runBench() error {
	if benchGoroutines < 1 || benchIters < 1 || benchSize < 1 {
		return fmt.Errorf("bench: goroutines, iters and size must be positive")
	}
	if benchFixed && benchSize > fixedpool.MaxSlotSize {
		return fmt.Errorf("bench: fixed-slot pool serves at most %d bytes", fixedpool.MaxSlotSize)
	}

	var wg sync.WaitGroup
	start := time.Now()

	if benchFixed {
		bucket := fixedpool.NewBucket()
		for g := 0; g < benchGoroutines; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < benchIters; i++ {
					p := bucket.Alloc(benchSize)
					bucket.Free(p, benchSize)
				}
			}()
		}
	} else {
		for g := 0; g < benchGoroutines; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c := mempool.NewCache()
				defer c.Close()
				for i := 0; i < benchIters; i++ {
					p := c.Allocate(benchSize)
					c.Deallocate(p, benchSize)
				}
			}()
		}
	}

	wg.Wait()
	elapsed := time.Since(start)

	total := benchGoroutines * benchIters
	fmt.Printf("%d cycles across %d goroutines in %v (%.0f ops/s)\n",
		total, benchGoroutines, elapsed,
		float64(total)/elapsed.Seconds())

	if !benchFixed {
		if jsonOut {
			return printJSON(mempool.Stats())
		}
		printStats(mempool.Stats())
	}
	return nil
}
