// Command forgebench sweeps worker counts against a fixed cubing workload,
// the runnable example the engine ships instead of a benchmark test file.
// It has no subcommands and no flags; it exists to demonstrate
// forgez.TaskPool/forgez.Processor wired together end to end.
package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/forgez/forgez"
)

const (
	numFuncCalls = 1 << 20 // NFUNC_CALLS
	numTrials    = 5       // NTRIALS
	chunkSize    = 1024
)

func cube(_ int, d *int) {
	v := *d
	*d = v * v * v
}

func runTrial(pool *forgez.TaskPool, workers int) time.Duration {
	data := make([]int, numFuncCalls)
	for i := range data {
		data[i] = i
	}

	p := forgez.NewProcessor[int](forgez.Name(fmt.Sprintf("bench-%d", workers)), pool, cube)
	start := time.Now()
	if !p.StartProcessing(data, chunkSize, workers) {
		fmt.Fprintln(os.Stderr, "forgebench: StartProcessing rejected, processor was not idle")
		os.Exit(1)
	}
	p.WaitForCompletion()
	return time.Since(start)
}

func main() {
	maxWorkers := runtime.NumCPU()

	pool := forgez.NewTaskPool("forgebench")
	defer pool.Close()
	pool.CreateThreads(maxWorkers)

	fmt.Printf("forgebench: %d elements, %d trials, chunk=%d, up to %d workers\n",
		numFuncCalls, numTrials, chunkSize, maxWorkers)

	for workers := 1; workers <= maxWorkers; workers++ {
		var total time.Duration
		for trial := 0; trial < numTrials; trial++ {
			total += runTrial(pool, workers)
		}
		mean := total / time.Duration(numTrials)
		fmt.Printf("workers=%2d  mean=%8.3fms\n", workers, float64(mean.Microseconds())/1000.0)
	}
}
