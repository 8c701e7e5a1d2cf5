// Package forgez provides a small data-parallel processing engine: a task
// pool of long-lived workers and a Processor that partitions a slice into
// dynamically-claimed chunks and applies a caller-supplied workload to
// every element, in place, across the pool.
//
// # Core Concepts
//
// The engine is built from four layers:
//
//   - Latch / CountdownLatch / Counter: one-shot and countdown event
//     primitives used to delimit the start and end of a run.
//   - TaskPool: a fixed set of goroutines pulling callables from a shared
//     FIFO queue.
//   - Processor[T]: owns a run's shared state (an atomic cursor into the
//     caller's slice) and coordinates start, completion, and cooperative
//     abort via the events above.
//   - Observability: every TaskPool and Processor wires a metricz.Registry
//     and a hookz.Hooks for counters and async event notification, plus
//     capitan signals for structured logging; each Processor also holds a
//     tracez.Tracer for a span per run.
//
// # Usage
//
//	pool := forgez.NewTaskPool("cube-pool")
//	pool.CreateThreads(4)
//	defer pool.Close() //nolint:errcheck
//
//	data := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
//	proc := forgez.NewProcessor[int]("cube", pool, func(_ int, v *int) {
//	    *v = *v * *v * *v
//	})
//
//	proc.StartProcessing(data, 10, 1)
//	proc.WaitForCompletion()
//	// data is now [0 1 8 27 64 125 216 343 512 729]
//
// # Cancellation
//
// AbortProcessing cooperatively stops an in-flight run: it forces the
// cursor to the end of the buffer and waits for every worker to notice on
// its next chunk claim. A workload already mid-chunk finishes that chunk
// before the worker checks again; there is no mechanism to interrupt a
// single workload call.
package forgez
