package forgez

import "sync"

// threadPool owns a fixed set of worker goroutines bound at creation to a
// driver function receiving the worker's stable 0-based index. Goroutines
// are the idiomatic Go analogue of the source's OS threads — the runtime
// already multiplexes goroutines onto OS threads, so a literal
// thread-per-worker translation would fight the scheduler rather than use
// it. threadPool is private to TaskPool, matching ThreadPool's role as a
// private member of TaskPool in the original source.
type threadPool struct {
	wg      sync.WaitGroup
	workers int
}

// createThreads spawns n goroutines, each invoking driver(i) for its
// 0-based index i. The caller must arrange for driver to return once its
// external stop condition is observed — threadPool has no way to force a
// goroutine to exit.
func (p *threadPool) createThreads(n int, driver func(workerID int)) {
	p.workers += n
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func(idx int) {
			defer p.wg.Done()
			driver(idx)
		}(i)
	}
}

// joinAll blocks until every spawned driver has returned.
func (p *threadPool) joinAll() {
	p.wg.Wait()
}

// threadCount returns the number of workers ever created.
func (p *threadPool) threadCount() int {
	return p.workers
}
