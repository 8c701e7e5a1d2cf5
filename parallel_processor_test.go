package forgez

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func cube(_ int, d *int) {
	v := *d
	*d = v * v * v
}

func TestProcessor(t *testing.T) {
	t.Run("empty buffer completes immediately", func(t *testing.T) {
		pool := NewTaskPool("empty-buffer")
		defer pool.Close()
		pool.CreateThreads(2)

		p := NewProcessor[int]("empty", pool, cube)
		data := []int{}
		if !p.StartProcessing(data, 4, 2) {
			t.Fatal("expected StartProcessing to succeed on an empty buffer")
		}

		done := make(chan struct{})
		go func() {
			p.WaitForCompletion()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("WaitForCompletion never returned for an empty buffer")
		}
	})

	t.Run("single element", func(t *testing.T) {
		pool := NewTaskPool("single-element")
		defer pool.Close()
		pool.CreateThreads(1)

		p := NewProcessor[int]("single", pool, cube)
		data := []int{4}
		if !p.StartProcessing(data, 1, 1) {
			t.Fatal("expected StartProcessing to succeed")
		}
		p.WaitForCompletion()
		if data[0] != 64 {
			t.Fatalf("expected 4^3 = 64, got %d", data[0])
		}
	})

	// S1 — linear cube, single worker, chunk=all.
	t.Run("linear cube single worker chunk all", func(t *testing.T) {
		pool := NewTaskPool("s1")
		defer pool.Close()
		pool.CreateThreads(1)

		data := make([]int, 10)
		for i := range data {
			data[i] = i
		}

		p := NewProcessor[int]("s1", pool, cube)
		if !p.StartProcessing(data, 10, 1) {
			t.Fatal("expected StartProcessing to succeed")
		}
		p.WaitForCompletion()

		want := []int{0, 1, 8, 27, 64, 125, 216, 343, 512, 729}
		for i := range want {
			if data[i] != want[i] {
				t.Fatalf("index %d: want %d, got %d", i, want[i], data[i])
			}
		}
	})

	// S2 — parallel cube, four workers, fine chunks.
	t.Run("parallel cube four workers fine chunks", func(t *testing.T) {
		pool := NewTaskPool("s2")
		defer pool.Close()
		pool.CreateThreads(4)

		data := make([]int, 100)
		for i := range data {
			data[i] = i
		}

		p := NewProcessor[int]("s2", pool, cube)
		if !p.StartProcessing(data, 7, 4) {
			t.Fatal("expected StartProcessing to succeed")
		}
		p.WaitForCompletion()

		for i := range data {
			want := i * i * i
			if data[i] != want {
				t.Fatalf("index %d: want %d, got %d", i, want, data[i])
			}
		}
	})

	t.Run("every element visited exactly once", func(t *testing.T) {
		pool := NewTaskPool("coverage")
		defer pool.Close()
		pool.CreateThreads(6)

		const n = 997 // prime, doesn't divide evenly into any chunk size
		counters := make([]atomic.Int32, n)
		p := NewProcessor[int]("coverage", pool, func(_ int, d *int) {
			counters[*d].Add(1)
		})

		data := make([]int, n)
		for i := range data {
			data[i] = i
		}
		if !p.StartProcessing(data, 5, 6) {
			t.Fatal("expected StartProcessing to succeed")
		}
		p.WaitForCompletion()

		for i := 0; i < n; i++ {
			if got := counters[i].Load(); got != 1 {
				t.Fatalf("element %d visited %d times, want exactly 1", i, got)
			}
		}
	})

	t.Run("chunk boundaries half-open, no off-by-one", func(t *testing.T) {
		pool := NewTaskPool("chunks")
		defer pool.Close()
		pool.CreateThreads(3)

		const n = 23
		data := make([]int, n)
		for i := range data {
			data[i] = 1
		}

		p := NewProcessor[int]("chunks", pool, func(_ int, d *int) { *d = 2 })
		if !p.StartProcessing(data, 5, 3) {
			t.Fatal("expected StartProcessing to succeed")
		}
		p.WaitForCompletion()

		for i, v := range data {
			if v != 2 {
				t.Fatalf("index %d was never touched (half-open range bug?), got %d", i, v)
			}
		}
	})

	t.Run("cannot start while in progress", func(t *testing.T) {
		pool := NewTaskPool("s4")
		defer pool.Close()
		pool.CreateThreads(2)

		var release sync.WaitGroup
		release.Add(1)
		p := NewProcessor[int]("s4", pool, func(_ int, _ *int) {
			release.Wait()
		})

		data := make([]int, 4)
		if !p.StartProcessing(data, 1, 2) {
			t.Fatal("expected first StartProcessing to succeed")
		}
		if p.StartProcessing(data, 1, 2) {
			t.Fatal("expected second StartProcessing to be rejected while in progress")
		}

		release.Done()
		p.WaitForCompletion()
	})

	// S3 — abort mid-run.
	t.Run("abort mid run", func(t *testing.T) {
		pool := NewTaskPool("s3")
		defer pool.Close()
		pool.CreateThreads(8)

		const n = 10000
		var touched atomic.Int64
		data := make([]int, n)

		p := NewProcessor[int]("s3", pool, func(_ int, _ *int) {
			touched.Add(1)
			time.Sleep(10 * time.Microsecond)
		})

		if !p.StartProcessing(data, 1, 8) {
			t.Fatal("expected StartProcessing to succeed")
		}
		time.Sleep(2 * time.Millisecond)

		abortDone := make(chan bool, 1)
		go func() {
			abortDone <- p.AbortProcessing()
		}()

		select {
		case ok := <-abortDone:
			if !ok {
				t.Fatal("expected AbortProcessing to report a run was in progress")
			}
		case <-time.After(time.Second):
			t.Fatal("AbortProcessing did not return in bounded time")
		}

		if p.IsAborting() {
			t.Fatal("expected IsAborting false once AbortProcessing has returned")
		}
		if touched.Load() == 0 || touched.Load() == n {
			t.Fatalf("expected a strict prefix of elements touched, got %d of %d", touched.Load(), n)
		}
		if !p.CanStartProcessing() {
			t.Fatal("expected the processor to be idle again after abort")
		}

		// a subsequent run must succeed
		data2 := make([]int, 4)
		if !p.StartProcessing(data2, 1, 2) {
			t.Fatal("expected a subsequent StartProcessing to succeed after abort")
		}
		p.WaitForCompletion()
	})

	t.Run("abort while idle is rejected", func(t *testing.T) {
		pool := NewTaskPool("abort-idle")
		defer pool.Close()
		pool.CreateThreads(1)

		p := NewProcessor[int]("abort-idle", pool, cube)
		if p.AbortProcessing() {
			t.Fatal("expected AbortProcessing to report false when idle")
		}
	})

	// S6 — destructor (Close) during a run.
	t.Run("close during run returns in bounded time", func(t *testing.T) {
		pool := NewTaskPool("s6")
		defer pool.Close()
		pool.CreateThreads(4)

		const n = 200
		data := make([]int, n)
		p := NewProcessor[int]("s6", pool, func(_ int, _ *int) {
			time.Sleep(time.Millisecond)
		})

		if !p.StartProcessing(data, 1, 4) {
			t.Fatal("expected StartProcessing to succeed")
		}

		closeDone := make(chan struct{})
		go func() {
			p.Close()
			close(closeDone)
		}()

		select {
		case <-closeDone:
		case <-time.After(2 * time.Second):
			t.Fatal("Close did not return in bounded time")
		}

		// the pool itself must still be usable: it outlives the processor.
		var executed atomic.Bool
		pool.QueueTask(func(int) { executed.Store(true) }, 1)
		deadline := time.Now().Add(time.Second)
		for !executed.Load() && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
		if !executed.Load() {
			t.Fatal("expected the task pool to remain usable after the processor's Close")
		}
	})

	// Reuse — calling WaitForCompletion again after it already
	// returned must be a harmless no-op.
	t.Run("reuse after completion", func(t *testing.T) {
		pool := NewTaskPool("reuse")
		defer pool.Close()
		pool.CreateThreads(2)

		p := NewProcessor[int]("reuse", pool, cube)
		data := []int{1, 2, 3}
		if !p.StartProcessing(data, 3, 2) {
			t.Fatal("expected first run to start")
		}
		p.WaitForCompletion()
		p.WaitForCompletion() // idempotent no-op

		if !p.CanStartProcessing() {
			t.Fatal("expected the processor to accept a new run after completion")
		}

		data2 := []int{4, 5}
		if !p.StartProcessing(data2, 2, 2) {
			t.Fatal("expected a second run to start after the first completed")
		}
		p.WaitForCompletion()
		if data2[0] != 64 || data2[1] != 125 {
			t.Fatalf("unexpected result from second run: %v", data2)
		}
	})

	t.Run("metrics track runs and chunks claimed", func(t *testing.T) {
		pool := NewTaskPool("metrics")
		defer pool.Close()
		pool.CreateThreads(2)

		p := NewProcessor[int]("metrics", pool, cube)
		data := make([]int, 20)
		if !p.StartProcessing(data, 5, 2) {
			t.Fatal("expected StartProcessing to succeed")
		}
		p.WaitForCompletion()

		if got := p.Metrics().Counter(MetricRunsStartedTotal).Value(); got != 1 {
			t.Fatalf("expected 1 run started, got %f", got)
		}
		if got := p.Metrics().Counter(MetricChunksClaimedTotal).Value(); got != 4 {
			t.Fatalf("expected 4 chunks claimed (20/5), got %f", got)
		}
	})

	// A workload panic crosses a worker goroutine with no recover above it
	// by design (spec's fail-loud requirement); exercising that through a
	// live TaskPool would crash the test binary. applyWorkload's
	// recover-wrap-repanic behavior is instead verified directly, the way
	// its own goroutine would experience it.
	t.Run("workload panic is wrapped and re-raised, not swallowed", func(t *testing.T) {
		pool := NewTaskPool("panic")
		defer pool.Close()

		p := NewProcessor[int]("panic", pool, func(_ int, d *int) {
			panic("boom")
		})
		p.data = []int{1}

		var recovered interface{}
		func() {
			defer func() {
				recovered = recover()
			}()
			p.applyWorkload(0, 0, 1)
		}()

		if recovered == nil {
			t.Fatal("expected applyWorkload to re-panic, not swallow the panic")
		}
		wrapped, ok := recovered.(*Error)
		if !ok {
			t.Fatalf("expected a *Error wrapping the panic, got %T: %v", recovered, recovered)
		}
		if wrapped.Err == nil || wrapped.Err.Error() != "boom" {
			t.Fatalf("expected the wrapped error to preserve the panic value, got %v", wrapped.Err)
		}
		if wrapped.WorkerID != 0 {
			t.Fatalf("expected WorkerID 0, got %d", wrapped.WorkerID)
		}
	})
}
