package forgez

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Processor partitions a slice into dynamically-claimed chunks and applies
// a caller-supplied workload to every element, in place, across a pool of
// workers borrowed from a TaskPool. It is the core of forgez: everything
// else in the package exists to support one processing run.
//
// A Processor holds a non-owning reference to a TaskPool, which must
// outlive it. A Processor exclusively owns its own run state (the cursor,
// the start/finish events, and the workload) and transiently borrows the
// caller's slice for the duration of a run — the caller must not touch
// buffer elements until WaitForCompletion or AbortProcessing returns.
//
// Processor is safe to destroy (Close) while a run is in flight; Close
// calls AbortProcessing unconditionally and returns only once every
// dispatched driver task has left the processor's closures.
type Processor[T any] struct {
	name     Name
	pool     *TaskPool
	workload func(workerID int, elem *T)

	mu sync.Mutex // serializes Start/Abort transitions

	data      []T
	chunkSize int
	cursor    atomic.Int64
	aborting  atomic.Bool

	startLatch  *Latch
	finishLatch *CountdownLatch

	chunksClaimed atomic.Int64

	fieldMu    sync.Mutex // guards the span handles and startedAt below
	spanSetTag func(tracez.Tag, string)
	spanFinish func()
	startedAt  time.Time

	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[ProcessorEvent]
}

// NewProcessor binds a Processor to pool and workload. The returned
// Processor starts idle: not aborting, no run in progress.
func NewProcessor[T any](name Name, pool *TaskPool, workload func(workerID int, elem *T)) *Processor[T] {
	registry := metricz.New()
	registry.Counter(MetricRunsStartedTotal)
	registry.Counter(MetricRunsAbortedTotal)
	registry.Counter(MetricChunksClaimedTotal)
	registry.Gauge(MetricCursorPosition)

	return &Processor[T]{
		name:        name,
		pool:        pool,
		workload:    workload,
		startLatch:  NewLatch(),
		finishLatch: NewCountdownLatch(0), // no run in progress
		clock:       clockz.RealClock,
		metrics:     registry,
		tracer:      tracez.New(),
		hooks:       hookz.New[ProcessorEvent](),
	}
}

// WithClock sets the clock used to timestamp runs and measure their
// duration for signals and hook events.
func (p *Processor[T]) WithClock(clock clockz.Clock) *Processor[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

// StartProcessing begins a run over data iff CanStartProcessing holds: it
// publishes the shared descriptor, resets the finish counter to workers,
// enqueues workers driver tasks into the pool, and fires the start latch.
// It returns whether the run actually started.
//
// chunk <= 0 is silently clamped to 1 to guarantee progress (spec.md §9);
// workers <= 0 is clamped to 1.
func (p *Processor[T]) StartProcessing(data []T, chunk, workers int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.canStartProcessingLocked() {
		capitan.Warn(context.Background(), SignalProcessingRejected,
			FieldName.Field(string(p.name)),
		)
		return false
	}

	if chunk <= 0 {
		chunk = 1
	}
	if workers <= 0 {
		workers = 1
	}

	p.data = data
	p.chunkSize = chunk
	p.cursor.Store(0)
	p.chunksClaimed.Store(0)
	p.aborting.Store(false)

	p.finishLatch.Reset(int64(workers))
	p.startLatch.Reset()

	ctx, span := p.tracer.StartSpan(context.Background(), SpanProcessorRun)
	span.SetTag(TagWorkerCount, itoa(workers))
	span.SetTag(TagChunkSize, itoa(chunk))
	span.SetTag(TagElementCount, itoa(len(data)))

	p.fieldMu.Lock()
	p.spanSetTag = span.SetTag
	p.spanFinish = span.Finish
	p.startedAt = p.clock.Now()
	p.fieldMu.Unlock()

	p.pool.QueueTask(p.driverTask, workers)
	p.startLatch.NotifyAll()

	p.metrics.Counter(MetricRunsStartedTotal).Inc()
	capitan.Info(ctx, SignalProcessingStarted,
		FieldName.Field(string(p.name)),
		FieldWorkerCount.Field(workers),
		FieldChunkSize.Field(chunk),
		FieldElementCount.Field(len(data)),
	)
	_ = p.hooks.Emit(ctx, HookProcessorStarted, ProcessorEvent{ //nolint:errcheck
		Name:         p.name,
		ElementCount: len(data),
		ChunkSize:    chunk,
		WorkerCount:  workers,
		Timestamp:    p.startedAt,
	})

	return true
}

// driverTask is enqueued once per worker per run: it waits on the start
// latch, then consumes chunks until the buffer is exhausted or abort is
// signalled, and finally notifies the finish latch exactly once.
func (p *Processor[T]) driverTask(workerID int) {
	p.startLatch.Wait()
	for p.processOne(workerID) { //nolint:revive // intentional spin on atomic chunk claims
	}
	p.finishLatch.NotifyOne()
}

// processOne claims one chunk via a CAS loop on the cursor and applies the
// workload to every element in it, returning false once the buffer is
// exhausted or abort has been signalled.
func (p *Processor[T]) processOne(workerID int) bool {
	if p.aborting.Load() {
		return false
	}

	count := int64(len(p.data))
	for {
		old := p.cursor.Load()
		if old >= count {
			return false
		}
		next := old + int64(p.chunkSize)
		if next > count {
			next = count
		}
		if p.cursor.CompareAndSwap(old, next) {
			p.metrics.Gauge(MetricCursorPosition).Set(float64(next))
			p.applyWorkload(workerID, old, next)
			p.chunksClaimed.Add(1)
			p.metrics.Counter(MetricChunksClaimedTotal).Inc()
			return true
		}
	}
}

// applyWorkload invokes the workload on data[lo:hi), recovering a panic
// just long enough to attach run context before re-raising it. A workload
// panic is a programming error per spec.md §7 — it is never swallowed.
func (p *Processor[T]) applyWorkload(workerID int, lo, hi int64) {
	defer func() {
		if r := recover(); r != nil {
			capitan.Error(context.Background(), SignalWorkloadPanic,
				FieldName.Field(string(p.name)),
				FieldPanicValue.Field(stringify(r)),
			)
			panic(&Error{
				Timestamp: time.Now(),
				Name:      p.name,
				Err:       asError(r),
				WorkerID:  workerID,
			})
		}
	}()
	for i := lo; i < hi; i++ {
		p.workload(workerID, &p.data[i])
	}
}

// WaitForCompletion blocks until the run's finish latch fires, then resets
// both events to their idle state. Calling it again after it has already
// returned is a no-op.
func (p *Processor[T]) WaitForCompletion() {
	p.finishLatch.Wait()

	p.fieldMu.Lock()
	setTag := p.spanSetTag
	finish := p.spanFinish
	startedAt := p.startedAt
	p.spanSetTag = nil
	p.spanFinish = nil
	p.fieldMu.Unlock()

	p.startLatch.Reset()
	p.finishLatch.Reset(0)

	if finish != nil {
		aborted := p.aborting.Load()
		setTag(TagAborted, boolString(aborted))
		finish()

		dur := time.Duration(0)
		if !startedAt.IsZero() {
			dur = p.clock.Now().Sub(startedAt)
		}

		capitan.Info(context.Background(), SignalProcessingFinished,
			FieldName.Field(string(p.name)),
			FieldChunksTotal.Field(int(p.chunksClaimed.Load())),
			FieldDuration.Field(dur.Seconds()),
		)
		_ = p.hooks.Emit(context.Background(), HookProcessorFinished, ProcessorEvent{ //nolint:errcheck
			Name:          p.name,
			ChunksClaimed: p.chunksClaimed.Load(),
			Aborted:       aborted,
			Duration:      dur,
			Timestamp:     p.clock.Now(),
		})
	}
}

// AbortProcessing cooperatively cancels an in-flight run: it raises
// aborting, forces the cursor to the end of the buffer so no worker claims
// another chunk, waits for every driver task to notice and return, then
// clears aborting. It returns whether a run was actually in progress.
func (p *Processor[T]) AbortProcessing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.inProgressLocked() {
		return false
	}

	p.aborting.Store(true)
	capitan.Warn(context.Background(), SignalProcessingAborting,
		FieldName.Field(string(p.name)),
	)

	p.cursor.Store(int64(len(p.data)))

	p.WaitForCompletion()

	p.aborting.Store(false)
	p.metrics.Counter(MetricRunsAbortedTotal).Inc()
	capitan.Warn(context.Background(), SignalProcessingAborted,
		FieldName.Field(string(p.name)),
	)
	return true
}

// Metrics returns the processor's metricz.Registry.
func (p *Processor[T]) Metrics() *metricz.Registry {
	return p.metrics
}

// IsAborting reports whether an abort is currently in flight.
func (p *Processor[T]) IsAborting() bool {
	return p.aborting.Load()
}

// InProgress reports whether a run has started and not yet finished.
func (p *Processor[T]) InProgress() bool {
	return p.inProgressLocked()
}

func (p *Processor[T]) inProgressLocked() bool {
	return p.startLatch.IsSet() && !p.finishLatch.IsSet()
}

// CanStartProcessing reports whether a new run may begin: not aborting and
// not already in progress.
func (p *Processor[T]) CanStartProcessing() bool {
	return p.canStartProcessingLocked()
}

func (p *Processor[T]) canStartProcessingLocked() bool {
	return !p.aborting.Load() && !p.inProgressLocked()
}

// OnStarted registers a handler invoked asynchronously when a run begins.
func (p *Processor[T]) OnStarted(handler func(context.Context, ProcessorEvent) error) error {
	_, err := p.hooks.Hook(HookProcessorStarted, handler)
	return err
}

// OnFinished registers a handler invoked asynchronously when a run
// completes, whether normally or via abort.
func (p *Processor[T]) OnFinished(handler func(context.Context, ProcessorEvent) error) error {
	_, err := p.hooks.Hook(HookProcessorFinished, handler)
	return err
}

// Close calls AbortProcessing unconditionally, making it safe to destroy a
// Processor while a run is in flight.
func (p *Processor[T]) Close() error {
	p.AbortProcessing()
	return nil
}
