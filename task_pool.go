package forgez

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
)

// TaskPool owns a threadPool and a taskQueue: a fixed set of long-lived
// worker goroutines that dequeue and invoke Tasks until the pool is closed.
// It is the general-purpose worker pool a Processor dispatches its driver
// tasks into; a single TaskPool may back any number of Processors.
//
// TaskPool exclusively owns its workers and queue. A Processor holds a
// non-owning reference to a TaskPool and must not outlive it.
type TaskPool struct {
	name    Name
	threads threadPool
	tasks   *taskQueue
	exit    atomic.Bool

	closeOnce sync.Once
	closeErr  error

	metrics *metricz.Registry
	hooks   *hookz.Hooks[TaskPoolEvent]
}

// NewTaskPool constructs a TaskPool with zero workers. Call CreateThreads
// to spawn workers before queueing tasks.
func NewTaskPool(name Name) *TaskPool {
	registry := metricz.New()
	registry.Counter(MetricTasksQueuedTotal)
	registry.Counter(MetricTasksExecutedTotal)
	registry.Gauge(MetricWorkersActive)

	p := &TaskPool{
		name:    name,
		tasks:   newTaskQueue(),
		metrics: registry,
		hooks:   hookz.New[TaskPoolEvent](),
	}

	capitan.Info(context.Background(), SignalTaskPoolStarted,
		FieldName.Field(string(name)),
	)
	return p
}

// CreateThreads spawns n additional worker goroutines, each running the
// DoTasks loop: dequeue one task, invoke it with its worker id, repeat
// until the pool is closed.
func (p *TaskPool) CreateThreads(n int) {
	if n <= 0 {
		return
	}
	p.metrics.Gauge(MetricWorkersActive).Add(float64(n))
	p.threads.createThreads(n, p.doTasks)
}

func (p *TaskPool) doTasks(workerID int) {
	for {
		if p.exit.Load() {
			return
		}
		task, ok := p.tasks.dequeue(&p.exit)
		if !ok {
			return
		}
		task(workerID)
		p.metrics.Counter(MetricTasksExecutedTotal).Inc()
		_ = p.hooks.Emit(context.Background(), HookTaskPoolTaskExecuted, TaskPoolEvent{ //nolint:errcheck
			Name:      p.name,
			WorkerID:  workerID,
			QueueSize: p.tasks.size(),
			Timestamp: time.Now(),
		})
	}
}

// QueueTask enqueues count copies of t, fanning the same driver out to
// every worker that will eventually dequeue one.
func (p *TaskPool) QueueTask(t Task, count int) {
	for i := 0; i < count; i++ {
		p.tasks.enqueue(t)
	}
	p.metrics.Counter(MetricTasksQueuedTotal).Add(float64(count))
}

// ClearTasks drains the queue of unstarted work.
func (p *TaskPool) ClearTasks() {
	p.tasks.clear()
}

// Metrics returns the pool's metricz.Registry, for callers that want to
// read counters/gauges directly rather than wiring an exporter.
func (p *TaskPool) Metrics() *metricz.Registry {
	return p.metrics
}

// ThreadCount returns the number of worker goroutines ever created.
func (p *TaskPool) ThreadCount() int {
	return p.threads.threadCount()
}

// TaskCount returns a snapshot of the number of queued, unstarted tasks.
func (p *TaskPool) TaskCount() int {
	return p.tasks.size()
}

// HasTasks reports whether the queue held anything at the instant checked.
func (p *TaskPool) HasTasks() bool {
	return !p.tasks.empty()
}

// OnTaskExecuted registers a handler invoked asynchronously after each task
// completes.
func (p *TaskPool) OnTaskExecuted(handler func(context.Context, TaskPoolEvent) error) error {
	_, err := p.hooks.Hook(HookTaskPoolTaskExecuted, handler)
	return err
}

// OnDrained registers a handler invoked once, when Close finishes joining
// every worker.
func (p *TaskPool) OnDrained(handler func(context.Context, TaskPoolEvent) error) error {
	_, err := p.hooks.Hook(HookTaskPoolDrained, handler)
	return err
}

// Close raises the exit flag, wakes every worker blocked in the queue's
// condition variable, and joins all workers. Close is idempotent: calling
// it more than once returns the result of the first call, matching the
// closeOnce pattern every pipz connector uses for its own Close.
//
// A worker that observed exit==false but is blocked in dequeue is woken by
// the broadcast below and re-checks exit before sleeping again — this is
// the fix spec.md §4.4/§9 calls out as required of any implementation that
// uses a blocking dequeue.
func (p *TaskPool) Close() error {
	p.closeOnce.Do(func() {
		p.exit.Store(true)
		p.tasks.broadcast()
		p.threads.joinAll()

		capitan.Info(context.Background(), SignalTaskPoolDrained,
			FieldName.Field(string(p.name)),
		)
		_ = p.hooks.Emit(context.Background(), HookTaskPoolDrained, TaskPoolEvent{ //nolint:errcheck
			Name:      p.name,
			Timestamp: time.Now(),
		})
	})
	return p.closeErr
}
