package forgez

import (
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Signal constants for forgez lifecycle events. Signals follow the
// pattern <component>.<event>, matching the teacher's signals.go
// convention of one flat const block per observable transition.
const (
	// TaskPool signals.
	SignalTaskPoolStarted Signal = "taskpool.started"
	SignalTaskPoolDrained Signal = "taskpool.drained"

	// Processor signals.
	SignalProcessingStarted  Signal = "processor.started"
	SignalProcessingRejected Signal = "processor.rejected"
	SignalProcessingAborting Signal = "processor.aborting"
	SignalProcessingAborted  Signal = "processor.aborted"
	SignalProcessingFinished Signal = "processor.finished"
	SignalWorkloadPanic      Signal = "processor.workload_panic"
)

// Signal is an alias for capitan's signal type, kept local so callers
// don't need to import capitan just to compare against the constants
// above.
type Signal = capitan.Signal

// Common field keys used across the signals above.
var (
	FieldName         = capitan.NewStringKey("name")
	FieldWorkerCount  = capitan.NewIntKey("worker_count")
	FieldChunkSize    = capitan.NewIntKey("chunk_size")
	FieldElementCount = capitan.NewIntKey("element_count")
	FieldChunksTotal  = capitan.NewIntKey("chunks_claimed")
	FieldDuration     = capitan.NewFloat64Key("duration_seconds")
	FieldTimestamp    = capitan.NewFloat64Key("timestamp")
	FieldPanicValue   = capitan.NewStringKey("panic_value")
)

// Metric keys. TaskPool and Processor each register their own
// metricz.Registry at construction, matching the teacher's per-connector
// Registry pattern (see workerpool.go, backoff.go).
const (
	MetricTasksQueuedTotal   = metricz.Key("forgez.taskpool.tasks.queued.total")
	MetricTasksExecutedTotal = metricz.Key("forgez.taskpool.tasks.executed.total")
	MetricWorkersActive      = metricz.Key("forgez.taskpool.workers.active")

	MetricRunsStartedTotal   = metricz.Key("forgez.processor.runs.started.total")
	MetricRunsAbortedTotal   = metricz.Key("forgez.processor.runs.aborted.total")
	MetricChunksClaimedTotal = metricz.Key("forgez.processor.chunks.claimed.total")
	MetricCursorPosition     = metricz.Key("forgez.processor.cursor.position")
)

// Span keys.
const (
	SpanProcessorRun = tracez.Key("forgez.processor.run")
)

// Span tags.
const (
	TagWorkerCount  = tracez.Tag("worker_count")
	TagChunkSize    = tracez.Tag("chunk_size")
	TagElementCount = tracez.Tag("element_count")
	TagAborted      = tracez.Tag("aborted")
)

// Hook event keys.
const (
	HookTaskPoolTaskExecuted = hookz.Key("taskpool.task_executed")
	HookTaskPoolDrained      = hookz.Key("taskpool.drained")

	HookProcessorStarted  = hookz.Key("processor.started")
	HookProcessorAborted  = hookz.Key("processor.aborted")
	HookProcessorFinished = hookz.Key("processor.finished")
)

// TaskPoolEvent is emitted via hookz for TaskPool lifecycle events.
type TaskPoolEvent struct {
	Name      Name
	WorkerID  int
	QueueSize int
	Timestamp time.Time
}

// ProcessorEvent is emitted via hookz for Processor lifecycle events.
type ProcessorEvent struct {
	Name          Name
	ElementCount  int
	ChunkSize     int
	WorkerCount   int
	ChunksClaimed int64
	Aborted       bool
	Duration      time.Duration
	Timestamp     time.Time
}
