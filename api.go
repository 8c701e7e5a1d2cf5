package forgez

// Name identifies a TaskPool or Processor instance for logging, tracing,
// and metrics. Using this type encourages storing names as constants
// rather than scattering inline strings through caller code.
type Name = string

// Task is a type-erased unary callable queued into a TaskPool. It receives
// the 0-based worker id of whichever goroutine dequeues it. Tasks must be
// safe to invoke from any worker and must not block indefinitely.
type Task func(workerID int)
