package forgez

// BindTask closes over a, producing a Task that invokes fn with the
// worker id supplied by whichever TaskPool worker dequeues it and the
// pre-bound argument a. This is forgez's answer to spec.md §4.6's
// type-erased callable binder: per the spec's own Design Notes (§9), a Go
// rewrite prefers closures to a hand-rolled generic function object, so
// BindTask is a thin generic convenience rather than a multi-constructor
// Function[R(A...)] type. Most callers are better served writing the
// closure directly; BindTask exists for the common case of adapting a
// function that already takes its payload as a leading argument.
func BindTask[A any](fn func(workerID int, a A), a A) Task {
	return func(workerID int) {
		fn(workerID, a)
	}
}

// BindMethod adapts a method value bound to recv into a Task, the closure
// equivalent of the source's PMFunc member-callback binder.
func BindMethod[T any](recv *T, fn func(*T, int)) Task {
	return func(workerID int) {
		fn(recv, workerID)
	}
}
