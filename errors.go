package forgez

import (
	"fmt"
	"time"
)

// Error wraps a workload panic recovered from a driver task, giving it the
// timestamp and the worker id under which it occurred. Modeled on the
// teacher's Error[T] (error.go), trimmed to what a misuse-is-fatal contract
// needs: forgez never returns this type to a caller — it is attached to the
// panic value before the panic is re-raised, so a crash report or recover()
// further up the caller's own stack still sees useful context.
type Error struct {
	Timestamp time.Time
	Name      Name
	Err       error
	WorkerID  int
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("forgez: %s: worker %d panicked: %v", e.Name, e.WorkerID, e.Err)
}

// Unwrap supports errors.Is/errors.As against the underlying panic value
// when it was itself an error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// asError coerces an arbitrary recovered panic value into an error for
// Error.Err, matching fmt.Errorf's own fallback for non-error panic values.
func asError(v interface{}) error {
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
