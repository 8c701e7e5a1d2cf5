package forgez

import "testing"

func TestBindTask(t *testing.T) {
	t.Run("closes over the bound argument", func(t *testing.T) {
		var seen int
		var seenWorker int
		task := BindTask(func(workerID int, a int) {
			seenWorker = workerID
			seen = a
		}, 42)

		task(3)
		if seen != 42 {
			t.Fatalf("expected bound argument 42, got %d", seen)
		}
		if seenWorker != 3 {
			t.Fatalf("expected worker id 3, got %d", seenWorker)
		}
	})
}

type counterRecv struct {
	calls []int
}

func (c *counterRecv) record(workerID int) {
	c.calls = append(c.calls, workerID)
}

func TestBindMethod(t *testing.T) {
	t.Run("adapts a method value into a Task", func(t *testing.T) {
		recv := &counterRecv{}
		task := BindMethod(recv, (*counterRecv).record)

		task(1)
		task(2)

		if len(recv.calls) != 2 || recv.calls[0] != 1 || recv.calls[1] != 2 {
			t.Fatalf("unexpected calls: %v", recv.calls)
		}
	})
}
