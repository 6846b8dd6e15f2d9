// Package pool provides a bounded task-dispatch pool over a fixed set of
// isolated workers. Submitted payloads run on an idle worker immediately or
// wait in FIFO order; each submission settles a one-shot future exactly once.
package pool

import (
	"context"
	"errors"
)

var (
	// ErrInvalidConfiguration is returned by New when the requested pool
	// shape cannot be built, e.g. a worker count below 1.
	ErrInvalidConfiguration = errors.New("invalid pool configuration")

	// ErrPoolStopped settles every task that was still queued when Stop
	// was called, and every task submitted afterwards.
	ErrPoolStopped = errors.New("worker pool is stopped")
)

// Worker is an isolated execution context. The pool hands it one payload at
// a time via Post; the worker must invoke done exactly once per payload and
// is not handed another payload until it has. Post must return promptly:
// the work runs asynchronously, and done must not be called from inside
// Post itself. Calling done more than once is a no-op.
type Worker[I any, O any] interface {
	Post(ctx context.Context, payload I, done func(O, error))
}

// WorkerFactory creates one worker per pool slot at construction time.
// id is the slot index, 0 <= id < size.
type WorkerFactory[I any, O any] func(id int) (Worker[I, O], error)

// TaskFunction is a plain function usable as a worker body via FuncFactory.
type TaskFunction[I any, O any] func(ctx context.Context, workerID int, input I) (O, error)

type WorkerPool[I any, O any] interface {
	// Submit hands a payload to the pool and returns immediately. The
	// payload is dispatched to an idle worker, or queued in FIFO order
	// until one frees up. The returned future settles exactly once.
	Submit(ctx context.Context, payload I) *Future[O]

	// Stop rejects all queued tasks with ErrPoolStopped and stops
	// accepting submissions. Tasks already running settle normally.
	Stop()

	// Drain blocks until every accepted task has settled, or ctx ends.
	Drain(ctx context.Context) error

	Size() int
	TaskCount() int
	QueueDepth() int
	InFlight() int
}

type funcWorker[I any, O any] struct {
	id int
	fn TaskFunction[I, O]
}

// FuncFactory builds a WorkerFactory whose workers run fn on a fresh
// goroutine per payload.
func FuncFactory[I any, O any](fn TaskFunction[I, O]) WorkerFactory[I, O] {
	return func(id int) (Worker[I, O], error) {
		return &funcWorker[I, O]{id: id, fn: fn}, nil
	}
}

func (w *funcWorker[I, O]) Post(ctx context.Context, payload I, done func(O, error)) {
	go func() {
		done(w.fn(ctx, w.id, payload))
	}()
}
