package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

type task[I any, O any] struct {
	ctx     context.Context
	payload I
	future  *Future[O]
}

// dispatchPool coordinates a fixed set of workers from a single goroutine.
// The idle set and the FIFO queue are touched only by run; submissions and
// worker completions arrive as messages on submitCh and doneCh.
type dispatchPool[I any, O any] struct {
	workers []Worker[I, O]

	submitCh chan *task[I, O]
	doneCh   chan int
	stopCh   chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	pending    pendingTracker
	queueDepth atomic.Int64
	inFlight   atomic.Int64
}

// New builds a pool of size workers, created eagerly via factory, and
// starts its coordinator. All workers start idle.
func New[I any, O any](factory WorkerFactory[I, O], size int) (WorkerPool[I, O], error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: worker count %d, need at least 1", ErrInvalidConfiguration, size)
	}

	workers := make([]Worker[I, O], size)
	for i := range workers {
		w, err := factory(i)
		if err != nil {
			return nil, fmt.Errorf("creating worker %d: %w", i, err)
		}
		workers[i] = w
	}

	p := &dispatchPool[I, O]{
		workers:  workers,
		submitCh: make(chan *task[I, O]),
		doneCh:   make(chan int),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go p.run()

	return p, nil
}

func (p *dispatchPool[I, O]) Submit(ctx context.Context, payload I) *Future[O] {
	t := &task[I, O]{ctx: ctx, payload: payload, future: newFuture[O]()}
	p.pending.inc()
	select {
	case p.submitCh <- t:
	case <-p.stopped:
		p.reject(t)
	}
	return t.future
}

func (p *dispatchPool[I, O]) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopped)
		close(p.stopCh)
	})
}

func (p *dispatchPool[I, O]) Drain(ctx context.Context) error {
	return p.pending.wait(ctx)
}

func (p *dispatchPool[I, O]) Size() int       { return len(p.workers) }
func (p *dispatchPool[I, O]) TaskCount() int  { return p.pending.len() }
func (p *dispatchPool[I, O]) QueueDepth() int { return int(p.queueDepth.Load()) }
func (p *dispatchPool[I, O]) InFlight() int   { return int(p.inFlight.Load()) }

func (p *dispatchPool[I, O]) run() {
	idle := make([]int, 0, len(p.workers))
	for i := len(p.workers) - 1; i >= 0; i-- {
		idle = append(idle, i)
	}

	var queue taskQueue[*task[I, O]]
	inFlight := 0
	stopping := false
	stopCh := p.stopCh

	for {
		select {
		case t := <-p.submitCh:
			if stopping {
				p.reject(t)
				break
			}
			if n := len(idle); n > 0 {
				id := idle[n-1]
				idle = idle[:n-1]
				inFlight++
				p.dispatch(id, t)
			} else {
				queue.push(t)
			}
			p.publish(inFlight, queue.len())

		case id := <-p.doneCh:
			if t, ok := queue.pop(); ok {
				// Rebind without a round trip through the idle set:
				// the queue head has waited longest.
				p.dispatch(id, t)
			} else {
				idle = append(idle, id)
				inFlight--
			}
			p.publish(inFlight, queue.len())
			if stopping && inFlight == 0 {
				return
			}

		case <-stopCh:
			stopping = true
			stopCh = nil
			for {
				t, ok := queue.pop()
				if !ok {
					break
				}
				p.reject(t)
			}
			p.publish(inFlight, 0)
			if inFlight == 0 {
				return
			}
		}
	}
}

// dispatch binds a worker to a task. The done handle is the task's one-shot
// completion channel: a worker calling it twice cannot double-settle.
func (p *dispatchPool[I, O]) dispatch(workerID int, t *task[I, O]) {
	var once sync.Once
	done := func(out O, err error) {
		once.Do(func() {
			t.future.settle(out, err)
			p.pending.dec()
			p.doneCh <- workerID
		})
	}
	p.workers[workerID].Post(t.ctx, t.payload, done)
}

func (p *dispatchPool[I, O]) reject(t *task[I, O]) {
	var zero O
	t.future.settle(zero, ErrPoolStopped)
	p.pending.dec()
}

func (p *dispatchPool[I, O]) publish(inFlight, queued int) {
	p.inFlight.Store(int64(inFlight))
	p.queueDepth.Store(int64(queued))
}

// pendingTracker counts accepted-but-unsettled tasks and lets Drain wait
// for the count to reach zero.
type pendingTracker struct {
	mu    sync.Mutex
	count int
	quiet chan struct{} // non-nil while count > 0, closed when it returns to 0
}

func (t *pendingTracker) inc() {
	t.mu.Lock()
	t.count++
	if t.quiet == nil {
		t.quiet = make(chan struct{})
	}
	t.mu.Unlock()
}

func (t *pendingTracker) dec() {
	t.mu.Lock()
	t.count--
	if t.count == 0 {
		close(t.quiet)
		t.quiet = nil
	}
	t.mu.Unlock()
}

func (t *pendingTracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

func (t *pendingTracker) wait(ctx context.Context) error {
	t.mu.Lock()
	quiet := t.quiet
	t.mu.Unlock()
	if quiet == nil {
		return nil
	}
	select {
	case <-quiet:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
