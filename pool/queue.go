package pool

const minQueueCapacity = 16

// taskQueue is a growable FIFO ring buffer. Only the pool's coordinator
// goroutine touches it, so it carries no locking.
type taskQueue[T any] struct {
	buf  []T
	head int
	size int
}

func (q *taskQueue[T]) push(v T) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
}

func (q *taskQueue[T]) pop() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

func (q *taskQueue[T]) len() int {
	return q.size
}

func (q *taskQueue[T]) grow() {
	capacity := 2 * len(q.buf)
	if capacity < minQueueCapacity {
		capacity = minQueueCapacity
	}
	next := make([]T, capacity)
	for i := 0; i < q.size; i++ {
		next[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = next
	q.head = 0
}
