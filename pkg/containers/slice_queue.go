package containers

import (
	"sync"
)

// SliceQueue is a FIFO queue implemented
// by a Go slice.
type SliceQueue[T any] struct {
	mu    sync.Mutex
	elems []T

	// C is a signal for non-empty queue.
	// A consumer can select for C and then Pop
	// as many elements as possible in a for-select
	// loop.
	// Refer to an example in TestSliceQueueConcurrentWriteAndRead.
	C chan struct{}

	pool *sync.Pool
}

// NewSliceQueue creates a new SliceQueue.
func NewSliceQueue[T any]() *SliceQueue[T] {
	return &SliceQueue[T]{
		C:    make(chan struct{}, 1),
		pool: &sync.Pool{},
	}
}

// Add adds elem to the end of the queue.
func (q *SliceQueue[T]) Add(elem T) {
	q.mu.Lock()

	if q.elems == nil {
		q.elems = q.allocateSlice()
	}

	q.elems = append(q.elems, elem)
	q.mu.Unlock()

	select {
	case q.C <- struct{}{}:
	default:
	}
}

// Pop removes the first elem and returns it.
func (q *SliceQueue[T]) Pop() (T, bool) {
	q.mu.Lock()

	var zero T
	if len(q.elems) == 0 {
		q.mu.Unlock()
		return zero, false
	}

	ret := q.elems[0]
	q.elems[0] = zero
	q.elems = q.elems[1:]

	if len(q.elems) == 0 {
		q.freeSlice(q.elems)
		q.elems = nil
	} else {
		// non empty queue
		select {
		case q.C <- struct{}{}:
		default:
		}
	}

	q.mu.Unlock()
	return ret, true
}

// Peek returns the first elem in the queue without removing it.
func (q *SliceQueue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.elems) == 0 {
		var zero T
		return zero, false
	}
	return q.elems[0], true
}

// Size returns the size of the queue.
func (q *SliceQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.elems)
}

func (q *SliceQueue[T]) allocateSlice() []T {
	ptr := q.pool.Get()
	if ptr == nil {
		return make([]T, 0, 16)
	}

	return (*(ptr.(*[]T)))[:0]
}

func (q *SliceQueue[T]) freeSlice(s []T) {
	if len(s) != 0 {
		panic("only empty slice allowed")
	}
	q.pool.Put(&s)
}
