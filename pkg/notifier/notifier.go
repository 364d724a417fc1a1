package notifier

import (
	"context"
	"sync"

	"github.com/pingcap/errors"
	"go.uber.org/atomic"

	"github.com/hanfei1991/jobsweep/pkg/containers"
)

type receiverID = int64

const defaultReceiverBufferSize = 16

// Notifier is the sending endpoint of a single-producer-multiple-consumer
// notification mechanism. Notify never blocks the producer: events are
// queued and fanned out to the receivers by a background goroutine, in
// the order they were produced.
type Notifier[T any] struct {
	receivers sync.Map // receiverID -> *Receiver[T]
	nextID    atomic.Int64

	queue      *containers.SliceQueue[T]
	bufferSize int

	closeCh       chan struct{}
	synchronizeCh chan struct{}
	closeOnce     sync.Once
}

// Receiver is the receiving endpoint of a single-producer-multiple-consumer
// notification mechanism.
type Receiver[T any] struct {
	id receiverID
	C  chan T

	closeOnce sync.Once
	closed    atomic.Bool

	// closeCh unblocks a delivery stuck on a full C.
	closeCh     chan struct{}
	closeChOnce sync.Once

	notifier *Notifier[T]
}

func (r *Receiver[T]) close() {
	r.closed.Store(true)
	r.closeOnce.Do(
		func() {
			close(r.C)
		})
}

// Close closes the receiver. Events not yet delivered to it are dropped.
func (r *Receiver[T]) Close() {
	r.closed.Store(true)
	r.closeChOnce.Do(func() {
		close(r.closeCh)
	})
	// wait until the fan-out goroutine is not in the middle of a delivery
	select {
	case <-r.notifier.synchronizeCh:
	case <-r.notifier.closeCh:
	}

	r.notifier.receivers.Delete(r.id)
	r.closeOnce.Do(
		func() {
			close(r.C)
		})
}

// NewNotifier creates a new Notifier.
func NewNotifier[T any]() *Notifier[T] {
	return NewNotifierWithBuffer[T](defaultReceiverBufferSize)
}

// NewNotifierWithBuffer creates a new Notifier whose receivers buffer up
// to size events.
func NewNotifierWithBuffer[T any](size int) *Notifier[T] {
	if size < 0 {
		size = 0
	}
	ret := &Notifier[T]{
		receivers:     sync.Map{},
		queue:         containers.NewSliceQueue[T](),
		bufferSize:    size,
		closeCh:       make(chan struct{}),
		synchronizeCh: make(chan struct{}),
	}

	go ret.run()
	return ret
}

// NewReceiver creates a new Receiver associated with
// the given Notifier.
func (n *Notifier[T]) NewReceiver() *Receiver[T] {
	ch := make(chan T, n.bufferSize)
	receiver := &Receiver[T]{
		id:       n.nextID.Add(1),
		C:        ch,
		closeCh:  make(chan struct{}),
		notifier: n,
	}

	n.receivers.Store(receiver.id, receiver)
	return receiver
}

// Notify sends a new notification event.
func (n *Notifier[T]) Notify(event T) {
	n.queue.Add(event)
}

// Close closes the notifier and every receiver created from it.
func (n *Notifier[T]) Close() {
	n.closeOnce.Do(func() {
		close(n.closeCh)

		var receivers []*Receiver[T]
		n.receivers.Range(func(_, value any) bool {
			receiver := value.(*Receiver[T])
			receivers = append(receivers, receiver)
			return true
		})

		<-n.synchronizeCh

		for _, receiver := range receivers {
			receiver.close()
		}
	})
}

// Flush blocks until every pending notification has been handed to the
// receivers.
func (n *Notifier[T]) Flush(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		case _, ok := <-n.synchronizeCh:
			if !ok {
				// closed, nothing will be delivered anymore
				return nil
			}
		}

		if n.queue.Size() == 0 {
			return nil
		}
	}
}

func (n *Notifier[T]) run() {
	defer func() {
		close(n.synchronizeCh)
	}()

	for {
		select {
		case <-n.closeCh:
			return
		case n.synchronizeCh <- struct{}{}:
			// no-op here. Just a synchronization barrier.
		case <-n.queue.C:
		Inner:
			for {
				event, ok := n.queue.Pop()
				if !ok {
					break Inner
				}

				n.receivers.Range(func(_, value any) bool {
					receiver := value.(*Receiver[T])

					if receiver.closed.Load() {
						return true
					}

					select {
					case <-n.closeCh:
						return false
					case <-receiver.closeCh:
						// the receiver is closing, drop the event for it.
					case receiver.C <- event:
						// send the event to the receiver.
					}
					return true
				})

				select {
				case <-n.closeCh:
					return
				default:
				}
			}
		}
	}
}
