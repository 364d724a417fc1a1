package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/pingcap/errors"
	"go.uber.org/atomic"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/model"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
)

var (
	_ client.Backend   = (*Backend)(nil)
	_ client.JobHandle = (*Handle)(nil)
)

// Handle is a JobHandle whose state is driven by the test.
type Handle struct {
	id model.JobID

	mu     sync.RWMutex
	status model.JobStatusCode
	result model.ResultRecord
	err    error

	statusQueries atomic.Int64
}

// NewHandle returns a pending handle.
func NewHandle(id model.JobID) *Handle {
	return &Handle{
		id:     id,
		status: model.JobStatusPending,
	}
}

// NewDoneHandle returns a handle that already finished with result.
func NewDoneHandle(id model.JobID, result model.ResultRecord) *Handle {
	h := NewHandle(id)
	h.Finish(result)
	return h
}

// NewFailedHandle returns a handle that already failed with err.
func NewFailedHandle(id model.JobID, err error) *Handle {
	h := NewHandle(id)
	h.Fail(err)
	return h
}

// Finish moves a pending handle to done. It is a no-op on a terminal handle.
func (h *Handle) Finish(result model.ResultRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.InTerminateState() {
		return
	}
	h.status = model.JobStatusDone
	h.result = result
}

// Fail moves a pending handle to failed. It is a no-op on a terminal handle.
func (h *Handle) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.InTerminateState() {
		return
	}
	h.status = model.JobStatusFailed
	h.err = err
}

// StatusQueries returns how many times IsDone and IsFailed were called.
func (h *Handle) StatusQueries() int64 {
	return h.statusQueries.Load()
}

func (h *Handle) ID() model.JobID {
	return h.id
}

func (h *Handle) IsDone() bool {
	h.statusQueries.Inc()
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status == model.JobStatusDone
}

func (h *Handle) IsFailed() bool {
	h.statusQueries.Inc()
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status == model.JobStatusFailed
}

func (h *Handle) Result(propagate bool) (model.ResultRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch h.status {
	case model.JobStatusDone:
		return h.result, nil
	case model.JobStatusFailed:
		if propagate {
			return nil, h.err
		}
		return nil, nil
	default:
		return nil, derror.ErrJobNotTerminal.GenWithStackByArgs(h.id)
	}
}

func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Submission records one call to Backend.Submit.
type Submission struct {
	Task string
	Args []any
}

// Backend hands out pending Handles and remembers what was submitted.
// Tests finish or fail the handles through Handles.
type Backend struct {
	mu          sync.Mutex
	handles     []*Handle
	submissions []Submission

	// FailSubmitAt makes the n-th submission (0-based) return an error.
	// A negative value disables it.
	FailSubmitAt int
}

// NewBackend creates a fake Backend.
func NewBackend() *Backend {
	return &Backend{FailSubmitAt: -1}
}

func (b *Backend) Submit(ctx context.Context, task string, args ...any) (client.JobHandle, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Trace(ctx.Err())
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailSubmitAt == len(b.submissions) {
		return nil, errors.New("fake backend unavailable")
	}

	h := NewHandle(fmt.Sprintf("fake-%d", len(b.handles)))
	b.handles = append(b.handles, h)
	b.submissions = append(b.submissions, Submission{Task: task, Args: args})
	return h, nil
}

// Handles returns the handles submitted so far, in submission order.
func (b *Backend) Handles() []*Handle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Handle(nil), b.handles...)
}

// Submissions returns the recorded submissions, in order.
func (b *Backend) Submissions() []Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Submission(nil), b.submissions...)
}

// ToJobHandles converts fake handles to the client interface.
func ToJobHandles(handles ...*Handle) []client.JobHandle {
	ret := make([]client.JobHandle, 0, len(handles))
	for _, h := range handles {
		ret = append(ret, h)
	}
	return ret
}
