package executor

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/model"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
)

var _ client.JobHandle = (*jobHandle)(nil)

type jobHandle struct {
	id model.JobID

	// result and err are written once before status leaves
	// JobStatusPending and are read-only afterwards.
	status atomic.Int32
	result model.ResultRecord
	err    error

	once   sync.Once
	doneCh chan struct{}
}

func newJobHandle(id model.JobID) *jobHandle {
	h := &jobHandle{
		id:     id,
		doneCh: make(chan struct{}),
	}
	h.status.Store(int32(model.JobStatusPending))
	return h
}

func (h *jobHandle) code() model.JobStatusCode {
	return model.JobStatusCode(h.status.Load())
}

func (h *jobHandle) finish(result model.ResultRecord) {
	h.once.Do(func() {
		h.result = result
		h.status.Store(int32(model.JobStatusDone))
		close(h.doneCh)
	})
}

func (h *jobHandle) fail(err error) {
	h.once.Do(func() {
		h.err = err
		h.status.Store(int32(model.JobStatusFailed))
		close(h.doneCh)
	})
}

func (h *jobHandle) ID() model.JobID {
	return h.id
}

func (h *jobHandle) IsDone() bool {
	return h.code() == model.JobStatusDone
}

func (h *jobHandle) IsFailed() bool {
	return h.code() == model.JobStatusFailed
}

func (h *jobHandle) Result(propagate bool) (model.ResultRecord, error) {
	switch h.code() {
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

func (h *jobHandle) Err() error {
	if h.code() != model.JobStatusFailed {
		return nil
	}
	return h.err
}

// Done returns a channel closed when the job reaches a terminal state.
func (h *jobHandle) Done() <-chan struct{} {
	return h.doneCh
}
