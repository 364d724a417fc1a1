//go:generate mockgen -destination mock/backend_mock.go -package mock github.com/hanfei1991/jobsweep/client Backend,JobHandle

package client

import (
	"context"

	"github.com/hanfei1991/jobsweep/model"
)

// Backend runs units of work out of the caller's goroutine and reports
// their completion asynchronously.
type Backend interface {
	// Submit enqueues one job running task with args and returns a handle
	// to it. An error means the job was not enqueued.
	Submit(ctx context.Context, task string, args ...any) (JobHandle, error)
}

// JobHandle references one submitted job.
//
// Status queries must not change backend state: calling IsDone or IsFailed
// any number of times yields the same answer once the job is terminal.
type JobHandle interface {
	ID() model.JobID

	// IsDone returns true once the job has finished successfully.
	IsDone() bool
	// IsFailed returns true once the job has finished with an error.
	IsFailed() bool

	// Result returns the record produced by a successful job.
	// If the job failed, Result returns the job's error when propagate is
	// true and (nil, nil) otherwise. Calling Result on a pending job
	// returns ErrJobNotTerminal.
	Result(propagate bool) (model.ResultRecord, error)

	// Err returns the failure reason of a failed job, or nil.
	Err() error
}

// IsTerminal returns whether the job behind h has finished, successfully
// or not.
func IsTerminal(h JobHandle) bool {
	return h.IsDone() || h.IsFailed()
}

// Status folds the two status queries of h into one code.
func Status(h JobHandle) model.JobStatusCode {
	switch {
	case h.IsFailed():
		return model.JobStatusFailed
	case h.IsDone():
		return model.JobStatusDone
	default:
		return model.JobStatusPending
	}
}
