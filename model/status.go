package model

// JobStatusCode is the lifecycle state of a submitted job.
type JobStatusCode int32

// Among these statuses, only JobStatusPending is not a terminal state.
// A job moves out of it exactly once.
const (
	JobStatusPending = JobStatusCode(iota + 1)
	JobStatusDone
	JobStatusFailed
)

func (c JobStatusCode) String() string {
	switch c {
	case JobStatusPending:
		return "pending"
	case JobStatusDone:
		return "done"
	case JobStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InTerminateState returns whether the job will never change state again.
func (c JobStatusCode) InTerminateState() bool {
	switch c {
	case JobStatusDone, JobStatusFailed:
		return true
	default:
		return false
	}
}
