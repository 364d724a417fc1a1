package dispatch

import (
	"context"

	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/model"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

// Dispatcher submits one job per work item to a Backend.
//
// It does not retry, throttle or buffer: a full backlog is the backend's
// business. A submission error aborts the batch immediately; jobs that were
// already enqueued keep running on the backend.
type Dispatcher struct {
	backend client.Backend

	submitted prometheus.Counter
}

// NewDispatcher creates a Dispatcher. factory may be nil.
func NewDispatcher(backend client.Backend, factory promutil.Factory) *Dispatcher {
	if factory == nil {
		factory = promutil.NewNopFactory()
	}
	return &Dispatcher{
		backend: backend,
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Subsystem: "dispatch",
			Name:      "jobs_submitted_total",
			Help:      "Number of jobs handed to the job backend.",
		}),
	}
}

// SubmitAll submits task once per item. Each job receives extra followed
// by its item as arguments. The i-th returned handle belongs to items[i].
func (d *Dispatcher) SubmitAll(
	ctx context.Context,
	items []model.WorkItem,
	task string,
	extra ...any,
) ([]client.JobHandle, error) {
	if d.backend == nil {
		return nil, derror.ErrNilBackend.GenWithStackByArgs()
	}
	if task == "" {
		return nil, derror.ErrEmptyTask.GenWithStackByArgs()
	}

	handles := make([]client.JobHandle, 0, len(items))
	for i, item := range items {
		args := make([]any, 0, len(extra)+1)
		args = append(args, extra...)
		args = append(args, item)

		h, err := d.backend.Submit(ctx, task, args...)
		if err != nil {
			log.L().Warn("submit job failed, abort the batch",
				zap.String("task", task),
				zap.Int("index", i),
				zap.Int("submitted", len(handles)),
				zap.Error(err))
			return nil, derror.ErrSubmitJob.Wrap(err).GenWithStackByArgs(i)
		}
		d.submitted.Inc()
		handles = append(handles, h)
	}

	log.L().Info("batch submitted",
		zap.String("task", task),
		zap.Int("jobs", len(handles)))
	return handles, nil
}
