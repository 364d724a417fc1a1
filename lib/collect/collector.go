package collect

import (
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/model"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

const (
	statusLabel     = "status"
	statusSucceeded = "succeeded"
	statusFailed    = "failed"
)

// Collector extracts the results of a finished batch.
//
// Failed jobs never reach the returned records and never turn into an
// error for the caller: a batch is best effort and partial success is an
// acceptable outcome. They are reported separately as Failures, logged and
// counted so that they stay diagnosable.
type Collector struct {
	finished *prometheus.CounterVec
}

// NewCollector creates a Collector. factory may be nil.
func NewCollector(factory promutil.Factory) *Collector {
	if factory == nil {
		factory = promutil.NewNopFactory()
	}
	return &Collector{
		finished: factory.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "collect",
			Name:      "jobs_finished_total",
			Help:      "Number of collected jobs by final status.",
		}, []string{statusLabel}),
	}
}

// Collect walks handles in submission order and returns the record of
// every successful job, in that order, together with the failures.
// Handles that are not terminal yet are skipped.
func (c *Collector) Collect(handles []client.JobHandle) ([]model.ResultRecord, []model.Failure) {
	records := make([]model.ResultRecord, 0, len(handles))
	var failures []model.Failure

	for i, h := range handles {
		switch client.Status(h) {
		case model.JobStatusFailed:
			failure := model.Failure{Index: i, JobID: h.ID()}
			if err := h.Err(); err != nil {
				failure.Reason = err.Error()
			}
			failures = append(failures, failure)
			c.finished.WithLabelValues(statusFailed).Inc()
			log.L().Warn("job failed, result dropped",
				zap.Int("index", i),
				zap.String("job-id", h.ID()),
				zap.String("reason", failure.Reason))
		case model.JobStatusDone:
			record, err := h.Result(false)
			if err != nil {
				// the backend claims success but cannot hand the result over
				failures = append(failures, model.Failure{Index: i, JobID: h.ID(), Reason: err.Error()})
				c.finished.WithLabelValues(statusFailed).Inc()
				log.L().Warn("fetch result failed, result dropped",
					zap.Int("index", i),
					zap.String("job-id", h.ID()),
					zap.Error(err))
				continue
			}
			records = append(records, record)
			c.finished.WithLabelValues(statusSucceeded).Inc()
		default:
			log.L().Warn("job is not terminal, skip it",
				zap.Int("index", i),
				zap.String("job-id", h.ID()))
		}
	}

	if len(failures) > 0 {
		log.L().Info("batch collected with failures",
			zap.Int("succeeded", len(records)),
			zap.Int("failed", len(failures)))
	}
	return records, failures
}
