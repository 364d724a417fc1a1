package convergence

import (
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/lib/report"
	"github.com/hanfei1991/jobsweep/model"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

// SeenSet is the ordered list of distinct results observed so far.
// No two entries are equal by value.
type SeenSet []model.ResultRecord

// Contains reports whether an entry equal to r is present.
func (s SeenSet) Contains(r model.ResultRecord) bool {
	for _, seen := range s {
		if seen.Equal(r) {
			return true
		}
	}
	return false
}

// Tracker accumulates the distinct results of a batch while it is still
// running and re-renders them whenever a new one shows up.
//
// A Tracker is owned by one polling loop and is not safe for concurrent use.
type Tracker struct {
	reporter report.Reporter

	seen SeenSet
	// examined[i] is set once handles[i] is terminal and has been read.
	examined []bool

	*Metrics
}

// Metrics are the counters of trackers. Trackers that report to the same
// registry share one Metrics.
type Metrics struct {
	renders      prometheus.Counter
	renderErrors prometheus.Counter
	distinct     prometheus.Gauge
}

// NewMetrics registers tracker metrics through factory, which may be nil.
func NewMetrics(factory promutil.Factory) *Metrics {
	if factory == nil {
		factory = promutil.NewNopFactory()
	}
	return &Metrics{
		renders: factory.NewCounter(prometheus.CounterOpts{
			Subsystem: "convergence",
			Name:      "reporter_renders_total",
			Help:      "Number of times the reporter was invoked.",
		}),
		renderErrors: factory.NewCounter(prometheus.CounterOpts{
			Subsystem: "convergence",
			Name:      "reporter_errors_total",
			Help:      "Number of reporter invocations that returned an error.",
		}),
		distinct: factory.NewGauge(prometheus.GaugeOpts{
			Subsystem: "convergence",
			Name:      "distinct_results",
			Help:      "Number of distinct results seen by the last updated tracker.",
		}),
	}
}

// NewTracker creates a Tracker with its own metrics. reporter and factory
// may be nil.
func NewTracker(reporter report.Reporter, factory promutil.Factory) *Tracker {
	return NewTrackerWithMetrics(reporter, NewMetrics(factory))
}

// NewTrackerWithMetrics creates a Tracker reporting to m.
func NewTrackerWithMetrics(reporter report.Reporter, m *Metrics) *Tracker {
	return &Tracker{
		reporter: reporter,
		Metrics:  m,
	}
}

// Update examines the handles that finished successfully since the last
// call and appends their results to the seen set unless an equal record is
// already there. handles must be the same batch, in the same order, on
// every call. changed is true iff at least one record was appended, in
// which case the reporter has been invoked with the new snapshot.
func (t *Tracker) Update(handles []client.JobHandle) (snapshot SeenSet, changed bool) {
	if len(t.examined) < len(handles) {
		t.examined = append(t.examined, make([]bool, len(handles)-len(t.examined))...)
	}

	for i, h := range handles {
		if t.examined[i] {
			continue
		}
		status := client.Status(h)
		if !status.InTerminateState() {
			continue
		}
		t.examined[i] = true
		if status == model.JobStatusFailed {
			continue
		}

		record, err := h.Result(false)
		if err != nil {
			log.L().Warn("fetch result failed, ignore it",
				zap.Int("index", i),
				zap.String("job-id", h.ID()),
				zap.Error(err))
			continue
		}
		if t.seen.Contains(record) {
			continue
		}
		t.seen = append(t.seen, record)
		changed = true
	}

	snapshot = t.Seen()
	if changed {
		t.distinct.Set(float64(len(t.seen)))
		t.render(snapshot)
	}
	return snapshot, changed
}

func (t *Tracker) render(snapshot SeenSet) {
	if t.reporter == nil {
		return
	}
	t.renders.Inc()
	if err := t.reporter.Render(snapshot); err != nil {
		t.renderErrors.Inc()
		log.L().Warn("render results failed", zap.Int("distinct", len(snapshot)), zap.Error(err))
	}
}

// Seen returns a copy of the seen set.
func (t *Tracker) Seen() SeenSet {
	return append(SeenSet(nil), t.seen...)
}
