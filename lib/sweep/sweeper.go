package sweep

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/lib/collect"
	"github.com/hanfei1991/jobsweep/lib/config"
	"github.com/hanfei1991/jobsweep/lib/convergence"
	"github.com/hanfei1991/jobsweep/lib/dispatch"
	"github.com/hanfei1991/jobsweep/lib/poll"
	"github.com/hanfei1991/jobsweep/lib/report"
	"github.com/hanfei1991/jobsweep/model"
	"github.com/hanfei1991/jobsweep/pkg/autoid"
	"github.com/hanfei1991/jobsweep/pkg/clock"
	"github.com/hanfei1991/jobsweep/pkg/notifier"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

// minClusterCount is the smallest number of clusters worth trying.
const minClusterCount = 2

// BatchResult is the outcome of one fan-out.
type BatchResult struct {
	BatchID model.BatchID
	// Records holds the result of every successful job in submission
	// order. Failed jobs leave no gap.
	Records  []model.ResultRecord
	Failures []model.Failure
	Elapsed  time.Duration
}

// SearchResult is a BatchResult that was watched while running.
type SearchResult struct {
	BatchResult
	// Distinct holds the distinct records in the order they were first
	// observed.
	Distinct []model.ResultRecord
}

// Sweeper fans work items out to a Backend and gathers the results.
//
// A Sweeper can run any number of batches, one after another or
// concurrently. Close it to release its progress notifier.
type Sweeper struct {
	dispatcher   *dispatch.Dispatcher
	collector    *collect.Collector
	batchPoller  *poll.Poller
	searchPoller *poll.Poller
	clock        clock.Clock
	progress     *notifier.Notifier[poll.ProgressEvent]
	batchIDs     *autoid.IDAllocator

	trackerMetrics *convergence.Metrics

	onProgress poll.ProgressFunc

	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

type options struct {
	clock      clock.Clock
	factory    promutil.Factory
	onProgress poll.ProgressFunc
}

// Option configures a Sweeper.
type Option func(*options)

// WithClock replaces the clock driving the pollers.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithMetrics registers the metrics of the Sweeper and of everything it
// owns through factory.
func WithMetrics(factory promutil.Factory) Option {
	return func(o *options) { o.factory = factory }
}

// WithProgress replaces the default progress logging. fn is called from
// the goroutine running the batch, so concurrent batches call it
// concurrently.
func WithProgress(fn poll.ProgressFunc) Option {
	return func(o *options) { o.onProgress = fn }
}

// NewSweeper creates a Sweeper submitting to backend.
func NewSweeper(backend client.Backend, cfg config.PollConfig, opts ...Option) *Sweeper {
	o := &options{
		clock:   clock.New(),
		factory: promutil.NewNopFactory(),
	}
	for _, opt := range opts {
		opt(o)
	}
	cfg = cfg.Adjust()

	progress := notifier.NewNotifier[poll.ProgressEvent]()
	pending := poll.NewPendingGauge(o.factory)
	newPoller := func(interval config.Duration) *poll.Poller {
		return poll.NewPoller(interval.Duration(),
			poll.WithClock(o.clock),
			poll.WithTimeout(cfg.Timeout.Duration()),
			poll.WithNotifier(progress),
			poll.WithPendingGauge(pending))
	}

	s := &Sweeper{
		dispatcher:   dispatch.NewDispatcher(backend, o.factory),
		collector:    collect.NewCollector(o.factory),
		batchPoller:  newPoller(cfg.BatchInterval),
		searchPoller: newPoller(cfg.SearchInterval),
		clock:        o.clock,
		progress:     progress,
		batchIDs:     autoid.NewIDAllocator("batch"),
		onProgress:   o.onProgress,

		trackerMetrics: convergence.NewMetrics(o.factory),

		batches: o.factory.NewCounterVec(prometheus.CounterOpts{
			Subsystem: "sweep",
			Name:      "batches_total",
			Help:      "Number of batches run by kind and outcome.",
		}, []string{"kind", "outcome"}),
		batchDuration: o.factory.NewHistogram(prometheus.HistogramOpts{
			Subsystem: "sweep",
			Name:      "batch_duration_seconds",
			Help:      "Wall time from first submission to collection.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 18),
		}),
	}
	return s
}

// SubscribeProgress returns a receiver of the progress of every batch.
// Close the receiver when done with it.
func (s *Sweeper) SubscribeProgress() *notifier.Receiver[poll.ProgressEvent] {
	return s.progress.NewReceiver()
}

// Close stops delivering progress events.
func (s *Sweeper) Close() {
	s.progress.Close()
}

// RunBatch submits task once per item, waits until every job is terminal
// and returns the results of the successful ones. Each job receives extra
// followed by its item.
func (s *Sweeper) RunBatch(
	ctx context.Context,
	task string,
	items []model.WorkItem,
	extra ...any,
) (*BatchResult, error) {
	b, err := s.start(ctx, "batch", task, items, extra)
	if err != nil {
		return nil, err
	}
	if err := s.batchPoller.Wait(ctx, b.handles, b.progress); err != nil {
		s.abort(b, err)
		return nil, errors.Trace(err)
	}
	return s.finish(b), nil
}

// RunSearch is RunBatch rendering the distinct results to reporter every
// time a new one shows up. reporter may be nil.
func (s *Sweeper) RunSearch(
	ctx context.Context,
	task string,
	items []model.WorkItem,
	reporter report.Reporter,
	extra ...any,
) (*SearchResult, error) {
	b, err := s.start(ctx, "search", task, items, extra)
	if err != nil {
		return nil, err
	}

	tracker := convergence.NewTrackerWithMetrics(reporter, s.trackerMetrics)
	hook := func(context.Context) error {
		tracker.Update(b.handles)
		return nil
	}
	if err := s.searchPoller.WaitWithHook(ctx, b.handles, b.progress, hook); err != nil {
		s.abort(b, err)
		return nil, errors.Trace(err)
	}
	return &SearchResult{
		BatchResult: *s.finish(b),
		Distinct:    tracker.Seen(),
	}, nil
}

// ClusterSearch clusters functions once for every cluster count in
// [2, maxCentroid) and watches the scores converge. An empty range runs an
// empty batch.
func (s *Sweeper) ClusterSearch(
	ctx context.Context,
	functions any,
	maxCentroid int,
	reporter report.Reporter,
) (*SearchResult, error) {
	var items []model.WorkItem
	for count := minClusterCount; count < maxCentroid; count++ {
		items = append(items, count)
	}
	return s.RunSearch(ctx, model.TaskGetSingleCluster, items, reporter, functions)
}

type batch struct {
	id       model.BatchID
	kind     string
	task     string
	handles  []client.JobHandle
	start    clock.MonotonicTime
	progress poll.ProgressFunc
}

func (s *Sweeper) start(
	ctx context.Context,
	kind, task string,
	items []model.WorkItem,
	extra []any,
) (*batch, error) {
	b := &batch{
		id:    s.batchIDs.AllocID(),
		kind:  kind,
		task:  task,
		start: s.clock.Mono(),
	}
	b.progress = s.onProgress
	if b.progress == nil {
		b.progress = logProgress(b.id)
	}

	handles, err := s.dispatcher.SubmitAll(ctx, items, task, extra...)
	if err != nil {
		s.abort(b, err)
		return nil, errors.Trace(err)
	}
	b.handles = handles
	log.L().Info("batch started",
		zap.String("batch-id", b.id),
		zap.String("kind", kind),
		zap.String("task", task),
		zap.Int("jobs", len(handles)))
	return b, nil
}

func (s *Sweeper) finish(b *batch) *BatchResult {
	records, failures := s.collector.Collect(b.handles)
	elapsed := s.clock.Mono().Sub(b.start)

	s.batches.WithLabelValues(b.kind, "completed").Inc()
	s.batchDuration.Observe(elapsed.Seconds())
	log.L().Info("batch finished",
		zap.String("batch-id", b.id),
		zap.String("task", b.task),
		zap.Int("submitted", len(b.handles)),
		zap.Int("succeeded", len(records)),
		zap.Int("failed", len(failures)),
		zap.Duration("elapsed", elapsed))

	return &BatchResult{
		BatchID:  b.id,
		Records:  records,
		Failures: failures,
		Elapsed:  elapsed,
	}
}

func (s *Sweeper) abort(b *batch, err error) {
	s.batches.WithLabelValues(b.kind, "aborted").Inc()
	log.L().Warn("batch aborted",
		zap.String("batch-id", b.id),
		zap.String("task", b.task),
		zap.Int("submitted", len(b.handles)),
		zap.Duration("elapsed", s.clock.Mono().Sub(b.start)),
		zap.Error(err))
}

// logProgress logs the progress of a batch whenever the done count moves.
func logProgress(id model.BatchID) poll.ProgressFunc {
	last := -1
	return func(done, total int) {
		if done == last {
			return
		}
		last = done
		log.L().Info("batch progress",
			zap.String("batch-id", id),
			zap.Int("done", done),
			zap.Int("total", total))
	}
}
