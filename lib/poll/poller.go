package poll

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/pkg/clock"
	"github.com/hanfei1991/jobsweep/pkg/containers"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
	"github.com/hanfei1991/jobsweep/pkg/notifier"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

const (
	// maxLoggedPendingJobs caps the job ids attached to a timeout log.
	maxLoggedPendingJobs = 8
	minInterval          = time.Millisecond
)

// ProgressFunc receives the number of terminal jobs out of total.
type ProgressFunc func(done, total int)

// HookFunc is extra work run on every polling iteration.
type HookFunc func(ctx context.Context) error

// ProgressEvent is published to the poller's notifier, if any.
type ProgressEvent struct {
	Done  int
	Total int
}

// Poller observes a set of job handles until all of them are terminal.
//
// A Poller is driven by a single goroutine per call and keeps no state
// between calls, so one Poller can serve many batches one after another.
type Poller struct {
	interval time.Duration
	timeout  time.Duration
	clock    clock.Clock
	notifier *notifier.Notifier[ProgressEvent]

	pendingJobs prometheus.Gauge
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the clock used for ticking and timeouts.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithTimeout bounds the whole wait. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) { p.timeout = d }
}

// WithNotifier publishes every progress report to n as well.
func WithNotifier(n *notifier.Notifier[ProgressEvent]) Option {
	return func(p *Poller) { p.notifier = n }
}

// WithMetrics registers the poller's metrics through factory.
func WithMetrics(factory promutil.Factory) Option {
	return func(p *Poller) {
		p.pendingJobs = NewPendingGauge(factory)
	}
}

// WithPendingGauge reports the number of pending jobs to g. Pollers
// sharing one registry should share one gauge; it then holds the pending
// jobs of every running batch.
func WithPendingGauge(g prometheus.Gauge) Option {
	return func(p *Poller) { p.pendingJobs = g }
}

// NewPendingGauge creates the gauge used by WithMetrics.
func NewPendingGauge(factory promutil.Factory) prometheus.Gauge {
	return factory.NewGauge(prometheus.GaugeOpts{
		Subsystem: "poll",
		Name:      "jobs_pending",
		Help:      "Number of jobs of the current batch not yet terminal.",
	})
}

// NewPoller creates a Poller re-checking pending handles every interval.
func NewPoller(interval time.Duration, opts ...Option) *Poller {
	p := &Poller{
		interval: interval,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.interval < minInterval {
		p.interval = minInterval
	}
	if p.pendingJobs == nil {
		WithMetrics(promutil.NewNopFactory())(p)
	}
	return p
}

// Wait blocks until every handle is done or failed, reporting progress on
// each iteration that leaves jobs pending and once more, with done equal
// to total, when the batch is complete.
func (p *Poller) Wait(ctx context.Context, handles []client.JobHandle, onProgress ProgressFunc) error {
	return p.run(ctx, handles, onProgress, nil)
}

// WaitWithHook is Wait running hook after every sweep over the handles,
// including the final one that finds the batch complete. An error from
// hook stops the wait and is returned.
func (p *Poller) WaitWithHook(
	ctx context.Context,
	handles []client.JobHandle,
	onProgress ProgressFunc,
	hook HookFunc,
) error {
	return p.run(ctx, handles, onProgress, hook)
}

func (p *Poller) run(
	ctx context.Context,
	handles []client.JobHandle,
	onProgress ProgressFunc,
	hook HookFunc,
) error {
	total := len(handles)
	pending := containers.NewDeque[int]()
	for i := range handles {
		pending.Add(i)
	}

	start := p.clock.Now()
	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()

	// the gauge may be shared by concurrent batches, so only move it by
	// this batch's own counts and give back whatever is left on return.
	p.pendingJobs.Add(float64(total))
	done := 0
	defer func() {
		p.pendingJobs.Sub(float64(total - done))
	}()
	for {
		finished := sweep(handles, pending)
		done += finished
		p.pendingJobs.Sub(float64(finished))

		if hook != nil {
			if err := hook(ctx); err != nil {
				return errors.Trace(err)
			}
		}
		if done == total {
			break
		}
		p.report(onProgress, done, total)

		if p.timeout > 0 && p.clock.Since(start) >= p.timeout {
			log.L().Warn("batch timed out",
				zap.Int("pending", total-done),
				zap.Int("total", total),
				zap.Duration("timeout", p.timeout),
				zap.Strings("pending-jobs", pendingIDs(handles, pending)))
			return derror.ErrPollTimeout.GenWithStackByArgs(total-done, total, p.timeout)
		}

		select {
		case <-ctx.Done():
			return errors.Trace(ctx.Err())
		case <-ticker.C:
		}
	}

	p.report(onProgress, total, total)
	log.L().Debug("all jobs terminal",
		zap.Int("total", total),
		zap.Duration("elapsed", p.clock.Since(start)))
	return nil
}

// sweep checks every pending handle once and drops the terminal ones from
// pending. It returns how many were dropped. A terminal handle is never
// looked at again, so the running count can only grow.
func sweep(handles []client.JobHandle, pending *containers.Deque[int]) int {
	terminal := 0
	for n := pending.Size(); n > 0; n-- {
		idx, ok := pending.Pop()
		if !ok {
			break
		}
		if client.IsTerminal(handles[idx]) {
			terminal++
			continue
		}
		pending.Add(idx)
	}
	return terminal
}

func (p *Poller) report(onProgress ProgressFunc, done, total int) {
	if onProgress != nil {
		onProgress(done, total)
	}
	if p.notifier != nil {
		p.notifier.Notify(ProgressEvent{Done: done, Total: total})
	}
}

func pendingIDs(handles []client.JobHandle, pending *containers.Deque[int]) []string {
	ids := make([]string, 0, maxLoggedPendingJobs)
	for n := pending.Size(); n > 0; n-- {
		idx, ok := pending.Pop()
		if !ok {
			break
		}
		if len(ids) < maxLoggedPendingJobs {
			ids = append(ids, handles[idx].ID())
		}
		pending.Add(idx)
	}
	return ids
}
