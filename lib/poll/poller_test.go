package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	perrors "github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/lib/fake"
	"github.com/hanfei1991/jobsweep/model"
	"github.com/hanfei1991/jobsweep/pkg/clock"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
	"github.com/hanfei1991/jobsweep/pkg/notifier"
	"github.com/hanfei1991/jobsweep/pkg/promutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type progressRecorder struct {
	mu      sync.Mutex
	reports [][2]int
}

func (r *progressRecorder) onProgress(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, [2]int{done, total})
}

func (r *progressRecorder) snapshot() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]int(nil), r.reports...)
}

func newPendingHandles(n int) []*fake.Handle {
	ret := make([]*fake.Handle, 0, n)
	for i := 0; i < n; i++ {
		ret = append(ret, fake.NewHandle(model.JobID(string(rune('a'+i)))))
	}
	return ret
}

func TestWaitProgressMonotonic(t *testing.T) {
	t.Parallel()

	handles := newPendingHandles(10)
	go func() {
		for i, h := range handles {
			time.Sleep(2 * time.Millisecond)
			if i%3 == 0 {
				h.Fail(errors.New("boom"))
				continue
			}
			h.Finish(model.ResultRecord{"i": i})
		}
	}()

	rec := &progressRecorder{}
	p := NewPoller(time.Millisecond)
	err := p.Wait(context.Background(), fake.ToJobHandles(handles...), rec.onProgress)
	require.NoError(t, err)

	reports := rec.snapshot()
	require.NotEmpty(t, reports)
	last := 0
	completeCount := 0
	for _, r := range reports {
		require.Equal(t, len(handles), r[1])
		require.GreaterOrEqual(t, r[0], last)
		last = r[0]
		if r[0] == len(handles) {
			completeCount++
		}
	}
	require.Equal(t, 1, completeCount)
	require.Equal(t, [2]int{10, 10}, reports[len(reports)-1])
}

func TestWaitDoesNotRecheckTerminalHandles(t *testing.T) {
	t.Parallel()

	terminal := fake.NewDoneHandle("done", model.ResultRecord{"count": 2})
	failed := fake.NewFailedHandle("failed", errors.New("boom"))
	pending := fake.NewHandle("pending")

	var iterations int
	hook := func(ctx context.Context) error {
		iterations++
		if iterations == 5 {
			pending.Finish(model.ResultRecord{"count": 3})
		}
		return nil
	}

	p := NewPoller(time.Millisecond)
	err := p.WaitWithHook(context.Background(), fake.ToJobHandles(terminal, failed, pending), nil, hook)
	require.NoError(t, err)
	require.Equal(t, 6, iterations)

	// IsTerminal asks IsDone first, so a done handle costs one query and
	// a failed one two, both only on the first sweep.
	require.Equal(t, int64(1), terminal.StatusQueries())
	require.Equal(t, int64(2), failed.StatusQueries())

	// terminal handles keep answering the same way
	for i := 0; i < 3; i++ {
		require.True(t, terminal.IsDone())
		require.False(t, terminal.IsFailed())
		require.True(t, failed.IsFailed())
	}
}

func TestWaitWithHookRunsOnFinalIteration(t *testing.T) {
	t.Parallel()

	h := fake.NewDoneHandle("only", model.ResultRecord{})
	calls := 0
	rec := &progressRecorder{}
	p := NewPoller(time.Millisecond)
	err := p.WaitWithHook(context.Background(), fake.ToJobHandles(h), rec.onProgress, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, [][2]int{{1, 1}}, rec.snapshot())
}

func TestWaitWithHookError(t *testing.T) {
	t.Parallel()

	hookErr := errors.New("render failed")
	p := NewPoller(time.Millisecond)
	err := p.WaitWithHook(context.Background(), fake.ToJobHandles(fake.NewHandle("h")), nil, func(ctx context.Context) error {
		return hookErr
	})
	require.Equal(t, hookErr, perrors.Cause(err))
}

func TestWaitEmptyBatch(t *testing.T) {
	t.Parallel()

	rec := &progressRecorder{}
	err := NewPoller(time.Millisecond).Wait(context.Background(), nil, rec.onProgress)
	require.NoError(t, err)
	require.Equal(t, [][2]int{{0, 0}}, rec.snapshot())
}

func TestWaitOneIterationPerTick(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	progressCh := make(chan [2]int, 16)
	p := NewPoller(time.Second, WithClock(clk))

	handles := newPendingHandles(2)
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Wait(context.Background(), fake.ToJobHandles(handles...), func(done, total int) {
			progressCh <- [2]int{done, total}
		})
	}()

	require.Equal(t, [2]int{0, 2}, <-progressCh)
	select {
	case <-progressCh:
		t.Fatal("no iteration should happen before the interval elapses")
	case <-time.After(20 * time.Millisecond):
	}

	handles[0].Finish(model.ResultRecord{})
	clk.Add(time.Second)
	require.Equal(t, [2]int{1, 2}, <-progressCh)

	handles[1].Finish(model.ResultRecord{})
	clk.Add(time.Second)
	require.Equal(t, [2]int{2, 2}, <-progressCh)
	require.NoError(t, <-errCh)
}

func TestWaitTimeout(t *testing.T) {
	t.Parallel()

	clk := clock.NewMock()
	reg := prometheus.NewRegistry()
	p := NewPoller(time.Second,
		WithClock(clk),
		WithTimeout(3*time.Second),
		WithMetrics(promutil.NewFactory(reg, "jobsweep", nil)))

	stuck := fake.NewHandle("stuck")
	done := fake.NewDoneHandle("done", model.ResultRecord{})
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Wait(context.Background(), fake.ToJobHandles(done, stuck), nil)
	}()

	var err error
	require.Eventually(t, func() bool {
		clk.Add(time.Second)
		select {
		case err = <-errCh:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	require.True(t, derror.ErrPollTimeout.Equal(err), "%v", err)
	require.Contains(t, err.Error(), "1 of 2 jobs still pending")
	// an aborted batch no longer counts as pending
	require.Equal(t, 0.0, testutil.ToFloat64(p.pendingJobs))
}

func TestPendingGaugeSharedByConcurrentBatches(t *testing.T) {
	t.Parallel()

	gauge := NewPendingGauge(promutil.NewNopFactory())
	first := NewPoller(time.Millisecond, WithPendingGauge(gauge))
	second := NewPoller(time.Millisecond, WithPendingGauge(gauge))

	a := []*fake.Handle{fake.NewHandle("a0"), fake.NewHandle("a1")}
	b := []*fake.Handle{fake.NewHandle("b0"), fake.NewHandle("b1"), fake.NewHandle("b2")}

	var wg sync.WaitGroup
	for _, batch := range []struct {
		p       *Poller
		handles []*fake.Handle
	}{{first, a}, {second, b}} {
		batch := batch
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, batch.p.Wait(context.Background(), fake.ToJobHandles(batch.handles...), nil))
		}()
	}

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(gauge) == 5
	}, 5*time.Second, time.Millisecond)

	a[0].Finish(model.ResultRecord{})
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(gauge) == 4
	}, 5*time.Second, time.Millisecond)

	for _, h := range append(a, b...) {
		h.Finish(model.ResultRecord{})
	}
	wg.Wait()
	require.Equal(t, 0.0, testutil.ToFloat64(gauge))
}

func TestPendingGaugeReleasedOnCancel(t *testing.T) {
	t.Parallel()

	gauge := NewPendingGauge(promutil.NewNopFactory())
	p := NewPoller(time.Millisecond, WithPendingGauge(gauge))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Wait(ctx, fake.ToJobHandles(fake.NewHandle("x"), fake.NewHandle("y")), nil)
	}()
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(gauge) == 2
	}, 5*time.Second, time.Millisecond)

	cancel()
	require.Equal(t, context.Canceled, perrors.Cause(<-errCh))
	require.Equal(t, 0.0, testutil.ToFloat64(gauge))
}

func TestWaitContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(time.Millisecond)

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Wait(ctx, fake.ToJobHandles(fake.NewHandle("stuck")), nil)
	}()
	cancel()
	err := <-errCh
	require.Equal(t, context.Canceled, perrors.Cause(err))
}

func TestWaitPublishesProgress(t *testing.T) {
	t.Parallel()

	n := notifier.NewNotifier[ProgressEvent]()
	defer n.Close()
	r := n.NewReceiver()
	defer r.Close()

	h := fake.NewHandle("h")
	hook := func(ctx context.Context) error {
		h.Finish(model.ResultRecord{})
		return nil
	}

	p := NewPoller(time.Millisecond, WithNotifier(n))
	require.NoError(t, p.WaitWithHook(context.Background(), []client.JobHandle{h}, nil, hook))
	require.NoError(t, n.Flush(context.Background()))

	require.Equal(t, ProgressEvent{Done: 0, Total: 1}, <-r.C)
	require.Equal(t, ProgressEvent{Done: 1, Total: 1}, <-r.C)
}

func TestNewPollerClampsInterval(t *testing.T) {
	t.Parallel()

	p := NewPoller(0)
	require.Equal(t, time.Millisecond, p.interval)
}
