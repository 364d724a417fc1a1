package executor

import (
	"context"
	"sync"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/hanfei1991/jobsweep/client"
	"github.com/hanfei1991/jobsweep/lib/config"
	"github.com/hanfei1991/jobsweep/lib/registry"
	"github.com/hanfei1991/jobsweep/model"
	"github.com/hanfei1991/jobsweep/pkg/autoid"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
)

var _ client.Backend = (*LocalBackend)(nil)

// LocalBackend runs registered tasks on goroutines of the current process.
// At most cfg.Concurrency jobs run at once; the others wait in line in
// submission order of their goroutines being scheduled.
type LocalBackend struct {
	registry *registry.Registry
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	idAlloc  *autoid.UUIDAllocator

	// mu protects closed against concurrent Submit and Close, so that
	// wg.Add never races with wg.Wait.
	mu     sync.RWMutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running atomic.Int64
}

// NewLocalBackend creates a LocalBackend running tasks from reg.
func NewLocalBackend(reg *registry.Registry, cfg config.BackendConfig) *LocalBackend {
	cfg = cfg.Adjust()

	var limiter *rate.Limiter
	if cfg.StartRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.StartRate), cfg.StartBurst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &LocalBackend{
		registry: reg,
		sem:      semaphore.NewWeighted(int64(cfg.Concurrency)),
		limiter:  limiter,
		idAlloc:  autoid.NewUUIDAllocator(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit implements client.Backend.
func (b *LocalBackend) Submit(ctx context.Context, task string, args ...any) (client.JobHandle, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Trace(ctx.Err())
	default:
	}

	fn, ok := b.registry.Get(task)
	if !ok {
		return nil, derror.ErrTaskNotFound.GenWithStackByArgs(task)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, derror.ErrBackendClosed.GenWithStackByArgs()
	}

	h := newJobHandle(b.idAlloc.AllocID())
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runJob(h, task, fn, args)
	}()
	return h, nil
}

// Running returns the number of jobs currently executing.
func (b *LocalBackend) Running() int64 {
	return b.running.Load()
}

// Close rejects further submissions, cancels the jobs still running or
// waiting, and waits for them to exit or for ctx to be done.
func (b *LocalBackend) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	doneCh := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	case <-doneCh:
	}
	log.L().Info("local backend closed")
	return nil
}

func (b *LocalBackend) runJob(h *jobHandle, task string, fn registry.TaskFunc, args []any) {
	if err := b.sem.Acquire(b.ctx, 1); err != nil {
		h.fail(errors.Trace(err))
		return
	}
	defer b.sem.Release(1)

	if b.limiter != nil {
		if err := b.limiter.Wait(b.ctx); err != nil {
			h.fail(errors.Trace(err))
			return
		}
	}

	b.running.Inc()
	defer b.running.Dec()

	result, err := invoke(b.ctx, task, fn, args)
	if err != nil {
		log.L().Debug("job failed",
			zap.String("job-id", h.ID()),
			zap.String("task", task),
			zap.Error(err))
		h.fail(err)
		return
	}
	h.finish(result)
}

func invoke(ctx context.Context, task string, fn registry.TaskFunc, args []any) (result model.ResultRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.L().Warn("task panicked", zap.String("task", task), zap.Any("panic", r), zap.Stack("stack"))
			err = derror.ErrTaskPanicked.GenWithStackByArgs(task, r)
		}
	}()
	return fn(ctx, args...)
}
