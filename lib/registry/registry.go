package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/hanfei1991/jobsweep/model"
	derror "github.com/hanfei1991/jobsweep/pkg/errors"
)

// TaskFunc is the body of a task. args are the arguments passed to
// Backend.Submit, unchanged.
type TaskFunc func(ctx context.Context, args ...any) (model.ResultRecord, error)

// Registry maps task names to task bodies. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]TaskFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]TaskFunc),
	}
}

// Register adds fn under name.
func (r *Registry) Register(name string, fn TaskFunc) error {
	if name == "" {
		return derror.ErrEmptyTask.GenWithStackByArgs()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[name]; exists {
		return derror.ErrTaskAlreadyRegistered.GenWithStackByArgs(name)
	}
	r.tasks[name] = fn
	log.L().Debug("task registered", zap.String("task", name))
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, fn TaskFunc) {
	if err := r.Register(name, fn); err != nil {
		log.L().Panic("register task failed", zap.String("task", name), zap.Error(err))
	}
}

// Get returns the task registered under name.
func (r *Registry) Get(name string) (TaskFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.tasks[name]
	return fn, ok
}

// Names returns the registered task names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
