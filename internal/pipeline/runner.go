package pipeline

import (
	"context"
	"sync/atomic"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/logger"
	"github.com/SaadHafeez466/qa-app/internal/testcase"
)

// ErrBusy is returned when a run is started while another is in flight.
var ErrBusy = apperrors.New("pipeline.Runner", apperrors.ErrInvalidInput, "a generation run is already in progress")

// RunnerConfig wires the capabilities a Runner uses.
type RunnerConfig struct {
	Complete CompleteFunc
	Observer Observer
	Logger   *logger.Logger
}

// Runner executes at most one run at a time.
type Runner struct {
	cfg  RunnerConfig
	busy atomic.Bool
}

// NewRunner returns a Runner. Complete is required.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if cfg.Complete == nil {
		return nil, apperrors.New("pipeline.NewRunner", apperrors.ErrInvalidInput, "completion function is required")
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	cfg.Logger = cfg.Logger.WithComponent("pipeline")
	return &Runner{cfg: cfg}, nil
}

// Start launches a run in the background and returns its handle. It fails
// with ErrBusy, without side effects, while another run is outstanding.
func (r *Runner) Start(ctx context.Context, req testcase.Request) (*Task, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	t := &Task{done: make(chan struct{})}
	go func() {
		t.result, t.err = run(ctx, req, r.cfg.Complete, r.cfg.Observer, r.cfg.Logger)
		r.busy.Store(false)
		close(t.done)
	}()
	return t, nil
}

// Task is the handle of one background run.
type Task struct {
	done   chan struct{}
	result testcase.Result
	err    error
}

// Done is closed when the run has finished or failed.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the run ends. On failure the result is nil.
func (t *Task) Wait() (testcase.Result, error) {
	<-t.done
	return t.result, t.err
}
