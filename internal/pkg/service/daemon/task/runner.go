package task

import (
	"context"
	"fmt"

	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/service/common/servicectx"
	"github.com/homewire/x10/internal/pkg/service/daemon/metrics"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// Runner owns the task queue and the worker goroutines.
type Runner struct {
	logger   log.Logger
	executor *Executor
	metrics  *metrics.Metrics
	queue    chan Task
}

func NewRunner(logger log.Logger, executor *Executor, m *metrics.Metrics, queueSize int) *Runner {
	return &Runner{
		logger:   logger,
		executor: executor,
		metrics:  m,
		queue:    make(chan Task, queueSize),
	}
}

// Dispatch queues the task without blocking.
// A full queue refuses the task, the caller reports the error to its origin.
func (r *Runner) Dispatch(task Task) error {
	select {
	case r.queue <- task:
		r.metrics.QueueDepth.Inc()
		r.logger.Debugf(`Task %s queued, origin "%s".`, task.ID, task.Origin)
		return nil
	default:
		r.metrics.Skips.WithLabelValues("queue-full").Inc()
		return errors.Errorf(`the task queue is full, %d tasks are waiting`, len(r.queue))
	}
}

// Start spawns the workers, they stop with the process.
func (r *Runner) Start(proc *servicectx.Process, workers int) {
	for i := 0; i < workers; i++ {
		logger := r.logger.AddPrefix(fmt.Sprintf("[worker-%d]", i+1))
		proc.Add(func(ctx context.Context, _ chan<- error) {
			r.work(ctx, logger)
		})
	}
	r.logger.Infof(`Started %d task workers, queue size %d.`, workers, cap(r.queue))
}

func (r *Runner) work(ctx context.Context, logger log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-r.queue:
			r.metrics.QueueDepth.Dec()
			logger.Debugf(`Task %s started, origin "%s".`, task.ID, task.Origin)
			if err := r.executor.Run(ctx, task); err != nil {
				logger.Errorf(`Task %s failed: %s`, task.ID, err)
			} else {
				logger.Debugf(`Task %s finished.`, task.ID)
			}
		}
	}
}
