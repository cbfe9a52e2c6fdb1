package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"framecast/internal/config"
	"framecast/internal/logging"
)

// Processor runs one job to a terminal status.
type Processor interface {
	Process(ctx context.Context, job *Job)
}

// Pool runs accepted jobs on a fixed number of workers with a bounded queue.
// Submission never blocks; a full queue is reported to the caller so the
// HTTP layer can push back instead of accumulating unbounded work.
type Pool struct {
	cfg       *config.Config
	processor Processor
	logger    *slog.Logger

	jobs chan *Job
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts the configured number of workers.
func NewPool(cfg *config.Config, processor Processor, logger *slog.Logger) *Pool {
	p := &Pool{
		cfg:       cfg,
		processor: processor,
		logger:    logging.NewComponentLogger(logger, "pool"),
		jobs:      make(chan *Job, cfg.Pipeline.QueueCapacity),
	}
	for i := 0; i < cfg.Pipeline.Workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues the job for processing. It returns ErrQueueFull when every
// queue slot is taken and after Close.
func (p *Pool) Submit(job *Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrQueueFull
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs, drains the queue, and waits for in-flight
// jobs to reach a terminal status.
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

// run executes one job under the configured per-job deadline. A zero
// timeout disables the deadline.
func (p *Pool) run(job *Job) {
	ctx := context.Background()
	if timeout := p.cfg.JobTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	p.logger.Info("job picked up", logging.String(logging.FieldJobID, job.ID))
	p.processor.Process(ctx, job)
}
