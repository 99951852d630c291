package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one file waiting for a worker.
type Job struct {
	Path string
	Opts Options
}

// Queue fans jobs out to a fixed worker pool. Results are delivered through
// the sink, which is called from worker goroutines.
type Queue struct {
	proc    *Processor
	sink    func(FileResult)
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type QueueOption func(*Queue)

func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *Processor, sink func(FileResult), logger *slog.Logger, opts ...QueueOption) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		sink:    sink,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("pipeline.worker.started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					result := q.proc.ProcessFile(ctx, job.Path, job.Opts)
					cancel()

					if result.Outcome == OutcomeError {
						q.logger.Error("pipeline.worker.file_failed", "worker_id", workerID, "path", job.Path, "error", result.Err)
					} else {
						q.logger.Info("pipeline.worker.file_done", "worker_id", workerID, "path", job.Path, "outcome", string(result.Outcome))
					}
					if q.sink != nil {
						q.sink(result)
					}
				}

				q.logger.Info("pipeline.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("pipeline.queue.closed", "path", job.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("pipeline.queue.accepted", "path", job.Path)
	default:
		q.logger.Warn("pipeline.queue.backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

// Shutdown stops intake and waits for in-flight jobs, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("pipeline.queue.shutdown_interrupted")
	case <-done:
		q.logger.Info("pipeline.queue.drained")
	}
}
