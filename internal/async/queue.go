package async

import (
	"context"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/facturio/invoice-ingest/internal/common"
	"github.com/facturio/invoice-ingest/internal/pipeline"
)

// Job is one triggering event waiting for a worker. The raw bytes are read
// by the worker, not the producer, so a slow disk applies backpressure to
// processing rather than to the watcher.
type Job struct {
	Path        string
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// ProcessorQueue fans jobs out to a fixed set of workers, each running the
// pipeline to a terminal outcome. One job is one independent invocation;
// failures are logged and never stop the workers.
type ProcessorQueue struct {
	proc    *pipeline.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
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

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.run(workerID, job)
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ProcessorQueue) run(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithTraceID(ctx, job.TraceID)

	data, err := os.ReadFile(job.Path)
	if err != nil {
		q.logger.Error("failed to read triggering file",
			"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "error", err)
		return
	}

	outcome, err := q.proc.Process(ctx, pipeline.Event{Path: job.Path, Data: data})
	if err != nil {
		q.logger.Error("processing failed",
			"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID,
			"outcome", outcome, "error", err)
		return
	}
	q.logger.Info("processed event",
		"worker_id", workerID, "path", job.Path, "trace_id", job.TraceID, "outcome", outcome)
}

func (q *ProcessorQueue) Enqueue(_ context.Context, job Job) error {
	if job.TraceID == "" {
		job.TraceID = uuid.New().String()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued event for processing", "path", job.Path, "trace_id", job.TraceID)
	default:
		q.logger.Warn("queue full, applying backpressure", "path", job.Path)
		q.ch <- job
	}
	return nil
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
