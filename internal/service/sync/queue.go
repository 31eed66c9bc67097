package sync

import (
	"context"
	stdsync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/bulgareesoft/bulgaree/internal/domain/models"
)

const jobTimeout = 30 * time.Second

// Job is one remote push unit. Run carries a snapshot taken at enqueue time;
// it never touches live caller state.
type Job struct {
	Kind models.Kind
	Op   string
	Run  func(ctx context.Context) error
}

// Queue serializes remote pushes on a single background worker. Callers fire
// and forget: a failed job is logged and dropped, because every push carries
// the full current snapshot and the next save retries it in full.
type Queue struct {
	jobs   chan Job
	logger *zap.Logger

	mu      stdsync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// NewQueue builds a push queue with the given buffer size.
func NewQueue(size int, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	if size <= 0 {
		size = 16
	}
	return &Queue{
		jobs:   make(chan Job, size),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start launches the worker. Safe to call once; jobs enqueued before Start sit
// in the buffer until it runs.
func (q *Queue) Start() {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go q.drain()
}

func (q *Queue) drain() {
	defer close(q.done)

	for job := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		err := job.Run(ctx)
		cancel()

		if err != nil {
			// Silent by design: the next save pushes the full snapshot again.
			q.logger.Warn("remote push failed",
				zap.String("kind", string(job.Kind)),
				zap.String("op", job.Op),
				zap.Error(err))
			continue
		}

		q.logger.Debug("remote push completed",
			zap.String("kind", string(job.Kind)),
			zap.String("op", job.Op))
	}
}

// Enqueue schedules a job without blocking. When the buffer is full the job is
// dropped with a warning; the snapshot it carried is superseded by the next one.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.logger.Warn("push queue closed, dropping job", zap.String("kind", string(job.Kind)))
		return
	}

	// The send stays under the mutex so Stop cannot close the channel between
	// the closed check and the send.
	select {
	case q.jobs <- job:
	default:
		q.logger.Warn("push queue full, dropping job", zap.String("kind", string(job.Kind)))
	}
}

// Stop closes the queue and waits for the worker to finish the remaining jobs.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	started := q.started
	close(q.jobs)
	q.mu.Unlock()

	if started {
		<-q.done
	}
}
