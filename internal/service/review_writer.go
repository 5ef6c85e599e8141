// internal/service/review_writer.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gelos/backend/internal/domain/studysession"
	"github.com/gelos/backend/internal/worker"
)

var ErrWriterClosed = errors.New("review writer closed")

// ReviewPersister is the write half of the study repository.
type ReviewPersister interface {
	PersistReview(ctx context.Context, rec studysession.Record) error
}

// ReviewWriter persists ratings in the background. Writes are keyed by card,
// so two ratings of the same card are always applied in the order they were
// submitted.
type ReviewWriter struct {
	persister ReviewPersister
	pool      *worker.Pool[error]
	timeout   time.Duration
	logger    *slog.Logger

	seq     atomic.Uint64
	mu      sync.Mutex
	pending map[string]func(error) // jobID → completion callback
	drained chan struct{}
}

var _ studysession.Writer = (*ReviewWriter)(nil)

// NewReviewWriter starts a writer with the given number of workers.
func NewReviewWriter(p ReviewPersister, workers int, timeout time.Duration, logger *slog.Logger) *ReviewWriter {
	w := &ReviewWriter{
		persister: p,
		pool:      worker.NewPool[error](workers, 64),
		timeout:   timeout,
		logger:    logger,
		pending:   make(map[string]func(error)),
		drained:   make(chan struct{}),
	}
	go w.drain()
	return w
}

// Submit queues the write. done runs on the writer's goroutine.
func (w *ReviewWriter) Submit(rec studysession.Record, done func(error)) {
	jobID := fmt.Sprintf("%s#%d", rec.ReviewID, w.seq.Add(1))

	w.mu.Lock()
	w.pending[jobID] = done
	w.mu.Unlock()

	ok := w.pool.Submit(rec.CardID, jobID, func() error {
		return w.persist(rec)
	})
	if !ok {
		w.mu.Lock()
		delete(w.pending, jobID)
		w.mu.Unlock()
		done(ErrWriterClosed)
	}
}

// Close waits for queued writes to finish.
func (w *ReviewWriter) Close() {
	w.pool.Close()
	<-w.drained
}

// persist uses a detached context: a write must not be cancelled when the
// request that triggered it ends.
func (w *ReviewWriter) persist(rec studysession.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	return w.persister.PersistReview(ctx, rec)
}

func (w *ReviewWriter) drain() {
	defer close(w.drained)

	for res := range w.pool.Results() {
		w.mu.Lock()
		done := w.pending[res.JobID]
		delete(w.pending, res.JobID)
		w.mu.Unlock()

		if res.Output != nil {
			w.logger.Error("failed to persist review",
				"job_id", res.JobID,
				"card_id", res.Key,
				"error", res.Output,
			)
		}
		if done != nil {
			done(res.Output)
		}
	}
}
