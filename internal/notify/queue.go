package notify

import (
	"context"
	"sync"

	"github.com/adeelchainz/base-server/pkg/observability"
	"go.uber.org/zap"
)

// Queue hands messages to a fixed pool of workers. Callers never wait on
// delivery, and each message is attempted exactly once.
type Queue struct {
	sender  Sender
	logger  *zap.Logger
	metrics *observability.Metrics
	workers int
	jobs    chan Message

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewQueue creates a queue buffering up to size messages
func NewQueue(sender Sender, logger *zap.Logger, metrics *observability.Metrics, size, workers int) *Queue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}

	return &Queue{
		sender:  sender,
		logger:  logger,
		metrics: metrics,
		workers: workers,
		jobs:    make(chan Message, size),
	}
}

// Start launches the workers. Cancelling ctx does not abort deliveries
// already queued; use Shutdown to drain.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	ctx = context.WithoutCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx)
	}
}

// Submit enqueues msg without blocking. It reports false when the message
// was dropped because the queue is full or shut down.
func (q *Queue) Submit(msg Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(msg, "queue is shut down")
		return false
	}

	select {
	case q.jobs <- msg:
		return true
	default:
		q.drop(msg, "queue is full")
		return false
	}
}

// Shutdown stops accepting messages and waits for queued ones to be sent
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.jobs)
	started := q.started
	q.mu.Unlock()

	if !started {
		q.logger.Warn("Notification queue shut down before start", zap.Int("discarded", len(q.jobs)))
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()
	for msg := range q.jobs {
		q.deliver(ctx, msg)
	}
}

func (q *Queue) deliver(ctx context.Context, msg Message) {
	if err := q.sender.Send(ctx, msg); err != nil {
		q.logger.Error("Error sending email",
			zap.String("kind", msg.Kind),
			zap.Strings("to", msg.To),
			zap.Error(err),
		)
		q.metrics.RecordNotification(ctx, msg.Kind, observability.OutcomeFailure)
		return
	}
	q.metrics.RecordNotification(ctx, msg.Kind, observability.OutcomeSuccess)
}

func (q *Queue) drop(msg Message, reason string) {
	q.logger.Warn("Dropping email",
		zap.String("kind", msg.Kind),
		zap.Strings("to", msg.To),
		zap.String("reason", reason),
	)
	q.metrics.RecordNotification(context.Background(), msg.Kind, observability.OutcomeDropped)
}
