package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("notify: queue full")
	ErrClosed    = errors.New("notify: dispatcher closed")
)

// Async hands messages to a fixed pool of workers so that callers never wait
// on the mail relay. Delivery errors are logged by the workers.
type Async struct {
	next    Notifier
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan Message
	wg     sync.WaitGroup
}

// NewAsync starts workers goroutines draining a queue of queueSize messages.
func NewAsync(next Notifier, workers, queueSize int, logger *slog.Logger) *Async {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	a := &Async{
		next:    next,
		logger:  logger,
		timeout: 30 * time.Second,
		queue:   make(chan Message, queueSize),
	}

	for range workers {
		a.wg.Add(1)
		go a.work()
	}
	return a
}

// Notify enqueues msg without blocking.
func (a *Async) Notify(_ context.Context, msg Message) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be sent, or for
// ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) work() {
	defer a.wg.Done()

	for msg := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Notify(ctx, msg); err != nil {
			a.logger.Error("failed to deliver notification",
				"to", msg.To,
				"subject", msg.Subject,
				"error", err,
			)
		}
		cancel()
	}
}
