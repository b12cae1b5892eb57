package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/middleware"
	"github.com/cenkalti/backoff/v5"
)

const (
	defaultQueueSize   = 256
	defaultMaxTries    = 5
	defaultInitialWait = 200 * time.Millisecond
	defaultMaxWait     = 10 * time.Second
)

// AsyncOption configures an Async dispatcher.
type AsyncOption func(*Async)

// WithQueueSize bounds the number of undelivered events.
func WithQueueSize(n int) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.queueSize = n
		}
	}
}

// WithMaxTries caps delivery attempts per event, the first one included.
func WithMaxTries(n uint) AsyncOption {
	return func(a *Async) {
		if n > 0 {
			a.maxTries = n
		}
	}
}

// WithRetryInterval sets the first and the largest wait between attempts.
func WithRetryInterval(initial, max time.Duration) AsyncOption {
	return func(a *Async) {
		if initial > 0 {
			a.initialWait = initial
		}
		if max >= a.initialWait {
			a.maxWait = max
		}
	}
}

type queuedEvent struct {
	event  domain.PostingCompleted
	logger *slog.Logger
}

// Async hands events to a background worker that retries transient failures with exponential backoff.
// NotifyPosted never blocks; a full queue drops the event and reports ErrRejected.
type Async struct {
	next        portssvc.PostingNotifier
	logger      *slog.Logger
	queueSize   int
	maxTries    uint
	initialWait time.Duration
	maxWait     time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan queuedEvent
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAsync starts the worker. Call Close to drain it.
func NewAsync(next portssvc.PostingNotifier, logger *slog.Logger, opts ...AsyncOption) *Async {
	a := &Async{
		next:        next,
		logger:      logger,
		queueSize:   defaultQueueSize,
		maxTries:    defaultMaxTries,
		initialWait: defaultInitialWait,
		maxWait:     defaultMaxWait,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.queue = make(chan queuedEvent, a.queueSize)
	a.ctx, a.cancel = context.WithCancel(context.Background())
	go a.run()
	return a
}

func (a *Async) NotifyPosted(ctx context.Context, event domain.PostingCompleted) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return fmt.Errorf("%w: notifier is closed", apperrors.ErrRejected)
	}
	select {
	case a.queue <- queuedEvent{event: event, logger: requestLogger(ctx, a.logger)}:
		return nil
	default:
		return fmt.Errorf("%w: notifier queue is full, dropping event for entry %s", apperrors.ErrRejected, event.EntryID)
	}
}

// Close stops accepting events and waits until queued ones are delivered or ctx expires.
// Deliveries still retrying when ctx expires are abandoned.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		a.cancel()
		return nil
	case <-ctx.Done():
		a.cancel()
		<-a.done
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)
	for q := range a.queue {
		a.deliver(q)
	}
}

func (a *Async) deliver(q queuedEvent) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = a.initialWait
	b.MaxInterval = a.maxWait

	ctx := middleware.WithLogger(a.ctx, q.logger)
	attempts := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempts++
		err := a.next.NotifyPosted(ctx, q.event)
		if err != nil && !apperrors.IsRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(a.maxTries))

	if err != nil {
		q.logger.Warn("Failed to deliver posting event",
			slog.String("entry_id", q.event.EntryID),
			slog.Int("attempts", attempts),
			slog.String("error", err.Error()))
		return
	}
	if attempts > 1 {
		q.logger.Info("Posting event delivered after retries",
			slog.String("entry_id", q.event.EntryID),
			slog.Int("attempts", attempts))
	}
}
