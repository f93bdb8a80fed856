package notify

import (
	"context"
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// DefaultRetryIntervals are the waits between delivery attempts.
var DefaultRetryIntervals = []time.Duration{
	time.Second,
	5 * time.Second,
	15 * time.Second,
}

// Dequeuer is the consuming side of a notification queue.
type Dequeuer interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*domain.Notification, error)
}

// Worker moves notifications from a queue to a sender.
type Worker struct {
	queue       Dequeuer
	sender      ports.Notifier
	retries     []time.Duration
	pollTimeout time.Duration
	log         zerolog.Logger
}

// NewWorker creates a Worker. A nil retries slice uses DefaultRetryIntervals.
func NewWorker(queue Dequeuer, sender ports.Notifier, retries []time.Duration, log zerolog.Logger) *Worker {
	if retries == nil {
		retries = DefaultRetryIntervals
	}
	return &Worker{
		queue:       queue,
		sender:      sender,
		retries:     retries,
		pollTimeout: 2 * time.Second,
		log:         log,
	}
}

// Run drains the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().Msg("notification worker started")
	for {
		if ctx.Err() != nil {
			w.log.Info().Msg("notification worker stopped")
			return nil
		}

		n, err := w.queue.Dequeue(ctx, w.pollTimeout)
		switch {
		case err != nil && ctx.Err() != nil:
			continue
		case errors.Is(err, ErrBadSignature):
			w.log.Warn().Err(err).Msg("notify: dropping unverifiable envelope")
			continue
		case err != nil:
			w.log.Error().Err(err).Msg("notify: dequeue failed")
			sleepCtx(ctx, time.Second)
			continue
		case n == nil:
			continue
		}

		w.deliver(ctx, *n)
	}
}

// deliver attempts n once plus one retry per configured interval.
func (w *Worker) deliver(ctx context.Context, n domain.Notification) bool {
	for attempt := 0; attempt <= len(w.retries); attempt++ {
		if attempt > 0 && !sleepCtx(ctx, w.retries[attempt-1]) {
			return false
		}

		err := w.sender.Notify(ctx, n)
		if err == nil {
			w.log.Debug().
				Str("user_id", n.UserID).
				Str("event", string(n.Event)).
				Int("attempt", attempt+1).
				Msg("notify: delivered")
			return true
		}

		w.log.Warn().Err(err).
			Str("user_id", n.UserID).
			Int("attempt", attempt+1).
			Msg("notify: delivery failed")
	}

	w.log.Error().Str("user_id", n.UserID).Str("event", string(n.Event)).Msg("notify: all retry attempts exhausted")
	return false
}

// sleepCtx waits d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
