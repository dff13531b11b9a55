package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Dispatcher is the fire-and-forget enqueue contract the lifecycle services
// depend on. Implementations must return quickly; callers bound the call
// with a timeout and treat failures as non-fatal.
type Dispatcher interface {
	Queue(ctx context.Context, n Notification) error
}

// Store persists queued notifications so donors can list them.
type Store interface {
	Append(ctx context.Context, n Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]Notification, error)
}

// ChannelDispatcher hands notifications to a buffered channel consumed by the
// Worker. Queue drops the message with an error only when the buffer is full
// and the context expires first; the caller logs and moves on.
type ChannelDispatcher struct {
	inbox chan Notification
}

func NewChannelDispatcher(buffer int) *ChannelDispatcher {
	if buffer <= 0 {
		buffer = 128
	}
	return &ChannelDispatcher{inbox: make(chan Notification, buffer)}
}

func (d *ChannelDispatcher) Queue(ctx context.Context, n Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	select {
	case d.inbox <- n:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbox exposes the channel for the worker.
func (d *ChannelDispatcher) Inbox() <-chan Notification {
	return d.inbox
}

// Worker consumes queued notifications and persists them. It keeps background
// processing testable without wiring queue implementations.
type Worker struct {
	store  Store
	inbox  <-chan Notification
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Notification, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until the context is cancelled. The inbox is a best-effort
// side channel: a failed Append loses that one notification, it never stops
// the worker.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-w.inbox:
			if err := w.store.Append(ctx, n); err != nil {
				w.logger.Error("persisting notification failed",
					"notification_id", n.ID, "recipient_id", n.RecipientID, "error", err)
			}
		}
	}
}
