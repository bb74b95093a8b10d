package dispatch

import (
	"context"

	"github.com/b2b-platform/procurement-service/internal/domain"
)

// Listener reacts to dispatched domain events. Listeners are sorted by
// Priority (higher first, stable on ties) and may halt the remaining
// listeners of the current dispatch through StopPropagation, which the
// dispatcher reads after Handle returns.
type Listener interface {
	// Name identifies the listener in logs and dispatch results
	Name() string

	// Priority is the descending sort key for invocation order
	Priority() int

	// ShouldHandle reports whether the listener wants this event. A listener
	// with an empty supported-event set handles everything.
	ShouldHandle(event *domain.Event) bool

	// Handle performs the side effect for the event
	Handle(ctx context.Context, event *domain.Event) error

	// StopPropagation is read after Handle returns; true halts the
	// remaining listeners of the current dispatch
	StopPropagation() bool
}

// Queue is the external collaborator receiving async events. The dispatcher
// makes exactly one Enqueue call per async dispatch; delivery, retries and
// cross-consumer ordering are the queue's responsibility.
type Queue interface {
	Enqueue(ctx context.Context, event *domain.Event) error
}

// NopQueue discards async events. Useful in tests and when running without
// a broker.
type NopQueue struct{}

// Enqueue implements Queue
func (NopQueue) Enqueue(ctx context.Context, event *domain.Event) error {
	return nil
}
