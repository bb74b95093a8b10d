package listeners

import (
	"context"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
)

// NotificationListener reacts to customer-facing lifecycle events and emits
// notification jobs. It only handles events flagged notifyCustomer in
// metadata and stops propagation for cancelled orders so lower-priority
// listeners do not act on an order that is going away.
type NotificationListener struct {
	logger *logging.Logger
	queue  NotificationSender
	stop   bool
}

// NotificationSender delivers a rendered notification to the outbound channel
type NotificationSender interface {
	SendNotification(ctx context.Context, recipient, eventName string, payload map[string]any) error
}

// NewNotificationListener creates a NotificationListener
func NewNotificationListener(queue NotificationSender, logger *logging.Logger) *NotificationListener {
	return &NotificationListener{logger: logger, queue: queue}
}

// Name implements dispatch.Listener
func (l *NotificationListener) Name() string { return "notification-listener" }

// Priority implements dispatch.Listener
func (l *NotificationListener) Priority() int { return 50 }

// ShouldHandle implements dispatch.Listener
func (l *NotificationListener) ShouldHandle(event *domain.Event) bool {
	notify, ok := event.Metadata()[domain.MetaNotifyCustomer].(bool)
	return ok && notify
}

// Handle implements dispatch.Listener
func (l *NotificationListener) Handle(ctx context.Context, event *domain.Event) error {
	l.stop = false

	recipient, _ := event.Data()["customerEmail"].(string)
	if recipient == "" {
		l.logger.WithContext(ctx).Warn("Notification event without recipient",
			"eventId", event.ID(), "eventName", event.Name())
		return nil
	}

	if err := l.queue.SendNotification(ctx, recipient, event.Name(), event.Data()); err != nil {
		return err
	}

	if newStatus, _ := event.Data()["newStatus"].(string); newStatus == domain.OrderStatusCancelled.String() {
		l.stop = true
	}

	return nil
}

// StopPropagation implements dispatch.Listener
func (l *NotificationListener) StopPropagation() bool { return l.stop }
