package listeners

import (
	"context"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
)

// AuditListener writes a structured audit record for every event. It
// registers under the wildcard name with the highest priority so the audit
// trail is complete even when a later listener stops propagation.
type AuditListener struct {
	logger *logging.Logger
}

// NewAuditListener creates an AuditListener
func NewAuditListener(logger *logging.Logger) *AuditListener {
	return &AuditListener{logger: logger.WithComponent("audit")}
}

// Name implements dispatch.Listener
func (l *AuditListener) Name() string { return "audit-listener" }

// Priority implements dispatch.Listener
func (l *AuditListener) Priority() int { return 100 }

// ShouldHandle implements dispatch.Listener
func (l *AuditListener) ShouldHandle(event *domain.Event) bool { return true }

// Handle implements dispatch.Listener
func (l *AuditListener) Handle(ctx context.Context, event *domain.Event) error {
	l.logger.WithContext(ctx).Info("Audit record",
		"eventId", event.ID(),
		"eventName", event.Name(),
		"aggregateId", event.AggregateID(),
		"occurredAt", event.Timestamp(),
		"importance", event.Metadata()[domain.MetaImportance],
	)
	return nil
}

// StopPropagation implements dispatch.Listener
func (l *AuditListener) StopPropagation() bool { return false }
