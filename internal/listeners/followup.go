package listeners

import (
	"context"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
)

// FollowUpStore records inquiries that sales staff need to chase
type FollowUpStore interface {
	ScheduleFollowUp(ctx context.Context, inquiryID, reason string) error
}

// FollowUpListener schedules a sales follow-up for inquiry events flagged
// requiresFollowUp in metadata.
type FollowUpListener struct {
	store  FollowUpStore
	logger *logging.Logger
}

// NewFollowUpListener creates a FollowUpListener
func NewFollowUpListener(store FollowUpStore, logger *logging.Logger) *FollowUpListener {
	return &FollowUpListener{store: store, logger: logger}
}

// Name implements dispatch.Listener
func (l *FollowUpListener) Name() string { return "followup-listener" }

// Priority implements dispatch.Listener
func (l *FollowUpListener) Priority() int { return 10 }

// ShouldHandle implements dispatch.Listener
func (l *FollowUpListener) ShouldHandle(event *domain.Event) bool {
	followUp, ok := event.Metadata()[domain.MetaRequiresFollowUp].(bool)
	return ok && followUp
}

// Handle implements dispatch.Listener
func (l *FollowUpListener) Handle(ctx context.Context, event *domain.Event) error {
	inquiryID := event.AggregateID()
	if inquiryID == "" {
		inquiryID, _ = event.Data()["inquiryId"].(string)
	}
	if err := l.store.ScheduleFollowUp(ctx, inquiryID, event.Name()); err != nil {
		return err
	}
	l.logger.WithContext(ctx).Info("Follow-up scheduled",
		"inquiryId", inquiryID, "eventName", event.Name())
	return nil
}

// StopPropagation implements dispatch.Listener
func (l *FollowUpListener) StopPropagation() bool { return false }
