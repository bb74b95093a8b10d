package listeners

import (
	"context"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/metrics"
)

// MetricsListener observes every dispatched event and updates business
// counters. It registers under the wildcard name and runs last so it sees
// the event even when an earlier listener fails to act on it.
type MetricsListener struct {
	metrics *metrics.Metrics
}

// NewMetricsListener creates a MetricsListener
func NewMetricsListener(m *metrics.Metrics) *MetricsListener {
	return &MetricsListener{metrics: m}
}

// Name implements dispatch.Listener
func (l *MetricsListener) Name() string { return "metrics-listener" }

// Priority implements dispatch.Listener
func (l *MetricsListener) Priority() int { return -100 }

// ShouldHandle implements dispatch.Listener
func (l *MetricsListener) ShouldHandle(event *domain.Event) bool { return true }

// Handle implements dispatch.Listener
func (l *MetricsListener) Handle(_ context.Context, event *domain.Event) error {
	switch event.Name() {
	case domain.EventOrderCreated:
		currency, _ := event.Data()["currency"].(string)
		l.metrics.OrdersCreated.WithLabelValues(currency).Inc()
	case domain.EventInquiryQuoted:
		l.metrics.InquiriesQuoted.Inc()
	}
	return nil
}

// StopPropagation implements dispatch.Listener
func (l *MetricsListener) StopPropagation() bool { return false }
