// Package kafkaqueue hands asynchronous domain events off to Kafka.
package kafkaqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/kafka"
	"github.com/b2b-platform/procurement-service/pkg/logging"
	"github.com/b2b-platform/procurement-service/pkg/metrics"
	"github.com/b2b-platform/procurement-service/pkg/resilience"
)

// SchemaValidator checks serialized envelopes against the published contract
type SchemaValidator interface {
	ValidateEnvelope(payload []byte) error
}

// Queue publishes asynchronous domain events to Kafka, one topic per
// aggregate category, keyed by aggregate ID so per-aggregate ordering is
// preserved within a partition.
type Queue struct {
	producer  *kafka.Producer
	breaker   *resilience.CircuitBreaker
	validator SchemaValidator
	logger    *logging.Logger
	metrics   *metrics.Metrics
	retry     *resilience.RetryConfig
}

// NewQueue creates a Kafka-backed event queue
func NewQueue(
	producer *kafka.Producer,
	breaker *resilience.CircuitBreaker,
	validator SchemaValidator,
	logger *logging.Logger,
	m *metrics.Metrics,
) *Queue {
	retry := resilience.DefaultRetryConfig()
	// Transient publish failures are retried; an open breaker is not, since
	// retrying would only hammer a downstream already known to be failing.
	retry.RetryableErrors = func(err error) bool {
		return !errors.Is(err, resilience.ErrCircuitOpen)
	}

	return &Queue{
		producer:  producer,
		breaker:   breaker,
		validator: validator,
		logger:    logger,
		metrics:   m,
		retry:     retry,
	}
}

// Enqueue implements dispatch.Queue
func (q *Queue) Enqueue(ctx context.Context, event *domain.Event) error {
	start := time.Now()

	payload, err := event.Serialize()
	if err != nil {
		return fmt.Errorf("failed to serialize event %s: %w", event.ID(), err)
	}

	if q.validator != nil {
		if err := q.validator.ValidateEnvelope(payload); err != nil {
			return fmt.Errorf("event %s violates contract: %w", event.ID(), err)
		}
	}

	topic := topicFor(event)

	key := event.AggregateID()
	if key == "" {
		key = event.ID()
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: map[string]string{
			"event-id":     event.ID(),
			"event-name":   event.Name(),
			"content-type": "application/json",
		},
		Time: event.Timestamp(),
	}

	err = resilience.Retry(ctx, q.retry, func() error {
		_, execErr := q.breaker.Execute(ctx, func() (interface{}, error) {
			return nil, q.producer.Publish(ctx, topic, msg)
		})
		return execErr
	})

	success := err == nil
	if q.metrics != nil {
		status := "success"
		if !success {
			status = "failure"
		}
		q.metrics.EventsEnqueued.WithLabelValues(topic, status).Inc()
	}
	if q.logger != nil {
		q.logger.EventEnqueued(ctx, topic, event.ID(), event.Name(), success, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("failed to enqueue event %s: %w", event.ID(), err)
	}

	return nil
}

func topicFor(event *domain.Event) string {
	category, _ := event.Metadata()[domain.MetaCategory].(string)
	switch category {
	case domain.CategoryInquiry:
		return kafka.Topics.InquiryEvents
	default:
		return kafka.Topics.OrderEvents
	}
}
