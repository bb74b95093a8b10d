package kafkaqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/b2b-platform/procurement-service/pkg/kafka"
)

// NotificationSender publishes outbound customer notifications to Kafka
type NotificationSender struct {
	producer *kafka.Producer
}

// NewNotificationSender creates a Kafka-backed notification sender
func NewNotificationSender(producer *kafka.Producer) *NotificationSender {
	return &NotificationSender{producer: producer}
}

type notificationMessage struct {
	ID        string         `json:"id"`
	Recipient string         `json:"recipient"`
	EventName string         `json:"eventName"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// SendNotification implements listeners.NotificationSender
func (s *NotificationSender) SendNotification(ctx context.Context, recipient, eventName string, payload map[string]any) error {
	message := notificationMessage{
		ID:        uuid.New().String(),
		Recipient: recipient,
		EventName: eventName,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	value, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(recipient),
		Value: value,
		Time:  message.CreatedAt,
	}

	if err := s.producer.Publish(ctx, kafka.Topics.NotificationsQueue, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	return nil
}
