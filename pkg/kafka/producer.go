package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Message is a single record to publish
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// Producer handles publishing messages to Kafka topics
type Producer struct {
	writers map[string]*kafka.Writer
	config  *Config
}

// NewProducer creates a new Kafka producer
func NewProducer(config *Config) *Producer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Producer{
		writers: make(map[string]*kafka.Writer),
		config:  config,
	}
}

// getWriter returns a writer for the specified topic, creating one if necessary
func (p *Producer) getWriter(topic string) *kafka.Writer {
	if writer, exists := p.writers[topic]; exists {
		return writer
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(p.config.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    p.config.BatchSize,
		BatchTimeout: p.config.BatchTimeout,
		RequiredAcks: kafka.RequiredAcks(p.config.RequiredAcks),
		Async:        false,
	}

	p.writers[topic] = writer
	return writer
}

// Publish publishes a message to the specified topic
func (p *Producer) Publish(ctx context.Context, topic string, msg Message) error {
	record := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Time:  msg.Time,
	}
	for key, value := range msg.Headers {
		record.Headers = append(record.Headers, kafka.Header{Key: key, Value: []byte(value)})
	}

	writer := p.getWriter(topic)
	if err := writer.WriteMessages(ctx, record); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}

	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	var lastErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil {
			lastErr = fmt.Errorf("failed to close writer for topic %s: %w", topic, err)
		}
	}
	return lastErr
}
