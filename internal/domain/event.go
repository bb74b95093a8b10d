package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Metadata keys present on every domain event
const (
	MetaSource           = "source"
	MetaCategory         = "category"
	MetaImportance       = "importance"
	MetaNotifyCustomer   = "notifyCustomer"
	MetaRequiresFollowUp = "requiresFollowUp"
	MetaAggregateID      = "aggregateId"
)

// Importance levels carried in event metadata
const (
	ImportanceLow      = "low"
	ImportanceNormal   = "normal"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

// EventSource identifies this service in event metadata
const EventSource = "/procurement-service"

// Event is an immutable record of something that happened to an aggregate.
// Identity and timestamp are assigned at construction and never change. The
// data and metadata maps are captured at construction; consumers must treat
// them as read-only.
type Event struct {
	id        string
	name      string
	timestamp time.Time
	data      map[string]any
	metadata  map[string]any
	async     bool
	priority  int
}

// NewEvent creates a domain event with a fresh identity and timestamp
func NewEvent(name string, data, metadata map[string]any, async bool, priority int) *Event {
	if data == nil {
		data = map[string]any{}
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Event{
		id:        uuid.New().String(),
		name:      name,
		timestamp: time.Now().UTC(),
		data:      data,
		metadata:  metadata,
		async:     async,
		priority:  priority,
	}
}

// ID returns the globally unique event identity
func (e *Event) ID() string { return e.id }

// Name returns the event type discriminator
func (e *Event) Name() string { return e.name }

// Timestamp returns the creation instant
func (e *Event) Timestamp() time.Time { return e.timestamp }

// Data returns the point-in-time data snapshot
func (e *Event) Data() map[string]any { return e.data }

// Metadata returns the dispatch metadata
func (e *Event) Metadata() map[string]any { return e.metadata }

// Async reports whether the event is dispatched through the queue collaborator
func (e *Event) Async() bool { return e.async }

// Priority returns the dispatch priority; higher dispatches first
func (e *Event) Priority() int { return e.priority }

// AggregateID returns the owning aggregate identity from metadata, if set
func (e *Event) AggregateID() string {
	if id, ok := e.metadata[MetaAggregateID].(string); ok {
		return id
	}
	return ""
}

// eventEnvelope is the wire form of an Event
type eventEnvelope struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
	Metadata  map[string]any `json:"metadata"`
	Async     bool           `json:"async"`
	Priority  int            `json:"priority"`
}

// Serialize encodes the event as a JSON envelope suitable for queue transport
func (e *Event) Serialize() ([]byte, error) {
	payload, err := json.Marshal(eventEnvelope{
		ID:        e.id,
		Name:      e.name,
		Timestamp: e.timestamp,
		Data:      e.data,
		Metadata:  e.metadata,
		Async:     e.async,
		Priority:  e.priority,
	})
	if err != nil {
		return nil, &SerializationError{Reason: "encoding envelope", Err: err}
	}
	return payload, nil
}

// DeserializeEvent reconstructs an event from its JSON envelope. All seven
// envelope fields round-trip losslessly.
func DeserializeEvent(payload []byte) (*Event, error) {
	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &SerializationError{Reason: "decoding envelope", Err: err}
	}
	if env.ID == "" {
		return nil, &SerializationError{Reason: "missing event id"}
	}
	if env.Name == "" {
		return nil, &SerializationError{Reason: "missing event name"}
	}
	if env.Timestamp.IsZero() {
		return nil, &SerializationError{Reason: "missing event timestamp"}
	}
	if env.Data == nil {
		env.Data = map[string]any{}
	}
	if env.Metadata == nil {
		env.Metadata = map[string]any{}
	}
	return &Event{
		id:        env.ID,
		name:      env.Name,
		timestamp: env.Timestamp,
		data:      env.Data,
		metadata:  env.Metadata,
		async:     env.Async,
		priority:  env.Priority,
	}, nil
}
