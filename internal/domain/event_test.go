package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	data := map[string]any{"orderId": "ORD-001"}
	metadata := map[string]any{MetaAggregateID: "ORD-001"}

	event := NewEvent("test.event", data, metadata, true, 10)

	_, err := uuid.Parse(event.ID())
	assert.NoError(t, err, "event id must be a UUID")
	assert.Equal(t, "test.event", event.Name())
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp(), time.Second)
	assert.Equal(t, data, event.Data())
	assert.Equal(t, metadata, event.Metadata())
	assert.True(t, event.Async())
	assert.Equal(t, 10, event.Priority())
	assert.Equal(t, "ORD-001", event.AggregateID())
}

func TestNewEventUniqueIdentity(t *testing.T) {
	first := NewEvent("test.event", nil, nil, false, 0)
	second := NewEvent("test.event", nil, nil, false, 0)
	assert.NotEqual(t, first.ID(), second.ID())
}

func TestNewEventNilMaps(t *testing.T) {
	event := NewEvent("test.event", nil, nil, false, 0)
	assert.NotNil(t, event.Data())
	assert.NotNil(t, event.Metadata())
	assert.Empty(t, event.AggregateID())
}

func TestEventSerializeRoundTrip(t *testing.T) {
	event := NewEvent("procurement.order.created",
		map[string]any{"orderId": "ORD-001", "totalAmount": 1250.5},
		map[string]any{MetaAggregateID: "ORD-001", MetaCategory: CategoryOrder},
		true, 10)

	payload, err := event.Serialize()
	require.NoError(t, err)

	decoded, err := DeserializeEvent(payload)
	require.NoError(t, err)

	assert.Equal(t, event.ID(), decoded.ID())
	assert.Equal(t, event.Name(), decoded.Name())
	assert.True(t, event.Timestamp().Equal(decoded.Timestamp()))
	assert.Equal(t, event.Data(), decoded.Data())
	assert.Equal(t, event.Metadata(), decoded.Metadata())
	assert.Equal(t, event.Async(), decoded.Async())
	assert.Equal(t, event.Priority(), decoded.Priority())
}

func TestDeserializeEventInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "not-json"},
		{name: "missing id", payload: `{"name":"x","timestamp":"2026-01-01T00:00:00Z"}`},
		{name: "missing name", payload: `{"id":"abc","timestamp":"2026-01-01T00:00:00Z"}`},
		{name: "missing timestamp", payload: `{"id":"abc","name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeEvent([]byte(tt.payload))
			require.Error(t, err)
			var serializationErr *SerializationError
			assert.ErrorAs(t, err, &serializationErr)
		})
	}
}

func TestDeserializeEventDefaultsEmptyMaps(t *testing.T) {
	payload := `{"id":"abc","name":"x","timestamp":"2026-01-01T00:00:00Z","async":true,"priority":5}`
	event, err := DeserializeEvent([]byte(payload))
	require.NoError(t, err)
	assert.NotNil(t, event.Data())
	assert.NotNil(t, event.Metadata())
	assert.True(t, event.Async())
	assert.Equal(t, 5, event.Priority())
}
