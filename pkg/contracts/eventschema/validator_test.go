package eventschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-platform/procurement-service/internal/domain"
)

func TestNewValidatorCompilesEmbeddedContract(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)
	require.NotNil(t, validator)
}

func TestNewValidatorFromBytesBadSpec(t *testing.T) {
	_, err := NewValidatorFromBytes([]byte("not: [valid"))
	assert.Error(t, err)

	_, err = NewValidatorFromBytes([]byte("asyncapi: 3.0.0\ncomponents:\n  schemas: {}\n"))
	assert.Error(t, err)
}

func TestValidateEnvelopeAcceptsDomainEvents(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	item, err := domain.NewOrderItem("PROD-001", "Industrial Pump", 2, 1500, domain.CurrencyUSD, nil)
	require.NoError(t, err)
	order, err := domain.NewOrder("ORD-001", "CUST-001", "buyer@example.com", []domain.OrderItem{item}, domain.CurrencyUSD)
	require.NoError(t, err)

	events := order.PendingEvents()
	require.NoError(t, order.Confirm("ops"))
	events = append(events, order.PendingEvents()...)

	for _, event := range events {
		payload, err := event.Serialize()
		require.NoError(t, err)
		assert.NoError(t, validator.ValidateEnvelope(payload), "event %s", event.Name())
	}
}

func TestValidateEnvelopeAcceptsInquiryEvents(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	inquiry, err := domain.NewInquiry("INQ-001", "Tanaka Trading", "tanaka@example.com", "", "",
		[]string{"PROD-001"}, "")
	require.NoError(t, err)
	require.NoError(t, inquiry.AddQuote(9800.50, domain.CurrencyUSD, "volume discount", "sales"))

	for _, event := range inquiry.PendingEvents() {
		payload, err := event.Serialize()
		require.NoError(t, err)
		assert.NoError(t, validator.ValidateEnvelope(payload), "event %s", event.Name())
	}
}

func TestValidateEnvelopeRejections(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "not json",
			payload: "not-json",
		},
		{
			name:    "missing required fields",
			payload: `{"id":"abc","name":"procurement.order.created"}`,
		},
		{
			name:    "bad event name",
			payload: `{"id":"abc","name":"warehouse.pick.completed","timestamp":"2026-01-01T00:00:00Z","data":{},"metadata":{},"async":true,"priority":10}`,
		},
		{
			name:    "unknown top-level field",
			payload: `{"id":"abc","name":"procurement.order.created","timestamp":"2026-01-01T00:00:00Z","data":{},"metadata":{},"async":true,"priority":10,"extra":1}`,
		},
		{
			name:    "bad metadata category",
			payload: `{"id":"abc","name":"procurement.order.created","timestamp":"2026-01-01T00:00:00Z","data":{},"metadata":{"category":"shipment"},"async":true,"priority":10}`,
		},
		{
			name:    "priority must be integer",
			payload: `{"id":"abc","name":"procurement.order.created","timestamp":"2026-01-01T00:00:00Z","data":{},"metadata":{},"async":true,"priority":"high"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validator.ValidateEnvelope([]byte(tt.payload)))
		})
	}
}
