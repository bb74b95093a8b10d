package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderStatus(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expectError bool
	}{
		{name: "pending", value: "pending"},
		{name: "confirmed", value: "confirmed"},
		{name: "processing", value: "processing"},
		{name: "shipped", value: "shipped"},
		{name: "delivered", value: "delivered"},
		{name: "cancelled", value: "cancelled"},
		{name: "refunded", value: "refunded"},
		{name: "on hold", value: "on_hold"},
		{name: "unknown value", value: "archived", expectError: true},
		{name: "empty value", value: "", expectError: true},
		{name: "case sensitive", value: "Pending", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := NewOrderStatus(tt.value)
			if tt.expectError {
				assert.Error(t, err)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.value, status.String())
			}
		})
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{name: "pending to confirmed", from: OrderStatusPending, to: OrderStatusConfirmed, allowed: true},
		{name: "pending to cancelled", from: OrderStatusPending, to: OrderStatusCancelled, allowed: true},
		{name: "pending to shipped", from: OrderStatusPending, to: OrderStatusShipped, allowed: false},
		{name: "confirmed to processing", from: OrderStatusConfirmed, to: OrderStatusProcessing, allowed: true},
		{name: "confirmed to on hold", from: OrderStatusConfirmed, to: OrderStatusOnHold, allowed: true},
		{name: "confirmed to delivered", from: OrderStatusConfirmed, to: OrderStatusDelivered, allowed: false},
		{name: "processing to shipped", from: OrderStatusProcessing, to: OrderStatusShipped, allowed: true},
		{name: "processing to on hold", from: OrderStatusProcessing, to: OrderStatusOnHold, allowed: true},
		{name: "shipped to delivered", from: OrderStatusShipped, to: OrderStatusDelivered, allowed: true},
		{name: "shipped to cancelled", from: OrderStatusShipped, to: OrderStatusCancelled, allowed: false},
		{name: "delivered to refunded", from: OrderStatusDelivered, to: OrderStatusRefunded, allowed: true},
		{name: "delivered to pending", from: OrderStatusDelivered, to: OrderStatusPending, allowed: false},
		{name: "on hold to processing", from: OrderStatusOnHold, to: OrderStatusProcessing, allowed: true},
		{name: "on hold to cancelled", from: OrderStatusOnHold, to: OrderStatusCancelled, allowed: true},
		{name: "cancelled is terminal", from: OrderStatusCancelled, to: OrderStatusPending, allowed: false},
		{name: "refunded is terminal", from: OrderStatusRefunded, to: OrderStatusPending, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatusSelfTransitionNotInTable(t *testing.T) {
	statuses := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusRefunded, OrderStatusOnHold,
	}
	for _, status := range statuses {
		assert.False(t, status.CanTransitionTo(status), "self transition for %s", status)
	}
}

func TestOrderStatusPredicates(t *testing.T) {
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.True(t, OrderStatusRefunded.IsTerminal())
	assert.False(t, OrderStatusDelivered.IsTerminal())

	assert.True(t, OrderStatusPending.CanBeCancelled())
	assert.True(t, OrderStatusOnHold.CanBeCancelled())
	assert.False(t, OrderStatusShipped.CanBeCancelled())
	assert.False(t, OrderStatusDelivered.CanBeCancelled())

	assert.True(t, OrderStatusDelivered.CanBeRefunded())
	assert.False(t, OrderStatusShipped.CanBeRefunded())

	assert.True(t, OrderStatusPending.IsModifiable())
	assert.True(t, OrderStatusConfirmed.IsModifiable())
	assert.False(t, OrderStatusShipped.IsModifiable())
}

func TestOrderStatusTextRoundTrip(t *testing.T) {
	text, err := OrderStatusProcessing.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "processing", string(text))

	var status OrderStatus
	require.NoError(t, status.UnmarshalText([]byte("shipped")))
	assert.True(t, status.IsShipped())

	assert.Error(t, status.UnmarshalText([]byte("bogus")))
}
