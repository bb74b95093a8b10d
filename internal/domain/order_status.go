package domain

// OrderStatus represents an immutable order status value object
type OrderStatus struct {
	value string
}

// Valid order status values
const (
	orderStatusPending    = "pending"
	orderStatusConfirmed  = "confirmed"
	orderStatusProcessing = "processing"
	orderStatusShipped    = "shipped"
	orderStatusDelivered  = "delivered"
	orderStatusCancelled  = "cancelled"
	orderStatusRefunded   = "refunded"
	orderStatusOnHold     = "on_hold"
)

// Predefined OrderStatus instances
var (
	OrderStatusPending    = OrderStatus{value: orderStatusPending}
	OrderStatusConfirmed  = OrderStatus{value: orderStatusConfirmed}
	OrderStatusProcessing = OrderStatus{value: orderStatusProcessing}
	OrderStatusShipped    = OrderStatus{value: orderStatusShipped}
	OrderStatusDelivered  = OrderStatus{value: orderStatusDelivered}
	OrderStatusCancelled  = OrderStatus{value: orderStatusCancelled}
	OrderStatusRefunded   = OrderStatus{value: orderStatusRefunded}
	OrderStatusOnHold     = OrderStatus{value: orderStatusOnHold}
)

// orderTransitions encodes the legal different-state moves. Self-transitions
// are handled as a no-op by the aggregate layer and never appear here.
var orderTransitions = map[string][]string{
	orderStatusPending:    {orderStatusConfirmed, orderStatusCancelled},
	orderStatusConfirmed:  {orderStatusProcessing, orderStatusCancelled, orderStatusOnHold},
	orderStatusProcessing: {orderStatusShipped, orderStatusCancelled, orderStatusOnHold},
	orderStatusShipped:    {orderStatusDelivered},
	orderStatusDelivered:  {orderStatusRefunded},
	orderStatusCancelled:  {}, // Terminal state
	orderStatusRefunded:   {}, // Terminal state
	orderStatusOnHold:     {orderStatusProcessing, orderStatusCancelled},
}

// NewOrderStatus creates a new OrderStatus value object with validation
func NewOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case orderStatusPending, orderStatusConfirmed, orderStatusProcessing,
		orderStatusShipped, orderStatusDelivered, orderStatusCancelled,
		orderStatusRefunded, orderStatusOnHold:
		return OrderStatus{value: s}, nil
	default:
		return OrderStatus{}, NewValidationError("status", "invalid order status value: "+s)
	}
}

// MustNewOrderStatus creates an OrderStatus or panics if invalid (use for constants only)
func MustNewOrderStatus(s string) OrderStatus {
	status, err := NewOrderStatus(s)
	if err != nil {
		panic(err)
	}
	return status
}

// String returns the string representation of the status
func (s OrderStatus) String() string {
	return s.value
}

// Equals checks if two statuses are equal
func (s OrderStatus) Equals(other OrderStatus) bool {
	return s.value == other.value
}

// IsPending returns true if the status is pending
func (s OrderStatus) IsPending() bool {
	return s.value == orderStatusPending
}

// IsConfirmed returns true if the status is confirmed
func (s OrderStatus) IsConfirmed() bool {
	return s.value == orderStatusConfirmed
}

// IsProcessing returns true if the status is processing
func (s OrderStatus) IsProcessing() bool {
	return s.value == orderStatusProcessing
}

// IsShipped returns true if the status is shipped
func (s OrderStatus) IsShipped() bool {
	return s.value == orderStatusShipped
}

// IsDelivered returns true if the status is delivered
func (s OrderStatus) IsDelivered() bool {
	return s.value == orderStatusDelivered
}

// IsCancelled returns true if the status is cancelled
func (s OrderStatus) IsCancelled() bool {
	return s.value == orderStatusCancelled
}

// IsRefunded returns true if the status is refunded
func (s OrderStatus) IsRefunded() bool {
	return s.value == orderStatusRefunded
}

// IsOnHold returns true if the status is on hold
func (s OrderStatus) IsOnHold() bool {
	return s.value == orderStatusOnHold
}

// IsTerminal returns true if the status has no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s.value]) == 0
}

// CanBeCancelled returns true if the order can still be cancelled
func (s OrderStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// CanBeRefunded returns true if the order can be refunded
func (s OrderStatus) CanBeRefunded() bool {
	return s.CanTransitionTo(OrderStatusRefunded)
}

// IsModifiable returns true if order items may still be changed
func (s OrderStatus) IsModifiable() bool {
	return s.value == orderStatusPending || s.value == orderStatusConfirmed
}

// CanTransitionTo checks if this status can transition to another status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	allowedTargets, exists := orderTransitions[s.value]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if target.value == allowed {
			return true
		}
	}

	return false
}

// MarshalText implements encoding.TextMarshaler for JSON/BSON serialization
func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/BSON deserialization
func (s *OrderStatus) UnmarshalText(text []byte) error {
	status, err := NewOrderStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
