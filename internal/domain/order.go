package domain

import (
	"regexp"
	"time"
)

// Order business thresholds
const (
	BulkOrderAmountThreshold = 50000.0
	BulkOrderItemThreshold   = 20
	HighValueOrderThreshold  = 100000.0
)

// orderIDPattern validates business order identities, e.g. B2B-20260831-00042
var orderIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,49}$`)

// Order is the aggregate root for the order management bounded context
type Order struct {
	AggregateRoot

	CustomerID      string     `json:"customerId"`
	CustomerEmail   string     `json:"customerEmail"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64    `json:"totalAmount"`
	Currency        Currency   `json:"currency"`
	Status          OrderStatus `json:"status"`
	ShippingAddress *Address   `json:"shippingAddress,omitempty"`
	BillingAddress  *Address   `json:"billingAddress,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	TrackingNumber  string     `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`
	ShippedAt       *time.Time `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty"`
}

// NewOrder creates a new Order aggregate in pending status and records
// exactly one order-created event.
func NewOrder(orderID, customerID, customerEmail string, items []OrderItem, currency Currency) (*Order, error) {
	if !orderIDPattern.MatchString(orderID) {
		return nil, NewValidationError("orderId", "order id must be alphanumeric/hyphen, at most 50 characters")
	}
	if customerID == "" {
		return nil, NewValidationError("customerId", "customer id is required")
	}
	if customerEmail == "" {
		return nil, NewValidationError("customerEmail", "customer email is required")
	}
	if !currency.IsValid() {
		return nil, NewValidationError("currency", "unsupported currency: "+string(currency))
	}
	if len(items) == 0 {
		return nil, &ItemConstraintError{Message: "order must have at least one item"}
	}
	for _, item := range items {
		if item.Currency != currency {
			return nil, NewValidationError("currency", "item "+item.ProductID+" currency does not match order currency")
		}
	}

	now := time.Now().UTC()
	order := &Order{
		AggregateRoot: newAggregateRoot(orderID),
		CustomerID:    customerID,
		CustomerEmail: customerEmail,
		Items:         items,
		Currency:      currency,
		Status:        OrderStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	order.recomputeTotal()

	order.recordEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// ExistingOrderParams carries the stored state of an order
type ExistingOrderParams struct {
	OrderID         string
	CustomerID      string
	CustomerEmail   string
	Items           []OrderItem
	Currency        Currency
	Status          OrderStatus
	ShippingAddress *Address
	BillingAddress  *Address
	Notes           string
	TrackingNumber  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ConfirmedAt     *time.Time
	ShippedAt       *time.Time
	DeliveredAt     *time.Time
}

// ExistingOrder rehydrates an Order from storage. It records no events, so
// loading an aggregate never re-emits its history. The total is recomputed
// from the items rather than trusted from storage.
func ExistingOrder(p ExistingOrderParams) *Order {
	order := &Order{
		AggregateRoot:   newAggregateRoot(p.OrderID),
		CustomerID:      p.CustomerID,
		CustomerEmail:   p.CustomerEmail,
		Items:           p.Items,
		Currency:        p.Currency,
		Status:          p.Status,
		ShippingAddress: p.ShippingAddress,
		BillingAddress:  p.BillingAddress,
		Notes:           p.Notes,
		TrackingNumber:  p.TrackingNumber,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		ConfirmedAt:     p.ConfirmedAt,
		ShippedAt:       p.ShippedAt,
		DeliveredAt:     p.DeliveredAt,
	}
	order.recomputeTotal()
	return order
}

// ChangeStatus moves the order to a new status. Changing to the current
// status is a no-op. An illegal move fails with InvalidTransitionError and
// leaves the order untouched.
func (o *Order) ChangeStatus(newStatus OrderStatus, reason, actor string) error {
	if o.Status.Equals(newStatus) {
		return nil
	}
	if !o.Status.CanTransitionTo(newStatus) {
		return &InvalidTransitionError{Entity: "order", From: o.Status.String(), To: newStatus.String()}
	}

	oldStatus := o.Status
	now := time.Now().UTC()
	o.Status = newStatus
	o.UpdatedAt = now

	switch {
	case newStatus.IsConfirmed():
		o.ConfirmedAt = &now
	case newStatus.IsShipped():
		o.ShippedAt = &now
	case newStatus.IsDelivered():
		o.DeliveredAt = &now
	}

	o.recordEvent(NewOrderStatusChangedEvent(o, oldStatus, newStatus, reason, actor))

	return nil
}

// Confirm transitions the order to confirmed
func (o *Order) Confirm(actor string) error {
	return o.ChangeStatus(OrderStatusConfirmed, "order confirmed", actor)
}

// StartProcessing transitions the order to processing
func (o *Order) StartProcessing(actor string) error {
	return o.ChangeStatus(OrderStatusProcessing, "order processing started", actor)
}

// Ship transitions the order to shipped and records the tracking number
func (o *Order) Ship(trackingNumber, actor string) error {
	if trackingNumber == "" {
		return NewValidationError("trackingNumber", "tracking number is required")
	}
	if !o.Status.CanTransitionTo(OrderStatusShipped) {
		return &InvalidTransitionError{Entity: "order", From: o.Status.String(), To: OrderStatusShipped.String()}
	}

	o.TrackingNumber = trackingNumber
	return o.ChangeStatus(OrderStatusShipped, "order shipped", actor)
}

// Deliver transitions the order to delivered
func (o *Order) Deliver(actor string) error {
	return o.ChangeStatus(OrderStatusDelivered, "order delivered", actor)
}

// Cancel transitions the order to cancelled
func (o *Order) Cancel(reason, actor string) error {
	if !o.Status.CanBeCancelled() {
		return &InvalidTransitionError{Entity: "order", From: o.Status.String(), To: OrderStatusCancelled.String()}
	}
	return o.ChangeStatus(OrderStatusCancelled, reason, actor)
}

// Refund transitions a delivered order to refunded
func (o *Order) Refund(reason, actor string) error {
	if !o.Status.CanBeRefunded() {
		return &InvalidTransitionError{Entity: "order", From: o.Status.String(), To: OrderStatusRefunded.String()}
	}
	return o.ChangeStatus(OrderStatusRefunded, reason, actor)
}

// PutOnHold transitions the order to on hold
func (o *Order) PutOnHold(reason, actor string) error {
	return o.ChangeStatus(OrderStatusOnHold, reason, actor)
}

// ResumeFromHold moves an on-hold order back to processing
func (o *Order) ResumeFromHold(actor string) error {
	if !o.Status.IsOnHold() {
		return &InvalidTransitionError{Entity: "order", From: o.Status.String(), To: OrderStatusProcessing.String()}
	}
	return o.ChangeStatus(OrderStatusProcessing, "order resumed from hold", actor)
}

// AddItem appends a new line item. Legal only while the order is modifiable
// and the product is not already present.
func (o *Order) AddItem(item OrderItem) error {
	if !o.Status.IsModifiable() {
		return &ItemConstraintError{Message: "order items cannot be changed in status " + o.Status.String()}
	}
	if item.Currency != o.Currency {
		return NewValidationError("currency", "item currency does not match order currency")
	}
	if o.findItem(item.ProductID) >= 0 {
		return &ItemConstraintError{ProductID: item.ProductID, Message: "product already exists in order"}
	}

	o.Items = append(o.Items, item)
	o.recomputeTotal()
	o.UpdatedAt = time.Now().UTC()
	o.recordEvent(NewOrderItemAddedEvent(o, item))

	return nil
}

// RemoveItem removes a line item. Removing the last item is illegal.
func (o *Order) RemoveItem(productID string) error {
	if !o.Status.IsModifiable() {
		return &ItemConstraintError{Message: "order items cannot be changed in status " + o.Status.String()}
	}
	idx := o.findItem(productID)
	if idx < 0 {
		return &ItemConstraintError{ProductID: productID, Message: "product not found in order"}
	}
	if len(o.Items) == 1 {
		return &ItemConstraintError{ProductID: productID, Message: "order must keep at least one item"}
	}

	removed := o.Items[idx]
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.recomputeTotal()
	o.UpdatedAt = time.Now().UTC()
	o.recordEvent(NewOrderItemRemovedEvent(o, removed))

	return nil
}

// UpdateItemQuantity replaces a line item with a new quantity
func (o *Order) UpdateItemQuantity(productID string, quantity int) error {
	if !o.Status.IsModifiable() {
		return &ItemConstraintError{Message: "order items cannot be changed in status " + o.Status.String()}
	}
	idx := o.findItem(productID)
	if idx < 0 {
		return &ItemConstraintError{ProductID: productID, Message: "product not found in order"}
	}

	updated, err := o.Items[idx].WithQuantity(quantity)
	if err != nil {
		return err
	}

	oldQuantity := o.Items[idx].Quantity
	o.Items[idx] = updated
	o.recomputeTotal()
	o.UpdatedAt = time.Now().UTC()
	o.recordEvent(NewOrderItemQuantityChangedEvent(o, updated, oldQuantity))

	return nil
}

// SetShippingAddress sets the shipping address
func (o *Order) SetShippingAddress(address Address) {
	o.ShippingAddress = &address
	o.UpdatedAt = time.Now().UTC()
}

// SetBillingAddress sets the billing address
func (o *Order) SetBillingAddress(address Address) {
	o.BillingAddress = &address
	o.UpdatedAt = time.Now().UTC()
}

// ItemCount returns the number of line items
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the summed quantity across line items
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// IsBulkOrder returns true for large orders by amount or line count
func (o *Order) IsBulkOrder() bool {
	return o.TotalAmount >= BulkOrderAmountThreshold || o.ItemCount() >= BulkOrderItemThreshold
}

// IsHighValueOrder returns true for orders at or above the high-value threshold
func (o *Order) IsHighValueOrder() bool {
	return o.TotalAmount >= HighValueOrderThreshold
}

// RequiresSpecialHandling returns true if the order is bulk or high value
func (o *Order) RequiresSpecialHandling() bool {
	return o.IsBulkOrder() || o.IsHighValueOrder()
}

func (o *Order) findItem(productID string) int {
	for i := range o.Items {
		if o.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// recomputeTotal keeps TotalAmount equal to the sum of item totals
func (o *Order) recomputeTotal() {
	total := 0.0
	for _, item := range o.Items {
		total += item.TotalPrice()
	}
	o.TotalAmount = total
}
