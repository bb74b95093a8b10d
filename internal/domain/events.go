package domain

// Event type discriminators
const (
	EventOrderCreated             = "procurement.order.created"
	EventOrderStatusChanged       = "procurement.order.status-changed"
	EventOrderItemAdded           = "procurement.order.item-added"
	EventOrderItemRemoved         = "procurement.order.item-removed"
	EventOrderItemQuantityChanged = "procurement.order.item-quantity-changed"

	EventInquiryCreated   = "procurement.inquiry.created"
	EventInquiryQuoted    = "procurement.inquiry.quoted"
	EventInquiryAccepted  = "procurement.inquiry.accepted"
	EventInquiryRejected  = "procurement.inquiry.rejected"
	EventInquiryWithdrawn = "procurement.inquiry.withdrawn"
	EventInquiryExpired   = "procurement.inquiry.expired"
)

// Event categories carried in metadata
const (
	CategoryOrder   = "order"
	CategoryInquiry = "inquiry"
)

func orderMetadata(order *Order, importance string, notifyCustomer, requiresFollowUp bool) map[string]any {
	return map[string]any{
		MetaSource:           EventSource,
		MetaCategory:         CategoryOrder,
		MetaImportance:       importance,
		MetaNotifyCustomer:   notifyCustomer,
		MetaRequiresFollowUp: requiresFollowUp,
		MetaAggregateID:      order.ID(),
	}
}

func inquiryMetadata(inquiry *Inquiry, importance string, notifyCustomer, requiresFollowUp bool) map[string]any {
	return map[string]any{
		MetaSource:           EventSource,
		MetaCategory:         CategoryInquiry,
		MetaImportance:       importance,
		MetaNotifyCustomer:   notifyCustomer,
		MetaRequiresFollowUp: requiresFollowUp,
		MetaAggregateID:      inquiry.ID(),
	}
}

func itemSnapshot(item OrderItem) map[string]any {
	return map[string]any{
		"productId":   item.ProductID,
		"productName": item.ProductName,
		"quantity":    float64(item.Quantity),
		"unitPrice":   item.UnitPrice,
		"totalPrice":  item.TotalPrice(),
		"currency":    string(item.Currency),
	}
}

func itemSnapshots(items []OrderItem) []any {
	snapshots := make([]any, 0, len(items))
	for _, item := range items {
		snapshots = append(snapshots, itemSnapshot(item))
	}
	return snapshots
}

// NewOrderCreatedEvent is recorded exactly once when a new order is created
func NewOrderCreatedEvent(order *Order) *Event {
	importance := ImportanceNormal
	if order.RequiresSpecialHandling() {
		importance = ImportanceHigh
	}
	return NewEvent(EventOrderCreated, map[string]any{
		"orderId":       order.ID(),
		"customerId":    order.CustomerID,
		"customerEmail": order.CustomerEmail,
		"items":         itemSnapshots(order.Items),
		"totalAmount":   order.TotalAmount,
		"currency":      string(order.Currency),
		"status":        order.Status.String(),
	}, orderMetadata(order, importance, true, order.RequiresSpecialHandling()), true, 10)
}

// NewOrderStatusChangedEvent is recorded on every successful status transition
func NewOrderStatusChangedEvent(order *Order, oldStatus, newStatus OrderStatus, reason, actor string) *Event {
	importance := ImportanceNormal
	if newStatus.IsCancelled() || newStatus.IsRefunded() {
		importance = ImportanceHigh
	}
	return NewEvent(EventOrderStatusChanged, map[string]any{
		"orderId":    order.ID(),
		"customerId": order.CustomerID,
		"oldStatus":  oldStatus.String(),
		"newStatus":  newStatus.String(),
		"reason":     reason,
		"actor":      actor,
	}, orderMetadata(order, importance, true, newStatus.IsCancelled()), false, 20)
}

// NewOrderItemAddedEvent is recorded when a line item is added
func NewOrderItemAddedEvent(order *Order, item OrderItem) *Event {
	return NewEvent(EventOrderItemAdded, map[string]any{
		"orderId":     order.ID(),
		"item":        itemSnapshot(item),
		"totalAmount": order.TotalAmount,
	}, orderMetadata(order, ImportanceLow, false, false), false, 5)
}

// NewOrderItemRemovedEvent is recorded when a line item is removed
func NewOrderItemRemovedEvent(order *Order, item OrderItem) *Event {
	return NewEvent(EventOrderItemRemoved, map[string]any{
		"orderId":     order.ID(),
		"item":        itemSnapshot(item),
		"totalAmount": order.TotalAmount,
	}, orderMetadata(order, ImportanceLow, false, false), false, 5)
}

// NewOrderItemQuantityChangedEvent is recorded when a line item quantity changes
func NewOrderItemQuantityChangedEvent(order *Order, item OrderItem, oldQuantity int) *Event {
	return NewEvent(EventOrderItemQuantityChanged, map[string]any{
		"orderId":     order.ID(),
		"item":        itemSnapshot(item),
		"oldQuantity": float64(oldQuantity),
		"totalAmount": order.TotalAmount,
	}, orderMetadata(order, ImportanceLow, false, false), false, 5)
}

// NewInquiryCreatedEvent is recorded when a new inquiry is created
func NewInquiryCreatedEvent(inquiry *Inquiry) *Event {
	return NewEvent(EventInquiryCreated, map[string]any{
		"inquiryId":     inquiry.ID(),
		"customerName":  inquiry.CustomerName,
		"customerEmail": inquiry.CustomerEmail,
		"productIds":    toAnySlice(inquiry.ProductIDs),
		"status":        inquiry.Status.String(),
	}, inquiryMetadata(inquiry, ImportanceNormal, false, true), true, 10)
}

// NewInquiryQuotedEvent is recorded when a quote is added to an inquiry
func NewInquiryQuotedEvent(inquiry *Inquiry) *Event {
	data := map[string]any{
		"inquiryId":     inquiry.ID(),
		"customerEmail": inquiry.CustomerEmail,
		"handledBy":     inquiry.HandledBy,
	}
	if inquiry.QuotedPrice != nil {
		data["quotedPrice"] = *inquiry.QuotedPrice
	}
	if inquiry.QuotedCurrency != nil {
		data["quotedCurrency"] = string(*inquiry.QuotedCurrency)
	}
	if inquiry.ExpiresAt != nil {
		data["expiresAt"] = inquiry.ExpiresAt.Format(timeFormat)
	}
	return NewEvent(EventInquiryQuoted, data, inquiryMetadata(inquiry, ImportanceHigh, true, true), true, 15)
}

// NewInquiryStatusChangedEvent is recorded on accept/reject/withdraw/expire
func NewInquiryStatusChangedEvent(name string, inquiry *Inquiry, oldStatus, newStatus InquiryStatus, reason, actor string) *Event {
	importance := ImportanceNormal
	if newStatus.IsAccepted() {
		importance = ImportanceHigh
	}
	return NewEvent(name, map[string]any{
		"inquiryId":     inquiry.ID(),
		"customerEmail": inquiry.CustomerEmail,
		"oldStatus":     oldStatus.String(),
		"newStatus":     newStatus.String(),
		"reason":        reason,
		"actor":         actor,
	}, inquiryMetadata(inquiry, importance, newStatus.IsAccepted(), false), false, 10)
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
