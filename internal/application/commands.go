package application

// CreateOrderCommand represents the command to create a new order
type CreateOrderCommand struct {
	OrderID         string
	CustomerID      string
	CustomerEmail   string
	Currency        string
	Items           []OrderItemInput
	ShippingAddress *AddressInput
	BillingAddress  *AddressInput
	Notes           string
}

// OrderItemInput represents an order item in a command
type OrderItemInput struct {
	ProductID      string
	ProductName    string
	Quantity       int
	UnitPrice      float64
	Specifications map[string]string
}

// AddressInput represents an address in a command
type AddressInput struct {
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	Recipient  string
	Phone      string
}

// ChangeOrderStatusCommand represents the command to move an order to a new status
type ChangeOrderStatusCommand struct {
	OrderID string
	Status  string
	Reason  string
	Actor   string
}

// ShipOrderCommand represents the command to ship an order
type ShipOrderCommand struct {
	OrderID        string
	TrackingNumber string
	Actor          string
}

// CancelOrderCommand represents the command to cancel an order
type CancelOrderCommand struct {
	OrderID string
	Reason  string
	Actor   string
}

// AddOrderItemCommand represents the command to add an item to an order
type AddOrderItemCommand struct {
	OrderID string
	Item    OrderItemInput
}

// RemoveOrderItemCommand represents the command to remove an item from an order
type RemoveOrderItemCommand struct {
	OrderID   string
	ProductID string
}

// UpdateItemQuantityCommand represents the command to change an item's quantity
type UpdateItemQuantityCommand struct {
	OrderID   string
	ProductID string
	Quantity  int
}

// CreateInquiryCommand represents the command to open a new inquiry
type CreateInquiryCommand struct {
	InquiryID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Company       string
	ProductIDs    []string
	Message       string
}

// QuoteInquiryCommand represents the command to quote an inquiry
type QuoteInquiryCommand struct {
	InquiryID string
	Price     float64
	Currency  string
	Notes     string
	HandledBy string
}

// ResolveInquiryCommand represents accept/reject/withdraw decisions on an inquiry
type ResolveInquiryCommand struct {
	InquiryID string
	Reason    string
	Actor     string
}

// ListQuery represents pagination for list operations
type ListQuery struct {
	Limit  int64
	Offset int64
}

// Normalize clamps pagination to sane bounds
func (q *ListQuery) Normalize() {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
}
