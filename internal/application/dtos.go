package application

import "time"

// OrderDTO represents an order in application layer responses
type OrderDTO struct {
	OrderID         string         `json:"orderId"`
	CustomerID      string         `json:"customerId"`
	CustomerEmail   string         `json:"customerEmail"`
	Items           []OrderItemDTO `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	Currency        string         `json:"currency"`
	Status          string         `json:"status"`
	ShippingAddress *AddressDTO    `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressDTO    `json:"billingAddress,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	TrackingNumber  string         `json:"trackingNumber,omitempty"`
	ItemCount       int            `json:"itemCount"`
	TotalQuantity   int            `json:"totalQuantity"`
	IsBulkOrder     bool           `json:"isBulkOrder"`
	IsHighValue     bool           `json:"isHighValue"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	ConfirmedAt     *time.Time     `json:"confirmedAt,omitempty"`
	ShippedAt       *time.Time     `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time     `json:"deliveredAt,omitempty"`
}

// OrderItemDTO represents an order item in responses
type OrderItemDTO struct {
	ProductID      string            `json:"productId"`
	ProductName    string            `json:"productName"`
	Quantity       int               `json:"quantity"`
	UnitPrice      float64           `json:"unitPrice"`
	TotalPrice     float64           `json:"totalPrice"`
	Currency       string            `json:"currency"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// AddressDTO represents an address in responses
type AddressDTO struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone,omitempty"`
}

// InquiryDTO represents an inquiry in application layer responses
type InquiryDTO struct {
	InquiryID      string     `json:"inquiryId"`
	CustomerName   string     `json:"customerName"`
	CustomerEmail  string     `json:"customerEmail"`
	CustomerPhone  string     `json:"customerPhone,omitempty"`
	Company        string     `json:"company,omitempty"`
	ProductIDs     []string   `json:"productIds"`
	Message        string     `json:"message,omitempty"`
	Status         string     `json:"status"`
	QuotedPrice    *float64   `json:"quotedPrice,omitempty"`
	QuotedCurrency *string    `json:"quotedCurrency,omitempty"`
	QuoteNotes     string     `json:"quoteNotes,omitempty"`
	HandledBy      string     `json:"handledBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	QuotedAt       *time.Time `json:"quotedAt,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}
