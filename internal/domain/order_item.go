package domain

// Currency represents a supported settlement currency
type Currency string

// Supported currencies
const (
	CurrencyCNY Currency = "CNY"
	CurrencyJPY Currency = "JPY"
	CurrencyUSD Currency = "USD"
)

// IsValid checks if the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case CurrencyCNY, CurrencyJPY, CurrencyUSD:
		return true
	default:
		return false
	}
}

// OrderItem is an immutable line-item value object. Any change produces a new
// OrderItem rather than mutating in place.
type OrderItem struct {
	ProductID      string            `json:"productId"`
	ProductName    string            `json:"productName"`
	Quantity       int               `json:"quantity"`
	UnitPrice      float64           `json:"unitPrice"`
	Currency       Currency          `json:"currency"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// NewOrderItem creates an OrderItem with validation
func NewOrderItem(productID, productName string, quantity int, unitPrice float64, currency Currency, specifications map[string]string) (OrderItem, error) {
	if productID == "" {
		return OrderItem{}, NewValidationError("productId", "product id is required")
	}
	if productName == "" {
		return OrderItem{}, NewValidationError("productName", "product name is required")
	}
	if quantity <= 0 {
		return OrderItem{}, &ItemConstraintError{ProductID: productID, Message: "quantity must be greater than zero"}
	}
	if unitPrice < 0 {
		return OrderItem{}, &ItemConstraintError{ProductID: productID, Message: "unit price must not be negative"}
	}
	if !currency.IsValid() {
		return OrderItem{}, NewValidationError("currency", "unsupported currency: "+string(currency))
	}

	return OrderItem{
		ProductID:      productID,
		ProductName:    productName,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		Currency:       currency,
		Specifications: specifications,
	}, nil
}

// TotalPrice returns quantity x unit price. Always derived, never stored.
func (i OrderItem) TotalPrice() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// WithQuantity returns a copy of the item with a new quantity
func (i OrderItem) WithQuantity(quantity int) (OrderItem, error) {
	if quantity <= 0 {
		return OrderItem{}, &ItemConstraintError{ProductID: i.ProductID, Message: "quantity must be greater than zero"}
	}
	item := i
	item.Quantity = quantity
	return item, nil
}

// Address represents a shipping or billing address
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Recipient  string `json:"recipient"`
	Phone      string `json:"phone,omitempty"`
}
