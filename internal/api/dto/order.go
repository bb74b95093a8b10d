// Package dto defines the HTTP request shapes and their command mappings.
package dto

import (
	"github.com/b2b-platform/procurement-service/internal/application"
)

// CreateOrderRequest represents the request to create an order
type CreateOrderRequest struct {
	OrderID         string             `json:"orderId" binding:"required,aggregate_id"`
	CustomerID      string             `json:"customerId" binding:"required"`
	CustomerEmail   string             `json:"customerEmail" binding:"required,email"`
	Currency        string             `json:"currency" binding:"required,currency"`
	Items           []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress *AddressRequest    `json:"shippingAddress,omitempty"`
	BillingAddress  *AddressRequest    `json:"billingAddress,omitempty"`
	Notes           string             `json:"notes,omitempty" binding:"max=2000"`
}

// OrderItemRequest represents an order item in a request
type OrderItemRequest struct {
	ProductID      string            `json:"productId" binding:"required,product_id"`
	ProductName    string            `json:"productName" binding:"required"`
	Quantity       int               `json:"quantity" binding:"required,min=1"`
	UnitPrice      float64           `json:"unitPrice" binding:"gte=0"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// AddressRequest represents an address in a request
type AddressRequest struct {
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required,len=2"`
	Recipient  string `json:"recipient" binding:"required"`
	Phone      string `json:"phone,omitempty"`
}

// ChangeOrderStatusRequest represents a status change request
type ChangeOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason,omitempty" binding:"max=500"`
	Actor  string `json:"actor,omitempty" binding:"max=100"`
}

// ShipOrderRequest represents the request to ship an order
type ShipOrderRequest struct {
	TrackingNumber string `json:"trackingNumber" binding:"required"`
	Actor          string `json:"actor,omitempty" binding:"max=100"`
}

// CancelOrderRequest represents the request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
	Actor  string `json:"actor,omitempty" binding:"max=100"`
}

// AddOrderItemRequest represents the request to add an item
type AddOrderItemRequest struct {
	Item OrderItemRequest `json:"item" binding:"required"`
}

// UpdateItemQuantityRequest represents the request to change an item quantity
type UpdateItemQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ToCommand maps the request to an application command
func (r *CreateOrderRequest) ToCommand() application.CreateOrderCommand {
	items := make([]application.OrderItemInput, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, application.OrderItemInput{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Specifications: item.Specifications,
		})
	}

	return application.CreateOrderCommand{
		OrderID:         r.OrderID,
		CustomerID:      r.CustomerID,
		CustomerEmail:   r.CustomerEmail,
		Currency:        r.Currency,
		Items:           items,
		ShippingAddress: toAddressInput(r.ShippingAddress),
		BillingAddress:  toAddressInput(r.BillingAddress),
		Notes:           r.Notes,
	}
}

func toAddressInput(r *AddressRequest) *application.AddressInput {
	if r == nil {
		return nil
	}
	return &application.AddressInput{
		Street:     r.Street,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
		Recipient:  r.Recipient,
		Phone:      r.Phone,
	}
}

// ToItemInput maps an item request to an application input
func (r *OrderItemRequest) ToItemInput() application.OrderItemInput {
	return application.OrderItemInput{
		ProductID:      r.ProductID,
		ProductName:    r.ProductName,
		Quantity:       r.Quantity,
		UnitPrice:      r.UnitPrice,
		Specifications: r.Specifications,
	}
}
