package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by repositories when an aggregate does not exist
var ErrNotFound = errors.New("aggregate not found")

// OrderRepository persists Order aggregates. Implementations must rehydrate
// through ExistingOrder so loading never re-emits domain events.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, orderID string) (*Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]*Order, error)
	FindByStatus(ctx context.Context, status OrderStatus) ([]*Order, error)
	FindAll(ctx context.Context, limit, offset int64) ([]*Order, error)
	Delete(ctx context.Context, orderID string) error
}

// InquiryRepository persists Inquiry aggregates
type InquiryRepository interface {
	Save(ctx context.Context, inquiry *Inquiry) error
	FindByID(ctx context.Context, inquiryID string) (*Inquiry, error)
	FindByStatus(ctx context.Context, status InquiryStatus) ([]*Inquiry, error)
	FindExpiredQuotes(ctx context.Context) ([]*Inquiry, error)
	FindAll(ctx context.Context, limit, offset int64) ([]*Inquiry, error)
	Delete(ctx context.Context, inquiryID string) error
}
