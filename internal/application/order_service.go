// Package application coordinates aggregates, persistence and event dispatch.
package application

import (
	"context"
	"fmt"

	"github.com/b2b-platform/procurement-service/internal/dispatch"
	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
)

// OrderService handles order-related use cases. Every mutation follows the
// same shape: load the aggregate, apply the change, persist, then dispatch
// the events the aggregate recorded. Events are dispatched only after a
// successful save so listeners never observe unpersisted state.
type OrderService struct {
	orders     domain.OrderRepository
	dispatcher *dispatch.Dispatcher
	logger     *logging.Logger
}

// NewOrderService creates an OrderService
func NewOrderService(orders domain.OrderRepository, dispatcher *dispatch.Dispatcher, logger *logging.Logger) *OrderService {
	return &OrderService{
		orders:     orders,
		dispatcher: dispatcher,
		logger:     logger.WithComponent("order-service"),
	}
}

// CreateOrder creates a new order
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*OrderDTO, error) {
	currency := domain.Currency(cmd.Currency)

	items, err := toDomainItems(cmd.Items, currency)
	if err != nil {
		return nil, err
	}

	order, err := domain.NewOrder(cmd.OrderID, cmd.CustomerID, cmd.CustomerEmail, items, currency)
	if err != nil {
		return nil, err
	}

	if cmd.ShippingAddress != nil {
		order.SetShippingAddress(*toDomainAddress(cmd.ShippingAddress))
	}
	if cmd.BillingAddress != nil {
		order.SetBillingAddress(*toDomainAddress(cmd.BillingAddress))
	}
	order.Notes = cmd.Notes

	if err := s.saveAndDispatch(ctx, order); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Order created",
		"orderId", order.ID(),
		"customerId", order.CustomerID,
		"totalAmount", order.TotalAmount,
		"currency", order.Currency,
	)

	return ToOrderDTO(order), nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(order), nil
}

// ListOrders retrieves a page of orders
func (s *OrderService) ListOrders(ctx context.Context, query ListQuery) ([]*OrderDTO, error) {
	query.Normalize()

	orders, err := s.orders.FindAll(ctx, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return ToOrderDTOs(orders), nil
}

// ListOrdersByCustomer retrieves all orders for a customer
func (s *OrderService) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*OrderDTO, error) {
	orders, err := s.orders.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return ToOrderDTOs(orders), nil
}

// ListOrdersByStatus retrieves orders in a given status
func (s *OrderService) ListOrdersByStatus(ctx context.Context, status string) ([]*OrderDTO, error) {
	orderStatus, err := domain.NewOrderStatus(status)
	if err != nil {
		return nil, err
	}

	orders, err := s.orders.FindByStatus(ctx, orderStatus)
	if err != nil {
		return nil, err
	}
	return ToOrderDTOs(orders), nil
}

// ChangeOrderStatus moves an order to a new status
func (s *OrderService) ChangeOrderStatus(ctx context.Context, cmd ChangeOrderStatusCommand) (*OrderDTO, error) {
	status, err := domain.NewOrderStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.ChangeStatus(status, cmd.Reason, cmd.Actor)
	})
}

// ConfirmOrder confirms a pending order
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID, actor string) (*OrderDTO, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.Confirm(actor)
	})
}

// StartProcessing moves a confirmed order into processing
func (s *OrderService) StartProcessing(ctx context.Context, orderID, actor string) (*OrderDTO, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.StartProcessing(actor)
	})
}

// ShipOrder ships a processing order with a tracking number
func (s *OrderService) ShipOrder(ctx context.Context, cmd ShipOrderCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.Ship(cmd.TrackingNumber, cmd.Actor)
	})
}

// DeliverOrder marks a shipped order as delivered
func (s *OrderService) DeliverOrder(ctx context.Context, orderID, actor string) (*OrderDTO, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.Deliver(actor)
	})
}

// CancelOrder cancels an order
func (s *OrderService) CancelOrder(ctx context.Context, cmd CancelOrderCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.Cancel(cmd.Reason, cmd.Actor)
	})
}

// RefundOrder refunds a delivered order
func (s *OrderService) RefundOrder(ctx context.Context, orderID, reason, actor string) (*OrderDTO, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.Refund(reason, actor)
	})
}

// HoldOrder puts an order on hold
func (s *OrderService) HoldOrder(ctx context.Context, orderID, reason, actor string) (*OrderDTO, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.PutOnHold(reason, actor)
	})
}

// ResumeOrder resumes an on-hold order
func (s *OrderService) ResumeOrder(ctx context.Context, orderID, actor string) (*OrderDTO, error) {
	return s.mutate(ctx, orderID, func(order *domain.Order) error {
		return order.ResumeFromHold(actor)
	})
}

// AddOrderItem adds an item to a modifiable order
func (s *OrderService) AddOrderItem(ctx context.Context, cmd AddOrderItemCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		item, err := domain.NewOrderItem(
			cmd.Item.ProductID,
			cmd.Item.ProductName,
			cmd.Item.Quantity,
			cmd.Item.UnitPrice,
			order.Currency,
			cmd.Item.Specifications,
		)
		if err != nil {
			return err
		}
		return order.AddItem(item)
	})
}

// RemoveOrderItem removes an item from a modifiable order
func (s *OrderService) RemoveOrderItem(ctx context.Context, cmd RemoveOrderItemCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.RemoveItem(cmd.ProductID)
	})
}

// UpdateItemQuantity changes an item's quantity on a modifiable order
func (s *OrderService) UpdateItemQuantity(ctx context.Context, cmd UpdateItemQuantityCommand) (*OrderDTO, error) {
	return s.mutate(ctx, cmd.OrderID, func(order *domain.Order) error {
		return order.UpdateItemQuantity(cmd.ProductID, cmd.Quantity)
	})
}

func (s *OrderService) mutate(ctx context.Context, orderID string, fn func(*domain.Order) error) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := fn(order); err != nil {
		return nil, err
	}

	if err := s.saveAndDispatch(ctx, order); err != nil {
		return nil, err
	}

	return ToOrderDTO(order), nil
}

// saveAndDispatch persists the aggregate, then dispatches its pending events.
// A listener failure after a successful save is logged but does not fail the
// operation: the state change is already durable.
func (s *OrderService) saveAndDispatch(ctx context.Context, order *domain.Order) error {
	if err := s.orders.Save(ctx, order); err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID(), err)
	}

	events := order.PendingEvents()
	order.ClearPendingEvents()

	for _, event := range events {
		if _, err := s.dispatcher.Dispatch(ctx, event); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Event dispatch failed after save",
				"orderId", order.ID(),
				"eventId", event.ID(),
				"eventName", event.Name(),
			)
		}
	}

	return nil
}
