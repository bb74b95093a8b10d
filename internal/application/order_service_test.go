package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-platform/procurement-service/internal/dispatch"
	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = io.Discard
	return logging.New(config)
}

// memoryOrderRepo is an in-memory domain.OrderRepository
type memoryOrderRepo struct {
	orders  map[string]*domain.Order
	saveErr error
	findErr error
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *memoryOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.orders[order.ID()] = order
	return nil
}

func (r *memoryOrderRepo) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	order, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (r *memoryOrderRepo) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.CustomerID == customerID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.Status.Equals(status) {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *memoryOrderRepo) FindAll(ctx context.Context, limit, offset int64) ([]*domain.Order, error) {
	ids := make([]string, 0, len(r.orders))
	for id := range r.orders {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*domain.Order
	for i, id := range ids {
		if int64(i) < offset {
			continue
		}
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, r.orders[id])
	}
	return out, nil
}

func (r *memoryOrderRepo) Delete(ctx context.Context, orderID string) error {
	if _, ok := r.orders[orderID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.orders, orderID)
	return nil
}

// countingQueue records async enqueues for dispatch assertions
type countingQueue struct {
	events []*domain.Event
}

func (q *countingQueue) Enqueue(ctx context.Context, event *domain.Event) error {
	q.events = append(q.events, event)
	return nil
}

func newOrderFixture(t *testing.T) (*OrderService, *memoryOrderRepo, *countingQueue, *dispatch.Dispatcher) {
	t.Helper()
	repo := newMemoryOrderRepo()
	queue := &countingQueue{}
	dispatcher := dispatch.New(queue, nil, nil, nil)
	service := NewOrderService(repo, dispatcher, testLogger())
	return service, repo, queue, dispatcher
}

func createCommand() CreateOrderCommand {
	return CreateOrderCommand{
		OrderID:       "ORD-001",
		CustomerID:    "CUST-001",
		CustomerEmail: "buyer@example.com",
		Currency:      "USD",
		Items: []OrderItemInput{
			{ProductID: "PROD-001", ProductName: "Industrial Pump", Quantity: 2, UnitPrice: 1500},
			{ProductID: "PROD-002", ProductName: "Valve Assembly", Quantity: 10, UnitPrice: 85.5},
		},
		ShippingAddress: &AddressInput{
			Street: "1-2-3 Marunouchi", City: "Tokyo", PostalCode: "100-0005",
			Country: "JP", Recipient: "Sato Kenji",
		},
		Notes: "deliver to loading dock",
	}
}

func TestCreateOrder(t *testing.T) {
	service, repo, queue, _ := newOrderFixture(t)

	dto, err := service.CreateOrder(context.Background(), createCommand())
	require.NoError(t, err)

	assert.Equal(t, "ORD-001", dto.OrderID)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, 2*1500+10*85.5, dto.TotalAmount)
	assert.Equal(t, 2, dto.ItemCount)
	require.NotNil(t, dto.ShippingAddress)
	assert.Equal(t, "Tokyo", dto.ShippingAddress.City)

	// Saved before dispatch, and the created event went to the queue
	saved, err := repo.FindByID(context.Background(), "ORD-001")
	require.NoError(t, err)
	assert.Empty(t, saved.PendingEvents())

	require.Len(t, queue.events, 1)
	assert.Equal(t, domain.EventOrderCreated, queue.events[0].Name())
}

func TestCreateOrderValidationFailure(t *testing.T) {
	service, repo, queue, _ := newOrderFixture(t)

	cmd := createCommand()
	cmd.Items = nil

	dto, err := service.CreateOrder(context.Background(), cmd)
	require.Error(t, err)
	assert.Nil(t, dto)
	assert.Empty(t, repo.orders)
	assert.Empty(t, queue.events)
}

func TestCreateOrderSaveFailureSkipsDispatch(t *testing.T) {
	service, repo, queue, _ := newOrderFixture(t)
	repo.saveErr = errors.New("mongo down")

	_, err := service.CreateOrder(context.Background(), createCommand())
	require.Error(t, err)
	assert.Empty(t, queue.events)
}

func TestGetOrderNotFound(t *testing.T) {
	service, _, _, _ := newOrderFixture(t)

	_, err := service.GetOrder(context.Background(), "ORD-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	service, _, _, _ := newOrderFixture(t)
	ctx := context.Background()

	_, err := service.CreateOrder(ctx, createCommand())
	require.NoError(t, err)

	dto, err := service.ConfirmOrder(ctx, "ORD-001", "ops")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", dto.Status)
	require.NotNil(t, dto.ConfirmedAt)

	dto, err = service.StartProcessing(ctx, "ORD-001", "ops")
	require.NoError(t, err)
	assert.Equal(t, "processing", dto.Status)

	dto, err = service.ShipOrder(ctx, ShipOrderCommand{OrderID: "ORD-001", TrackingNumber: "TRACK-1", Actor: "warehouse"})
	require.NoError(t, err)
	assert.Equal(t, "shipped", dto.Status)
	assert.Equal(t, "TRACK-1", dto.TrackingNumber)

	dto, err = service.DeliverOrder(ctx, "ORD-001", "carrier")
	require.NoError(t, err)
	assert.Equal(t, "delivered", dto.Status)

	dto, err = service.RefundOrder(ctx, "ORD-001", "damaged goods", "cs")
	require.NoError(t, err)
	assert.Equal(t, "refunded", dto.Status)
}

func TestOrderIllegalTransitionLeavesStateUntouched(t *testing.T) {
	service, repo, _, _ := newOrderFixture(t)
	ctx := context.Background()

	_, err := service.CreateOrder(ctx, createCommand())
	require.NoError(t, err)

	_, err = service.ShipOrder(ctx, ShipOrderCommand{OrderID: "ORD-001", TrackingNumber: "TRACK-1", Actor: "warehouse"})
	require.Error(t, err)

	var transitionErr *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)

	saved, err := repo.FindByID(ctx, "ORD-001")
	require.NoError(t, err)
	assert.True(t, saved.Status.IsPending())
}

func TestChangeOrderStatusRejectsUnknownStatus(t *testing.T) {
	service, _, _, _ := newOrderFixture(t)

	_, err := service.ChangeOrderStatus(context.Background(), ChangeOrderStatusCommand{
		OrderID: "ORD-001", Status: "archived",
	})
	require.Error(t, err)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestHoldAndResumeOrder(t *testing.T) {
	service, _, _, _ := newOrderFixture(t)
	ctx := context.Background()

	_, err := service.CreateOrder(ctx, createCommand())
	require.NoError(t, err)
	_, err = service.ConfirmOrder(ctx, "ORD-001", "ops")
	require.NoError(t, err)

	dto, err := service.HoldOrder(ctx, "ORD-001", "credit check", "finance")
	require.NoError(t, err)
	assert.Equal(t, "on_hold", dto.Status)

	dto, err = service.ResumeOrder(ctx, "ORD-001", "finance")
	require.NoError(t, err)
	assert.Equal(t, "processing", dto.Status)
}

func TestCancelOrderDispatchesStatusEvent(t *testing.T) {
	service, _, _, dispatcher := newOrderFixture(t)
	ctx := context.Background()

	_, err := service.CreateOrder(ctx, createCommand())
	require.NoError(t, err)

	_, err = service.CancelOrder(ctx, CancelOrderCommand{OrderID: "ORD-001", Reason: "customer request", Actor: "cs"})
	require.NoError(t, err)

	history := dispatcher.History()
	require.Len(t, history, 2)
	assert.Equal(t, domain.EventOrderCreated, history[0].Name)
	assert.Equal(t, domain.EventOrderStatusChanged, history[1].Name)
	assert.Equal(t, "cancelled", history[1].Data["newStatus"])
}

func TestAddRemoveAndUpdateItems(t *testing.T) {
	service, _, _, _ := newOrderFixture(t)
	ctx := context.Background()

	_, err := service.CreateOrder(ctx, createCommand())
	require.NoError(t, err)

	dto, err := service.AddOrderItem(ctx, AddOrderItemCommand{
		OrderID: "ORD-001",
		Item:    OrderItemInput{ProductID: "PROD-003", ProductName: "Gasket Set", Quantity: 5, UnitPrice: 12},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, dto.ItemCount)

	dto, err = service.UpdateItemQuantity(ctx, UpdateItemQuantityCommand{
		OrderID: "ORD-001", ProductID: "PROD-003", Quantity: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 2*1500+10*85.5+8*12, dto.TotalAmount)

	dto, err = service.RemoveOrderItem(ctx, RemoveOrderItemCommand{OrderID: "ORD-001", ProductID: "PROD-003"})
	require.NoError(t, err)
	assert.Equal(t, 2, dto.ItemCount)
}

func TestListOrders(t *testing.T) {
	service, _, _, _ := newOrderFixture(t)
	ctx := context.Background()

	for _, id := range []string{"ORD-001", "ORD-002", "ORD-003"} {
		cmd := createCommand()
		cmd.OrderID = id
		_, err := service.CreateOrder(ctx, cmd)
		require.NoError(t, err)
	}

	all, err := service.ListOrders(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := service.ListOrders(ctx, ListQuery{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	byCustomer, err := service.ListOrdersByCustomer(ctx, "CUST-001")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 3)

	pending, err := service.ListOrdersByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	_, err = service.ListOrdersByStatus(ctx, "bogus")
	assert.Error(t, err)
}

func TestDispatchFailureDoesNotFailOperation(t *testing.T) {
	repo := newMemoryOrderRepo()
	dispatcher := dispatch.New(nil, nil, nil, nil)
	dispatcher.Listen(domain.EventOrderStatusChanged, &failingListener{})
	service := NewOrderService(repo, dispatcher, testLogger())
	ctx := context.Background()

	_, err := service.CreateOrder(ctx, createCommand())
	require.NoError(t, err)

	// A listener failure after the save is logged, not returned
	dto, err := service.ConfirmOrder(ctx, "ORD-001", "ops")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", dto.Status)

	saved, err := repo.FindByID(ctx, "ORD-001")
	require.NoError(t, err)
	assert.True(t, saved.Status.IsConfirmed())
}

type failingListener struct{}

func (l *failingListener) Name() string                              { return "failing" }
func (l *failingListener) Priority() int                             { return 0 }
func (l *failingListener) ShouldHandle(event *domain.Event) bool     { return true }
func (l *failingListener) StopPropagation() bool                     { return false }
func (l *failingListener) Handle(ctx context.Context, event *domain.Event) error {
	return errors.New("handler blew up")
}
