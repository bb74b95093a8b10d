// Package mongodb implements the domain repositories on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
	"github.com/b2b-platform/procurement-service/pkg/metrics"
)

// orderDocument is the stored shape of an order. Pending events are never
// persisted; rehydration goes through ExistingOrder so loading an order
// never re-emits its history.
type orderDocument struct {
	OrderID         string              `bson:"orderId"`
	CustomerID      string              `bson:"customerId"`
	CustomerEmail   string              `bson:"customerEmail"`
	Items           []orderItemDocument `bson:"items"`
	TotalAmount     float64             `bson:"totalAmount"`
	Currency        string              `bson:"currency"`
	Status          string              `bson:"status"`
	ShippingAddress *addressDocument    `bson:"shippingAddress,omitempty"`
	BillingAddress  *addressDocument    `bson:"billingAddress,omitempty"`
	Notes           string              `bson:"notes,omitempty"`
	TrackingNumber  string              `bson:"trackingNumber,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
	ConfirmedAt     *time.Time          `bson:"confirmedAt,omitempty"`
	ShippedAt       *time.Time          `bson:"shippedAt,omitempty"`
	DeliveredAt     *time.Time          `bson:"deliveredAt,omitempty"`
}

type orderItemDocument struct {
	ProductID      string            `bson:"productId"`
	ProductName    string            `bson:"productName"`
	Quantity       int               `bson:"quantity"`
	UnitPrice      float64           `bson:"unitPrice"`
	Currency       string            `bson:"currency"`
	Specifications map[string]string `bson:"specifications,omitempty"`
}

type addressDocument struct {
	Street     string `bson:"street"`
	City       string `bson:"city"`
	State      string `bson:"state,omitempty"`
	PostalCode string `bson:"postalCode"`
	Country    string `bson:"country"`
	Recipient  string `bson:"recipient"`
	Phone      string `bson:"phone,omitempty"`
}

// OrderRepository implements domain.OrderRepository using MongoDB
type OrderRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database, logger *logging.Logger, m *metrics.Metrics) *OrderRepository {
	collection := db.Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "customerId", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &OrderRepository{
		collection: collection,
		logger:     logger,
		metrics:    m,
	}
}

// Save upserts an order keyed by its business identity
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	start := time.Now()

	doc := toOrderDocument(order)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"orderId": order.ID()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	r.observe(ctx, "orders", "save", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID(), err)
	}

	return nil
}

// FindByID retrieves an order by its business identity
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	start := time.Now()

	var doc orderDocument
	err := r.collection.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&doc)
	r.observe(ctx, "orders", "findByID", err == nil || errors.Is(err, mongo.ErrNoDocuments), time.Since(start))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return fromOrderDocument(&doc)
}

// FindByCustomer retrieves all orders for a customer, newest first
func (r *OrderRepository) FindByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	filter := bson.M{"customerId": customerID}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	return r.findMany(ctx, "findByCustomer", filter, opts)
}

// FindByStatus retrieves orders by status, newest first
func (r *OrderRepository) FindByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	filter := bson.M{"status": status.String()}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	return r.findMany(ctx, "findByStatus", filter, opts)
}

// FindAll retrieves a page of orders, newest first
func (r *OrderRepository) FindAll(ctx context.Context, limit, offset int64) ([]*domain.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	return r.findMany(ctx, "findAll", bson.M{}, opts)
}

// Delete removes an order
func (r *OrderRepository) Delete(ctx context.Context, orderID string) error {
	start := time.Now()

	result, err := r.collection.DeleteOne(ctx, bson.M{"orderId": orderID})
	r.observe(ctx, "orders", "delete", err == nil, time.Since(start))
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *OrderRepository) findMany(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]*domain.Order, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.observe(ctx, "orders", operation, false, time.Since(start))
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.observe(ctx, "orders", operation, false, time.Since(start))
		return nil, err
	}
	r.observe(ctx, "orders", operation, true, time.Since(start))

	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		order, err := fromOrderDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	return orders, nil
}

func (r *OrderRepository) observe(ctx context.Context, collection, operation string, success bool, duration time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation(collection, operation, success, duration)
	}
	if r.logger != nil {
		r.logger.DatabaseQuery(ctx, collection, operation, duration, success)
	}
}

func toOrderDocument(order *domain.Order) *orderDocument {
	items := make([]orderItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDocument{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Currency:       string(item.Currency),
			Specifications: item.Specifications,
		})
	}

	return &orderDocument{
		OrderID:         order.ID(),
		CustomerID:      order.CustomerID,
		CustomerEmail:   order.CustomerEmail,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Currency:        string(order.Currency),
		Status:          order.Status.String(),
		ShippingAddress: toAddressDocument(order.ShippingAddress),
		BillingAddress:  toAddressDocument(order.BillingAddress),
		Notes:           order.Notes,
		TrackingNumber:  order.TrackingNumber,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		ConfirmedAt:     order.ConfirmedAt,
		ShippedAt:       order.ShippedAt,
		DeliveredAt:     order.DeliveredAt,
	}
}

func fromOrderDocument(doc *orderDocument) (*domain.Order, error) {
	status, err := domain.NewOrderStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("order %s has invalid stored status: %w", doc.OrderID, err)
	}

	items := make([]domain.OrderItem, 0, len(doc.Items))
	for _, item := range doc.Items {
		items = append(items, domain.OrderItem{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Currency:       domain.Currency(item.Currency),
			Specifications: item.Specifications,
		})
	}

	return domain.ExistingOrder(domain.ExistingOrderParams{
		OrderID:         doc.OrderID,
		CustomerID:      doc.CustomerID,
		CustomerEmail:   doc.CustomerEmail,
		Items:           items,
		Currency:        domain.Currency(doc.Currency),
		Status:          status,
		ShippingAddress: fromAddressDocument(doc.ShippingAddress),
		BillingAddress:  fromAddressDocument(doc.BillingAddress),
		Notes:           doc.Notes,
		TrackingNumber:  doc.TrackingNumber,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
		ConfirmedAt:     doc.ConfirmedAt,
		ShippedAt:       doc.ShippedAt,
		DeliveredAt:     doc.DeliveredAt,
	}), nil
}

func toAddressDocument(addr *domain.Address) *addressDocument {
	if addr == nil {
		return nil
	}
	return &addressDocument{
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Recipient:  addr.Recipient,
		Phone:      addr.Phone,
	}
}

func fromAddressDocument(doc *addressDocument) *domain.Address {
	if doc == nil {
		return nil
	}
	return &domain.Address{
		Street:     doc.Street,
		City:       doc.City,
		State:      doc.State,
		PostalCode: doc.PostalCode,
		Country:    doc.Country,
		Recipient:  doc.Recipient,
		Phone:      doc.Phone,
	}
}
