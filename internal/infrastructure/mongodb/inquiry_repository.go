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

type inquiryDocument struct {
	InquiryID      string     `bson:"inquiryId"`
	CustomerName   string     `bson:"customerName"`
	CustomerEmail  string     `bson:"customerEmail"`
	CustomerPhone  string     `bson:"customerPhone,omitempty"`
	Company        string     `bson:"company,omitempty"`
	ProductIDs     []string   `bson:"productIds"`
	Message        string     `bson:"message,omitempty"`
	Status         string     `bson:"status"`
	QuotedPrice    *float64   `bson:"quotedPrice,omitempty"`
	QuotedCurrency *string    `bson:"quotedCurrency,omitempty"`
	QuoteNotes     string     `bson:"quoteNotes,omitempty"`
	HandledBy      string     `bson:"handledBy,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
	QuotedAt       *time.Time `bson:"quotedAt,omitempty"`
	ExpiresAt      *time.Time `bson:"expiresAt,omitempty"`
}

// InquiryRepository implements domain.InquiryRepository using MongoDB
type InquiryRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// NewInquiryRepository creates a new InquiryRepository
func NewInquiryRepository(db *mongo.Database, logger *logging.Logger, m *metrics.Metrics) *InquiryRepository {
	collection := db.Collection("inquiries")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "inquiryId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "expiresAt", Value: 1},
			},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &InquiryRepository{
		collection: collection,
		logger:     logger,
		metrics:    m,
	}
}

// Save upserts an inquiry keyed by its business identity
func (r *InquiryRepository) Save(ctx context.Context, inquiry *domain.Inquiry) error {
	start := time.Now()

	doc := toInquiryDocument(inquiry)

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"inquiryId": inquiry.ID()}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	r.observe(ctx, "save", err == nil, time.Since(start))
	if err != nil {
		return fmt.Errorf("failed to save inquiry %s: %w", inquiry.ID(), err)
	}

	return nil
}

// FindByID retrieves an inquiry by its business identity
func (r *InquiryRepository) FindByID(ctx context.Context, inquiryID string) (*domain.Inquiry, error) {
	start := time.Now()

	var doc inquiryDocument
	err := r.collection.FindOne(ctx, bson.M{"inquiryId": inquiryID}).Decode(&doc)
	r.observe(ctx, "findByID", err == nil || errors.Is(err, mongo.ErrNoDocuments), time.Since(start))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return fromInquiryDocument(&doc)
}

// FindByStatus retrieves inquiries by status, newest first
func (r *InquiryRepository) FindByStatus(ctx context.Context, status domain.InquiryStatus) ([]*domain.Inquiry, error) {
	filter := bson.M{"status": status.String()}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	return r.findMany(ctx, "findByStatus", filter, opts)
}

// FindExpiredQuotes retrieves quoted inquiries whose quote validity has passed
func (r *InquiryRepository) FindExpiredQuotes(ctx context.Context) ([]*domain.Inquiry, error) {
	filter := bson.M{
		"status":    domain.InquiryStatusQuoted.String(),
		"expiresAt": bson.M{"$lte": time.Now().UTC()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}})

	return r.findMany(ctx, "findExpiredQuotes", filter, opts)
}

// FindAll retrieves a page of inquiries, newest first
func (r *InquiryRepository) FindAll(ctx context.Context, limit, offset int64) ([]*domain.Inquiry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)

	return r.findMany(ctx, "findAll", bson.M{}, opts)
}

// Delete removes an inquiry
func (r *InquiryRepository) Delete(ctx context.Context, inquiryID string) error {
	start := time.Now()

	result, err := r.collection.DeleteOne(ctx, bson.M{"inquiryId": inquiryID})
	r.observe(ctx, "delete", err == nil, time.Since(start))
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *InquiryRepository) findMany(ctx context.Context, operation string, filter bson.M, opts *options.FindOptions) ([]*domain.Inquiry, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.observe(ctx, operation, false, time.Since(start))
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []inquiryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.observe(ctx, operation, false, time.Since(start))
		return nil, err
	}
	r.observe(ctx, operation, true, time.Since(start))

	inquiries := make([]*domain.Inquiry, 0, len(docs))
	for i := range docs {
		inquiry, err := fromInquiryDocument(&docs[i])
		if err != nil {
			return nil, err
		}
		inquiries = append(inquiries, inquiry)
	}

	return inquiries, nil
}

func (r *InquiryRepository) observe(ctx context.Context, operation string, success bool, duration time.Duration) {
	if r.metrics != nil {
		r.metrics.RecordMongoDBOperation("inquiries", operation, success, duration)
	}
	if r.logger != nil {
		r.logger.DatabaseQuery(ctx, "inquiries", operation, duration, success)
	}
}

func toInquiryDocument(inquiry *domain.Inquiry) *inquiryDocument {
	var quotedCurrency *string
	if inquiry.QuotedCurrency != nil {
		currency := string(*inquiry.QuotedCurrency)
		quotedCurrency = &currency
	}

	return &inquiryDocument{
		InquiryID:      inquiry.ID(),
		CustomerName:   inquiry.CustomerName,
		CustomerEmail:  inquiry.CustomerEmail,
		CustomerPhone:  inquiry.CustomerPhone,
		Company:        inquiry.Company,
		ProductIDs:     inquiry.ProductIDs,
		Message:        inquiry.Message,
		Status:         inquiry.Status.String(),
		QuotedPrice:    inquiry.QuotedPrice,
		QuotedCurrency: quotedCurrency,
		QuoteNotes:     inquiry.QuoteNotes,
		HandledBy:      inquiry.HandledBy,
		CreatedAt:      inquiry.CreatedAt,
		UpdatedAt:      inquiry.UpdatedAt,
		QuotedAt:       inquiry.QuotedAt,
		ExpiresAt:      inquiry.ExpiresAt,
	}
}

func fromInquiryDocument(doc *inquiryDocument) (*domain.Inquiry, error) {
	status, err := domain.NewInquiryStatus(doc.Status)
	if err != nil {
		return nil, fmt.Errorf("inquiry %s has invalid stored status: %w", doc.InquiryID, err)
	}

	var quotedCurrency *domain.Currency
	if doc.QuotedCurrency != nil {
		currency := domain.Currency(*doc.QuotedCurrency)
		quotedCurrency = &currency
	}

	return domain.ExistingInquiry(domain.ExistingInquiryParams{
		InquiryID:      doc.InquiryID,
		CustomerName:   doc.CustomerName,
		CustomerEmail:  doc.CustomerEmail,
		CustomerPhone:  doc.CustomerPhone,
		Company:        doc.Company,
		ProductIDs:     doc.ProductIDs,
		Message:        doc.Message,
		Status:         status,
		QuotedPrice:    doc.QuotedPrice,
		QuotedCurrency: quotedCurrency,
		QuoteNotes:     doc.QuoteNotes,
		HandledBy:      doc.HandledBy,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		QuotedAt:       doc.QuotedAt,
		ExpiresAt:      doc.ExpiresAt,
	}), nil
}
