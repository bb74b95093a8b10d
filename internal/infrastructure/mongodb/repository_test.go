package mongodb

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
	"github.com/b2b-platform/procurement-service/pkg/metrics"
	proctesting "github.com/b2b-platform/procurement-service/pkg/testing"
)

func testLogger() *logging.Logger {
	config := logging.DefaultConfig("test")
	config.Output = io.Discard
	return logging.New(config)
}

func newTestOrder(t *testing.T, orderID string) *domain.Order {
	t.Helper()
	item, err := domain.NewOrderItem("PROD-001", "Industrial Pump", 2, 1500, domain.CurrencyUSD, map[string]string{"voltage": "220V"})
	require.NoError(t, err)
	order, err := domain.NewOrder(orderID, "CUST-001", "buyer@example.com", []domain.OrderItem{item}, domain.CurrencyUSD)
	require.NoError(t, err)
	order.SetShippingAddress(domain.Address{
		Street: "1-2-3 Marunouchi", City: "Tokyo", PostalCode: "100-0005",
		Country: "JP", Recipient: "Sato Kenji",
	})
	order.ClearPendingEvents()
	return order
}

func newTestInquiry(t *testing.T, inquiryID string) *domain.Inquiry {
	t.Helper()
	inquiry, err := domain.NewInquiry(inquiryID, "Tanaka Trading", "tanaka@example.com", "",
		"Tanaka Trading Co.", []string{"PROD-001", "PROD-002"}, "bulk pricing")
	require.NoError(t, err)
	inquiry.ClearPendingEvents()
	return inquiry
}

func TestOrderRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := proctesting.SetupTestDatabase(t, "procurement_test")
	repo := NewOrderRepository(db, testLogger(), metrics.New(metrics.DefaultConfig("test")))
	ctx := context.Background()

	t.Run("save and find by id", func(t *testing.T) {
		order := newTestOrder(t, "ORD-100")
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByID(ctx, "ORD-100")
		require.NoError(t, err)
		assert.Equal(t, order.ID(), found.ID())
		assert.Equal(t, order.CustomerID, found.CustomerID)
		assert.True(t, found.Status.IsPending())
		assert.Equal(t, order.TotalAmount, found.TotalAmount)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "220V", found.Items[0].Specifications["voltage"])
		require.NotNil(t, found.ShippingAddress)
		assert.Equal(t, "Tokyo", found.ShippingAddress.City)
		// Rehydration records no events
		assert.Empty(t, found.PendingEvents())
	})

	t.Run("save is an upsert", func(t *testing.T) {
		order := newTestOrder(t, "ORD-101")
		require.NoError(t, repo.Save(ctx, order))

		require.NoError(t, order.Confirm("ops"))
		order.ClearPendingEvents()
		require.NoError(t, repo.Save(ctx, order))

		found, err := repo.FindByID(ctx, "ORD-101")
		require.NoError(t, err)
		assert.True(t, found.Status.IsConfirmed())
		require.NotNil(t, found.ConfirmedAt)
	})

	t.Run("find by id not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "ORD-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find by customer", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestOrder(t, "ORD-102")))

		orders, err := repo.FindByCustomer(ctx, "CUST-001")
		require.NoError(t, err)
		assert.NotEmpty(t, orders)

		none, err := repo.FindByCustomer(ctx, "CUST-404")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("find by status", func(t *testing.T) {
		order := newTestOrder(t, "ORD-103")
		require.NoError(t, order.Cancel("test", "ops"))
		order.ClearPendingEvents()
		require.NoError(t, repo.Save(ctx, order))

		cancelled, err := repo.FindByStatus(ctx, domain.OrderStatusCancelled)
		require.NoError(t, err)
		require.Len(t, cancelled, 1)
		assert.Equal(t, "ORD-103", cancelled[0].ID())
	})

	t.Run("find all with pagination", func(t *testing.T) {
		page, err := repo.FindAll(ctx, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := repo.FindAll(ctx, 100, 2)
		require.NoError(t, err)
		assert.NotEmpty(t, rest)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestOrder(t, "ORD-DEL")))
		require.NoError(t, repo.Delete(ctx, "ORD-DEL"))

		_, err := repo.FindByID(ctx, "ORD-DEL")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, "ORD-DEL"), domain.ErrNotFound)
	})
}

func TestInquiryRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := proctesting.SetupTestDatabase(t, "procurement_test")
	repo := NewInquiryRepository(db, testLogger(), metrics.New(metrics.DefaultConfig("test")))
	ctx := context.Background()

	t.Run("save and find by id", func(t *testing.T) {
		inquiry := newTestInquiry(t, "INQ-100")
		require.NoError(t, repo.Save(ctx, inquiry))

		found, err := repo.FindByID(ctx, "INQ-100")
		require.NoError(t, err)
		assert.Equal(t, inquiry.ID(), found.ID())
		assert.Equal(t, inquiry.CustomerEmail, found.CustomerEmail)
		assert.Equal(t, inquiry.ProductIDs, found.ProductIDs)
		assert.True(t, found.Status.IsPending())
		assert.Nil(t, found.QuotedPrice)
	})

	t.Run("quote fields round-trip", func(t *testing.T) {
		inquiry := newTestInquiry(t, "INQ-101")
		require.NoError(t, inquiry.AddQuote(9800.50, domain.CurrencyUSD, "volume discount", "sales"))
		inquiry.ClearPendingEvents()
		require.NoError(t, repo.Save(ctx, inquiry))

		found, err := repo.FindByID(ctx, "INQ-101")
		require.NoError(t, err)
		assert.True(t, found.Status.IsQuoted())
		require.NotNil(t, found.QuotedPrice)
		assert.Equal(t, 9800.50, *found.QuotedPrice)
		require.NotNil(t, found.QuotedCurrency)
		assert.Equal(t, domain.CurrencyUSD, *found.QuotedCurrency)
		require.NotNil(t, found.ExpiresAt)
	})

	t.Run("find by id not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "INQ-404")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("find expired quotes", func(t *testing.T) {
		past := time.Now().UTC().Add(-time.Hour)
		quotedAt := past.Add(-domain.QuoteValidity)
		price := 100.0
		currency := domain.CurrencyUSD

		stale := domain.ExistingInquiry(domain.ExistingInquiryParams{
			InquiryID:      "INQ-STALE",
			CustomerName:   "Tanaka Trading",
			CustomerEmail:  "tanaka@example.com",
			ProductIDs:     []string{"PROD-001"},
			Status:         domain.InquiryStatusQuoted,
			QuotedPrice:    &price,
			QuotedCurrency: &currency,
			QuotedAt:       &quotedAt,
			ExpiresAt:      &past,
			CreatedAt:      quotedAt,
			UpdatedAt:      quotedAt,
		})
		require.NoError(t, repo.Save(ctx, stale))

		fresh := newTestInquiry(t, "INQ-FRESH")
		require.NoError(t, fresh.AddQuote(100, domain.CurrencyUSD, "", "sales"))
		fresh.ClearPendingEvents()
		require.NoError(t, repo.Save(ctx, fresh))

		expired, err := repo.FindExpiredQuotes(ctx)
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, "INQ-STALE", expired[0].ID())
	})

	t.Run("find by status", func(t *testing.T) {
		pending, err := repo.FindByStatus(ctx, domain.InquiryStatusPending)
		require.NoError(t, err)
		assert.NotEmpty(t, pending)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestInquiry(t, "INQ-DEL")))
		require.NoError(t, repo.Delete(ctx, "INQ-DEL"))
		assert.ErrorIs(t, repo.Delete(ctx, "INQ-DEL"), domain.ErrNotFound)
	})
}
