package application

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2b-platform/procurement-service/internal/dispatch"
	"github.com/b2b-platform/procurement-service/internal/domain"
)

// memoryInquiryRepo is an in-memory domain.InquiryRepository
type memoryInquiryRepo struct {
	inquiries map[string]*domain.Inquiry
}

func newMemoryInquiryRepo() *memoryInquiryRepo {
	return &memoryInquiryRepo{inquiries: make(map[string]*domain.Inquiry)}
}

func (r *memoryInquiryRepo) Save(ctx context.Context, inquiry *domain.Inquiry) error {
	r.inquiries[inquiry.ID()] = inquiry
	return nil
}

func (r *memoryInquiryRepo) FindByID(ctx context.Context, inquiryID string) (*domain.Inquiry, error) {
	inquiry, ok := r.inquiries[inquiryID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return inquiry, nil
}

func (r *memoryInquiryRepo) FindByStatus(ctx context.Context, status domain.InquiryStatus) ([]*domain.Inquiry, error) {
	var out []*domain.Inquiry
	for _, inquiry := range r.inquiries {
		if inquiry.Status.Equals(status) {
			out = append(out, inquiry)
		}
	}
	return out, nil
}

func (r *memoryInquiryRepo) FindExpiredQuotes(ctx context.Context) ([]*domain.Inquiry, error) {
	var out []*domain.Inquiry
	for _, inquiry := range r.inquiries {
		if inquiry.Status.IsQuoted() && inquiry.IsExpired() {
			out = append(out, inquiry)
		}
	}
	return out, nil
}

func (r *memoryInquiryRepo) FindAll(ctx context.Context, limit, offset int64) ([]*domain.Inquiry, error) {
	ids := make([]string, 0, len(r.inquiries))
	for id := range r.inquiries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*domain.Inquiry
	for i, id := range ids {
		if int64(i) < offset {
			continue
		}
		if int64(len(out)) >= limit {
			break
		}
		out = append(out, r.inquiries[id])
	}
	return out, nil
}

func (r *memoryInquiryRepo) Delete(ctx context.Context, inquiryID string) error {
	if _, ok := r.inquiries[inquiryID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.inquiries, inquiryID)
	return nil
}

func newInquiryFixture(t *testing.T) (*InquiryService, *memoryInquiryRepo, *countingQueue, *dispatch.Dispatcher) {
	t.Helper()
	repo := newMemoryInquiryRepo()
	queue := &countingQueue{}
	dispatcher := dispatch.New(queue, nil, nil, nil)
	service := NewInquiryService(repo, dispatcher, testLogger())
	return service, repo, queue, dispatcher
}

func createInquiryCommand() CreateInquiryCommand {
	return CreateInquiryCommand{
		InquiryID:     "INQ-001",
		CustomerName:  "Tanaka Trading",
		CustomerEmail: "tanaka@example.com",
		CustomerPhone: "+81-3-1234-5678",
		Company:       "Tanaka Trading Co.",
		ProductIDs:    []string{"PROD-001", "PROD-002"},
		Message:       "Looking for bulk pricing",
	}
}

func TestCreateInquiry(t *testing.T) {
	service, repo, queue, _ := newInquiryFixture(t)

	dto, err := service.CreateInquiry(context.Background(), createInquiryCommand())
	require.NoError(t, err)

	assert.Equal(t, "INQ-001", dto.InquiryID)
	assert.Equal(t, "pending", dto.Status)
	assert.Nil(t, dto.QuotedPrice)

	saved, err := repo.FindByID(context.Background(), "INQ-001")
	require.NoError(t, err)
	assert.Empty(t, saved.PendingEvents())

	require.Len(t, queue.events, 1)
	assert.Equal(t, domain.EventInquiryCreated, queue.events[0].Name())
}

func TestCreateInquiryValidationFailure(t *testing.T) {
	service, repo, _, _ := newInquiryFixture(t)

	cmd := createInquiryCommand()
	cmd.ProductIDs = nil

	_, err := service.CreateInquiry(context.Background(), cmd)
	require.Error(t, err)
	assert.Empty(t, repo.inquiries)
}

func TestQuoteInquiry(t *testing.T) {
	service, _, queue, _ := newInquiryFixture(t)
	ctx := context.Background()

	_, err := service.CreateInquiry(ctx, createInquiryCommand())
	require.NoError(t, err)

	dto, err := service.QuoteInquiry(ctx, QuoteInquiryCommand{
		InquiryID: "INQ-001",
		Price:     9800.50,
		Currency:  "USD",
		Notes:     "volume discount applied",
		HandledBy: "sales@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "quoted", dto.Status)
	require.NotNil(t, dto.QuotedPrice)
	assert.Equal(t, 9800.50, *dto.QuotedPrice)
	require.NotNil(t, dto.ExpiresAt)
	require.NotNil(t, dto.QuotedAt)
	assert.True(t, dto.ExpiresAt.Equal(dto.QuotedAt.Add(domain.QuoteValidity)))

	// Created and quoted events both went through the queue
	require.Len(t, queue.events, 2)
	assert.Equal(t, domain.EventInquiryQuoted, queue.events[1].Name())
}

func TestQuoteInquiryBadCurrency(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)
	ctx := context.Background()

	_, err := service.CreateInquiry(ctx, createInquiryCommand())
	require.NoError(t, err)

	_, err = service.QuoteInquiry(ctx, QuoteInquiryCommand{
		InquiryID: "INQ-001", Price: 100, Currency: "EUR", HandledBy: "sales",
	})
	assert.Error(t, err)
}

func TestAcceptQuotedInquiry(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)
	ctx := context.Background()

	_, err := service.CreateInquiry(ctx, createInquiryCommand())
	require.NoError(t, err)
	_, err = service.QuoteInquiry(ctx, QuoteInquiryCommand{
		InquiryID: "INQ-001", Price: 100, Currency: "USD", HandledBy: "sales",
	})
	require.NoError(t, err)

	dto, err := service.AcceptInquiry(ctx, ResolveInquiryCommand{InquiryID: "INQ-001", Actor: "tanaka@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", dto.Status)
}

func TestAcceptPendingInquiryFails(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)
	ctx := context.Background()

	_, err := service.CreateInquiry(ctx, createInquiryCommand())
	require.NoError(t, err)

	_, err = service.AcceptInquiry(ctx, ResolveInquiryCommand{InquiryID: "INQ-001", Actor: "customer"})
	require.Error(t, err)
	var transitionErr *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestRejectAndWithdrawInquiry(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)
	ctx := context.Background()

	_, err := service.CreateInquiry(ctx, createInquiryCommand())
	require.NoError(t, err)
	dto, err := service.RejectInquiry(ctx, ResolveInquiryCommand{InquiryID: "INQ-001", Reason: "cannot supply", Actor: "sales"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", dto.Status)

	cmd := createInquiryCommand()
	cmd.InquiryID = "INQ-002"
	_, err = service.CreateInquiry(ctx, cmd)
	require.NoError(t, err)
	dto, err = service.WithdrawInquiry(ctx, ResolveInquiryCommand{InquiryID: "INQ-002", Reason: "found another supplier"})
	require.NoError(t, err)
	assert.Equal(t, "withdrawn", dto.Status)
}

func TestInquiryNotFound(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)

	_, err := service.GetInquiry(context.Background(), "INQ-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.QuoteInquiry(context.Background(), QuoteInquiryCommand{
		InquiryID: "INQ-404", Price: 1, Currency: "USD",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListInquiriesByStatus(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)
	ctx := context.Background()

	for _, id := range []string{"INQ-001", "INQ-002"} {
		cmd := createInquiryCommand()
		cmd.InquiryID = id
		_, err := service.CreateInquiry(ctx, cmd)
		require.NoError(t, err)
	}
	_, err := service.QuoteInquiry(ctx, QuoteInquiryCommand{
		InquiryID: "INQ-001", Price: 100, Currency: "USD", HandledBy: "sales",
	})
	require.NoError(t, err)

	pending, err := service.ListInquiriesByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	quoted, err := service.ListInquiriesByStatus(ctx, "quoted")
	require.NoError(t, err)
	assert.Len(t, quoted, 1)

	_, err = service.ListInquiriesByStatus(ctx, "bogus")
	assert.Error(t, err)
}

func TestExpireStaleQuotes(t *testing.T) {
	service, repo, _, dispatcher := newInquiryFixture(t)
	ctx := context.Background()

	past := time.Now().UTC().Add(-time.Hour)
	quotedAt := past.Add(-domain.QuoteValidity)
	price := 100.0
	currency := domain.CurrencyUSD

	repo.inquiries["INQ-OLD"] = domain.ExistingInquiry(domain.ExistingInquiryParams{
		InquiryID:      "INQ-OLD",
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

	future := time.Now().UTC().Add(24 * time.Hour)
	repo.inquiries["INQ-FRESH"] = domain.ExistingInquiry(domain.ExistingInquiryParams{
		InquiryID:     "INQ-FRESH",
		CustomerName:  "Tanaka Trading",
		CustomerEmail: "tanaka@example.com",
		ProductIDs:    []string{"PROD-001"},
		Status:        domain.InquiryStatusQuoted,
		ExpiresAt:     &future,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	})

	expired, err := service.ExpireStaleQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	old, err := repo.FindByID(ctx, "INQ-OLD")
	require.NoError(t, err)
	assert.True(t, old.Status.IsExpired())

	fresh, err := repo.FindByID(ctx, "INQ-FRESH")
	require.NoError(t, err)
	assert.True(t, fresh.Status.IsQuoted())

	history := dispatcher.History()
	require.Len(t, history, 1)
	assert.Equal(t, domain.EventInquiryExpired, history[0].Name)
}

func TestExpireStaleQuotesNothingToDo(t *testing.T) {
	service, _, _, _ := newInquiryFixture(t)

	expired, err := service.ExpireStaleQuotes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, expired)
}
