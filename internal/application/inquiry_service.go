package application

import (
	"context"
	"fmt"

	"github.com/b2b-platform/procurement-service/internal/dispatch"
	"github.com/b2b-platform/procurement-service/internal/domain"
	"github.com/b2b-platform/procurement-service/pkg/logging"
)

// InquiryService handles pre-sale inquiry use cases
type InquiryService struct {
	inquiries  domain.InquiryRepository
	dispatcher *dispatch.Dispatcher
	logger     *logging.Logger
}

// NewInquiryService creates an InquiryService
func NewInquiryService(inquiries domain.InquiryRepository, dispatcher *dispatch.Dispatcher, logger *logging.Logger) *InquiryService {
	return &InquiryService{
		inquiries:  inquiries,
		dispatcher: dispatcher,
		logger:     logger.WithComponent("inquiry-service"),
	}
}

// CreateInquiry opens a new inquiry
func (s *InquiryService) CreateInquiry(ctx context.Context, cmd CreateInquiryCommand) (*InquiryDTO, error) {
	inquiry, err := domain.NewInquiry(
		cmd.InquiryID,
		cmd.CustomerName,
		cmd.CustomerEmail,
		cmd.CustomerPhone,
		cmd.Company,
		cmd.ProductIDs,
		cmd.Message,
	)
	if err != nil {
		return nil, err
	}

	if err := s.saveAndDispatch(ctx, inquiry); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("Inquiry created",
		"inquiryId", inquiry.ID(),
		"customerEmail", inquiry.CustomerEmail,
		"productCount", len(inquiry.ProductIDs),
	)

	return ToInquiryDTO(inquiry), nil
}

// GetInquiry retrieves an inquiry by ID
func (s *InquiryService) GetInquiry(ctx context.Context, inquiryID string) (*InquiryDTO, error) {
	inquiry, err := s.inquiries.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	return ToInquiryDTO(inquiry), nil
}

// ListInquiries retrieves a page of inquiries
func (s *InquiryService) ListInquiries(ctx context.Context, query ListQuery) ([]*InquiryDTO, error) {
	query.Normalize()

	inquiries, err := s.inquiries.FindAll(ctx, query.Limit, query.Offset)
	if err != nil {
		return nil, err
	}
	return ToInquiryDTOs(inquiries), nil
}

// ListInquiriesByStatus retrieves inquiries in a given status
func (s *InquiryService) ListInquiriesByStatus(ctx context.Context, status string) ([]*InquiryDTO, error) {
	inquiryStatus, err := domain.NewInquiryStatus(status)
	if err != nil {
		return nil, err
	}

	inquiries, err := s.inquiries.FindByStatus(ctx, inquiryStatus)
	if err != nil {
		return nil, err
	}
	return ToInquiryDTOs(inquiries), nil
}

// QuoteInquiry attaches a quote to a pending inquiry
func (s *InquiryService) QuoteInquiry(ctx context.Context, cmd QuoteInquiryCommand) (*InquiryDTO, error) {
	return s.mutate(ctx, cmd.InquiryID, func(inquiry *domain.Inquiry) error {
		return inquiry.AddQuote(cmd.Price, domain.Currency(cmd.Currency), cmd.Notes, cmd.HandledBy)
	})
}

// AcceptInquiry accepts a quoted inquiry
func (s *InquiryService) AcceptInquiry(ctx context.Context, cmd ResolveInquiryCommand) (*InquiryDTO, error) {
	return s.mutate(ctx, cmd.InquiryID, func(inquiry *domain.Inquiry) error {
		return inquiry.Accept(cmd.Actor)
	})
}

// RejectInquiry rejects a pending or quoted inquiry
func (s *InquiryService) RejectInquiry(ctx context.Context, cmd ResolveInquiryCommand) (*InquiryDTO, error) {
	return s.mutate(ctx, cmd.InquiryID, func(inquiry *domain.Inquiry) error {
		return inquiry.Reject(cmd.Reason, cmd.Actor)
	})
}

// WithdrawInquiry withdraws an inquiry on the customer's behalf
func (s *InquiryService) WithdrawInquiry(ctx context.Context, cmd ResolveInquiryCommand) (*InquiryDTO, error) {
	return s.mutate(ctx, cmd.InquiryID, func(inquiry *domain.Inquiry) error {
		return inquiry.Withdraw(cmd.Reason)
	})
}

// ExpireStaleQuotes expires all quoted inquiries whose validity window has
// passed. Intended to be run periodically. Returns the number of inquiries
// expired.
func (s *InquiryService) ExpireStaleQuotes(ctx context.Context) (int, error) {
	stale, err := s.inquiries.FindExpiredQuotes(ctx)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, inquiry := range stale {
		if err := inquiry.Expire(); err != nil {
			s.logger.WithContext(ctx).WithError(err).Warn("Failed to expire inquiry",
				"inquiryId", inquiry.ID())
			continue
		}
		if err := s.saveAndDispatch(ctx, inquiry); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Failed to persist expired inquiry",
				"inquiryId", inquiry.ID())
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.WithContext(ctx).Info("Expired stale quotes", "count", expired)
	}

	return expired, nil
}

func (s *InquiryService) mutate(ctx context.Context, inquiryID string, fn func(*domain.Inquiry) error) (*InquiryDTO, error) {
	inquiry, err := s.inquiries.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	if err := fn(inquiry); err != nil {
		return nil, err
	}

	if err := s.saveAndDispatch(ctx, inquiry); err != nil {
		return nil, err
	}

	return ToInquiryDTO(inquiry), nil
}

func (s *InquiryService) saveAndDispatch(ctx context.Context, inquiry *domain.Inquiry) error {
	if err := s.inquiries.Save(ctx, inquiry); err != nil {
		return fmt.Errorf("failed to save inquiry %s: %w", inquiry.ID(), err)
	}

	events := inquiry.PendingEvents()
	inquiry.ClearPendingEvents()

	for _, event := range events {
		if _, err := s.dispatcher.Dispatch(ctx, event); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Event dispatch failed after save",
				"inquiryId", inquiry.ID(),
				"eventId", event.ID(),
				"eventName", event.Name(),
			)
		}
	}

	return nil
}
