package domain

import (
	"regexp"
	"time"
)

// QuoteValidity is the window during which a quote can be accepted
const QuoteValidity = 30 * 24 * time.Hour

// timeFormat is used for timestamps embedded in event data snapshots
const timeFormat = time.RFC3339Nano

// inquiryIDPattern validates inquiry identities, e.g. INQ-20260831-00017
var inquiryIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,49}$`)

// Inquiry is the aggregate root for pre-sale product inquiries
type Inquiry struct {
	AggregateRoot

	CustomerName   string     `json:"customerName"`
	CustomerEmail  string     `json:"customerEmail"`
	CustomerPhone  string     `json:"customerPhone,omitempty"`
	Company        string     `json:"company,omitempty"`
	ProductIDs     []string   `json:"productIds"`
	Message        string     `json:"message,omitempty"`
	Status         InquiryStatus `json:"status"`
	QuotedPrice    *float64   `json:"quotedPrice,omitempty"`
	QuotedCurrency *Currency  `json:"quotedCurrency,omitempty"`
	QuoteNotes     string     `json:"quoteNotes,omitempty"`
	HandledBy      string     `json:"handledBy,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	QuotedAt       *time.Time `json:"quotedAt,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

// NewInquiry creates a new Inquiry aggregate in pending status
func NewInquiry(inquiryID, customerName, customerEmail, customerPhone, company string, productIDs []string, message string) (*Inquiry, error) {
	if !inquiryIDPattern.MatchString(inquiryID) {
		return nil, NewValidationError("inquiryId", "inquiry id must be alphanumeric/hyphen, at most 50 characters")
	}
	if customerName == "" {
		return nil, NewValidationError("customerName", "customer name is required")
	}
	if customerEmail == "" {
		return nil, NewValidationError("customerEmail", "customer email is required")
	}
	if len(productIDs) == 0 {
		return nil, NewValidationError("productIds", "inquiry must reference at least one product")
	}

	now := time.Now().UTC()
	inquiry := &Inquiry{
		AggregateRoot: newAggregateRoot(inquiryID),
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		CustomerPhone: customerPhone,
		Company:       company,
		ProductIDs:    productIDs,
		Message:       message,
		Status:        InquiryStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	inquiry.recordEvent(NewInquiryCreatedEvent(inquiry))

	return inquiry, nil
}

// ExistingInquiryParams carries the stored state of an inquiry
type ExistingInquiryParams struct {
	InquiryID      string
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Company        string
	ProductIDs     []string
	Message        string
	Status         InquiryStatus
	QuotedPrice    *float64
	QuotedCurrency *Currency
	QuoteNotes     string
	HandledBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	QuotedAt       *time.Time
	ExpiresAt      *time.Time
}

// ExistingInquiry rehydrates an Inquiry from storage without recording events
func ExistingInquiry(p ExistingInquiryParams) *Inquiry {
	return &Inquiry{
		AggregateRoot:  newAggregateRoot(p.InquiryID),
		CustomerName:   p.CustomerName,
		CustomerEmail:  p.CustomerEmail,
		CustomerPhone:  p.CustomerPhone,
		Company:        p.Company,
		ProductIDs:     p.ProductIDs,
		Message:        p.Message,
		Status:         p.Status,
		QuotedPrice:    p.QuotedPrice,
		QuotedCurrency: p.QuotedCurrency,
		QuoteNotes:     p.QuoteNotes,
		HandledBy:      p.HandledBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		QuotedAt:       p.QuotedAt,
		ExpiresAt:      p.ExpiresAt,
	}
}

// AddQuote sets the quote fields and transitions the inquiry to quoted.
// QuotedAt and ExpiresAt are always set together: ExpiresAt = QuotedAt + 30 days.
func (i *Inquiry) AddQuote(price float64, currency Currency, notes, handledBy string) error {
	if price < 0 {
		return NewValidationError("quotedPrice", "quoted price must not be negative")
	}
	if !currency.IsValid() {
		return NewValidationError("quotedCurrency", "unsupported currency: "+string(currency))
	}
	if !i.Status.CanBeQuoted() {
		return &InvalidTransitionError{Entity: "inquiry", From: i.Status.String(), To: InquiryStatusQuoted.String()}
	}

	now := time.Now().UTC()
	expiresAt := now.Add(QuoteValidity)

	i.QuotedPrice = &price
	i.QuotedCurrency = &currency
	i.QuoteNotes = notes
	i.HandledBy = handledBy
	i.QuotedAt = &now
	i.ExpiresAt = &expiresAt
	i.Status = InquiryStatusQuoted
	i.UpdatedAt = now

	i.recordEvent(NewInquiryQuotedEvent(i))

	return nil
}

// Accept transitions a quoted inquiry to accepted
func (i *Inquiry) Accept(actor string) error {
	if !i.Status.CanBeAccepted() {
		return &InvalidTransitionError{Entity: "inquiry", From: i.Status.String(), To: InquiryStatusAccepted.String()}
	}
	return i.changeStatus(EventInquiryAccepted, InquiryStatusAccepted, "quote accepted", actor)
}

// Reject transitions the inquiry to rejected
func (i *Inquiry) Reject(reason, actor string) error {
	if !i.Status.CanBeRejected() {
		return &InvalidTransitionError{Entity: "inquiry", From: i.Status.String(), To: InquiryStatusRejected.String()}
	}
	return i.changeStatus(EventInquiryRejected, InquiryStatusRejected, reason, actor)
}

// Withdraw transitions the inquiry to withdrawn
func (i *Inquiry) Withdraw(reason string) error {
	if !i.Status.CanBeWithdrawn() {
		return &InvalidTransitionError{Entity: "inquiry", From: i.Status.String(), To: InquiryStatusWithdrawn.String()}
	}
	return i.changeStatus(EventInquiryWithdrawn, InquiryStatusWithdrawn, reason, "customer")
}

// Expire transitions a quoted inquiry to expired
func (i *Inquiry) Expire() error {
	if !i.Status.CanExpire() {
		return &InvalidTransitionError{Entity: "inquiry", From: i.Status.String(), To: InquiryStatusExpired.String()}
	}
	return i.changeStatus(EventInquiryExpired, InquiryStatusExpired, "quote validity window elapsed", "system")
}

// IsExpired reports whether the quote validity window has elapsed. This is a
// pure query and never mutates the inquiry status.
func (i *Inquiry) IsExpired() bool {
	return i.ExpiresAt != nil && time.Now().UTC().After(*i.ExpiresAt)
}

func (i *Inquiry) changeStatus(eventName string, newStatus InquiryStatus, reason, actor string) error {
	if i.Status.Equals(newStatus) {
		return nil
	}
	if !i.Status.CanTransitionTo(newStatus) {
		return &InvalidTransitionError{Entity: "inquiry", From: i.Status.String(), To: newStatus.String()}
	}

	oldStatus := i.Status
	i.Status = newStatus
	i.UpdatedAt = time.Now().UTC()

	i.recordEvent(NewInquiryStatusChangedEvent(eventName, i, oldStatus, newStatus, reason, actor))

	return nil
}
