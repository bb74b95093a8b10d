package dto

import (
	"github.com/b2b-platform/procurement-service/internal/application"
)

// CreateInquiryRequest represents the request to open an inquiry
type CreateInquiryRequest struct {
	InquiryID     string   `json:"inquiryId" binding:"required,aggregate_id"`
	CustomerName  string   `json:"customerName" binding:"required,max=200"`
	CustomerEmail string   `json:"customerEmail" binding:"required,email"`
	CustomerPhone string   `json:"customerPhone,omitempty" binding:"max=50"`
	Company       string   `json:"company,omitempty" binding:"max=200"`
	ProductIDs    []string `json:"productIds" binding:"required,min=1,dive,product_id"`
	Message       string   `json:"message,omitempty" binding:"max=5000"`
}

// QuoteInquiryRequest represents the request to quote an inquiry
type QuoteInquiryRequest struct {
	Price     float64 `json:"price" binding:"required,gte=0"`
	Currency  string  `json:"currency" binding:"required,currency"`
	Notes     string  `json:"notes,omitempty" binding:"max=2000"`
	HandledBy string  `json:"handledBy" binding:"required,max=100"`
}

// ResolveInquiryRequest represents accept/reject/withdraw requests
type ResolveInquiryRequest struct {
	Reason string `json:"reason,omitempty" binding:"max=500"`
	Actor  string `json:"actor,omitempty" binding:"max=100"`
}

// ToCommand maps the request to an application command
func (r *CreateInquiryRequest) ToCommand() application.CreateInquiryCommand {
	return application.CreateInquiryCommand{
		InquiryID:     r.InquiryID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		Company:       r.Company,
		ProductIDs:    r.ProductIDs,
		Message:       r.Message,
	}
}

// ToCommand maps the request to an application command
func (r *QuoteInquiryRequest) ToCommand(inquiryID string) application.QuoteInquiryCommand {
	return application.QuoteInquiryCommand{
		InquiryID: inquiryID,
		Price:     r.Price,
		Currency:  r.Currency,
		Notes:     r.Notes,
		HandledBy: r.HandledBy,
	}
}

// ToCommand maps the request to an application command
func (r *ResolveInquiryRequest) ToCommand(inquiryID string) application.ResolveInquiryCommand {
	return application.ResolveInquiryCommand{
		InquiryID: inquiryID,
		Reason:    r.Reason,
		Actor:     r.Actor,
	}
}
