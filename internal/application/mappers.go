package application

import (
	"github.com/b2b-platform/procurement-service/internal/domain"
)

// ToOrderDTO converts an Order aggregate to its response shape
func ToOrderDTO(order *domain.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID:      item.ProductID,
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TotalPrice:     item.TotalPrice(),
			Currency:       string(item.Currency),
			Specifications: item.Specifications,
		})
	}

	return &OrderDTO{
		OrderID:         order.ID(),
		CustomerID:      order.CustomerID,
		CustomerEmail:   order.CustomerEmail,
		Items:           items,
		TotalAmount:     order.TotalAmount,
		Currency:        string(order.Currency),
		Status:          order.Status.String(),
		ShippingAddress: toAddressDTO(order.ShippingAddress),
		BillingAddress:  toAddressDTO(order.BillingAddress),
		Notes:           order.Notes,
		TrackingNumber:  order.TrackingNumber,
		ItemCount:       order.ItemCount(),
		TotalQuantity:   order.TotalQuantity(),
		IsBulkOrder:     order.IsBulkOrder(),
		IsHighValue:     order.IsHighValueOrder(),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		ConfirmedAt:     order.ConfirmedAt,
		ShippedAt:       order.ShippedAt,
		DeliveredAt:     order.DeliveredAt,
	}
}

// ToOrderDTOs converts a slice of Order aggregates
func ToOrderDTOs(orders []*domain.Order) []*OrderDTO {
	dtos := make([]*OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, ToOrderDTO(order))
	}
	return dtos
}

// ToInquiryDTO converts an Inquiry aggregate to its response shape
func ToInquiryDTO(inquiry *domain.Inquiry) *InquiryDTO {
	var quotedCurrency *string
	if inquiry.QuotedCurrency != nil {
		currency := string(*inquiry.QuotedCurrency)
		quotedCurrency = &currency
	}

	return &InquiryDTO{
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

// ToInquiryDTOs converts a slice of Inquiry aggregates
func ToInquiryDTOs(inquiries []*domain.Inquiry) []*InquiryDTO {
	dtos := make([]*InquiryDTO, 0, len(inquiries))
	for _, inquiry := range inquiries {
		dtos = append(dtos, ToInquiryDTO(inquiry))
	}
	return dtos
}

func toAddressDTO(addr *domain.Address) *AddressDTO {
	if addr == nil {
		return nil
	}
	return &AddressDTO{
		Street:     addr.Street,
		City:       addr.City,
		State:      addr.State,
		PostalCode: addr.PostalCode,
		Country:    addr.Country,
		Recipient:  addr.Recipient,
		Phone:      addr.Phone,
	}
}

func toDomainItems(inputs []OrderItemInput, currency domain.Currency) ([]domain.OrderItem, error) {
	items := make([]domain.OrderItem, 0, len(inputs))
	for _, input := range inputs {
		item, err := domain.NewOrderItem(
			input.ProductID,
			input.ProductName,
			input.Quantity,
			input.UnitPrice,
			currency,
			input.Specifications,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func toDomainAddress(input *AddressInput) *domain.Address {
	if input == nil {
		return nil
	}
	return &domain.Address{
		Street:     input.Street,
		City:       input.City,
		State:      input.State,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		Recipient:  input.Recipient,
		Phone:      input.Phone,
	}
}
