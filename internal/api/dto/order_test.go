package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"

	"github.com/b2b-platform/procurement-service/pkg/middleware"
)

func validateRequest(t *testing.T, obj any) error {
	t.Helper()
	middleware.InitValidator()
	return binding.Validator.ValidateStruct(obj)
}

func TestOrderItemRequestUnitPriceBounds(t *testing.T) {
	item := func(price float64) OrderItemRequest {
		return OrderItemRequest{
			ProductID:   "PROD-001",
			ProductName: "Sample Kit",
			Quantity:    1,
			UnitPrice:   price,
		}
	}

	// Free sample lines are valid orders, so a zero unit price must bind
	assert.NoError(t, validateRequest(t, item(0)))
	assert.NoError(t, validateRequest(t, item(85.5)))
	assert.Error(t, validateRequest(t, item(-0.01)))
}

func TestOrderItemRequestRejectsInvalidProduct(t *testing.T) {
	req := OrderItemRequest{
		ProductID:   "no spaces allowed",
		ProductName: "Sample Kit",
		Quantity:    1,
		UnitPrice:   10,
	}
	assert.Error(t, validateRequest(t, req))
}
