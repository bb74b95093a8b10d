package middleware

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitValidator initializes the validator with custom validators
func InitValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		registerCustomValidators(validate)

		// Set up Gin's default validator as well
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			registerCustomValidators(v)
		}
	})

	return validate
}

// GetValidator returns the singleton validator instance
func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	}
	return validate
}

func registerCustomValidators(v *validator.Validate) {
	_ = v.RegisterValidation("aggregate_id", validateAggregateID)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("product_id", validateProductID)

	// Use JSON tag names for error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})
}

var (
	aggregateIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{0,49}$`)
	productIDRegex   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
)

func validateAggregateID(fl validator.FieldLevel) bool {
	return aggregateIDRegex.MatchString(fl.Field().String())
}

func validateProductID(fl validator.FieldLevel) bool {
	return productIDRegex.MatchString(fl.Field().String())
}

func validateCurrency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "CNY", "JPY", "USD":
		return true
	}
	return false
}

// ValidationErrorDetails converts validator errors into a field -> message map
func ValidationErrorDetails(err error) map[string]string {
	details := make(map[string]string)

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return details
	}

	for _, fieldErr := range validationErrs {
		details[fieldErr.Field()] = validationMessage(fieldErr)
	}

	return details
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "currency":
		return "must be one of CNY, JPY, USD"
	case "aggregate_id":
		return "must contain only letters, digits and hyphens"
	case "product_id":
		return "must be a valid product identifier"
	case "min":
		return "must be at least " + fieldErr.Param()
	case "max":
		return "must be at most " + fieldErr.Param()
	case "gt":
		return "must be greater than " + fieldErr.Param()
	case "gte":
		return "must be greater than or equal to " + fieldErr.Param()
	default:
		return "is invalid"
	}
}
