package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"storeledger/backend/internal/domain"
	"storeledger/backend/internal/store"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest returns the first rule req violates as a
// *store.ValidationError.
func (s *Service) validateRequest(req domain.TransactionRequest) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fromFieldError(fieldErrs[0])
		}
		return store.Invalid("", "invalid", err.Error())
	}

	if !req.Category.AllowedFor(req.Type) {
		return store.Invalid("category", "allowed_for_type", fmt.Sprintf("category %q is not valid for %s transactions", req.Category, req.Type))
	}

	sale := req.Type == domain.TypeIncome && req.Category == domain.CategorySales
	switch {
	case sale && len(req.Lines) == 0:
		return store.Invalid("lines", "required", "sales transactions need at least one line")
	case !sale && len(req.Lines) > 0:
		return store.Invalid("lines", "excluded", "only sales transactions carry lines")
	case !sale && req.TotalAmount.IsNegative():
		return store.Invalid("total_amount", "gte", "total amount must not be negative")
	}
	return nil
}

func fromFieldError(fe validator.FieldError) *store.ValidationError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "required_if":
		msg = "is required when " + strings.ReplaceAll(fe.Param(), " ", " is ")
	case "excluded_if":
		msg = "must be empty when " + strings.ReplaceAll(fe.Param(), " ", " is ")
	case "oneof":
		msg = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		msg = "must be greater than " + fe.Param()
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	default:
		msg = "failed " + fe.Tag()
	}
	return store.Invalid(field, fe.Tag(), msg)
}

// normalize trims free text and fills defaults after validation.
func normalize(req domain.TransactionRequest) domain.TransactionRequest {
	req.Category = domain.Category(strings.TrimSpace(string(req.Category)))
	req.Recipient = strings.TrimSpace(req.Recipient)
	req.Description = strings.TrimSpace(req.Description)
	if req.Status == "" {
		req.Status = domain.StatusCompleted
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	return req
}
