package validator

import (
	"strings"
	"sync"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the process wide validator with custom rules registered.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
			return types.IsValidCurrency(fl.Field().String())
		})
		_ = validate.RegisterValidation("billing_period", func(fl validator.FieldLevel) bool {
			return types.BillingPeriod(fl.Field().String()).Validate() == nil
		})
	})
	return validate
}

// ValidateRequest runs struct tag validation and converts failures to a
// validation error listing each failing field.
func ValidateRequest(req interface{}) error {
	err := GetValidator().Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ierr.WithError(err).
			WithHint("Invalid request").
			Mark(ierr.ErrValidation)
	}

	details := make(map[string]interface{}, len(validationErrors))
	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		name := strings.ToLower(fe.Field())
		details[name] = fe.Tag()
		fields = append(fields, name)
	}

	return ierr.WithError(err).
		WithHintf("Invalid value for %s", strings.Join(fields, ", ")).
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
