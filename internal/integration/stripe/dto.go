package stripe

import (
	ierr "github.com/bldrfitness/bldr/internal/errors"
)

type CreatePaymentIntentRequest struct {
	// Amount in minor units of Currency.
	Amount         int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

func (r *CreatePaymentIntentRequest) Validate() error {
	if r.Amount <= 0 {
		return ierr.NewError("payment intent amount must be positive").
			WithReportableDetails(map[string]interface{}{"amount": r.Amount}).
			Mark(ierr.ErrValidation)
	}
	if r.Currency == "" {
		return ierr.NewError("payment intent currency is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type CreateCustomerRequest struct {
	Email          string
	Metadata       map[string]string
	IdempotencyKey string
}

type CreateSubscriptionRequest struct {
	CustomerID      string
	PriceID         string
	PromotionCodeID string
	Metadata        map[string]string
	IdempotencyKey  string
}
