package dto

import (
	"strings"

	"github.com/bldrfitness/bldr/internal/domain/pricing"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/bldrfitness/bldr/internal/validator"
)

// CalculatePaymentRequest is the payment calculation input
type CalculatePaymentRequest struct {
	PlanID        string              `json:"plan_id" validate:"required"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required,billing_period"`
	Currency      string              `json:"currency,omitempty" validate:"omitempty,currency"`
	UserID        string              `json:"user_id" validate:"required,uuid"`
	CouponCode    string              `json:"coupon_code,omitempty"`
}

// Normalize applies defaults and canonical casing before validation.
func (r *CalculatePaymentRequest) Normalize(defaultCurrency string) {
	r.PlanID = strings.TrimSpace(r.PlanID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.CouponCode = strings.TrimSpace(r.CouponCode)
	r.Currency = types.NormalizeCurrency(r.Currency)
	if r.Currency == "" {
		r.Currency = types.NormalizeCurrency(defaultCurrency)
	}
}

func (r *CalculatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return nil
}

// HasCoupon reports whether a coupon code was supplied
func (r *CalculatePaymentRequest) HasCoupon() bool {
	return r.CouponCode != ""
}

// CalculatePaymentResponse is the charge breakdown plus the provider handle
// used by the client to confirm payment. ClientSecret and PaymentIntentID are
// null when no payment is needed.
type CalculatePaymentResponse struct {
	ClientSecret             *string `json:"client_secret"`
	PaymentIntentID          *string `json:"payment_intent_id"`
	AmountOriginalMinorUnits int64   `json:"amount_original_minor_units"`
	AmountFinalMinorUnits    int64   `json:"amount_final_minor_units"`
	DiscountMinorUnits       int64   `json:"discount_minor_units"`
	DiscountID               *string `json:"discount_id"`
	PaymentSkipped           bool    `json:"payment_skipped"`
}

func NewCalculatePaymentResponse(charge *pricing.Charge, clientSecret, paymentIntentID *string) *CalculatePaymentResponse {
	return &CalculatePaymentResponse{
		ClientSecret:             clientSecret,
		PaymentIntentID:          paymentIntentID,
		AmountOriginalMinorUnits: charge.AmountOriginal,
		AmountFinalMinorUnits:    charge.AmountFinal,
		DiscountMinorUnits:       charge.DiscountAmount,
		DiscountID:               charge.ProviderDiscountID,
		PaymentSkipped:           charge.IsFree(),
	}
}

// ErrUserMismatch is returned when the request acts for a user other than the caller.
func ErrUserMismatch(userID string) error {
	return ierr.NewError("user_id does not match authenticated user").
		WithHint("You can only create payments for your own account").
		WithReportableDetails(map[string]interface{}{
			"user_id": userID,
		}).
		Mark(ierr.ErrPermissionDenied)
}
