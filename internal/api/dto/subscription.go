package dto

import (
	"strings"
	"time"

	"github.com/bldrfitness/bldr/internal/domain/subscription"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/bldrfitness/bldr/internal/validator"
)

// CreateSubscriptionRequest starts a provider side subscription for the caller
type CreateSubscriptionRequest struct {
	PlanID        string              `json:"plan_id" validate:"required"`
	BillingPeriod types.BillingPeriod `json:"billing_period" validate:"required,billing_period"`
	CouponCode    string              `json:"coupon_code,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	r.PlanID = strings.TrimSpace(r.PlanID)
	r.CouponCode = strings.TrimSpace(r.CouponCode)
	return validator.ValidateRequest(r)
}

type CreateSubscriptionResponse struct {
	// ClientSecret confirms the first invoice payment; null when nothing is due.
	ClientSecret   *string `json:"client_secret"`
	SubscriptionID string  `json:"subscription_id"`
}

type SubscriptionResponse struct {
	ID                     string                   `json:"id"`
	PlanID                 string                   `json:"plan_id"`
	Status                 types.SubscriptionStatus `json:"status"`
	ProviderSubscriptionID string                   `json:"stripe_subscription_id"`
	BillingPeriod          *types.BillingPeriod     `json:"billing_period"`
	CurrentPeriodStart     *time.Time               `json:"current_period_start"`
	CurrentPeriodEnd       *time.Time               `json:"current_period_end"`
	TrialEnd               *time.Time               `json:"trial_end,omitempty"`
	CanceledAt             *time.Time               `json:"canceled_at,omitempty"`
	UpdatedAt              time.Time                `json:"updated_at"`
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:                     sub.ID,
		PlanID:                 sub.PlanID,
		Status:                 sub.Status,
		ProviderSubscriptionID: sub.ProviderSubscriptionID,
		BillingPeriod:          sub.BillingPeriod,
		CurrentPeriodStart:     sub.CurrentPeriodStart,
		CurrentPeriodEnd:       sub.CurrentPeriodEnd,
		TrialEnd:               sub.TrialEnd,
		CanceledAt:             sub.CanceledAt,
		UpdatedAt:              sub.UpdatedAt,
	}
}
