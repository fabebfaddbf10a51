package service

import (
	"context"

	"github.com/bldrfitness/bldr/internal/api/dto"
	"github.com/bldrfitness/bldr/internal/domain/plan"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/idempotency"
	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
	"github.com/bldrfitness/bldr/internal/types"
)

// CheckoutService starts provider subscriptions for the authenticated user.
// The local record is written later by the reconciler.
type CheckoutService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.CreateSubscriptionResponse, error)
}

type checkoutService struct {
	ServiceParams
	discounts DiscountService
}

func NewCheckoutService(params ServiceParams, discounts DiscountService) CheckoutService {
	return &checkoutService{
		ServiceParams: params,
		discounts:     discounts,
	}
}

func (s *checkoutService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.CreateSubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userID := types.GetUserID(ctx)
	if userID == "" {
		return nil, ierr.NewError("user not authenticated").
			WithHint("Authentication required").
			Mark(ierr.ErrUnauthorized)
	}

	p, err := s.PlanRepo.GetActive(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	priceID, err := p.ProviderPriceIDFor(req.BillingPeriod)
	if err != nil {
		return nil, err
	}

	var promotionCodeID string
	if req.CouponCode != "" {
		d, err := s.discounts.Resolve(ctx, req.CouponCode, s.Config.Billing.DefaultCurrency)
		if err != nil {
			return nil, err
		}
		if err := descriptorError(d, s.Config.Billing.DefaultCurrency); err != nil {
			return nil, err
		}
		if !d.Valid {
			return nil, errCouponNoLongerValid(d.Code)
		}
		promotionCodeID = d.ProviderDiscountID
	}

	customerID, err := s.ensureCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	sub, err := s.StripeClient.CreateSubscription(ctx, &stripeint.CreateSubscriptionRequest{
		CustomerID:      customerID,
		PriceID:         priceID,
		PromotionCodeID: promotionCodeID,
		Metadata: map[string]string{
			"supabase_id":    userID,
			"plan_id":        p.ID,
			"billing_period": string(req.BillingPeriod),
		},
		IdempotencyKey: s.subscriptionKey(userID, p, req),
	})
	if err != nil {
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("created provider subscription",
		"stripe_subscription_id", sub.ID,
		"stripe_customer_id", customerID,
		"plan_id", p.ID,
		"billing_period", req.BillingPeriod,
		"status", sub.Status,
	)

	return &dto.CreateSubscriptionResponse{
		ClientSecret:   stripeint.ClientSecretFromSubscription(sub),
		SubscriptionID: sub.ID,
	}, nil
}

func (s *checkoutService) subscriptionKey(userID string, p *plan.Plan, req dto.CreateSubscriptionRequest) string {
	return s.IdempotencyGenerator.GenerateWindowedKey(idempotency.ScopeSubscription, map[string]interface{}{
		"user_id":        userID,
		"plan_id":        p.ID,
		"billing_period": req.BillingPeriod,
		"coupon_code":    normalizeCode(req.CouponCode),
	}, s.Config.Billing.IdempotencyWindow)
}

// ensureCustomer returns the caller's provider customer, creating and linking
// one on first checkout. Concurrent first checkouts share one customer
// through the idempotency key, and the link keeps the first stored id.
func (s *checkoutService) ensureCustomer(ctx context.Context, userID string) (string, error) {
	profile, err := s.UserRepo.Get(ctx, userID)
	if err != nil && !ierr.IsNotFound(err) {
		return "", err
	}
	if profile != nil && profile.HasProviderCustomer() {
		return *profile.ProviderCustomerID, nil
	}

	email := types.GetUserEmail(ctx)
	if email == "" && profile != nil {
		email = profile.Email
	}
	if email == "" {
		email, err = s.AuthProvider.GetUserEmail(ctx, types.GetAccessToken(ctx))
		if err != nil {
			return "", err
		}
	}

	cust, err := s.StripeClient.CreateCustomer(ctx, &stripeint.CreateCustomerRequest{
		Email:          email,
		Metadata:       map[string]string{"supabase_id": userID},
		IdempotencyKey: s.IdempotencyGenerator.GenerateKey(idempotency.ScopeCustomer, map[string]interface{}{"user_id": userID}),
	})
	if err != nil {
		return "", err
	}

	linked, err := s.UserRepo.LinkProviderCustomer(ctx, userID, email, cust.ID)
	if err != nil {
		return "", err
	}
	if linked != cust.ID {
		s.Logger.WithContext(ctx).Warnw("user already linked to another customer",
			"stripe_customer_id", linked,
			"created_customer_id", cust.ID,
		)
	}
	return linked, nil
}
