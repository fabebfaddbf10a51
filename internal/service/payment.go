package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bldrfitness/bldr/internal/api/dto"
	"github.com/bldrfitness/bldr/internal/domain/discount"
	"github.com/bldrfitness/bldr/internal/domain/plan"
	"github.com/bldrfitness/bldr/internal/domain/pricing"
	"github.com/bldrfitness/bldr/internal/idempotency"
	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

// PaymentService computes what a customer pays for a plan and creates the
// provider payment intent for it. It never writes subscription state.
type PaymentService interface {
	CalculatePayment(ctx context.Context, req dto.CalculatePaymentRequest) (*dto.CalculatePaymentResponse, error)
}

type paymentService struct {
	ServiceParams
	discounts DiscountService
}

func NewPaymentService(params ServiceParams, discounts DiscountService) PaymentService {
	return &paymentService{
		ServiceParams: params,
		discounts:     discounts,
	}
}

func (s *paymentService) CalculatePayment(ctx context.Context, req dto.CalculatePaymentRequest) (*dto.CalculatePaymentResponse, error) {
	req.Normalize(s.Config.Billing.DefaultCurrency)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if caller := types.GetUserID(ctx); caller != "" && caller != req.UserID {
		return nil, dto.ErrUserMismatch(req.UserID)
	}

	var (
		p *plan.Plan
		d *discount.Descriptor
	)

	// The plan and the coupon are independent lookups.
	lookups := pool.New().WithContext(ctx).WithFirstError()
	lookups.Go(func(ctx context.Context) error {
		var err error
		p, err = s.PlanRepo.GetActive(ctx, req.PlanID)
		return err
	})
	if req.HasCoupon() {
		lookups.Go(func(ctx context.Context) error {
			var err error
			d, err = s.discounts.Resolve(ctx, req.CouponCode, req.Currency)
			return err
		})
	}
	if err := lookups.Wait(); err != nil {
		return nil, err
	}

	if d != nil {
		if err := descriptorError(d, req.Currency); err != nil {
			return nil, err
		}
		if !d.Valid {
			return nil, errCouponNoLongerValid(d.Code)
		}
	}

	charge, err := pricing.Calculate(p, req.BillingPeriod, req.Currency, d)
	if err != nil {
		return nil, err
	}

	return s.issue(ctx, req, p, charge)
}

// issue creates the payment intent for a computed charge. Free charges are
// reported as skipped without calling the provider.
func (s *paymentService) issue(ctx context.Context, req dto.CalculatePaymentRequest, p *plan.Plan, charge *pricing.Charge) (*dto.CalculatePaymentResponse, error) {
	log := s.Logger.WithContext(ctx)

	if charge.IsFree() {
		log.Infow("payment skipped, nothing to charge",
			"plan_id", p.ID,
			"billing_period", charge.BillingPeriod,
			"amount_original", charge.AmountOriginal,
			"discount_id", lo.FromPtr(charge.ProviderDiscountID),
		)
		return dto.NewCalculatePaymentResponse(charge, nil, nil), nil
	}

	discountID := lo.FromPtr(charge.ProviderDiscountID)
	key := s.IdempotencyGenerator.GenerateWindowedKey(idempotency.ScopePaymentIntent, map[string]interface{}{
		"user_id":        req.UserID,
		"plan_id":        p.ID,
		"billing_period": charge.BillingPeriod,
		"currency":       charge.Currency,
		"amount":         charge.AmountFinal,
		"discount_id":    discountID,
	}, s.Config.Billing.IdempotencyWindow)

	pi, err := s.StripeClient.CreatePaymentIntent(ctx, &stripeint.CreatePaymentIntentRequest{
		Amount:      charge.AmountFinal,
		Currency:    charge.Currency,
		Description: fmt.Sprintf("BLDR Fitness - %s (%s)", p.Name, charge.BillingPeriod),
		Metadata: map[string]string{
			"user_id":                     req.UserID,
			"plan_id":                     p.ID,
			"plan_name":                   p.Name,
			"billing_period":              string(charge.BillingPeriod),
			"promotion_code_id":           discountID,
			"discount_minor_units":        strconv.FormatInt(charge.DiscountAmount, 10),
			"amount_original_minor_units": strconv.FormatInt(charge.AmountOriginal, 10),
		},
		IdempotencyKey: key,
	})
	if err != nil {
		return nil, err
	}

	log.Infow("payment intent issued",
		"payment_intent_id", pi.ID,
		"plan_id", p.ID,
		"amount_final", charge.AmountFinal,
		"currency", charge.Currency,
	)

	return dto.NewCalculatePaymentResponse(charge, lo.ToPtr(pi.ClientSecret), lo.ToPtr(pi.ID)), nil
}
