package service

import (
	"context"
	"strings"

	"github.com/bldrfitness/bldr/internal/api/dto"
	"github.com/bldrfitness/bldr/internal/domain/discount"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/shopspring/decimal"
)

// DiscountService resolves customer supplied discount codes against the
// provider. It never writes anything.
type DiscountService interface {
	// Resolve returns a descriptor for code priced in currency. An unknown code
	// is a NotFound descriptor, not an error; provider failures are errors.
	Resolve(ctx context.Context, code, currency string) (*discount.Descriptor, error)

	Validate(ctx context.Context, req dto.ValidateCouponRequest) (*dto.ValidateCouponResponse, error)
}

type discountService struct {
	ServiceParams
}

func NewDiscountService(params ServiceParams) DiscountService {
	return &discountService{
		ServiceParams: params,
	}
}

// normalizeCode is the canonical casing used for promotion codes
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *discountService) Resolve(ctx context.Context, code, currency string) (*discount.Descriptor, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, ierr.NewError("discount code is required").
			WithHint("Coupon code is required").
			Mark(ierr.ErrValidation)
	}
	currency = types.NormalizeCurrency(currency)

	promo, err := s.StripeClient.FindPromotionCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if promo == nil || promo.Coupon == nil {
		s.Logger.WithContext(ctx).Debugw("discount code not found", "code", code)
		return discount.NotFound(code), nil
	}

	coupon := promo.Coupon
	valid := promo.Active && coupon.Valid

	if coupon.AmountOff > 0 {
		couponCurrency := types.NormalizeCurrency(string(coupon.Currency))
		if couponCurrency != "" && couponCurrency != currency {
			return discount.CurrencyMismatch(code, couponCurrency, promo.ID), nil
		}
		return discount.FixedAmount(code, coupon.AmountOff, couponCurrency, promo.ID, valid), nil
	}

	if coupon.PercentOff > 0 {
		return discount.PercentOff(code, decimal.NewFromFloat(coupon.PercentOff), promo.ID, valid), nil
	}

	// A coupon with neither amount nor percent cannot discount anything.
	s.Logger.WithContext(ctx).Warnw("coupon has no discount value",
		"code", code,
		"promotion_code_id", promo.ID,
	)
	return discount.NotFound(code), nil
}

func (s *discountService) Validate(ctx context.Context, req dto.ValidateCouponRequest) (*dto.ValidateCouponResponse, error) {
	req.Normalize(s.Config.Billing.DefaultCurrency)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.Resolve(ctx, req.Code, req.Currency)
	if err != nil {
		return nil, err
	}

	if err := descriptorError(d, req.Currency); err != nil {
		return nil, err
	}

	return dto.NewValidateCouponResponse(d), nil
}

// descriptorError converts a descriptor that cannot be applied into the error
// returned to the caller.
func descriptorError(d *discount.Descriptor, currency string) error {
	switch d.Kind {
	case discount.KindNotFound:
		return ierr.NewError("discount code not found").
			WithHint("Coupon not found").
			WithReportableDetails(map[string]interface{}{
				"code": d.Code,
			}).
			Mark(ierr.ErrNotFound)
	case discount.KindCurrencyMismatch:
		return ierr.NewError("coupon currency does not match charge currency").
			WithHintf("This coupon is only valid for %s payments", strings.ToUpper(d.Currency)).
			WithReportableDetails(map[string]interface{}{
				"code":            d.Code,
				"coupon_currency": d.Currency,
				"currency":        currency,
			}).
			Mark(ierr.ErrConflict)
	}
	return nil
}

func errCouponNoLongerValid(code string) error {
	return ierr.NewError("coupon is no longer valid").
		WithHint("This coupon is no longer valid").
		WithReportableDetails(map[string]interface{}{
			"code": code,
		}).
		Mark(ierr.ErrValidation)
}
