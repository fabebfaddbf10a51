// Package pricing turns a plan price, billing period and optional discount
// into the integer amounts charged to the customer.
package pricing

import (
	"github.com/bldrfitness/bldr/internal/domain/discount"
	"github.com/bldrfitness/bldr/internal/domain/plan"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Charge is a derived price breakdown. It is never persisted.
type Charge struct {
	Currency           string
	BillingPeriod      types.BillingPeriod
	AmountOriginal     int64
	DiscountAmount     int64
	AmountFinal        int64
	ProviderDiscountID *string
}

// IsFree reports whether no payment needs to be collected.
func (c *Charge) IsFree() bool {
	return c.AmountFinal == 0
}

// Calculate computes the charge for a plan. d may be nil. A descriptor that is
// not applicable is rejected rather than treated as a zero discount.
func Calculate(p *plan.Plan, period types.BillingPeriod, currency string, d *discount.Descriptor) (*Charge, error) {
	if p == nil {
		return nil, ierr.NewError("plan is required").
			Mark(ierr.ErrValidation)
	}
	if err := period.Validate(); err != nil {
		return nil, err
	}

	currency = types.NormalizeCurrency(currency)
	if !types.IsValidCurrency(currency) {
		return nil, ierr.NewError("invalid currency").
			WithHint("Currency must be a three letter ISO code").
			WithReportableDetails(map[string]interface{}{"currency": currency}).
			Mark(ierr.ErrValidation)
	}

	price, err := p.PriceFor(period)
	if err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, ierr.NewError("plan price is negative").
			WithReportableDetails(map[string]interface{}{"plan_id": p.ID}).
			Mark(ierr.ErrInternal)
	}

	original := types.ToMinorUnits(price, currency)

	charge := &Charge{
		Currency:       currency,
		BillingPeriod:  period,
		AmountOriginal: original,
		AmountFinal:    original,
	}

	if d == nil {
		return charge, nil
	}

	amount, err := discountAmount(original, currency, d)
	if err != nil {
		return nil, err
	}

	charge.DiscountAmount = amount
	charge.AmountFinal = max(0, original-amount)
	if d.ProviderDiscountID != "" {
		id := d.ProviderDiscountID
		charge.ProviderDiscountID = &id
	}

	return charge, nil
}

func discountAmount(original int64, currency string, d *discount.Descriptor) (int64, error) {
	switch d.Kind {
	case discount.KindFixedAmount:
		if d.Currency != "" && types.NormalizeCurrency(d.Currency) != currency {
			return 0, currencyMismatch(d, currency)
		}
		if d.AmountOff < 0 {
			return 0, ierr.NewError("negative discount amount").
				Mark(ierr.ErrValidation)
		}
		return d.AmountOff, nil

	case discount.KindPercentOff:
		if d.PercentOff.IsNegative() || d.PercentOff.GreaterThan(hundred) {
			return 0, ierr.NewError("percent off out of range").
				WithHint("Discount percentage must be between 0 and 100").
				WithReportableDetails(map[string]interface{}{"percent_off": d.PercentOff.String()}).
				Mark(ierr.ErrValidation)
		}
		return decimal.NewFromInt(original).Mul(d.PercentOff).Div(hundred).Floor().IntPart(), nil

	case discount.KindCurrencyMismatch:
		return 0, currencyMismatch(d, currency)

	case discount.KindNotFound:
		return 0, ierr.NewError("discount code not found").
			WithHint("Coupon not found or inactive").
			WithReportableDetails(map[string]interface{}{"coupon_code": d.Code}).
			Mark(ierr.ErrNotFound)

	default:
		return 0, ierr.NewErrorf("unknown discount kind %q", d.Kind).
			Mark(ierr.ErrInternal)
	}
}

func currencyMismatch(d *discount.Descriptor, currency string) error {
	return ierr.NewError("discount currency does not match charge currency").
		WithHint("This coupon cannot be used with the selected currency").
		WithReportableDetails(map[string]interface{}{
			"coupon_code":     d.Code,
			"coupon_currency": d.Currency,
			"currency":        currency,
		}).
		Mark(ierr.ErrConflict)
}
