package discount

import (
	"github.com/shopspring/decimal"
)

// Kind classifies a resolved discount code.
type Kind string

const (
	KindFixedAmount      Kind = "fixed_amount"
	KindPercentOff       Kind = "percent_off"
	KindNotFound         Kind = "not_found"
	KindCurrencyMismatch Kind = "currency_mismatch"
)

// Descriptor is the resolved form of a discount code. AmountOff is set only
// for KindFixedAmount and PercentOff only for KindPercentOff.
type Descriptor struct {
	Kind Kind
	Code string

	AmountOff  int64
	PercentOff decimal.Decimal
	// Currency of a fixed-amount coupon; empty when the coupon has none.
	Currency string

	// ProviderDiscountID is the Stripe promotion code id.
	ProviderDiscountID string
	// Valid is false when the promotion code exists but its coupon can no
	// longer be redeemed.
	Valid bool
}

func NotFound(code string) *Descriptor {
	return &Descriptor{Kind: KindNotFound, Code: code}
}

func CurrencyMismatch(code, couponCurrency, providerID string) *Descriptor {
	return &Descriptor{
		Kind:               KindCurrencyMismatch,
		Code:               code,
		Currency:           couponCurrency,
		ProviderDiscountID: providerID,
	}
}

func FixedAmount(code string, amountOff int64, currency, providerID string, valid bool) *Descriptor {
	return &Descriptor{
		Kind:               KindFixedAmount,
		Code:               code,
		AmountOff:          amountOff,
		Currency:           currency,
		ProviderDiscountID: providerID,
		Valid:              valid,
	}
}

func PercentOff(code string, percent decimal.Decimal, providerID string, valid bool) *Descriptor {
	return &Descriptor{
		Kind:               KindPercentOff,
		Code:               code,
		PercentOff:         percent,
		ProviderDiscountID: providerID,
		Valid:              valid,
	}
}

// Applicable reports whether the descriptor carries a discount that can be
// applied to a charge.
func (d *Descriptor) Applicable() bool {
	return d != nil && (d.Kind == KindFixedAmount || d.Kind == KindPercentOff)
}
