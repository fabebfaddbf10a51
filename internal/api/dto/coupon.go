package dto

import (
	"strings"

	"github.com/bldrfitness/bldr/internal/domain/discount"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/bldrfitness/bldr/internal/validator"
	"github.com/samber/lo"
)

// CouponType is the discount shape reported to the app
type CouponType string

const (
	CouponTypeFixed      CouponType = "fixed"
	CouponTypePercentage CouponType = "percentage"
)

type ValidateCouponRequest struct {
	Code     string `json:"code" validate:"required"`
	Currency string `json:"currency,omitempty" validate:"omitempty,currency"`
}

func (r *ValidateCouponRequest) Normalize(defaultCurrency string) {
	r.Code = strings.TrimSpace(r.Code)
	r.Currency = types.NormalizeCurrency(r.Currency)
	if r.Currency == "" {
		r.Currency = types.NormalizeCurrency(defaultCurrency)
	}
}

func (r *ValidateCouponRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type ValidateCouponResponse struct {
	Valid        bool   `json:"valid"`
	DiscountCode string `json:"discount_code"`
	// DiscountMinorUnits is the fixed amount off, or 0 for percentage coupons.
	DiscountMinorUnits int64      `json:"discount_minor_units"`
	PercentOff         *float64   `json:"percent_off"`
	DiscountID         string     `json:"discount_id"`
	Type               CouponType `json:"type"`
}

// NewValidateCouponResponse renders an applicable descriptor.
func NewValidateCouponResponse(d *discount.Descriptor) *ValidateCouponResponse {
	resp := &ValidateCouponResponse{
		Valid:        d.Valid,
		DiscountCode: d.Code,
		DiscountID:   d.ProviderDiscountID,
	}

	switch d.Kind {
	case discount.KindPercentOff:
		resp.Type = CouponTypePercentage
		resp.PercentOff = lo.ToPtr(d.PercentOff.InexactFloat64())
	default:
		resp.Type = CouponTypeFixed
		resp.DiscountMinorUnits = d.AmountOff
	}
	return resp
}
