package plan

import (
	"time"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a published subscription plan. Prices and product ids never change
// once published; IsActive can.
type Plan struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
	AnnualPrice  decimal.Decimal `json:"annual_price"`

	// ProviderProductID is the Stripe product the plan's prices belong to.
	ProviderProductID      string `json:"stripe_product_id"`
	ProviderMonthlyPriceID string `json:"stripe_monthly_price_id,omitempty"`
	ProviderAnnualPriceID  string `json:"stripe_annual_price_id,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceFor returns the listed major-unit price for the billing period.
func (p *Plan) PriceFor(period types.BillingPeriod) (decimal.Decimal, error) {
	switch period {
	case types.BillingPeriodMonthly:
		return p.MonthlyPrice, nil
	case types.BillingPeriodAnnual:
		return p.AnnualPrice, nil
	default:
		return decimal.Zero, period.Validate()
	}
}

// ProviderPriceIDFor returns the Stripe price id used to create a provider
// side subscription for the billing period.
func (p *Plan) ProviderPriceIDFor(period types.BillingPeriod) (string, error) {
	var id string
	switch period {
	case types.BillingPeriodMonthly:
		id = p.ProviderMonthlyPriceID
	case types.BillingPeriodAnnual:
		id = p.ProviderAnnualPriceID
	default:
		return "", period.Validate()
	}

	if id == "" {
		return "", ierr.NewError("plan has no provider price for billing period").
			WithHint("This plan is not available for the selected billing period").
			WithReportableDetails(map[string]interface{}{
				"plan_id":        p.ID,
				"billing_period": period,
			}).
			Mark(ierr.ErrValidation)
	}
	return id, nil
}
