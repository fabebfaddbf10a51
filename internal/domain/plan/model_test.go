package plan

import (
	"testing"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPriceFor(t *testing.T) {
	p := &Plan{
		ID:                     "plan_pro",
		MonthlyPrice:           decimal.RequireFromString("99.90"),
		AnnualPrice:            decimal.RequireFromString("999.00"),
		ProviderMonthlyPriceID: "price_m",
	}

	monthly, err := p.PriceFor(types.BillingPeriodMonthly)
	require.NoError(t, err)
	assert.True(t, monthly.Equal(decimal.RequireFromString("99.90")))

	annual, err := p.PriceFor(types.BillingPeriodAnnual)
	require.NoError(t, err)
	assert.True(t, annual.Equal(decimal.RequireFromString("999")))

	_, err = p.PriceFor("weekly")
	assert.True(t, ierr.IsValidation(err))

	id, err := p.ProviderPriceIDFor(types.BillingPeriodMonthly)
	require.NoError(t, err)
	assert.Equal(t, "price_m", id)

	_, err = p.ProviderPriceIDFor(types.BillingPeriodAnnual)
	assert.True(t, ierr.IsValidation(err))
}
