package types

import (
	"fmt"
	"strings"

	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/samber/lo"
)

type BillingPeriod string

const (
	BillingPeriodMonthly BillingPeriod = "monthly"
	BillingPeriodAnnual  BillingPeriod = "annual"
)

var allowedBillingPeriods = []BillingPeriod{BillingPeriodMonthly, BillingPeriodAnnual}

func (b BillingPeriod) String() string {
	return string(b)
}

func (b BillingPeriod) Validate() error {
	if !lo.Contains(allowedBillingPeriods, b) {
		return ierr.NewError("invalid billing period").
			WithHint(fmt.Sprintf("Billing period must be one of %v", allowedBillingPeriods)).
			WithReportableDetails(map[string]interface{}{
				"billing_period": b,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingInterval is the provider's recurring interval for a price.
type BillingInterval string

const (
	BillingIntervalMonth BillingInterval = "month"
	BillingIntervalYear  BillingInterval = "year"
)

// BillingPeriodFromInterval maps month to monthly and year to annual. Any other
// interval (week, day) has no local equivalent and yields nil.
func BillingPeriodFromInterval(interval string) *BillingPeriod {
	switch BillingInterval(strings.ToLower(interval)) {
	case BillingIntervalMonth:
		return lo.ToPtr(BillingPeriodMonthly)
	case BillingIntervalYear:
		return lo.ToPtr(BillingPeriodAnnual)
	default:
		return nil
	}
}
