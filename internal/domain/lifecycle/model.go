package lifecycle

import (
	"time"

	"github.com/bldrfitness/bldr/internal/types"
)

// Event is a provider lifecycle notification decoded once at the boundary.
// Subscription fields are empty for unhandled events.
type Event struct {
	ID                string
	Type              types.LifecycleEventType
	ProviderEventType string
	OccurredAt        time.Time

	ProviderSubscriptionID string
	ProviderCustomerID     string
	ProviderProductID      string
	Status                 types.SubscriptionStatus
	// BillingInterval is the raw recurring interval, e.g. month or year.
	BillingInterval string
	PeriodStart     *time.Time
	PeriodEnd       *time.Time
	TrialEnd        *time.Time
	CanceledAt      *time.Time
	EndedAt         *time.Time
}

func (e *Event) IsHandled() bool {
	switch e.Type {
	case types.LifecycleEventCreated, types.LifecycleEventUpdated, types.LifecycleEventDeleted:
		return true
	default:
		return false
	}
}
