package subscription

import (
	"time"

	"github.com/bldrfitness/bldr/internal/types"
)

// Subscription is the local record of a provider subscription. It is written
// only by the reconciler and keyed by ProviderSubscriptionID.
type Subscription struct {
	ID                     string                   `json:"id"`
	UserID                 string                   `json:"user_id"`
	PlanID                 string                   `json:"plan_id"`
	Status                 types.SubscriptionStatus `json:"status"`
	ProviderSubscriptionID string                   `json:"stripe_subscription_id"`
	ProviderCustomerID     string                   `json:"stripe_customer_id"`
	// BillingPeriod is nil when the provider interval has no local equivalent.
	BillingPeriod      *types.BillingPeriod `json:"billing_period"`
	CurrentPeriodStart *time.Time           `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time           `json:"current_period_end"`
	TrialEnd           *time.Time           `json:"trial_end,omitempty"`
	CanceledAt         *time.Time           `json:"canceled_at,omitempty"`

	// LastEventID and LastEventAt identify the provider event that produced
	// the current state.
	LastEventID string    `json:"last_event_id"`
	LastEventAt time.Time `json:"last_event_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpsertOptions controls how an incoming record is merged into a stored one.
type UpsertOptions struct {
	// RejectStale skips records produced by an event older than the stored one.
	RejectStale bool
}

// Merge decides what to write when incoming arrives for the same provider
// subscription as existing (which may be nil). It returns the record to
// persist, or nil when nothing should be written, and the outcome. A new
// record gets a local id here unless the caller already set one.
func Merge(existing, incoming *Subscription, opts UpsertOptions) (*Subscription, types.ReconcileOutcome) {
	if existing == nil {
		created := *incoming
		if created.ID == "" {
			created.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION)
		}
		return &created, types.ReconcileOutcomeApplied
	}

	if opts.RejectStale && !existing.LastEventAt.IsZero() && incoming.LastEventAt.Before(existing.LastEventAt) {
		return nil, types.ReconcileOutcomeStale
	}

	if existing.SameState(incoming) {
		return nil, types.ReconcileOutcomeUnchanged
	}

	merged := *incoming
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged, types.ReconcileOutcomeApplied
}

// SameState reports whether both records carry the same reconciled state and
// were produced by the same event. Local ids and audit timestamps are ignored.
func (s *Subscription) SameState(o *Subscription) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.UserID == o.UserID &&
		s.PlanID == o.PlanID &&
		s.Status == o.Status &&
		s.ProviderSubscriptionID == o.ProviderSubscriptionID &&
		s.ProviderCustomerID == o.ProviderCustomerID &&
		equalPeriod(s.BillingPeriod, o.BillingPeriod) &&
		equalTime(s.CurrentPeriodStart, o.CurrentPeriodStart) &&
		equalTime(s.CurrentPeriodEnd, o.CurrentPeriodEnd) &&
		equalTime(s.TrialEnd, o.TrialEnd) &&
		equalTime(s.CanceledAt, o.CanceledAt) &&
		s.LastEventID == o.LastEventID &&
		s.LastEventAt.Equal(o.LastEventAt)
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalPeriod(a, b *types.BillingPeriod) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
