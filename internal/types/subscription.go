package types

// SubscriptionStatus mirrors the provider's subscription status values.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

// LifecycleEventType is the closed set of subscription lifecycle notifications
// the reconciler acts on.
type LifecycleEventType string

const (
	LifecycleEventCreated   LifecycleEventType = "created"
	LifecycleEventUpdated   LifecycleEventType = "updated"
	LifecycleEventDeleted   LifecycleEventType = "deleted"
	LifecycleEventUnhandled LifecycleEventType = "unhandled"
)

func (t LifecycleEventType) String() string {
	return string(t)
}

// ReconcileOutcome describes what an event did to the stored record.
type ReconcileOutcome string

const (
	ReconcileOutcomeApplied   ReconcileOutcome = "applied"
	ReconcileOutcomeUnchanged ReconcileOutcome = "unchanged"
	ReconcileOutcomeStale     ReconcileOutcome = "stale"
	ReconcileOutcomeIgnored   ReconcileOutcome = "ignored"
)
