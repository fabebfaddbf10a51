package stripe

import (
	"encoding/json"
	"time"

	"github.com/bldrfitness/bldr/internal/domain/lifecycle"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// lifecycleEventTypes maps the Stripe events the reconciler acts on.
var lifecycleEventTypes = map[stripe.EventType]types.LifecycleEventType{
	stripe.EventTypeCustomerSubscriptionCreated: types.LifecycleEventCreated,
	stripe.EventTypeCustomerSubscriptionUpdated: types.LifecycleEventUpdated,
	stripe.EventTypeCustomerSubscriptionDeleted: types.LifecycleEventDeleted,
}

// ToLifecycleEvent decodes a verified Stripe event. Event types outside the
// subscription lifecycle decode to an unhandled event without touching the
// payload.
func ToLifecycleEvent(event stripe.Event) (*lifecycle.Event, error) {
	out := &lifecycle.Event{
		ID:                event.ID,
		Type:              types.LifecycleEventUnhandled,
		ProviderEventType: string(event.Type),
		OccurredAt:        time.Unix(event.Created, 0).UTC(),
	}

	eventType, ok := lifecycleEventTypes[event.Type]
	if !ok {
		return out, nil
	}
	out.Type = eventType

	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, ierr.NewError("subscription event has no data").
			WithReportableDetails(map[string]interface{}{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}

	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Malformed subscription payload").
			WithReportableDetails(map[string]interface{}{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}

	if sub.ID == "" {
		return nil, ierr.NewError("subscription event missing subscription id").
			WithReportableDetails(map[string]interface{}{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, ierr.NewError("subscription has no items").
			WithReportableDetails(map[string]interface{}{
				"event_id":        event.ID,
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	item := sub.Items.Data[0]
	out.ProviderSubscriptionID = sub.ID
	out.Status = types.SubscriptionStatus(sub.Status)
	if sub.Customer != nil {
		out.ProviderCustomerID = sub.Customer.ID
	}
	if item.Price != nil {
		if item.Price.Product != nil {
			out.ProviderProductID = item.Price.Product.ID
		}
		if item.Price.Recurring != nil {
			out.BillingInterval = string(item.Price.Recurring.Interval)
		}
	}
	out.PeriodStart = unixPtr(item.CurrentPeriodStart)
	out.PeriodEnd = unixPtr(item.CurrentPeriodEnd)
	out.TrialEnd = unixPtr(sub.TrialEnd)
	out.CanceledAt = unixPtr(sub.CanceledAt)
	out.EndedAt = unixPtr(sub.EndedAt)

	return out, nil
}

func unixPtr(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}

// ClientSecretFromSubscription returns the client secret of the first
// invoice of a subscription created with default_incomplete, if any.
func ClientSecretFromSubscription(sub *stripe.Subscription) *string {
	if sub == nil || sub.LatestInvoice == nil || sub.LatestInvoice.ConfirmationSecret == nil {
		return nil
	}
	secret := sub.LatestInvoice.ConfirmationSecret.ClientSecret
	if secret == "" {
		return nil
	}
	return &secret
}
