package service

import (
	"context"

	"github.com/bldrfitness/bldr/internal/domain/lifecycle"
	"github.com/bldrfitness/bldr/internal/domain/plan"
	"github.com/bldrfitness/bldr/internal/domain/subscription"
	"github.com/bldrfitness/bldr/internal/domain/user"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/sourcegraph/conc/pool"
)

// SubscriptionReconciler is the only writer of local subscription records.
// It applies one lifecycle event at a time and never calls the provider.
type SubscriptionReconciler interface {
	Reconcile(ctx context.Context, event *lifecycle.Event) (types.ReconcileOutcome, error)
}

type subscriptionReconciler struct {
	ServiceParams
}

func NewSubscriptionReconciler(params ServiceParams) SubscriptionReconciler {
	return &subscriptionReconciler{
		ServiceParams: params,
	}
}

func (s *subscriptionReconciler) Reconcile(ctx context.Context, event *lifecycle.Event) (types.ReconcileOutcome, error) {
	if event == nil {
		return "", ierr.NewError("lifecycle event is required").
			Mark(ierr.ErrValidation)
	}

	log := s.Logger.WithContext(ctx)

	switch event.Type {
	case types.LifecycleEventCreated, types.LifecycleEventUpdated, types.LifecycleEventDeleted:
	case types.LifecycleEventUnhandled:
		log.Debugw("ignoring unhandled provider event",
			"event_id", event.ID,
			"event_type", event.ProviderEventType,
		)
		return types.ReconcileOutcomeIgnored, nil
	default:
		return "", ierr.NewErrorf("unknown lifecycle event type %q", event.Type).
			Mark(ierr.ErrValidation)
	}

	if event.ProviderSubscriptionID == "" {
		return "", ierr.NewError("lifecycle event has no subscription id").
			WithReportableDetails(map[string]interface{}{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}

	p, u, err := s.resolveIdentity(ctx, event)
	if err != nil {
		log.Errorw("failed to resolve subscription identity",
			"error", err,
			"event_id", event.ID,
			"stripe_subscription_id", event.ProviderSubscriptionID,
			"stripe_customer_id", event.ProviderCustomerID,
			"stripe_product_id", event.ProviderProductID,
		)
		return "", err
	}

	record := buildRecord(event, p, u)

	outcome, err := s.SubscriptionRepo.Upsert(ctx, record, subscription.UpsertOptions{
		RejectStale: s.Config.Billing.RejectStaleEvents,
	})
	if err != nil {
		log.Errorw("failed to upsert subscription",
			"error", err,
			"event_id", event.ID,
			"stripe_subscription_id", event.ProviderSubscriptionID,
		)
		return "", err
	}

	log.Infow("reconciled subscription event",
		"event_id", event.ID,
		"event_type", event.Type,
		"stripe_subscription_id", record.ProviderSubscriptionID,
		"user_id", record.UserID,
		"plan_id", record.PlanID,
		"status", record.Status,
		"outcome", outcome,
	)
	return outcome, nil
}

// resolveIdentity maps the provider product to a plan and the provider
// customer to a user. Both must resolve; nothing is written otherwise.
func (s *subscriptionReconciler) resolveIdentity(ctx context.Context, event *lifecycle.Event) (*plan.Plan, *user.Profile, error) {
	if event.ProviderProductID == "" {
		return nil, nil, ierr.NewError("lifecycle event has no product id").
			WithReportableDetails(map[string]interface{}{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}
	if event.ProviderCustomerID == "" {
		return nil, nil, ierr.NewError("lifecycle event has no customer id").
			WithReportableDetails(map[string]interface{}{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}

	var (
		p *plan.Plan
		u *user.Profile
	)

	lookups := pool.New().WithContext(ctx).WithFirstError()
	lookups.Go(func(ctx context.Context) error {
		var err error
		p, err = s.PlanRepo.GetByProviderProductID(ctx, event.ProviderProductID)
		return err
	})
	lookups.Go(func(ctx context.Context) error {
		var err error
		u, err = s.UserRepo.GetByProviderCustomerID(ctx, event.ProviderCustomerID)
		return err
	})
	if err := lookups.Wait(); err != nil {
		return nil, nil, err
	}
	return p, u, nil
}

func buildRecord(event *lifecycle.Event, p *plan.Plan, u *user.Profile) *subscription.Subscription {
	record := &subscription.Subscription{
		UserID:                 u.ID,
		PlanID:                 p.ID,
		Status:                 event.Status,
		ProviderSubscriptionID: event.ProviderSubscriptionID,
		ProviderCustomerID:     event.ProviderCustomerID,
		BillingPeriod:          types.BillingPeriodFromInterval(event.BillingInterval),
		CurrentPeriodStart:     event.PeriodStart,
		CurrentPeriodEnd:       event.PeriodEnd,
		TrialEnd:               event.TrialEnd,
		CanceledAt:             event.CanceledAt,
		LastEventID:            event.ID,
		LastEventAt:            event.OccurredAt,
	}

	// A deleted subscription is terminal whatever status the provider last
	// reported (incomplete_expired, unpaid).
	if event.Type == types.LifecycleEventDeleted {
		record.Status = types.SubscriptionStatusCanceled
		if record.CanceledAt == nil {
			record.CanceledAt = event.EndedAt
		}
		if record.CanceledAt == nil {
			occurred := event.OccurredAt
			record.CanceledAt = &occurred
		}
	}

	return record
}
