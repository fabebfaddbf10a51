package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainSubscription "github.com/bldrfitness/bldr/internal/domain/subscription"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/postgres"
	"github.com/bldrfitness/bldr/internal/types"
)

const subscriptionColumns = `id, user_id, plan_id, status, stripe_subscription_id, stripe_customer_id,
	billing_period, current_period_start, current_period_end, trial_end, canceled_at,
	last_event_id, last_event_at, created_at, updated_at`

const upsertSubscriptionQuery = `
	INSERT INTO user_subscriptions (
		id, user_id, plan_id, status, stripe_subscription_id, stripe_customer_id,
		billing_period, current_period_start, current_period_end, trial_end, canceled_at,
		last_event_id, last_event_at, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	ON CONFLICT (stripe_subscription_id) DO UPDATE SET
		user_id = EXCLUDED.user_id,
		plan_id = EXCLUDED.plan_id,
		status = EXCLUDED.status,
		stripe_customer_id = EXCLUDED.stripe_customer_id,
		billing_period = EXCLUDED.billing_period,
		current_period_start = EXCLUDED.current_period_start,
		current_period_end = EXCLUDED.current_period_end,
		trial_end = EXCLUDED.trial_end,
		canceled_at = EXCLUDED.canceled_at,
		last_event_id = EXCLUDED.last_event_id,
		last_event_at = EXCLUDED.last_event_at,
		updated_at = EXCLUDED.updated_at
	RETURNING id, created_at, updated_at`

type subscriptionRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewSubscriptionRepository(client postgres.IClient, log *logger.Logger) domainSubscription.Repository {
	return &subscriptionRepository{client: client, log: log}
}

// Upsert serialises on the provider subscription id with an advisory lock,
// merges against the stored row and writes at most once.
func (r *subscriptionRepository) Upsert(ctx context.Context, sub *domainSubscription.Subscription, opts domainSubscription.UpsertOptions) (types.ReconcileOutcome, error) {
	span := StartRepositorySpan(ctx, "subscription", "upsert", map[string]interface{}{
		"stripe_subscription_id": sub.ProviderSubscriptionID,
		"last_event_id":          sub.LastEventID,
	})
	defer FinishSpan(span)

	var outcome types.ReconcileOutcome
	err := r.client.WithTx(ctx, func(ctx context.Context) error {
		lockKey := types.GenerateLockKey(types.LockScopeSubscription, map[string]interface{}{
			"stripe_subscription_id": sub.ProviderSubscriptionID,
		})
		if err := r.client.LockKey(ctx, types.LockRequest{Key: lockKey}); err != nil {
			return err
		}

		existing, err := r.getByProviderID(ctx, sub.ProviderSubscriptionID)
		if err != nil && !ierr.IsNotFound(err) {
			return err
		}

		toWrite, result := domainSubscription.Merge(existing, sub, opts)
		outcome = result
		if toWrite == nil {
			return nil
		}

		now := time.Now().UTC()
		err = r.client.Writer(ctx).QueryRowContext(ctx, upsertSubscriptionQuery,
			toWrite.ID,
			toWrite.UserID,
			toWrite.PlanID,
			string(toWrite.Status),
			toWrite.ProviderSubscriptionID,
			toWrite.ProviderCustomerID,
			nullPeriod(toWrite.BillingPeriod),
			toWrite.CurrentPeriodStart,
			toWrite.CurrentPeriodEnd,
			toWrite.TrialEnd,
			toWrite.CanceledAt,
			toWrite.LastEventID,
			toWrite.LastEventAt,
			now,
		).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
		if err != nil {
			return ierr.WithError(err).
				WithHint("Failed to save subscription").
				WithReportableDetails(map[string]interface{}{
					"stripe_subscription_id": sub.ProviderSubscriptionID,
				}).
				Mark(ierr.ErrDatabase)
		}
		return nil
	})
	if err != nil {
		SetSpanError(span, err)
		if !ierr.IsDatabase(err) {
			err = ierr.WithError(err).
				WithHint("Failed to save subscription").
				Mark(ierr.ErrDatabase)
		}
		return "", err
	}

	SetSpanSuccess(span)
	return outcome, nil
}

func (r *subscriptionRepository) GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*domainSubscription.Subscription, error) {
	span := StartRepositorySpan(ctx, "subscription", "get_by_provider_subscription_id", map[string]interface{}{
		"stripe_subscription_id": providerSubscriptionID,
	})
	defer FinishSpan(span)

	sub, err := r.getByProviderID(ctx, providerSubscriptionID)
	if err != nil {
		SetSpanError(span, err)
		return nil, err
	}
	SetSpanSuccess(span)
	return sub, nil
}

func (r *subscriptionRepository) GetLatestForUser(ctx context.Context, userID string) (*domainSubscription.Subscription, error) {
	span := StartRepositorySpan(ctx, "subscription", "get_latest_for_user", map[string]interface{}{
		"user_id": userID,
	})
	defer FinishSpan(span)

	row := r.client.Reader(ctx).QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM user_subscriptions
		WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		SetSpanError(span, err)
		return nil, subscriptionError(err, map[string]interface{}{"user_id": userID})
	}
	SetSpanSuccess(span)
	return sub, nil
}

func (r *subscriptionRepository) getByProviderID(ctx context.Context, providerSubscriptionID string) (*domainSubscription.Subscription, error) {
	row := r.client.Reader(ctx).QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM user_subscriptions WHERE stripe_subscription_id = $1`,
		providerSubscriptionID)
	sub, err := scanSubscription(row)
	if err != nil {
		return nil, subscriptionError(err, map[string]interface{}{
			"stripe_subscription_id": providerSubscriptionID,
		})
	}
	return sub, nil
}

func scanSubscription(row rowScanner) (*domainSubscription.Subscription, error) {
	var s domainSubscription.Subscription
	var status string
	var period sql.NullString
	var periodStart, periodEnd, trialEnd, canceledAt sql.NullTime

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.PlanID,
		&status,
		&s.ProviderSubscriptionID,
		&s.ProviderCustomerID,
		&period,
		&periodStart,
		&periodEnd,
		&trialEnd,
		&canceledAt,
		&s.LastEventID,
		&s.LastEventAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = types.SubscriptionStatus(status)
	if period.Valid {
		bp := types.BillingPeriod(period.String)
		s.BillingPeriod = &bp
	}
	s.CurrentPeriodStart = timePtr(periodStart)
	s.CurrentPeriodEnd = timePtr(periodEnd)
	s.TrialEnd = timePtr(trialEnd)
	s.CanceledAt = timePtr(canceledAt)
	return &s, nil
}

func subscriptionError(err error, details map[string]interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHint("Subscription not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to get subscription").
		Mark(ierr.ErrDatabase)
}

func nullPeriod(p *types.BillingPeriod) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*p), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
