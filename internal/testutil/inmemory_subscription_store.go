package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/bldrfitness/bldr/internal/domain/subscription"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository. Upsert holds
// a single lock across read, merge and write, standing in for the advisory
// lock the Postgres repository takes.
type InMemorySubscriptionStore struct {
	mu     sync.Mutex
	byID   map[string]*subscription.Subscription
	writes int
	err    error
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		byID: make(map[string]*subscription.Subscription),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	c := *sub
	if sub.BillingPeriod != nil {
		p := *sub.BillingPeriod
		c.BillingPeriod = &p
	}
	c.CurrentPeriodStart = copyTime(sub.CurrentPeriodStart)
	c.CurrentPeriodEnd = copyTime(sub.CurrentPeriodEnd)
	c.TrialEnd = copyTime(sub.TrialEnd)
	c.CanceledAt = copyTime(sub.CanceledAt)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// FailWith makes every following call return err. Pass nil to reset.
func (s *InMemorySubscriptionStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Writes returns how many upserts changed the store.
func (s *InMemorySubscriptionStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Count returns the number of stored records.
func (s *InMemorySubscriptionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *InMemorySubscriptionStore) Upsert(ctx context.Context, sub *subscription.Subscription, opts subscription.UpsertOptions) (types.ReconcileOutcome, error) {
	if sub == nil || sub.ProviderSubscriptionID == "" {
		return "", ierr.NewError("subscription must have a provider subscription id").
			WithHint("Invalid subscription record").
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return "", ierr.WithError(s.err).
			WithHint("Failed to save subscription").
			Mark(ierr.ErrDatabase)
	}

	existing := s.byID[sub.ProviderSubscriptionID]
	merged, outcome := subscription.Merge(existing, sub, opts)
	if merged == nil {
		return outcome, nil
	}

	toStore := copySubscription(merged)
	if err := s.checkPrimaryKey(toStore); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if toStore.CreatedAt.IsZero() {
		toStore.CreatedAt = now
	}
	toStore.UpdatedAt = now

	s.byID[sub.ProviderSubscriptionID] = toStore
	s.writes++

	sub.ID = toStore.ID
	sub.CreatedAt = toStore.CreatedAt
	sub.UpdatedAt = toStore.UpdatedAt
	return outcome, nil
}

// checkPrimaryKey rejects what the user_subscriptions primary key would: an
// empty local id, or one already used by another provider subscription.
// Callers hold s.mu.
func (s *InMemorySubscriptionStore) checkPrimaryKey(sub *subscription.Subscription) error {
	if sub.ID == "" {
		return ierr.NewError("subscription id is required").
			WithHint("Failed to save subscription").
			Mark(ierr.ErrDatabase)
	}
	for providerID, stored := range s.byID {
		if stored.ID == sub.ID && providerID != sub.ProviderSubscriptionID {
			return ierr.NewError("duplicate subscription id").
				WithHint("Failed to save subscription").
				WithReportableDetails(map[string]interface{}{"id": sub.ID}).
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (s *InMemorySubscriptionStore) GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, ierr.WithError(s.err).Mark(ierr.ErrDatabase)
	}

	sub, ok := s.byID[providerSubscriptionID]
	if !ok {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription not found").
			WithReportableDetails(map[string]interface{}{
				"stripe_subscription_id": providerSubscriptionID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) GetLatestForUser(ctx context.Context, userID string) (*subscription.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, ierr.WithError(s.err).Mark(ierr.ErrDatabase)
	}

	var latest *subscription.Subscription
	for _, sub := range s.byID {
		if sub.UserID != userID {
			continue
		}
		if latest == nil || sub.UpdatedAt.After(latest.UpdatedAt) {
			latest = sub
		}
	}
	if latest == nil {
		return nil, ierr.NewError("subscription not found").
			WithHint("No subscription found").
			WithReportableDetails(map[string]interface{}{
				"user_id": userID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(latest), nil
}
