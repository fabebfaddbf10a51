package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/bldrfitness/bldr/internal/domain/user"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/samber/lo"
)

// InMemoryUserStore implements user.Repository
type InMemoryUserStore struct {
	*InMemoryStore[*user.Profile]
	linkMu sync.Mutex
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		InMemoryStore: NewInMemoryStore[*user.Profile](),
	}
}

func copyProfile(p *user.Profile) *user.Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.ProviderCustomerID != nil {
		c.ProviderCustomerID = lo.ToPtr(*p.ProviderCustomerID)
	}
	return &c
}

// Create seeds a profile
func (s *InMemoryUserStore) Create(ctx context.Context, p *user.Profile) error {
	if p == nil {
		return ierr.NewError("profile cannot be nil").
			WithHint("Profile cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyProfile(p))
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.Profile, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("user not found").
			WithHint("User not found").
			WithReportableDetails(map[string]interface{}{
				"user_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyProfile(p), nil
}

func (s *InMemoryUserStore) GetByProviderCustomerID(ctx context.Context, customerID string) (*user.Profile, error) {
	profiles := s.InMemoryStore.List(ctx, func(p *user.Profile) bool {
		return p.ProviderCustomerID != nil && *p.ProviderCustomerID == customerID
	})
	if len(profiles) == 0 {
		return nil, ierr.NewError("user not found for customer").
			WithHint("User not found").
			WithReportableDetails(map[string]interface{}{
				"stripe_customer_id": customerID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyProfile(profiles[0]), nil
}

func (s *InMemoryUserStore) LinkProviderCustomer(ctx context.Context, userID, email, customerID string) (string, error) {
	s.linkMu.Lock()
	defer s.linkMu.Unlock()

	now := time.Now().UTC()
	existing, err := s.InMemoryStore.Get(ctx, userID)
	if err != nil {
		p := &user.Profile{
			ID:                 userID,
			Email:              email,
			ProviderCustomerID: lo.ToPtr(customerID),
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.InMemoryStore.Create(ctx, userID, p); err != nil {
			return "", ierr.WithError(err).
				WithHint("Failed to link customer").
				Mark(ierr.ErrDatabase)
		}
		return customerID, nil
	}

	if existing.HasProviderCustomer() {
		return *existing.ProviderCustomerID, nil
	}

	updated := copyProfile(existing)
	updated.ProviderCustomerID = lo.ToPtr(customerID)
	if updated.Email == "" {
		updated.Email = email
	}
	updated.UpdatedAt = now
	if err := s.InMemoryStore.Update(ctx, userID, updated); err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to link customer").
			Mark(ierr.ErrDatabase)
	}
	return customerID, nil
}
