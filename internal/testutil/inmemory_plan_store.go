package testutil

import (
	"context"

	"github.com/bldrfitness/bldr/internal/domain/plan"
	ierr "github.com/bldrfitness/bldr/internal/errors"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Create seeds a plan
func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").
			WithHint("Plan cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, copyPlan(p))
}

func (s *InMemoryPlanStore) GetActive(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || !p.IsActive {
		return nil, ierr.NewError("plan not found").
			WithHint("Plan not found").
			WithReportableDetails(map[string]interface{}{
				"plan_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

func (s *InMemoryPlanStore) GetByProviderProductID(ctx context.Context, productID string) (*plan.Plan, error) {
	plans := s.InMemoryStore.List(ctx, func(p *plan.Plan) bool {
		return p.ProviderProductID == productID
	})
	if len(plans) == 0 {
		return nil, ierr.NewError("plan not found for product").
			WithHint("Plan not found").
			WithReportableDetails(map[string]interface{}{
				"stripe_product_id": productID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(plans[0]), nil
}
