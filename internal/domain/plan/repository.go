package plan

import "context"

// Repository defines the interface for plan lookups
type Repository interface {
	// GetActive fetches an active plan by id. Inactive plans are NotFound.
	GetActive(ctx context.Context, id string) (*Plan, error)

	// GetByProviderProductID fetches the plan linked to a Stripe product,
	// regardless of active status, so existing subscriptions keep reconciling
	// after a plan is retired.
	GetByProviderProductID(ctx context.Context, productID string) (*Plan, error)
}
