package subscription

import (
	"context"

	"github.com/bldrfitness/bldr/internal/types"
)

// Repository defines the interface for subscription record persistence
type Repository interface {
	// Upsert writes sub keyed by ProviderSubscriptionID in a single atomic
	// step. Same-id calls are serialised; an identical replay writes nothing.
	Upsert(ctx context.Context, sub *Subscription, opts UpsertOptions) (types.ReconcileOutcome, error)

	GetByProviderSubscriptionID(ctx context.Context, providerSubscriptionID string) (*Subscription, error)

	// GetLatestForUser returns the user's most recently updated record.
	GetLatestForUser(ctx context.Context, userID string) (*Subscription, error)
}
