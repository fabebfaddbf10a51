package user

import "context"

// Repository defines the interface for user profile persistence
type Repository interface {
	Get(ctx context.Context, id string) (*Profile, error)

	// GetByProviderCustomerID resolves a Stripe customer id to its profile.
	GetByProviderCustomerID(ctx context.Context, customerID string) (*Profile, error)

	// LinkProviderCustomer stores customerID on the profile unless one is
	// already linked, creating the profile if needed. It returns the id that
	// is linked after the call, which is the earlier one when another request
	// won the race.
	LinkProviderCustomer(ctx context.Context, userID, email, customerID string) (string, error)
}
