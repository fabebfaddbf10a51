package user

import "time"

// Profile is the local user profile keyed by the Supabase auth user id.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	// ProviderCustomerID is the Stripe customer linked to this user, if any.
	ProviderCustomerID *string   `json:"stripe_customer_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (p *Profile) HasProviderCustomer() bool {
	return p.ProviderCustomerID != nil && *p.ProviderCustomerID != ""
}
