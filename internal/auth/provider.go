package auth

import "context"

// Claims are the identity fields read from a verified access token.
type Claims struct {
	UserID string
	Email  string
}

// Provider validates bearer tokens issued to app users.
type Provider interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
	// GetUserEmail looks the user up with their own access token, for tokens
	// that carry no email claim.
	GetUserEmail(ctx context.Context, accessToken string) (string, error)
}
