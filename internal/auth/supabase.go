package auth

import (
	"context"

	"github.com/bldrfitness/bldr/internal/config"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/nedpals/supabase-go"
)

type supabaseAuth struct {
	jwtSecret []byte
	client    *supabase.Client
	logger    *logger.Logger
}

func NewSupabaseAuth(cfg *config.Configuration, log *logger.Logger) Provider {
	var client *supabase.Client
	if cfg.Auth.Supabase.BaseURL != "" {
		client = supabase.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	}

	return &supabaseAuth{
		jwtSecret: []byte(cfg.Auth.Supabase.JWTSecret),
		client:    client,
		logger:    log,
	}
}

func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ierr.NewError("token is required").
			WithHint("Missing authorization token").
			Mark(ierr.ErrUnauthorized)
	}

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint("Unexpected signing method").
				WithReportableDetails(map[string]interface{}{
					"signing_method": token.Method.Alg(),
				}).
				Mark(ierr.ErrUnauthorized)
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid or expired token").
			Mark(ierr.ErrUnauthorized)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrUnauthorized)
	}

	userID, _ := claims["sub"].(string)
	if !types.IsValidUserID(userID) {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrUnauthorized)
	}

	email, _ := claims["email"].(string)

	return &Claims{
		UserID: userID,
		Email:  email,
	}, nil
}

func (s *supabaseAuth) GetUserEmail(ctx context.Context, accessToken string) (string, error) {
	if s.client == nil {
		return "", ierr.NewError("supabase client not configured").
			Mark(ierr.ErrSystem)
	}

	user, err := s.client.Auth.User(ctx, accessToken)
	if err != nil {
		s.logger.Errorw("failed to fetch supabase user", "error", err)
		return "", ierr.WithError(err).
			WithHint("Failed to get user").
			Mark(ierr.ErrUpstream)
	}
	return user.Email, nil
}
