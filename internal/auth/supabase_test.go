package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testJWTSecret = "super-secret-jwt-token-with-at-least-32-characters"
	testUserID    = "6f1d2c1e-8a4b-4c3e-9f10-2b7a9d4e5c61"
)

func newTestProvider(t *testing.T) Provider {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Auth.Supabase.JWTSecret = testJWTSecret
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)
	return NewSupabaseAuth(cfg, log)
}

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	p := newTestProvider(t)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), jwt.MapClaims{
			"sub":   testUserID,
			"email": "athlete@example.com",
			"aud":   "authenticated",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		claims, err := p.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, testUserID, claims.UserID)
		assert.Equal(t, "athlete@example.com", claims.Email)
	})

	t.Run("email is optional", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), jwt.MapClaims{
			"sub": testUserID,
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		claims, err := p.ValidateToken(ctx, token)
		require.NoError(t, err)
		assert.Empty(t, claims.Email)
	})

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"empty", func(t *testing.T) string { return "" }},
		{"garbage", func(t *testing.T) string { return "not-a-jwt" }},
		{"wrong secret", func(t *testing.T) string {
			return signToken(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-123"), jwt.MapClaims{
				"sub": testUserID,
				"exp": time.Now().Add(time.Hour).Unix(),
			})
		}},
		{"expired", func(t *testing.T) string {
			return signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), jwt.MapClaims{
				"sub": testUserID,
				"exp": time.Now().Add(-time.Hour).Unix(),
			})
		}},
		{"subject not a uuid", func(t *testing.T) string {
			return signToken(t, jwt.SigningMethodHS256, []byte(testJWTSecret), jwt.MapClaims{
				"sub": "user-1",
				"exp": time.Now().Add(time.Hour).Unix(),
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ValidateToken(ctx, tt.token(t))
			require.Error(t, err)
			assert.True(t, ierr.IsUnauthorized(err))
		})
	}
}

func TestGetUserEmailWithoutClient(t *testing.T) {
	p := newTestProvider(t)
	_, err := p.GetUserEmail(context.Background(), "token")
	assert.Error(t, err)
}
