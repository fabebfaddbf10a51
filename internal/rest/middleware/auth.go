package middleware

import (
	"strings"

	"github.com/bldrfitness/bldr/internal/auth"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the Supabase bearer token and puts the caller's
// identity on the request context.
func AuthMiddleware(provider auth.Provider, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(types.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			_ = c.Error(ierr.NewError("missing bearer token").
				WithHint("Authorization header with a bearer token is required").
				Mark(ierr.ErrUnauthorized))
			c.Abort()
			return
		}
		token = strings.TrimSpace(token)

		ctx := c.Request.Context()
		claims, err := provider.ValidateToken(ctx, token)
		if err != nil {
			log.WithContext(ctx).Debugw("rejected access token", "error", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		ctx = types.SetUserID(ctx, claims.UserID)
		ctx = types.SetAccessToken(ctx, token)
		if claims.Email != "" {
			ctx = types.SetUserEmail(ctx, claims.Email)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
