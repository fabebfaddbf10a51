package middleware

import (
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/types"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware returns a middleware that captures errors and performance data
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

// SentryUserContextMiddleware tags the Sentry scope with the authenticated
// user. Add it after AuthMiddleware.
func SentryUserContextMiddleware(c *gin.Context) {
	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	if userID := types.GetUserID(ctx); userID != "" {
		hub.Scope().SetTag("user_id", userID)
	}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		hub.Scope().SetTag("request_id", requestID)
	}
	c.Next()
}
