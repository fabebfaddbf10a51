package api

import (
	v1 "github.com/bldrfitness/bldr/internal/api/v1"
	"github.com/bldrfitness/bldr/internal/auth"
	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/rest/middleware"
	"github.com/bldrfitness/bldr/internal/sentry"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Payment      *v1.PaymentHandler
	Coupon       *v1.CouponHandler
	Webhook      *v1.WebhookHandler
	Subscription *v1.SubscriptionHandler
	Health       *v1.HealthHandler
}

// NewRouter creates and configures a new Gin router
func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger, authProvider auth.Provider, sentrySvc *sentry.Service) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.RecoveryWithWriter(log.GetGinLogger()),
		middleware.CORSMiddleware,
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.LoggingMiddleware(log),
		middleware.ErrorHandler(log, sentrySvc),
	)

	router.GET("/health", handlers.Health.Health)

	v1Router := router.Group("/v1")

	// Stripe signs the body itself; no bearer token.
	webhooks := v1Router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	private := v1Router.Group("/")
	private.Use(middleware.AuthMiddleware(authProvider, log), middleware.SentryUserContextMiddleware)

	payments := private.Group("/payments")
	{
		payments.POST("/intent", handlers.Payment.CreatePaymentIntent)
	}

	coupons := private.Group("/coupons")
	{
		coupons.POST("/validate", handlers.Coupon.ValidateCoupon)
	}

	subscriptions := private.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("/current", handlers.Subscription.GetCurrentSubscription)
	}

	return router
}
