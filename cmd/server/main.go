package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/bldrfitness/bldr/internal/api"
	v1 "github.com/bldrfitness/bldr/internal/api/v1"
	"github.com/bldrfitness/bldr/internal/auth"
	"github.com/bldrfitness/bldr/internal/cache"
	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/idempotency"
	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/postgres"
	pgrepo "github.com/bldrfitness/bldr/internal/repository/postgres"
	"github.com/bldrfitness/bldr/internal/sentry"
	"github.com/bldrfitness/bldr/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			// core
			config.NewConfig,
			logger.NewLogger,
			sentry.NewSentryService,

			// storage
			postgres.NewDB,
			postgres.NewClient,
			cache.Initialize,
			pgrepo.NewPlanRepository,
			pgrepo.NewUserRepository,
			pgrepo.NewSubscriptionRepository,

			// integrations
			stripeint.NewClient,
			auth.NewSupabaseAuth,
			idempotency.NewGenerator,

			// services
			service.NewServiceParams,
			service.NewDiscountService,
			service.NewPaymentService,
			service.NewSubscriptionReconciler,
			service.NewWebhookService,
			service.NewCheckoutService,
			service.NewSubscriptionService,

			// handlers
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			startProfiling,
			runMigrations,
			startServer,
		),
	)

	app.Run()
}

func provideHandlers(
	payments service.PaymentService,
	discounts service.DiscountService,
	webhooks service.WebhookService,
	checkout service.CheckoutService,
	subscriptions service.SubscriptionService,
	db postgres.IClient,
	sentrySvc *sentry.Service,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Payment:      v1.NewPaymentHandler(payments, log),
		Coupon:       v1.NewCouponHandler(discounts, log),
		Webhook:      v1.NewWebhookHandler(webhooks, sentrySvc, log),
		Subscription: v1.NewSubscriptionHandler(checkout, subscriptions, log),
		Health:       v1.NewHealthHandler(db, log),
	}
}

func startProfiling(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Profiling.Enabled {
		return nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "bldr.api",
		ServerAddress:   cfg.Profiling.ServerAddress,
		Tags:            map[string]string{"mode": string(cfg.Deployment.Mode)},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return err
	}

	log.Infow("continuous profiling enabled", "server_address", cfg.Profiling.ServerAddress)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return profiler.Stop()
		},
	})
	return nil
}

func runMigrations(lc fx.Lifecycle, cfg *config.Configuration, db *sql.DB, log *logger.Logger) {
	if !cfg.Postgres.AutoMigrate {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return postgres.Migrate(ctx, db, log)
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	db *sql.DB,
	sentrySvc *sentry.Service,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting http server", "address", cfg.Server.Address, "mode", cfg.Deployment.Mode)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("http server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down http server")
			err := srv.Shutdown(ctx)
			if closeErr := db.Close(); closeErr != nil {
				log.Errorw("failed to close database", "error", closeErr)
			}
			sentrySvc.Flush(2 * time.Second)
			_ = log.Sync()
			return err
		},
	})
}
