package service

import (
	"github.com/bldrfitness/bldr/internal/auth"
	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/domain/plan"
	"github.com/bldrfitness/bldr/internal/domain/subscription"
	"github.com/bldrfitness/bldr/internal/domain/user"
	"github.com/bldrfitness/bldr/internal/idempotency"
	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
	"github.com/bldrfitness/bldr/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	PlanRepo         plan.Repository
	UserRepo         user.Repository
	SubscriptionRepo subscription.Repository

	// Clients
	StripeClient stripeint.Client
	AuthProvider auth.Provider

	IdempotencyGenerator *idempotency.Generator
}

// NewServiceParams creates a new ServiceParams instance
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	planRepo plan.Repository,
	userRepo user.Repository,
	subscriptionRepo subscription.Repository,
	stripeClient stripeint.Client,
	authProvider auth.Provider,
	idempotencyGenerator *idempotency.Generator,
) ServiceParams {
	return ServiceParams{
		Logger:               logger,
		Config:               config,
		PlanRepo:             planRepo,
		UserRepo:             userRepo,
		SubscriptionRepo:     subscriptionRepo,
		StripeClient:         stripeClient,
		AuthProvider:         authProvider,
		IdempotencyGenerator: idempotencyGenerator,
	}
}
