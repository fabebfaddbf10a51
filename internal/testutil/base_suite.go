package testutil

import (
	"context"
	"time"

	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/domain/plan"
	"github.com/bldrfitness/bldr/internal/domain/user"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// TestJWTSecret signs access tokens produced by AccessToken.
const TestJWTSecret = "test-jwt-secret"

// NewTestConfig returns the default configuration with test secrets set.
func NewTestConfig() *config.Configuration {
	cfg := config.GetDefaultConfig()
	cfg.Stripe.WebhookSecret = TestWebhookSecret
	cfg.Auth.Supabase.JWTSecret = TestJWTSecret
	return cfg
}

// Stores holds all in-memory repositories used by service tests
type Stores struct {
	PlanRepo         *InMemoryPlanStore
	UserRepo         *InMemoryUserStore
	SubscriptionRepo *InMemorySubscriptionStore
}

// BaseServiceTestSuite provides common setup for service tests
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	stripe *MockStripeClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	var err error
	s.logger, err = logger.NewLogger(NewTestConfig())
	s.Require().NoError(err)
}

// SetupTest is called before each test. Every test gets its own config so
// tests may change it freely.
func (s *BaseServiceTestSuite) SetupTest() {
	s.config = NewTestConfig()
	s.ctx = types.SetRequestID(context.Background(), types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST))
	s.now = time.Now().UTC()
	s.stores = Stores{
		PlanRepo:         NewInMemoryPlanStore(),
		UserRepo:         NewInMemoryUserStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
	}
	s.stripe = NewMockStripeClient()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.stripe.AssertExpectations(s.T())
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetUserContext returns the test context authenticated as userID.
func (s *BaseServiceTestSuite) GetUserContext(userID string) context.Context {
	return types.SetUserID(s.ctx, userID)
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetStripe() *MockStripeClient {
	return s.stripe
}

func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// SeedPlan stores an active plan priced at monthly and annual major units.
func (s *BaseServiceTestSuite) SeedPlan(id, name, productID string, monthly, annual string) *plan.Plan {
	p := &plan.Plan{
		ID:                     id,
		Name:                   name,
		MonthlyPrice:           decimal.RequireFromString(monthly),
		AnnualPrice:            decimal.RequireFromString(annual),
		ProviderProductID:      productID,
		ProviderMonthlyPriceID: "price_" + id + "_monthly",
		ProviderAnnualPriceID:  "price_" + id + "_annual",
		IsActive:               true,
		CreatedAt:              s.now,
		UpdatedAt:              s.now,
	}
	s.Require().NoError(s.stores.PlanRepo.Create(s.ctx, p))
	return p
}

// SeedUser stores a profile, linked to customerID when it is not empty.
func (s *BaseServiceTestSuite) SeedUser(id, email, customerID string) *user.Profile {
	p := &user.Profile{
		ID:        id,
		Email:     email,
		CreatedAt: s.now,
		UpdatedAt: s.now,
	}
	if customerID != "" {
		p.ProviderCustomerID = lo.ToPtr(customerID)
	}
	s.Require().NoError(s.stores.UserRepo.Create(s.ctx, p))
	return p
}

// AccessToken signs an HS256 token for userID with TestJWTSecret.
func AccessToken(userID, email string) string {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TestJWTSecret))
	return token
}
