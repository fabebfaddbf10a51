package service

import (
	"context"
	"testing"

	"github.com/bldrfitness/bldr/internal/api/dto"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	stripeint "github.com/bldrfitness/bldr/internal/integration/stripe"
	"github.com/bldrfitness/bldr/internal/testutil"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
)

type CheckoutServiceSuite struct {
	testutil.BaseServiceTestSuite
	service      CheckoutService
	subscription SubscriptionService
	reconciler   SubscriptionReconciler
}

func TestCheckoutService(t *testing.T) {
	suite.Run(t, new(CheckoutServiceSuite))
}

func (s *CheckoutServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewCheckoutService(params, NewDiscountService(params))
	s.subscription = NewSubscriptionService(params)
	s.reconciler = NewSubscriptionReconciler(params)
	s.SeedPlan("plan_pro", "Pro", testProductID, "99.90", "999.00")
}

func (s *CheckoutServiceSuite) userContext() context.Context {
	return types.SetUserEmail(s.GetUserContext(testUserID), "ana@example.com")
}

func (s *CheckoutServiceSuite) createdSubscription() *stripe.Subscription {
	return &stripe.Subscription{
		ID:     "sub_new",
		Status: stripe.SubscriptionStatusIncomplete,
		LatestInvoice: &stripe.Invoice{
			ID: "in_1",
			ConfirmationSecret: &stripe.InvoiceConfirmationSecret{
				ClientSecret: "pi_1_secret_xyz",
				Type:         "payment_intent",
			},
		},
	}
}

func (s *CheckoutServiceSuite) TestCreatesCustomerOnFirstCheckout() {
	s.GetStripe().On("CreateCustomer", mock.Anything, mock.MatchedBy(func(r *stripeint.CreateCustomerRequest) bool {
		return r.Email == "ana@example.com" && r.Metadata["supabase_id"] == testUserID && r.IdempotencyKey != ""
	})).Return(&stripe.Customer{ID: "cus_new"}, nil).Once()

	s.GetStripe().On("CreateSubscription", mock.Anything, mock.MatchedBy(func(r *stripeint.CreateSubscriptionRequest) bool {
		return r.CustomerID == "cus_new" && r.PriceID == "price_plan_pro_annual" && r.PromotionCodeID == ""
	})).Return(s.createdSubscription(), nil).Once()

	resp, err := s.service.CreateSubscription(s.userContext(), dto.CreateSubscriptionRequest{
		PlanID:        "plan_pro",
		BillingPeriod: types.BillingPeriodAnnual,
	})
	s.Require().NoError(err)
	s.Equal("sub_new", resp.SubscriptionID)
	s.Require().NotNil(resp.ClientSecret)
	s.Equal("pi_1_secret_xyz", *resp.ClientSecret)

	profile, err := s.GetStores().UserRepo.Get(s.GetContext(), testUserID)
	s.Require().NoError(err)
	s.Require().True(profile.HasProviderCustomer())
	s.Equal("cus_new", *profile.ProviderCustomerID)

	// The checkout itself never writes a subscription record.
	s.Equal(0, s.GetStores().SubscriptionRepo.Writes())
}

func (s *CheckoutServiceSuite) TestReusesLinkedCustomer() {
	s.SeedUser(testUserID, "ana@example.com", testCustomer)
	s.GetStripe().On("FindPromotionCode", mock.Anything, "TEN").
		Return(testutil.PercentPromotionCode("promo_10", "TEN", 10), nil).Once()
	s.GetStripe().On("CreateSubscription", mock.Anything, mock.MatchedBy(func(r *stripeint.CreateSubscriptionRequest) bool {
		return r.CustomerID == testCustomer && r.PromotionCodeID == "promo_10" && r.PriceID == "price_plan_pro_monthly"
	})).Return(s.createdSubscription(), nil).Once()

	_, err := s.service.CreateSubscription(s.userContext(), dto.CreateSubscriptionRequest{
		PlanID:        "plan_pro",
		BillingPeriod: types.BillingPeriodMonthly,
		CouponCode:    "ten",
	})
	s.Require().NoError(err)
	s.GetStripe().AssertNotCalled(s.T(), "CreateCustomer", mock.Anything, mock.Anything)
}

func (s *CheckoutServiceSuite) TestErrors() {
	s.Run("unauthenticated", func() {
		_, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
			PlanID:        "plan_pro",
			BillingPeriod: types.BillingPeriodMonthly,
		})
		s.True(ierr.IsUnauthorized(err))
	})

	s.Run("unknown plan", func() {
		_, err := s.service.CreateSubscription(s.userContext(), dto.CreateSubscriptionRequest{
			PlanID:        "plan_missing",
			BillingPeriod: types.BillingPeriodMonthly,
		})
		s.True(ierr.IsNotFound(err))
	})

	s.Run("unknown coupon", func() {
		s.GetStripe().On("FindPromotionCode", mock.Anything, "GHOST").Return(nil, nil).Once()
		_, err := s.service.CreateSubscription(s.userContext(), dto.CreateSubscriptionRequest{
			PlanID:        "plan_pro",
			BillingPeriod: types.BillingPeriodMonthly,
			CouponCode:    "ghost",
		})
		s.True(ierr.IsNotFound(err))
	})

	s.Run("invalid billing period", func() {
		_, err := s.service.CreateSubscription(s.userContext(), dto.CreateSubscriptionRequest{
			PlanID:        "plan_pro",
			BillingPeriod: "weekly",
		})
		s.True(ierr.IsValidation(err))
	})

	s.GetStripe().AssertNotCalled(s.T(), "CreateSubscription", mock.Anything, mock.Anything)
}

func (s *CheckoutServiceSuite) TestCurrentSubscription() {
	s.SeedUser(testUserID, "ana@example.com", testCustomer)

	_, err := s.subscription.GetCurrent(s.userContext())
	s.Require().Error(err)
	s.True(ierr.IsNotFound(err))

	evt := testutil.SubscriptionEvent{
		EventID:        "evt_1",
		Type:           "customer.subscription.created",
		Created:        s.GetNow(),
		SubscriptionID: "sub_new",
		CustomerID:     testCustomer,
		ProductID:      testProductID,
		Status:         "active",
		Interval:       "month",
		PeriodStart:    s.GetNow(),
		PeriodEnd:      s.GetNow().AddDate(0, 1, 0),
	}
	payload, sig := testutil.SignedWebhookPayload(evt.Payload())
	_, err = NewWebhookService(newTestServiceParams(&s.BaseServiceTestSuite), s.reconciler).
		HandleStripeWebhook(s.GetContext(), payload, sig)
	s.Require().NoError(err)

	resp, err := s.subscription.GetCurrent(s.userContext())
	s.Require().NoError(err)
	s.Equal("sub_new", resp.ProviderSubscriptionID)
	s.Equal(types.SubscriptionStatusActive, resp.Status)
	s.Equal("plan_pro", resp.PlanID)
}
