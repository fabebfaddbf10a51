package service

import (
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

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentService
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPaymentService(params, NewDiscountService(params))
	s.SeedPlan("plan_pro", "Pro", testProductID, "99.90", "999.00")
	s.SeedPlan("plan_jp", "Tokyo", "prod_jp", "1000.50", "10000")
}

func (s *PaymentServiceSuite) request() dto.CalculatePaymentRequest {
	return dto.CalculatePaymentRequest{
		PlanID:        "plan_pro",
		BillingPeriod: types.BillingPeriodMonthly,
		UserID:        testUserID,
	}
}

func (s *PaymentServiceSuite) expectPaymentIntent(match func(*stripeint.CreatePaymentIntentRequest) bool) *mock.Call {
	return s.GetStripe().On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(match)).
		Return(&stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret_abc"}, nil)
}

func (s *PaymentServiceSuite) TestNoCoupon() {
	s.expectPaymentIntent(func(r *stripeint.CreatePaymentIntentRequest) bool {
		return r.Amount == 9990 && r.Currency == "brl"
	}).Once()

	resp, err := s.service.CalculatePayment(s.GetUserContext(testUserID), s.request())
	s.Require().NoError(err)
	s.Equal(int64(9990), resp.AmountOriginalMinorUnits)
	s.Equal(int64(0), resp.DiscountMinorUnits)
	s.Equal(int64(9990), resp.AmountFinalMinorUnits)
	s.False(resp.PaymentSkipped)
	s.Nil(resp.DiscountID)
	s.Require().NotNil(resp.ClientSecret)
	s.Equal("pi_123_secret_abc", *resp.ClientSecret)
	s.Require().NotNil(resp.PaymentIntentID)
	s.Equal("pi_123", *resp.PaymentIntentID)
}

func (s *PaymentServiceSuite) TestPaymentIntentMetadata() {
	s.GetStripe().On("FindPromotionCode", mock.Anything, "TEN").
		Return(testutil.PercentPromotionCode("promo_10", "TEN", 10), nil).Once()

	var captured *stripeint.CreatePaymentIntentRequest
	s.expectPaymentIntent(func(r *stripeint.CreatePaymentIntentRequest) bool { return true }).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*stripeint.CreatePaymentIntentRequest)
		}).Once()

	req := s.request()
	req.BillingPeriod = types.BillingPeriodAnnual
	req.CouponCode = "ten"

	resp, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
	s.Require().NoError(err)
	s.Equal(int64(99900), resp.AmountOriginalMinorUnits)
	s.Equal(int64(9990), resp.DiscountMinorUnits)
	s.Equal(int64(89910), resp.AmountFinalMinorUnits)
	s.Require().NotNil(resp.DiscountID)
	s.Equal("promo_10", *resp.DiscountID)

	s.Require().NotNil(captured)
	s.Equal(int64(89910), captured.Amount)
	s.Equal("BLDR Fitness - Pro (annual)", captured.Description)
	s.Equal(map[string]string{
		"user_id":                     testUserID,
		"plan_id":                     "plan_pro",
		"plan_name":                   "Pro",
		"billing_period":              "annual",
		"promotion_code_id":           "promo_10",
		"discount_minor_units":        "9990",
		"amount_original_minor_units": "99900",
	}, captured.Metadata)
	s.NotEmpty(captured.IdempotencyKey)
}

func (s *PaymentServiceSuite) TestFullDiscountSkipsPayment() {
	s.GetStripe().On("FindPromotionCode", mock.Anything, "FREE").
		Return(testutil.PercentPromotionCode("promo_free", "FREE", 100), nil).Once()

	req := s.request()
	req.CouponCode = "FREE"

	resp, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
	s.Require().NoError(err)
	s.Equal(int64(9990), resp.AmountOriginalMinorUnits)
	s.Equal(int64(9990), resp.DiscountMinorUnits)
	s.Equal(int64(0), resp.AmountFinalMinorUnits)
	s.True(resp.PaymentSkipped)
	s.Nil(resp.ClientSecret)
	s.Nil(resp.PaymentIntentID)
	s.GetStripe().AssertNotCalled(s.T(), "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func (s *PaymentServiceSuite) TestFixedDiscountLargerThanPrice() {
	s.GetStripe().On("FindPromotionCode", mock.Anything, "BIG").
		Return(testutil.AmountPromotionCode("promo_big", "BIG", 20000, "brl"), nil).Once()

	req := s.request()
	req.CouponCode = "BIG"

	resp, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
	s.Require().NoError(err)
	s.Equal(int64(0), resp.AmountFinalMinorUnits)
	s.True(resp.PaymentSkipped)
}

func (s *PaymentServiceSuite) TestZeroDecimalCurrency() {
	s.expectPaymentIntent(func(r *stripeint.CreatePaymentIntentRequest) bool {
		return r.Amount == 1001 && r.Currency == "jpy"
	}).Once()

	req := s.request()
	req.PlanID = "plan_jp"
	req.Currency = "JPY"

	resp, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
	s.Require().NoError(err)
	s.Equal(int64(1001), resp.AmountOriginalMinorUnits)
}

func (s *PaymentServiceSuite) TestErrors() {
	s.Run("unknown plan", func() {
		req := s.request()
		req.PlanID = "plan_missing"
		_, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
		s.Require().Error(err)
		s.True(ierr.IsNotFound(err))
	})

	s.Run("invalid billing period", func() {
		req := s.request()
		req.BillingPeriod = "weekly"
		_, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
		s.Require().Error(err)
		s.True(ierr.IsValidation(err))
	})

	s.Run("invalid user id", func() {
		req := s.request()
		req.UserID = "not-a-uuid"
		_, err := s.service.CalculatePayment(s.GetContext(), req)
		s.Require().Error(err)
		s.True(ierr.IsValidation(err))
	})

	s.Run("acting for another user", func() {
		_, err := s.service.CalculatePayment(s.GetUserContext(otherUserID), s.request())
		s.Require().Error(err)
		s.True(ierr.IsPermissionDenied(err))
	})

	s.Run("unknown coupon", func() {
		s.GetStripe().On("FindPromotionCode", mock.Anything, "GHOST").Return(nil, nil).Once()
		req := s.request()
		req.CouponCode = "ghost"
		_, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
		s.Require().Error(err)
		s.True(ierr.IsNotFound(err))
	})

	s.Run("coupon no longer valid", func() {
		promo := testutil.PercentPromotionCode("promo_used", "USED", 10)
		promo.Coupon.Valid = false
		s.GetStripe().On("FindPromotionCode", mock.Anything, "USED").Return(promo, nil).Once()
		req := s.request()
		req.CouponCode = "USED"
		_, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
		s.Require().Error(err)
		s.True(ierr.IsValidation(err))
	})

	s.Run("coupon currency mismatch", func() {
		s.GetStripe().On("FindPromotionCode", mock.Anything, "USD5").
			Return(testutil.AmountPromotionCode("promo_usd", "USD5", 500, "usd"), nil).Once()
		req := s.request()
		req.CouponCode = "USD5"
		_, err := s.service.CalculatePayment(s.GetUserContext(testUserID), req)
		s.Require().Error(err)
		s.True(ierr.IsConflict(err))
		s.Equal(400, ierr.HTTPStatusFromErr(err))
	})

	s.GetStripe().AssertNotCalled(s.T(), "CreatePaymentIntent", mock.Anything, mock.Anything)
}

func (s *PaymentServiceSuite) TestProviderFailure() {
	s.GetStripe().On("CreatePaymentIntent", mock.Anything, mock.Anything).
		Return(nil, ierr.NewError("card network down").Mark(ierr.ErrUpstream)).Once()

	resp, err := s.service.CalculatePayment(s.GetUserContext(testUserID), s.request())
	s.Nil(resp)
	s.Require().Error(err)
	s.True(ierr.IsUpstream(err))
	s.Equal(500, ierr.HTTPStatusFromErr(err))
}

func (s *PaymentServiceSuite) TestRetryReusesIdempotencyKey() {
	// No time bucket, so the two calls cannot straddle a window boundary.
	s.GetConfig().Billing.IdempotencyWindow = 0

	var keys []string
	s.expectPaymentIntent(func(r *stripeint.CreatePaymentIntentRequest) bool { return true }).
		Run(func(args mock.Arguments) {
			keys = append(keys, args.Get(1).(*stripeint.CreatePaymentIntentRequest).IdempotencyKey)
		}).Twice()

	for i := 0; i < 2; i++ {
		_, err := s.service.CalculatePayment(s.GetUserContext(testUserID), s.request())
		s.Require().NoError(err)
	}

	s.Require().Len(keys, 2)
	s.Equal(keys[0], keys[1])
}
