package service

import (
	"github.com/bldrfitness/bldr/internal/auth"
	"github.com/bldrfitness/bldr/internal/idempotency"
	"github.com/bldrfitness/bldr/internal/testutil"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetStores().PlanRepo,
		s.GetStores().UserRepo,
		s.GetStores().SubscriptionRepo,
		s.GetStripe(),
		auth.NewSupabaseAuth(s.GetConfig(), s.GetLogger()),
		idempotency.NewGenerator(),
	)
}

const (
	testUserID    = "7f1c2f8e-4a53-4b8e-9d7b-3a2f0c9e1d11"
	otherUserID   = "00c1a7b4-9d3e-4f6a-8b2c-5e7d9f1a3b44"
	testCustomer  = "cus_test_1"
	testProductID = "prod_pro"
)
