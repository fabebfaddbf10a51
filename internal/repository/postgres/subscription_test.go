package postgres

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	domainSubscription "github.com/bldrfitness/bldr/internal/domain/subscription"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/types"
	"github.com/lib/pq"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

const (
	selectByProviderID = "FROM user_subscriptions WHERE stripe_subscription_id = $1"
	insertSubscription = "INSERT INTO user_subscriptions"
	testUserID         = "7f1c2f8e-4a53-4b8e-9d7b-3a2f0c9e1d11"
)

var subscriptionColumnNames = []string{
	"id", "user_id", "plan_id", "status", "stripe_subscription_id", "stripe_customer_id",
	"billing_period", "current_period_start", "current_period_end", "trial_end", "canceled_at",
	"last_event_id", "last_event_at", "created_at", "updated_at",
}

type SubscriptionRepositorySuite struct {
	repositorySuite
	repo domainSubscription.Repository
	t0   time.Time
}

func TestSubscriptionRepository(t *testing.T) {
	suite.Run(t, new(SubscriptionRepositorySuite))
}

func (s *SubscriptionRepositorySuite) SetupTest() {
	s.repositorySuite.SetupTest()
	s.repo = NewSubscriptionRepository(s.client, s.log)
	s.t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// record is what the reconciler hands to Upsert: no local id yet.
func (s *SubscriptionRepositorySuite) record(providerID, eventID string, at time.Time) *domainSubscription.Subscription {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	return &domainSubscription.Subscription{
		UserID:                 testUserID,
		PlanID:                 "plan_pro",
		Status:                 types.SubscriptionStatusActive,
		ProviderSubscriptionID: providerID,
		ProviderCustomerID:     "cus_1",
		BillingPeriod:          lo.ToPtr(types.BillingPeriodMonthly),
		CurrentPeriodStart:     &start,
		CurrentPeriodEnd:       &end,
		LastEventID:            eventID,
		LastEventAt:            at,
	}
}

func storedRow(id string, sub *domainSubscription.Subscription, createdAt time.Time) *sqlmock.Rows {
	var period driver.Value
	if sub.BillingPeriod != nil {
		period = string(*sub.BillingPeriod)
	}
	return sqlmock.NewRows(subscriptionColumnNames).AddRow(
		id,
		sub.UserID,
		sub.PlanID,
		string(sub.Status),
		sub.ProviderSubscriptionID,
		sub.ProviderCustomerID,
		period,
		timeValue(sub.CurrentPeriodStart),
		timeValue(sub.CurrentPeriodEnd),
		timeValue(sub.TrialEnd),
		timeValue(sub.CanceledAt),
		sub.LastEventID,
		sub.LastEventAt,
		createdAt,
		createdAt,
	)
}

func timeValue(t *time.Time) driver.Value {
	if t == nil {
		return nil
	}
	return *t
}

func (s *SubscriptionRepositorySuite) expectMissing(providerID string) {
	s.mock.ExpectQuery(regexp.QuoteMeta(selectByProviderID)).
		WithArgs(providerID).
		WillReturnRows(sqlmock.NewRows(subscriptionColumnNames))
}

func (s *SubscriptionRepositorySuite) TestInsertNewRecord() {
	sub := s.record("sub_A", "evt_1", s.t0)
	var insertedID string

	s.mock.ExpectBegin()
	s.expectSubscriptionLock("sub_A")
	s.expectMissing("sub_A")
	s.mock.ExpectQuery(regexp.QuoteMeta(insertSubscription)).
		WithArgs(
			newIDArg{into: &insertedID},
			testUserID,
			"plan_pro",
			"active",
			"sub_A",
			"cus_1",
			"monthly",
			*sub.CurrentPeriodStart,
			*sub.CurrentPeriodEnd,
			nil,
			nil,
			"evt_1",
			s.t0,
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("sub_01hzx8a4q3t2v9w6y5r7k1m0nd", s.t0, s.t0))
	s.mock.ExpectCommit()

	outcome, err := s.repo.Upsert(s.ctx, sub, domainSubscription.UpsertOptions{RejectStale: true})
	s.Require().NoError(err)
	s.Equal(types.ReconcileOutcomeApplied, outcome)
	s.NotEmpty(insertedID)
	s.Equal("sub_01hzx8a4q3t2v9w6y5r7k1m0nd", sub.ID, "id is read back from RETURNING")
}

func (s *SubscriptionRepositorySuite) TestDistinctSubscriptionsGetDistinctIDs() {
	ids := make([]string, 2)
	for i, providerID := range []string{"sub_A", "sub_B"} {
		s.mock.ExpectBegin()
		s.expectSubscriptionLock(providerID)
		s.expectMissing(providerID)
		args := []driver.Value{newIDArg{into: &ids[i]}}
		for j := 0; j < 13; j++ {
			args = append(args, sqlmock.AnyArg())
		}
		s.mock.ExpectQuery(regexp.QuoteMeta(insertSubscription)).
			WithArgs(args...).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("sub_returned", s.t0, s.t0))
		s.mock.ExpectCommit()
	}

	for _, providerID := range []string{"sub_A", "sub_B"} {
		_, err := s.repo.Upsert(s.ctx, s.record(providerID, "evt_"+providerID, s.t0), domainSubscription.UpsertOptions{})
		s.Require().NoError(err)
	}

	s.NotEmpty(ids[0])
	s.NotEmpty(ids[1])
	s.NotEqual(ids[0], ids[1])
}

func (s *SubscriptionRepositorySuite) TestUpdateKeepsLocalIDAndCreatedAt() {
	createdAt := s.t0.Add(-24 * time.Hour)
	stored := s.record("sub_A", "evt_1", s.t0)
	incoming := s.record("sub_A", "evt_2", s.t0.Add(time.Minute))
	incoming.Status = types.SubscriptionStatusPastDue

	s.mock.ExpectBegin()
	s.expectSubscriptionLock("sub_A")
	s.mock.ExpectQuery(regexp.QuoteMeta(selectByProviderID)).
		WithArgs("sub_A").
		WillReturnRows(storedRow("sub_local_1", stored, createdAt))
	s.mock.ExpectQuery(regexp.QuoteMeta(insertSubscription)).
		WithArgs(
			"sub_local_1",
			testUserID,
			"plan_pro",
			"past_due",
			"sub_A",
			"cus_1",
			"monthly",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			nil,
			nil,
			"evt_2",
			s.t0.Add(time.Minute),
			sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("sub_local_1", createdAt, s.t0.Add(time.Minute)))
	s.mock.ExpectCommit()

	outcome, err := s.repo.Upsert(s.ctx, incoming, domainSubscription.UpsertOptions{RejectStale: true})
	s.Require().NoError(err)
	s.Equal(types.ReconcileOutcomeApplied, outcome)
	s.Equal("sub_local_1", incoming.ID)
	s.True(incoming.CreatedAt.Equal(createdAt))

	// created_at is never part of the conflict update.
	s.NotContains(upsertSubscriptionQuery, "created_at = EXCLUDED")
}

func (s *SubscriptionRepositorySuite) TestIdenticalReplayWritesNothing() {
	stored := s.record("sub_A", "evt_1", s.t0)

	s.mock.ExpectBegin()
	s.expectSubscriptionLock("sub_A")
	s.mock.ExpectQuery(regexp.QuoteMeta(selectByProviderID)).
		WithArgs("sub_A").
		WillReturnRows(storedRow("sub_local_1", stored, s.t0))
	s.mock.ExpectCommit()

	outcome, err := s.repo.Upsert(s.ctx, s.record("sub_A", "evt_1", s.t0), domainSubscription.UpsertOptions{RejectStale: true})
	s.Require().NoError(err)
	s.Equal(types.ReconcileOutcomeUnchanged, outcome)
}

func (s *SubscriptionRepositorySuite) TestStaleEventWritesNothing() {
	stored := s.record("sub_A", "evt_2", s.t0.Add(time.Minute))

	s.mock.ExpectBegin()
	s.expectSubscriptionLock("sub_A")
	s.mock.ExpectQuery(regexp.QuoteMeta(selectByProviderID)).
		WithArgs("sub_A").
		WillReturnRows(storedRow("sub_local_1", stored, s.t0))
	s.mock.ExpectCommit()

	outcome, err := s.repo.Upsert(s.ctx, s.record("sub_A", "evt_1", s.t0), domainSubscription.UpsertOptions{RejectStale: true})
	s.Require().NoError(err)
	s.Equal(types.ReconcileOutcomeStale, outcome)
}

func (s *SubscriptionRepositorySuite) TestUniqueViolationIsDatabaseError() {
	s.mock.ExpectBegin()
	s.expectSubscriptionLock("sub_A")
	s.expectMissing("sub_A")
	s.mock.ExpectQuery(regexp.QuoteMeta(insertSubscription)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	s.mock.ExpectRollback()

	_, err := s.repo.Upsert(s.ctx, s.record("sub_A", "evt_1", s.t0), domainSubscription.UpsertOptions{})
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))
}

func (s *SubscriptionRepositorySuite) TestLockTimeoutIsDatabaseError() {
	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec(regexp.QuoteMeta("pg_advisory_xact_lock")).
		WillReturnError(&pq.Error{Code: "55P03", Message: "canceling statement due to lock timeout"})
	s.mock.ExpectRollback()

	_, err := s.repo.Upsert(s.ctx, s.record("sub_A", "evt_1", s.t0), domainSubscription.UpsertOptions{})
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))
}

func (s *SubscriptionRepositorySuite) TestGetByProviderSubscriptionID() {
	stored := s.record("sub_A", "evt_1", s.t0)
	stored.BillingPeriod = nil

	s.mock.ExpectQuery(regexp.QuoteMeta(selectByProviderID)).
		WithArgs("sub_A").
		WillReturnRows(storedRow("sub_local_1", stored, s.t0))
	s.mock.ExpectQuery(regexp.QuoteMeta(selectByProviderID)).
		WithArgs("sub_missing").
		WillReturnRows(sqlmock.NewRows(subscriptionColumnNames))

	sub, err := s.repo.GetByProviderSubscriptionID(s.ctx, "sub_A")
	s.Require().NoError(err)
	s.Equal("sub_local_1", sub.ID)
	s.Nil(sub.BillingPeriod)
	s.Nil(sub.CanceledAt)
	s.True(sub.LastEventAt.Equal(s.t0))

	_, err = s.repo.GetByProviderSubscriptionID(s.ctx, "sub_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *SubscriptionRepositorySuite) TestGetLatestForUser() {
	stored := s.record("sub_A", "evt_1", s.t0)

	s.mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 ORDER BY updated_at DESC LIMIT 1")).
		WithArgs(testUserID).
		WillReturnRows(storedRow("sub_local_1", stored, s.t0))

	sub, err := s.repo.GetLatestForUser(s.ctx, testUserID)
	s.Require().NoError(err)
	s.Equal("sub_A", sub.ProviderSubscriptionID)
	s.Equal(types.SubscriptionStatusActive, sub.Status)
}
