package postgres

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	domainUser "github.com/bldrfitness/bldr/internal/domain/user"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"
)

var profileColumnNames = []string{"id", "email", "stripe_customer_id", "created_at", "updated_at"}

type UserRepositorySuite struct {
	repositorySuite
	repo domainUser.Repository
}

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

func (s *UserRepositorySuite) SetupTest() {
	s.repositorySuite.SetupTest()
	s.repo = NewUserRepository(s.client, s.log)
}

func (s *UserRepositorySuite) TestGet() {
	now := time.Now().UTC()
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(profileColumnNames).AddRow(testUserID, "ana@example.com", nil, now, now))

	p, err := s.repo.Get(s.ctx, testUserID)
	s.Require().NoError(err)
	s.Equal("ana@example.com", p.Email)
	s.False(p.HasProviderCustomer())
}

func (s *UserRepositorySuite) TestGetMissingIsNotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles WHERE id = $1")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(profileColumnNames))

	_, err := s.repo.Get(s.ctx, testUserID)
	s.True(ierr.IsNotFound(err))
}

func (s *UserRepositorySuite) TestGetByProviderCustomerID() {
	now := time.Now().UTC()
	s.mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles WHERE stripe_customer_id = $1")).
		WithArgs("cus_1").
		WillReturnRows(sqlmock.NewRows(profileColumnNames).AddRow(testUserID, "", "cus_1", now, now))

	p, err := s.repo.GetByProviderCustomerID(s.ctx, "cus_1")
	s.Require().NoError(err)
	s.Equal(testUserID, p.ID)
	s.Require().True(p.HasProviderCustomer())
	s.Equal("cus_1", *p.ProviderCustomerID)
}

func (s *UserRepositorySuite) TestLinkProviderCustomer() {
	s.Run("stores the customer", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_profiles")).
			WithArgs(testUserID, "ana@example.com", "cus_new").
			WillReturnRows(sqlmock.NewRows([]string{"stripe_customer_id"}).AddRow("cus_new"))

		linked, err := s.repo.LinkProviderCustomer(s.ctx, testUserID, "ana@example.com", "cus_new")
		s.Require().NoError(err)
		s.Equal("cus_new", linked)
	})

	s.Run("keeps the first linked customer", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_profiles")).
			WithArgs(testUserID, "ana@example.com", "cus_late").
			WillReturnRows(sqlmock.NewRows([]string{"stripe_customer_id"}).AddRow("cus_first"))

		linked, err := s.repo.LinkProviderCustomer(s.ctx, testUserID, "ana@example.com", "cus_late")
		s.Require().NoError(err)
		s.Equal("cus_first", linked)
	})

	s.Run("customer owned by another user", func() {
		s.mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_profiles")).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := s.repo.LinkProviderCustomer(s.ctx, testUserID, "ana@example.com", "cus_taken")
		s.True(ierr.IsAlreadyExists(err))
	})
}
