package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"strings"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bldrfitness/bldr/internal/config"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/postgres"
	"github.com/bldrfitness/bldr/internal/sentry"
	"github.com/stretchr/testify/suite"
)

// repositorySuite runs repositories against the real postgres client over a
// sqlmock connection. Every test must consume all of its expectations.
type repositorySuite struct {
	suite.Suite
	ctx    context.Context
	db     *sql.DB
	mock   sqlmock.Sqlmock
	client postgres.IClient
	log    *logger.Logger
	cfg    *config.Configuration
}

func (s *repositorySuite) SetupTest() {
	var err error
	s.ctx = context.Background()
	s.cfg = config.GetDefaultConfig()
	s.log, err = logger.NewLogger(s.cfg)
	s.Require().NoError(err)

	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	s.client = postgres.NewClient(s.db, s.log, sentry.NewSentryService(s.cfg, s.log))
}

func (s *repositorySuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

// expectSubscriptionLock expects the advisory lock Upsert takes for one
// provider subscription id.
func (s *repositorySuite) expectSubscriptionLock(providerSubscriptionID string) {
	s.mock.ExpectExec(regexp.QuoteMeta("SET LOCAL lock_timeout = 30000")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("subscription:stripe_subscription_id=" + providerSubscriptionID).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

// newIDArg matches a generated local subscription id (sub_ plus a ULID) and
// records it.
type newIDArg struct {
	into *string
}

func (a newIDArg) Match(v driver.Value) bool {
	id, ok := v.(string)
	if !ok || !strings.HasPrefix(id, "sub_") || len(id) != len("sub_")+26 {
		return false
	}
	*a.into = id
	return true
}
