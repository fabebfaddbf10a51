package postgres

import (
	"context"
	"database/sql"
	"errors"

	domainUser "github.com/bldrfitness/bldr/internal/domain/user"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/postgres"
)

const profileColumns = `id, COALESCE(email, ''), stripe_customer_id, created_at, updated_at`

type userRepository struct {
	client postgres.IClient
	log    *logger.Logger
}

func NewUserRepository(client postgres.IClient, log *logger.Logger) domainUser.Repository {
	return &userRepository{client: client, log: log}
}

func (r *userRepository) Get(ctx context.Context, id string) (*domainUser.Profile, error) {
	span := StartRepositorySpan(ctx, "user_profile", "get", map[string]interface{}{
		"user_id": id,
	})
	defer FinishSpan(span)

	row := r.client.Reader(ctx).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		SetSpanError(span, err)
		return nil, profileError(err, map[string]interface{}{"user_id": id})
	}
	SetSpanSuccess(span)
	return p, nil
}

func (r *userRepository) GetByProviderCustomerID(ctx context.Context, customerID string) (*domainUser.Profile, error) {
	span := StartRepositorySpan(ctx, "user_profile", "get_by_provider_customer_id", map[string]interface{}{
		"stripe_customer_id": customerID,
	})
	defer FinishSpan(span)

	row := r.client.Reader(ctx).QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM user_profiles WHERE stripe_customer_id = $1`, customerID)
	p, err := scanProfile(row)
	if err != nil {
		SetSpanError(span, err)
		return nil, profileError(err, map[string]interface{}{"stripe_customer_id": customerID})
	}
	SetSpanSuccess(span)
	return p, nil
}

func (r *userRepository) LinkProviderCustomer(ctx context.Context, userID, email, customerID string) (string, error) {
	span := StartRepositorySpan(ctx, "user_profile", "link_provider_customer", map[string]interface{}{
		"user_id":            userID,
		"stripe_customer_id": customerID,
	})
	defer FinishSpan(span)

	// The first linked customer wins; later calls read it back.
	var linked string
	err := r.client.Writer(ctx).QueryRowContext(ctx, `
		INSERT INTO user_profiles (id, email, stripe_customer_id)
		VALUES ($1, NULLIF($2, ''), $3)
		ON CONFLICT (id) DO UPDATE SET
			stripe_customer_id = COALESCE(user_profiles.stripe_customer_id, EXCLUDED.stripe_customer_id),
			email = COALESCE(user_profiles.email, EXCLUDED.email),
			updated_at = now()
		RETURNING stripe_customer_id`,
		userID, email, customerID,
	).Scan(&linked)
	if err != nil {
		SetSpanError(span, err)
		if postgres.IsUniqueViolation(err) {
			return "", ierr.WithError(err).
				WithHint("Customer is already linked to another user").
				WithReportableDetails(map[string]interface{}{"stripe_customer_id": customerID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return "", ierr.WithError(err).
			WithHint("Failed to link customer").
			Mark(ierr.ErrDatabase)
	}

	if linked != customerID {
		r.log.Infow("user already linked to a different customer",
			"user_id", userID,
			"linked_customer_id", linked,
			"discarded_customer_id", customerID,
		)
	}

	SetSpanSuccess(span)
	return linked, nil
}

func scanProfile(row rowScanner) (*domainUser.Profile, error) {
	var p domainUser.Profile
	var customerID sql.NullString
	if err := row.Scan(&p.ID, &p.Email, &customerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if customerID.Valid {
		p.ProviderCustomerID = &customerID.String
	}
	return &p, nil
}

func profileError(err error, details map[string]interface{}) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHint("User not found").
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHint("Failed to get user").
		Mark(ierr.ErrDatabase)
}
