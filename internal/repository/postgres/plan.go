package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bldrfitness/bldr/internal/cache"
	"github.com/bldrfitness/bldr/internal/config"
	domainPlan "github.com/bldrfitness/bldr/internal/domain/plan"
	ierr "github.com/bldrfitness/bldr/internal/errors"
	"github.com/bldrfitness/bldr/internal/logger"
	"github.com/bldrfitness/bldr/internal/postgres"
)

const planColumns = `id, name, monthly_price, annual_price, stripe_product_id,
	COALESCE(stripe_monthly_price_id, ''), COALESCE(stripe_annual_price_id, ''),
	is_active, created_at, updated_at`

type planRepository struct {
	client postgres.IClient
	log    *logger.Logger
	cache  cache.Cache
	ttl    time.Duration
}

func NewPlanRepository(client postgres.IClient, log *logger.Logger, c cache.Cache, cfg *config.Configuration) domainPlan.Repository {
	return &planRepository{
		client: client,
		log:    log,
		cache:  c,
		ttl:    cfg.Cache.PlanTTL,
	}
}

func (r *planRepository) GetActive(ctx context.Context, id string) (*domainPlan.Plan, error) {
	span := StartRepositorySpan(ctx, "plan", "get_active", map[string]interface{}{
		"plan_id": id,
	})
	defer FinishSpan(span)

	// Not cached: a deactivated plan must stop being sold immediately.
	row := r.client.Reader(ctx).QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE id = $1 AND is_active = true`, id)
	p, err := scanPlan(row)
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("Plan not found or inactive").
				WithReportableDetails(map[string]interface{}{"plan_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	return p, nil
}

// GetByProviderProductID is cached read-through. The product to plan mapping
// never changes and activity is not checked here.
func (r *planRepository) GetByProviderProductID(ctx context.Context, productID string) (*domainPlan.Plan, error) {
	span := StartRepositorySpan(ctx, "plan", "get_by_provider_product_id", map[string]interface{}{
		"stripe_product_id": productID,
	})
	defer FinishSpan(span)

	key := cache.GenerateKey(cache.PrefixPlanByProduct, productID)
	if p := r.getCache(ctx, key); p != nil {
		SetSpanSuccess(span)
		return p, nil
	}

	row := r.client.Reader(ctx).QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM subscription_plans WHERE stripe_product_id = $1`, productID)
	p, err := scanPlan(row)
	if err != nil {
		SetSpanError(span, err)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.WithError(err).
				WithHint("No plan is linked to this product").
				WithReportableDetails(map[string]interface{}{"stripe_product_id": productID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get plan").
			Mark(ierr.ErrDatabase)
	}

	SetSpanSuccess(span)
	r.setCache(ctx, key, p)
	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row rowScanner) (*domainPlan.Plan, error) {
	var p domainPlan.Plan
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.MonthlyPrice,
		&p.AnnualPrice,
		&p.ProviderProductID,
		&p.ProviderMonthlyPriceID,
		&p.ProviderAnnualPriceID,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepository) getCache(ctx context.Context, key string) *domainPlan.Plan {
	if r.cache == nil {
		return nil
	}
	value, found := r.cache.Get(ctx, key)
	if !found {
		return nil
	}
	p, ok := cache.UnmarshalCacheValue[domainPlan.Plan](value)
	if !ok {
		return nil
	}
	return p
}

func (r *planRepository) setCache(ctx context.Context, key string, p *domainPlan.Plan) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, key, p, r.ttl)
}
