package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mentora/internal/domain/pricing"
	"mentora/internal/shared/config"
	"mentora/internal/shared/logger"
)

const planCacheKeyPrefix = "mentora:plans:"

// planCacheEntry is the serialized form of one plan in the cache
type planCacheEntry struct {
	ID              uint      `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Country         string    `json:"country"`
	CreditsPerMonth int       `json:"credits_per_month"`
	PricePerMonth   int64     `json:"price_per_month"`
	Currency        string    `json:"currency"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CachedPlanResolver implements pricing.Resolver with a redis cache in front
// of the plan store. Catalog data is reference data and tolerates TTL
// staleness; balances are never cached here or anywhere else.
type CachedPlanResolver struct {
	client   *redis.Client
	planRepo pricing.PlanRepository
	cfg      *config.PricingConfig
	ttl      time.Duration
	logger   logger.Interface
}

// NewCachedPlanResolver creates a new CachedPlanResolver. The redis client
// may be nil, in which case every read goes straight to the store.
func NewCachedPlanResolver(
	client *redis.Client,
	planRepo pricing.PlanRepository,
	cfg *config.PricingConfig,
	logger logger.Interface,
) *CachedPlanResolver {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedPlanResolver{
		client:   client,
		planRepo: planRepo,
		cfg:      cfg,
		ttl:      ttl,
		logger:   logger,
	}
}

// GetCreditPrice returns the one-time per-credit price for a country,
// falling back to the configured default jurisdiction.
func (r *CachedPlanResolver) GetCreditPrice(ctx context.Context, country string) (pricing.CreditPrice, error) {
	if price, ok := r.cfg.CreditPrices[country]; ok {
		return pricing.CreditPrice{Amount: price.AmountMinor, Currency: price.Currency}, nil
	}
	if r.cfg.DefaultCountry != "" {
		if price, ok := r.cfg.CreditPrices[r.cfg.DefaultCountry]; ok {
			return pricing.CreditPrice{Amount: price.AmountMinor, Currency: price.Currency}, nil
		}
	}
	return pricing.CreditPrice{}, pricing.ErrPriceNotFound
}

// GetSubscriptionPlans returns the monthly plans offered in a country
func (r *CachedPlanResolver) GetSubscriptionPlans(ctx context.Context, country string) ([]*pricing.CreditPlan, error) {
	if plans, ok := r.fromCache(ctx, country); ok {
		return plans, nil
	}

	plans, err := r.planRepo.ListByCountry(ctx, country)
	if err != nil {
		return nil, err
	}

	r.toCache(ctx, country, plans)
	return plans, nil
}

func (r *CachedPlanResolver) fromCache(ctx context.Context, country string) ([]*pricing.CreditPlan, bool) {
	if r.client == nil {
		return nil, false
	}

	data, err := r.client.Get(ctx, planCacheKeyPrefix+country).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warnw("plan cache read failed", "country", country, "error", err)
		}
		return nil, false
	}

	var entries []planCacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warnw("plan cache entry corrupt, falling through", "country", country, "error", err)
		return nil, false
	}

	plans := make([]*pricing.CreditPlan, 0, len(entries))
	for _, e := range entries {
		plan, err := pricing.ReconstructCreditPlan(
			e.ID, e.Code, e.Name, e.Country,
			e.CreditsPerMonth, e.PricePerMonth, e.Currency,
			e.Active, e.CreatedAt, e.UpdatedAt,
		)
		if err != nil {
			r.logger.Warnw("plan cache entry invalid, falling through", "country", country, "error", err)
			return nil, false
		}
		plans = append(plans, plan)
	}
	return plans, true
}

func (r *CachedPlanResolver) toCache(ctx context.Context, country string, plans []*pricing.CreditPlan) {
	if r.client == nil {
		return
	}

	entries := make([]planCacheEntry, 0, len(plans))
	for _, p := range plans {
		entries = append(entries, planCacheEntry{
			ID:              p.ID(),
			Code:            p.Code(),
			Name:            p.Name(),
			Country:         p.Country(),
			CreditsPerMonth: p.CreditsPerMonth(),
			PricePerMonth:   p.PricePerMonth(),
			Currency:        p.Currency(),
			Active:          p.IsActive(),
			CreatedAt:       p.CreatedAt(),
			UpdatedAt:       p.UpdatedAt(),
		})
	}

	data, err := json.Marshal(entries)
	if err != nil {
		r.logger.Warnw("failed to marshal plan cache entries", "country", country, "error", err)
		return
	}

	if err := r.client.Set(ctx, planCacheKeyPrefix+country, data, r.ttl).Err(); err != nil {
		r.logger.Warnw("plan cache write failed", "country", country, "error", err)
	}
}

// Invalidate drops the cached catalog for a country after an admin change
func (r *CachedPlanResolver) Invalidate(ctx context.Context, country string) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, planCacheKeyPrefix+country).Err(); err != nil {
		r.logger.Warnw("plan cache invalidation failed", "country", country, "error", err)
	}
}

var _ pricing.Resolver = (*CachedPlanResolver)(nil)

// NewRedisClient creates the redis client from configuration
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Ping verifies the redis connection
func Ping(ctx context.Context, client *redis.Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
