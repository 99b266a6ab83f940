package usecases

import (
	"context"
	"fmt"
	"strings"

	"mentora/internal/domain/pricing"
	"mentora/internal/shared/logger"
)

// CatalogResult is the purchase catalog for one jurisdiction: the one-time
// per-credit price plus the monthly plans on offer.
type CatalogResult struct {
	Country     string
	CreditPrice pricing.CreditPrice
	Plans       []*pricing.CreditPlan
}

// GetCatalogUseCase resolves the country-specific pricing catalog. Reads go
// through the resolver, which fronts the plan store with a cache; catalog
// data is reference data and tolerates staleness.
type GetCatalogUseCase struct {
	resolver pricing.Resolver
	logger   logger.Interface
}

// NewGetCatalogUseCase creates a new GetCatalogUseCase
func NewGetCatalogUseCase(resolver pricing.Resolver, logger logger.Interface) *GetCatalogUseCase {
	return &GetCatalogUseCase{
		resolver: resolver,
		logger:   logger,
	}
}

func (uc *GetCatalogUseCase) Execute(ctx context.Context, country string) (*CatalogResult, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return nil, fmt.Errorf("country is required")
	}

	price, err := uc.resolver.GetCreditPrice(ctx, country)
	if err != nil {
		return nil, err
	}

	plans, err := uc.resolver.GetSubscriptionPlans(ctx, country)
	if err != nil {
		return nil, err
	}

	return &CatalogResult{
		Country:     country,
		CreditPrice: price,
		Plans:       plans,
	}, nil
}
