package handlers

import (
	"github.com/gin-gonic/gin"

	pricingUsecases "mentora/internal/application/pricing/usecases"
	recurringUsecases "mentora/internal/application/recurring/usecases"
	"mentora/internal/shared/logger"
	"mentora/internal/shared/utils"

	"mentora/internal/interfaces/http/middleware"
)

// CatalogHandler exposes the pricing catalog and subscription listings
type CatalogHandler struct {
	getCatalogUC *pricingUsecases.GetCatalogUseCase
	listSubsUC   *recurringUsecases.ListSubscriptionsUseCase
	logger       logger.Interface
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	getCatalogUC *pricingUsecases.GetCatalogUseCase,
	listSubsUC *recurringUsecases.ListSubscriptionsUseCase,
	logger logger.Interface,
) *CatalogHandler {
	return &CatalogHandler{
		getCatalogUC: getCatalogUC,
		listSubsUC:   listSubsUC,
		logger:       logger,
	}
}

// CatalogResponse is the per-country purchase catalog
type CatalogResponse struct {
	Country     string    `json:"country"`
	CreditPrice int64     `json:"credit_price"`
	Currency    string    `json:"currency"`
	Plans       []PlanDTO `json:"plans"`
}

// GetCatalog returns the credit price and plan catalog for a country
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	country := c.DefaultQuery("country", "US")

	result, err := h.getCatalogUC.Execute(c.Request.Context(), country)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, CatalogResponse{
		Country:     result.Country,
		CreditPrice: result.CreditPrice.Amount,
		Currency:    result.CreditPrice.Currency,
		Plans:       toPlanDTOs(result.Plans),
	}, "")
}

// ListSubscriptions returns the advisor's recurring credit subscriptions
func (h *CatalogHandler) ListSubscriptions(c *gin.Context) {
	subs, err := h.listSubsUC.Execute(c.Request.Context(), middleware.AdvisorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, toSubscriptionDTOs(subs), "")
}
