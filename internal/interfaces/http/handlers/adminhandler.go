package handlers

import (
	"github.com/gin-gonic/gin"

	assignmentUsecases "mentora/internal/application/assignment/usecases"
	"mentora/internal/domain/pricing"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
	"mentora/internal/shared/utils"
)

// AdminHandler exposes operational endpoints: manual sweep runs and plan
// catalog management
type AdminHandler struct {
	renewUC  *assignmentUsecases.RenewAssignmentsUseCase
	planRepo pricing.PlanRepository
	logger   logger.Interface
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	renewUC *assignmentUsecases.RenewAssignmentsUseCase,
	planRepo pricing.PlanRepository,
	logger logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		renewUC:  renewUC,
		planRepo: planRepo,
		logger:   logger,
	}
}

// RunSweep triggers a renewal sweep outside the scheduled cadence. The sweep
// is idempotent, so racing the scheduler is harmless.
func (h *AdminHandler) RunSweep(c *gin.Context) {
	result, err := h.renewUC.Execute(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result, "renewal sweep completed")
}

// CreatePlanRequest adds a plan to the catalog
type CreatePlanRequest struct {
	Code            string `json:"code" binding:"required"`
	Name            string `json:"name" binding:"required"`
	Country         string `json:"country" binding:"required,country"`
	CreditsPerMonth int    `json:"credits_per_month" binding:"required,gt=0"`
	PricePerMonth   int64  `json:"price_per_month" binding:"gte=0"`
	Currency        string `json:"currency" binding:"required,currency"`
}

// CreatePlan adds a monthly credit plan to the catalog
func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid create plan request", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	plan, err := pricing.NewCreditPlan(
		req.Code, req.Name, req.Country,
		req.CreditsPerMonth, req.PricePerMonth, req.Currency)
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}

	if err := h.planRepo.Create(c.Request.Context(), plan); err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, PlanDTO{
		ID:              plan.ID(),
		Code:            plan.Code(),
		Name:            plan.Name(),
		Country:         plan.Country(),
		CreditsPerMonth: plan.CreditsPerMonth(),
		PricePerMonth:   plan.PricePerMonth(),
		Currency:        plan.Currency(),
	}, "plan created")
}
