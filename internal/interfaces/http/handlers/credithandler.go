package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"mentora/internal/application/credit/usecases"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
	"mentora/internal/shared/utils"

	"mentora/internal/interfaces/http/middleware"
)

// CreditHandler exposes balance and purchase history reads plus the
// administrative grant path
type CreditHandler struct {
	getBalanceUC  *usecases.GetBalanceUseCase
	listHistoryUC *usecases.ListPurchaseHistoryUseCase
	addCreditsUC  *usecases.AddCreditsUseCase
	logger        logger.Interface
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(
	getBalanceUC *usecases.GetBalanceUseCase,
	listHistoryUC *usecases.ListPurchaseHistoryUseCase,
	addCreditsUC *usecases.AddCreditsUseCase,
	logger logger.Interface,
) *CreditHandler {
	return &CreditHandler{
		getBalanceUC:  getBalanceUC,
		listHistoryUC: listHistoryUC,
		addCreditsUC:  addCreditsUC,
		logger:        logger,
	}
}

// GetBalance returns the advisor's credit balance
func (h *CreditHandler) GetBalance(c *gin.Context) {
	result, err := h.getBalanceUC.Execute(c.Request.Context(), middleware.AdvisorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, result, "")
}

// ListPurchaseHistory returns a page of the advisor's purchase audit log
func (h *CreditHandler) ListPurchaseHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, err := h.listHistoryUC.Execute(c.Request.Context(), usecases.ListPurchaseHistoryQuery{
		AdvisorID: middleware.AdvisorID(c),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, toPurchaseEntryDTOs(entries), "")
}

// AddCreditsRequest is the administrative grant body
type AddCreditsRequest struct {
	AdvisorID uint   `json:"advisor_id" binding:"required"`
	Credits   int    `json:"credits" binding:"required,gt=0"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason" binding:"required"`
}

// AddCredits grants credits administratively (admin only)
func (h *CreditHandler) AddCredits(c *gin.Context) {
	var req AddCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid add credits request", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.addCreditsUC.Execute(c.Request.Context(), usecases.AddCreditsCommand{
		AdvisorID: req.AdvisorID,
		Credits:   req.Credits,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result, "credits granted")
}
