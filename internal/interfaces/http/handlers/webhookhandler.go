package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	creditUsecases "mentora/internal/application/credit/usecases"
	recurringUsecases "mentora/internal/application/recurring/usecases"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
	"mentora/internal/shared/utils"
)

// WebhookHandler receives payment gateway callbacks. The engine never
// initiates charges; these endpoints are its only billing input, and every
// one of them is safe under gateway redelivery.
type WebhookHandler struct {
	recordPurchaseUC *creditUsecases.RecordPurchaseUseCase
	createSubUC      *recurringUsecases.CreateSubscriptionUseCase
	billingCycleUC   *recurringUsecases.ProcessBillingCycleUseCase
	billingFailureUC *recurringUsecases.HandleBillingFailureUseCase
	cancelSubUC      *recurringUsecases.CancelSubscriptionUseCase
	logger           logger.Interface
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(
	recordPurchaseUC *creditUsecases.RecordPurchaseUseCase,
	createSubUC *recurringUsecases.CreateSubscriptionUseCase,
	billingCycleUC *recurringUsecases.ProcessBillingCycleUseCase,
	billingFailureUC *recurringUsecases.HandleBillingFailureUseCase,
	cancelSubUC *recurringUsecases.CancelSubscriptionUseCase,
	logger logger.Interface,
) *WebhookHandler {
	return &WebhookHandler{
		recordPurchaseUC: recordPurchaseUC,
		createSubUC:      createSubUC,
		billingCycleUC:   billingCycleUC,
		billingFailureUC: billingFailureUC,
		cancelSubUC:      cancelSubUC,
		logger:           logger,
	}
}

// PurchaseCompletedRequest reports a paid one-time credit purchase
type PurchaseCompletedRequest struct {
	AdvisorID     uint   `json:"advisor_id" binding:"required"`
	Credits       int    `json:"credits" binding:"required,gt=0"`
	Amount        int64  `json:"amount" binding:"gte=0"`
	Currency      string `json:"currency" binding:"required,currency"`
	Gateway       string `json:"gateway" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

// PurchaseCompleted records a one-time purchase and grants its credits
func (h *WebhookHandler) PurchaseCompleted(c *gin.Context) {
	var req PurchaseCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid purchase webhook", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.recordPurchaseUC.Execute(c.Request.Context(), creditUsecases.RecordPurchaseCommand{
		AdvisorID:     req.AdvisorID,
		Credits:       req.Credits,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Gateway:       req.Gateway,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result, "purchase recorded")
}

// SubscriptionCreatedRequest reports a subscription the gateway set up
type SubscriptionCreatedRequest struct {
	AdvisorID              uint       `json:"advisor_id" binding:"required"`
	PlanCode               string     `json:"plan_code" binding:"required"`
	Gateway                string     `json:"gateway" binding:"required"`
	GatewaySubscriptionRef string     `json:"gateway_subscription_ref" binding:"required"`
	PeriodStart            *time.Time `json:"period_start"`
}

// SubscriptionCreated registers a recurring credit subscription
func (h *WebhookHandler) SubscriptionCreated(c *gin.Context) {
	var req SubscriptionCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid subscription webhook", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	cmd := recurringUsecases.CreateSubscriptionCommand{
		AdvisorID:              req.AdvisorID,
		PlanCode:               req.PlanCode,
		Gateway:                req.Gateway,
		GatewaySubscriptionRef: req.GatewaySubscriptionRef,
	}
	if req.PeriodStart != nil {
		cmd.PeriodStart = *req.PeriodStart
	}

	result, err := h.createSubUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.AlreadyExists {
		utils.SuccessResponse(c, result, "subscription already registered")
		return
	}
	utils.CreatedResponse(c, result, "subscription registered")
}

// BillingSucceededRequest reports a paid recurring charge
type BillingSucceededRequest struct {
	Gateway                string `json:"gateway" binding:"required"`
	GatewaySubscriptionRef string `json:"gateway_subscription_ref" binding:"required"`
	TransactionID          string `json:"transaction_id" binding:"required"`
	AmountPaid             int64  `json:"amount_paid" binding:"gte=0"`
	Currency               string `json:"currency" binding:"required,currency"`
}

// BillingSucceeded applies one paid billing cycle
func (h *WebhookHandler) BillingSucceeded(c *gin.Context) {
	var req BillingSucceededRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid billing webhook", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.billingCycleUC.Execute(c.Request.Context(), recurringUsecases.ProcessBillingCycleCommand{
		Gateway:                req.Gateway,
		GatewaySubscriptionRef: req.GatewaySubscriptionRef,
		TransactionID:          req.TransactionID,
		AmountPaid:             req.AmountPaid,
		Currency:               req.Currency,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, result, "billing cycle processed")
}

// BillingFailedRequest reports a failed recurring charge
type BillingFailedRequest struct {
	Gateway                string `json:"gateway" binding:"required"`
	GatewaySubscriptionRef string `json:"gateway_subscription_ref" binding:"required"`
	TransactionID          string `json:"transaction_id"`
	AmountDue              int64  `json:"amount_due" binding:"gte=0"`
	Currency               string `json:"currency"`
	Reason                 string `json:"reason"`
}

// BillingFailed records a failed charge and alerts an operator
func (h *WebhookHandler) BillingFailed(c *gin.Context) {
	var req BillingFailedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid billing failure webhook", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	if err := h.billingFailureUC.Execute(c.Request.Context(), recurringUsecases.HandleBillingFailureCommand{
		Gateway:                req.Gateway,
		GatewaySubscriptionRef: req.GatewaySubscriptionRef,
		TransactionID:          req.TransactionID,
		AmountDue:              req.AmountDue,
		Currency:               req.Currency,
		Reason:                 req.Reason,
	}); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, "billing failure recorded")
}

// SubscriptionCancelledRequest reports a subscription the gateway ended
type SubscriptionCancelledRequest struct {
	Gateway                string `json:"gateway" binding:"required"`
	GatewaySubscriptionRef string `json:"gateway_subscription_ref" binding:"required"`
}

// SubscriptionCancelled stops future billing on a subscription
func (h *WebhookHandler) SubscriptionCancelled(c *gin.Context) {
	var req SubscriptionCancelledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid cancellation webhook", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	if err := h.cancelSubUC.Execute(c.Request.Context(), req.Gateway, req.GatewaySubscriptionRef); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, "subscription cancelled")
}
