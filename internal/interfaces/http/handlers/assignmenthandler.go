package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mentora/internal/application/assignment/usecases"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/logger"
	"mentora/internal/shared/utils"

	"mentora/internal/interfaces/http/middleware"
)

// AssignmentHandler exposes the assignment lifecycle to advisors
type AssignmentHandler struct {
	assignUC          *usecases.AssignCreditUseCase
	cancelRenewalUC   *usecases.CancelAutoRenewalUseCase
	getActiveUC       *usecases.GetActiveAssignmentUseCase
	listAssignmentsUC *usecases.GetAdvisorAssignmentsUseCase
	logger            logger.Interface
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(
	assignUC *usecases.AssignCreditUseCase,
	cancelRenewalUC *usecases.CancelAutoRenewalUseCase,
	getActiveUC *usecases.GetActiveAssignmentUseCase,
	listAssignmentsUC *usecases.GetAdvisorAssignmentsUseCase,
	logger logger.Interface,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignUC:          assignUC,
		cancelRenewalUC:   cancelRenewalUC,
		getActiveUC:       getActiveUC,
		listAssignmentsUC: listAssignmentsUC,
		logger:            logger,
	}
}

// AssignCreditRequest asks to spend one credit on a startup
type AssignCreditRequest struct {
	StartupID uint `json:"startup_id" binding:"required"`
	AutoRenew bool `json:"auto_renew"`
}

// AssignCreditResponse reports the grant outcome
type AssignCreditResponse struct {
	AssignmentID     uint      `json:"assignment_id"`
	CreditSpent      bool      `json:"credit_spent"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	CreditsAvailable int       `json:"credits_available"`
}

// AssignCredit spends one credit to grant a startup a month of premium
func (h *AssignmentHandler) AssignCredit(c *gin.Context) {
	var req AssignCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid assign credit request", "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.assignUC.Execute(c.Request.Context(), usecases.AssignCreditCommand{
		AdvisorID:         middleware.AdvisorID(c),
		StartupID:         req.StartupID,
		EnableAutoRenewal: req.AutoRenew,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := AssignCreditResponse{
		AssignmentID:     result.AssignmentID,
		CreditSpent:      result.CreditSpent,
		StartDate:        result.StartDate,
		EndDate:          result.EndDate,
		CreditsAvailable: result.CreditsAvailable,
	}
	if result.CreditSpent {
		utils.CreatedResponse(c, resp, "credit assigned")
		return
	}
	utils.SuccessResponse(c, resp, "assignment already active")
}

// CancelAutoRenewal disables auto-renewal on the active assignment
func (h *AssignmentHandler) CancelAutoRenewal(c *gin.Context) {
	startupID, err := parseStartupID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if err := h.cancelRenewalUC.Execute(c.Request.Context(), middleware.AdvisorID(c), startupID); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, "auto-renewal disabled")
}

// GetActiveAssignment returns the currently valid assignment for a startup
func (h *AssignmentHandler) GetActiveAssignment(c *gin.Context) {
	startupID, err := parseStartupID(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	active, err := h.getActiveUC.Execute(c.Request.Context(), middleware.AdvisorID(c), startupID)
	if err != nil {
		respondError(c, err)
		return
	}
	if active == nil {
		utils.ErrorResponseWithError(c, apperrors.NewNotFoundError("no active assignment for startup"))
		return
	}

	utils.SuccessResponse(c, toAssignmentDTO(active), "")
}

// ListAssignments returns all assignments the advisor has made
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.listAssignmentsUC.Execute(c.Request.Context(), middleware.AdvisorID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, toAssignmentDTOs(assignments), "")
}

func parseStartupID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("startupID"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("invalid startup ID")
	}
	return uint(id), nil
}
