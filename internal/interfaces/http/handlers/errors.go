package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"mentora/internal/domain/assignment"
	"mentora/internal/domain/credit"
	"mentora/internal/domain/pricing"
	"mentora/internal/domain/recurring"
	apperrors "mentora/internal/shared/errors"
	"mentora/internal/shared/utils"
)

// respondError translates domain refusals into stable API error shapes.
// Contention and lost races are conflicts the caller may retry; insufficient
// credits is a domain refusal the caller must branch on, not retry.
func respondError(c *gin.Context, err error) {
	var balance *credit.InsufficientCreditsError

	switch {
	case errors.As(err, &balance):
		// Carry the balance so the client can render a purchase prompt.
		err = apperrors.NewUnprocessableError("insufficient credits",
			fmt.Sprintf("%d available, %d required", balance.Available, balance.Required))
	case errors.Is(err, credit.ErrInsufficientCredits):
		err = apperrors.NewUnprocessableError("insufficient credits")
	case errors.Is(err, credit.ErrContention):
		err = apperrors.NewConflictError("balance contention, retry the request")
	case errors.Is(err, credit.ErrDuplicateTransaction):
		err = apperrors.NewConflictError("transaction already recorded")
	case errors.Is(err, assignment.ErrAlreadyEntitled):
		err = apperrors.NewConflictError("startup already holds a valid entitlement")
	case errors.Is(err, assignment.ErrDuplicateActiveAssignment):
		err = apperrors.NewConflictError("an active assignment already exists for this startup")
	case errors.Is(err, assignment.ErrAssignmentNotFound):
		err = apperrors.NewNotFoundError("assignment not found")
	case errors.Is(err, recurring.ErrSubscriptionNotFound):
		err = apperrors.NewNotFoundError("subscription not found")
	case errors.Is(err, pricing.ErrPlanNotFound):
		err = apperrors.NewNotFoundError("credit plan not found")
	case errors.Is(err, pricing.ErrPriceNotFound):
		err = apperrors.NewNotFoundError("no credit price configured for country")
	case errors.Is(err, credit.ErrVersionConflict),
		errors.Is(err, assignment.ErrVersionConflict),
		errors.Is(err, recurring.ErrVersionConflict):
		err = apperrors.NewConflictError("concurrent update, retry the request")
	}

	utils.ErrorResponseWithError(c, err)
}
