package usecases

import (
	"context"
	"fmt"

	"mentora/internal/domain/credit"
	"mentora/internal/shared/constants"
	"mentora/internal/shared/logger"
)

// ListPurchaseHistoryQuery selects a page of an advisor's audit log
type ListPurchaseHistoryQuery struct {
	AdvisorID uint
	Page      int
	PageSize  int
}

// ListPurchaseHistoryUseCase returns the append-only purchase audit log
type ListPurchaseHistoryUseCase struct {
	historyRepo credit.PurchaseHistoryRepository
	logger      logger.Interface
}

// NewListPurchaseHistoryUseCase creates a new ListPurchaseHistoryUseCase
func NewListPurchaseHistoryUseCase(historyRepo credit.PurchaseHistoryRepository, logger logger.Interface) *ListPurchaseHistoryUseCase {
	return &ListPurchaseHistoryUseCase{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

func (uc *ListPurchaseHistoryUseCase) Execute(ctx context.Context, q ListPurchaseHistoryQuery) ([]*credit.PurchaseHistoryEntry, error) {
	page := q.Page
	if page < constants.DefaultPage {
		page = constants.DefaultPage
	}
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	entries, err := uc.historyRepo.ListByAdvisor(ctx, q.AdvisorID, pageSize, (page-1)*pageSize)
	if err != nil {
		uc.logger.Errorw("failed to list purchase history", "advisor_id", q.AdvisorID, "error", err)
		return nil, fmt.Errorf("failed to list purchase history: %w", err)
	}

	return entries, nil
}
