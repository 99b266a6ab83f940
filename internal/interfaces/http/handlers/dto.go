package handlers

import (
	"time"

	"mentora/internal/domain/assignment"
	"mentora/internal/domain/credit"
	"mentora/internal/domain/pricing"
	"mentora/internal/domain/recurring"
)

// AssignmentDTO is the API projection of a credit assignment
type AssignmentDTO struct {
	ID               uint       `json:"id"`
	AdvisorID        uint       `json:"advisor_id"`
	StartupID        uint       `json:"startup_id"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	Status           string     `json:"status"`
	AutoRenewEnabled bool       `json:"auto_renew_enabled"`
	AssignedAt       time.Time  `json:"assigned_at"`
	ExpiredAt        *time.Time `json:"expired_at,omitempty"`
}

func toAssignmentDTO(a *assignment.CreditAssignment) AssignmentDTO {
	return AssignmentDTO{
		ID:               a.ID(),
		AdvisorID:        a.AdvisorID(),
		StartupID:        a.StartupID(),
		StartDate:        a.StartDate(),
		EndDate:          a.EndDate(),
		Status:           a.Status().String(),
		AutoRenewEnabled: a.AutoRenewEnabled(),
		AssignedAt:       a.AssignedAt(),
		ExpiredAt:        a.ExpiredAt(),
	}
}

func toAssignmentDTOs(list []*assignment.CreditAssignment) []AssignmentDTO {
	dtos := make([]AssignmentDTO, 0, len(list))
	for _, a := range list {
		dtos = append(dtos, toAssignmentDTO(a))
	}
	return dtos
}

// PurchaseEntryDTO is the API projection of one audit log entry
type PurchaseEntryDTO struct {
	ID            uint      `json:"id"`
	Credits       int       `json:"credits"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Gateway       string    `json:"gateway"`
	TransactionID string    `json:"transaction_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toPurchaseEntryDTOs(list []*credit.PurchaseHistoryEntry) []PurchaseEntryDTO {
	dtos := make([]PurchaseEntryDTO, 0, len(list))
	for _, e := range list {
		dtos = append(dtos, PurchaseEntryDTO{
			ID:            e.ID(),
			Credits:       e.Credits(),
			Amount:        e.Amount(),
			Currency:      e.Currency(),
			Gateway:       e.Gateway(),
			TransactionID: e.TransactionID(),
			Status:        e.Status().String(),
			CreatedAt:     e.CreatedAt(),
		})
	}
	return dtos
}

// SubscriptionDTO is the API projection of a recurring credit subscription
type SubscriptionDTO struct {
	ID                 uint      `json:"id"`
	PlanID             uint      `json:"plan_id"`
	CreditsPerMonth    int       `json:"credits_per_month"`
	PricePerMonth      int64     `json:"price_per_month"`
	Currency           string    `json:"currency"`
	Gateway            string    `json:"gateway"`
	Status             string    `json:"status"`
	CurrentPeriodStart time.Time `json:"current_period_start"`
	CurrentPeriodEnd   time.Time `json:"current_period_end"`
	NextBillingDate    time.Time `json:"next_billing_date"`
	BillingCycleCount  int       `json:"billing_cycle_count"`
}

func toSubscriptionDTOs(list []*recurring.CreditSubscription) []SubscriptionDTO {
	dtos := make([]SubscriptionDTO, 0, len(list))
	for _, s := range list {
		dtos = append(dtos, SubscriptionDTO{
			ID:                 s.ID(),
			PlanID:             s.PlanID(),
			CreditsPerMonth:    s.CreditsPerMonth(),
			PricePerMonth:      s.PricePerMonth(),
			Currency:           s.Currency(),
			Gateway:            s.Gateway(),
			Status:             s.Status().String(),
			CurrentPeriodStart: s.CurrentPeriodStart(),
			CurrentPeriodEnd:   s.CurrentPeriodEnd(),
			NextBillingDate:    s.NextBillingDate(),
			BillingCycleCount:  s.BillingCycleCount(),
		})
	}
	return dtos
}

// PlanDTO is the API projection of a credit plan
type PlanDTO struct {
	ID              uint   `json:"id"`
	Code            string `json:"code"`
	Name            string `json:"name"`
	Country         string `json:"country"`
	CreditsPerMonth int    `json:"credits_per_month"`
	PricePerMonth   int64  `json:"price_per_month"`
	Currency        string `json:"currency"`
}

func toPlanDTOs(list []*pricing.CreditPlan) []PlanDTO {
	dtos := make([]PlanDTO, 0, len(list))
	for _, p := range list {
		dtos = append(dtos, PlanDTO{
			ID:              p.ID(),
			Code:            p.Code(),
			Name:            p.Name(),
			Country:         p.Country(),
			CreditsPerMonth: p.CreditsPerMonth(),
			PricePerMonth:   p.PricePerMonth(),
			Currency:        p.Currency(),
		})
	}
	return dtos
}
