package finance

import (
	"github.com/assetflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtCreatedEvent is raised when a repair settlement produces a debt
type DebtCreatedEvent struct {
	shared.BaseDomainEvent
	DebtNumber       string          `json:"debt_number"`
	DebtorBranchID   uuid.UUID       `json:"debtor_branch_id"`
	CreditorBranchID uuid.UUID       `json:"creditor_branch_id"`
	Amount           decimal.Decimal `json:"amount"`
	SerialNumber     string          `json:"serial_number"`
}

func NewDebtCreatedEvent(d *BranchDebt) *DebtCreatedEvent {
	return &DebtCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent("finance.debt_created", "BranchDebt", d.ID),
		DebtNumber:       d.DebtNumber,
		DebtorBranchID:   d.DebtorBranchID,
		CreditorBranchID: d.CreditorBranchID,
		Amount:           d.Amount,
		SerialNumber:     d.SerialNumber,
	}
}

// DebtSettledEvent is raised when the outstanding balance reaches zero
type DebtSettledEvent struct {
	shared.BaseDomainEvent
	DebtNumber string          `json:"debt_number"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
}

func NewDebtSettledEvent(d *BranchDebt) *DebtSettledEvent {
	return &DebtSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("finance.debt_settled", "BranchDebt", d.ID),
		DebtNumber:      d.DebtNumber,
		PaidAmount:      d.PaidAmount,
	}
}
