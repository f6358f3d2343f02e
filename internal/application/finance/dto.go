package finance

import (
	"time"

	"github.com/assetflow/backend/internal/domain/finance"
	"github.com/assetflow/backend/internal/domain/maintenance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest applies a payment against a debt
type RecordPaymentRequest struct {
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	ReceiptReference string          `json:"receipt_reference" binding:"required"`
	Notes            string          `json:"notes"`
}

// DebtListFilter narrows debt listings
type DebtListFilter struct {
	Page     int
	PageSize int
	Status   string
}

// PaymentRecordResponse is one payment in a response
type PaymentRecordResponse struct {
	ID               uuid.UUID       `json:"id"`
	Amount           decimal.Decimal `json:"amount"`
	ReceiptReference string          `json:"receipt_reference"`
	PaidBy           uuid.UUID       `json:"paid_by"`
	PaidAt           time.Time       `json:"paid_at"`
	Notes            string          `json:"notes,omitempty"`
}

// DebtResponse is the API representation of an inter-branch debt
type DebtResponse struct {
	ID                uuid.UUID               `json:"id"`
	DebtNumber        string                  `json:"debt_number"`
	DebtorBranchID    uuid.UUID               `json:"debtor_branch_id"`
	CreditorBranchID  uuid.UUID               `json:"creditor_branch_id"`
	AssignmentID      uuid.UUID               `json:"assignment_id"`
	SerialNumber      string                  `json:"serial_number"`
	Amount            decimal.Decimal         `json:"amount"`
	PaidAmount        decimal.Decimal         `json:"paid_amount"`
	OutstandingAmount decimal.Decimal         `json:"outstanding_amount"`
	Status            string                  `json:"status"`
	PartsSnapshot     maintenance.QuotedParts `json:"parts_snapshot"`
	Payments          []PaymentRecordResponse `json:"payments"`
	SettledAt         *time.Time              `json:"settled_at,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// ToDebtResponse converts a debt to its API representation
func ToDebtResponse(d *finance.BranchDebt) DebtResponse {
	payments := make([]PaymentRecordResponse, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, PaymentRecordResponse{
			ID:               p.ID,
			Amount:           p.Amount,
			ReceiptReference: p.ReceiptReference,
			PaidBy:           p.PaidBy,
			PaidAt:           p.PaidAt,
			Notes:            p.Notes,
		})
	}
	return DebtResponse{
		ID:                d.ID,
		DebtNumber:        d.DebtNumber,
		DebtorBranchID:    d.DebtorBranchID,
		CreditorBranchID:  d.CreditorBranchID,
		AssignmentID:      d.AssignmentID,
		SerialNumber:      d.SerialNumber,
		Amount:            d.Amount,
		PaidAmount:        d.PaidAmount,
		OutstandingAmount: d.OutstandingAmount,
		Status:            string(d.Status),
		PartsSnapshot:     d.PartsSnapshot,
		Payments:          payments,
		SettledAt:         d.SettledAt,
		CreatedAt:         d.CreatedAt,
	}
}
